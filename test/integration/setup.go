package integration

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"b2b-quote/internal/cache"
	"b2b-quote/internal/config"
	"b2b-quote/internal/database"
	"b2b-quote/internal/handler"
	"b2b-quote/internal/model"
	"b2b-quote/internal/offline"
	"b2b-quote/internal/pricing"
	"b2b-quote/internal/repository"
	"b2b-quote/internal/router"
	"b2b-quote/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestEnv is a fully wired API backed by PostgreSQL and Redis containers.
type TestEnv struct {
	Pool    *pgxpool.Pool
	Redis   *cache.Client
	Catalog pricing.Catalog
	Queue   offline.Queue
	Cart    service.CartService
	Server  http.Handler
}

var (
	testQuoteConfig = config.QuoteConfig{
		PlatformCommission: decimal.NewFromInt(250),
		FreightEstimate:    decimal.Zero,
		RFQValidity:        30 * 24 * time.Hour,
		Currency:           "USD",
	}
	testAuthConfig = config.AuthConfig{
		JWTSecret: "integration-secret-with-32-chars!",
		Issuer:    "b2b-quote-integration",
		TokenTTL:  time.Hour,
	}
)

// SetupTestEnv starts both containers and wires the application the way cmd/api does.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	logger := zerolog.Nop()
	ctx := context.Background()

	pool := SetupTestDB(t)
	redisClient := SetupTestRedis(t)

	catalog, err := pricing.NewCatalog(ctx,
		&pricing.CatalogConfig{FilePaths: []string{writeTestCatalog(t)}},
		pricing.NewFileLoader(logger), logger)
	require.NoError(t, err)

	queue := offline.NewQueue(redisClient)
	rfqRepo := repository.NewRFQRepository(pool, logger)

	pricingService := service.NewPricingService(catalog, logger)
	rfqService := service.NewRFQService(rfqRepo, pricingService, testQuoteConfig, nil, logger)
	quoteService := service.NewQuoteService(rfqService, testQuoteConfig, logger)
	cartService := service.NewCartService(repository.NewCartRepository(pool, logger), rfqRepo, pricingService,
		queue, redisClient, testQuoteConfig, nil, logger)
	authService := service.NewAuthService(repository.NewUserRepository(pool, logger), redisClient, testAuthConfig, logger)

	server := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		RFQ:     handler.NewRFQHandler(rfqService, logger),
		Quote:   handler.NewQuoteHandler(quoteService, logger),
		Pricing: handler.NewPricingHandler(pricingService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Health:  handler.NewHealthHandler(map[string]handler.Pinger{"postgres": pool, "redis": redisClient}, logger),
	}, router.Options{
		AllowedOrigins: []string{"https://buyer.example"},
		Authenticator:  authService,
		Idempotency:    redisClient,
		IdempotencyTTL: time.Hour,
	}, logger)

	return &TestEnv{
		Pool:    pool,
		Redis:   redisClient,
		Catalog: catalog,
		Queue:   queue,
		Cart:    cartService,
		Server:  server,
	}
}

// SetupTestDB creates a PostgreSQL test container and applies the migrations.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}
	pool, err := database.NewPoolFromConnString(ctx, connStr, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool
}

// SetupTestRedis starts a Redis container and returns a connected client.
func SetupTestRedis(t *testing.T) *cache.Client {
	t.Helper()

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	addr, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client, err := cache.New(ctx, config.RedisConfig{Addr: addr, KeyPrefix: "it:"})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return client
}

// writeTestCatalog writes the price lists used by the integration tests.
func writeTestCatalog(t *testing.T) string {
	t.Helper()

	four, nine := 4, 9
	entries := []model.VolumePricing{
		{
			ProductID:     "avocado-hass",
			ProductTitle:  "Hass Avocados",
			SupplierID:    "sup-001",
			ContainerType: model.Container40HC,
			BasePrice:     decimal.NewFromInt(8500),
			Currency:      "USD",
			Tiers: []model.PricingTier{
				{MinQuantity: 1, MaxQuantity: &four, PricePerContainer: decimal.NewFromInt(8500), DiscountPercentage: decimal.Zero},
				{MinQuantity: 5, MaxQuantity: &nine, PricePerContainer: decimal.NewFromInt(7650), DiscountPercentage: decimal.NewFromInt(10)},
				{MinQuantity: 10, PricePerContainer: decimal.NewFromInt(7225), DiscountPercentage: decimal.NewFromInt(15)},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "catalog.jsonl.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := json.NewEncoder(gz)
	for _, entry := range entries {
		require.NoError(t, encoder.Encode(entry))
	}
	require.NoError(t, gz.Close())

	return path
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"cart_items", "rfq_documents", "rfq_quotes", "rfqs", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
