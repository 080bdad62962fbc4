package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"b2b-quote/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call sends body as JSON with the given bearer token and extra header pairs.
func call(t *testing.T, server http.Handler, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeData unwraps the success envelope into dest.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// signUp registers an account and returns a token for it.
func signUp(t *testing.T, server http.Handler, req model.RegisterRequest) string {
	t.Helper()

	w := call(t, server, http.MethodPost, "/api/auth/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, server, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: req.Email, Password: req.Password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login model.LoginResponse
	decodeData(t, w, &login)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func buyerAccount() model.RegisterRequest {
	return model.RegisterRequest{
		Email:    "ana@acme.test",
		Password: "s3cretpass",
		Name:     "Ana Ruiz",
		Company:  "Acme Imports",
		Role:     model.RoleBuyer,
	}
}

func supplierAccount() model.RegisterRequest {
	return model.RegisterRequest{
		Email:      "sales@andes.test",
		Password:   "s3cretpass",
		Name:       "Sam Quispe",
		Company:    "Andes Produce",
		Role:       model.RoleSupplier,
		SupplierID: "sup-001",
	}
}

func TestRFQLifecycle_Integration(t *testing.T) {
	env := SetupTestEnv(t)
	CleanupDB(t, env.Pool)

	buyer := signUp(t, env.Server, buyerAccount())
	supplier := signUp(t, env.Server, supplierAccount())

	addItem := model.AddCartItemRequest{ProductID: "avocado-hass", Quantity: 5}

	t.Run("POST /api/cart prices the line from the volume tiers", func(t *testing.T) {
		w := call(t, env.Server, http.MethodPost, "/api/cart", buyer, addItem, "Idempotency-Key", "add-avocados")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var cart model.Cart
		decodeData(t, w, &cart)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, model.CartModeOnline, cart.Mode)
		assert.True(t, decimal.NewFromInt(7650).Equal(cart.Items[0].PricePerContainer))
		assert.True(t, decimal.NewFromInt(38250).Equal(cart.Totals.Subtotal))
		assert.True(t, decimal.NewFromInt(38500).Equal(cart.Totals.GrandTotal))
	})

	t.Run("Retried POST /api/cart is replayed", func(t *testing.T) {
		w := call(t, env.Server, http.MethodPost, "/api/cart", buyer, addItem, "Idempotency-Key", "add-avocados")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))

		w = call(t, env.Server, http.MethodGet, "/api/cart", buyer, nil)
		var cart model.Cart
		decodeData(t, w, &cart)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})

	t.Run("Reused key with a different body conflicts", func(t *testing.T) {
		other := model.AddCartItemRequest{ProductID: "avocado-hass", Quantity: 1}
		w := call(t, env.Server, http.MethodPost, "/api/cart", buyer, other, "Idempotency-Key", "add-avocados")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	var rfq model.RFQ
	t.Run("POST /api/cart/submit creates a pending RFQ and empties the cart", func(t *testing.T) {
		submit := model.SubmitCartRequest{
			RequesterName:         "Ana Ruiz",
			RequesterEmail:        "ana@acme.test",
			TentativeDeliveryDate: "2030-04-01",
		}
		w := call(t, env.Server, http.MethodPost, "/api/cart/submit", buyer, submit)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp model.SubmitCartResponse
		decodeData(t, w, &resp)
		require.Len(t, resp.RFQs, 1)
		rfq = resp.RFQs[0]
		assert.Equal(t, model.RFQStatusPending, rfq.Status)
		assert.Equal(t, "sup-001", rfq.SupplierID)
		assert.Equal(t, "Acme Imports", rfq.BuyerCompany)

		w = call(t, env.Server, http.MethodGet, "/api/cart", buyer, nil)
		var cart model.Cart
		decodeData(t, w, &cart)
		assert.Empty(t, cart.Items)
	})

	var quoteID string
	t.Run("Supplier sees the RFQ and submits a quote", func(t *testing.T) {
		w := call(t, env.Server, http.MethodGet, "/api/rfq", supplier, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var visible []model.RFQ
		decodeData(t, w, &visible)
		require.Len(t, visible, 1)
		assert.Equal(t, rfq.ID, visible[0].ID)

		quote := model.SubmitQuoteRequest{UnitPrice: decimal.NewFromInt(7600), PaymentTerms: "30% deposit"}
		w = call(t, env.Server, http.MethodPost, "/api/rfq/"+rfq.ID.String()+"/quotes", supplier, quote)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var quoted model.RFQ
		decodeData(t, w, &quoted)
		assert.Equal(t, model.RFQStatusQuoted, quoted.Status)
		require.Len(t, quoted.Quotes, 1)
		quoteID = quoted.Quotes[0].ID.String()
	})

	t.Run("Buyer cannot quote their own RFQ", func(t *testing.T) {
		quote := model.SubmitQuoteRequest{UnitPrice: decimal.NewFromInt(1)}
		w := call(t, env.Server, http.MethodPost, "/api/rfq/"+rfq.ID.String()+"/quotes", buyer, quote)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Buyer accepts the quote", func(t *testing.T) {
		w := call(t, env.Server, http.MethodPost, "/api/rfq/"+rfq.ID.String()+"/quotes/"+quoteID+"/accept", buyer, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var accepted model.RFQ
		decodeData(t, w, &accepted)
		assert.Equal(t, model.RFQStatusAccepted, accepted.Status)
		require.NotNil(t, accepted.AcceptedQuoteID)
		assert.Equal(t, quoteID, accepted.AcceptedQuoteID.String())
	})

	t.Run("Accepted RFQ no longer takes quotes", func(t *testing.T) {
		quote := model.SubmitQuoteRequest{UnitPrice: decimal.NewFromInt(7500)}
		w := call(t, env.Server, http.MethodPost, "/api/rfq/"+rfq.ID.String()+"/quotes", supplier, quote)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("GET /api/quotes/{rfqId} projects the accepted quote", func(t *testing.T) {
		w := call(t, env.Server, http.MethodGet, "/api/quotes/"+rfq.ID.String(), buyer, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var quote model.Quote
		decodeData(t, w, &quote)
		assert.Equal(t, model.QuoteViewAccepted, quote.Status)
		assert.True(t, decimal.NewFromInt(38000).Equal(quote.TotalAmount), "total %s", quote.TotalAmount)
		assert.True(t, decimal.NewFromInt(38250).Equal(quote.GrandTotal), "grand total %s", quote.GrandTotal)
		assert.Equal(t, "30% deposit", quote.PaymentConditions)
	})
}

func TestAuth_Integration(t *testing.T) {
	env := SetupTestEnv(t)
	CleanupDB(t, env.Pool)

	token := signUp(t, env.Server, buyerAccount())

	t.Run("Duplicate registration conflicts", func(t *testing.T) {
		w := call(t, env.Server, http.MethodPost, "/api/auth/register", "", buyerAccount())
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Wrong password is rejected", func(t *testing.T) {
		w := call(t, env.Server, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ana@acme.test", Password: "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Profile", func(t *testing.T) {
		w := call(t, env.Server, http.MethodGet, "/api/auth/profile", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var user model.User
		decodeData(t, w, &user)
		assert.Equal(t, "ana@acme.test", user.Email)
		assert.NotContains(t, w.Body.String(), "s3cretpass")
	})

	t.Run("Logout revokes the token", func(t *testing.T) {
		w := call(t, env.Server, http.MethodGet, "/api/auth/validate", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = call(t, env.Server, http.MethodPost, "/api/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = call(t, env.Server, http.MethodGet, "/api/auth/validate", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHealth_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	w := call(t, env.Server, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","dependencies":{"postgres":"up","redis":"up"}}`, w.Body.String())
}

func TestCORS_Integration(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("Preflight from an allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/rfq", nil)
		req.Header.Set("Origin", "https://buyer.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		env.Server.ServeHTTP(w, req)

		assert.Less(t, w.Code, http.StatusMultipleChoices)
		assert.Equal(t, "https://buyer.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}
