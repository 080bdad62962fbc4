package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"b2b-quote/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultListLimit = 50

const rfqColumns = `
	id, rfq_number, product_id, product_title, supplier_id, supplier_name,
	buyer_id, buyer_company, requester_name, requester_email, requester_phone,
	container_quantity, container_type, incoterm, estimated_delivery_date,
	logistics_comments, special_requirements, priority, estimated_value,
	currency, freight, status, accepted_quote_id, rejection_reason,
	created_at, updated_at, valid_until, version`

const quoteColumns = `
	id, rfq_id, supplier_id, quote_number, unit_price, total_price, currency,
	incoterm, lead_time, valid_until, payment_terms, special_conditions,
	is_counter_offer, counter_offer_to, status, created_at`

// rfqRepository implements the RFQRepository interface using PostgreSQL.
type rfqRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRFQRepository creates a new PostgreSQL-backed RFQ repository.
func NewRFQRepository(pool *pgxpool.Pool, logger zerolog.Logger) RFQRepository {
	return &rfqRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "rfq").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *rfqRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new RFQ within the provided transaction.
func (r *rfqRepository) Create(ctx context.Context, tx pgx.Tx, rfq *model.RFQ) error {
	query := `INSERT INTO rfqs (` + rfqColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`

	_, err := tx.Exec(ctx, query,
		rfq.ID, rfq.RFQNumber, rfq.ProductID, rfq.ProductTitle, rfq.SupplierID, rfq.SupplierName,
		rfq.BuyerID, rfq.BuyerCompany, rfq.RequesterName, rfq.RequesterEmail, rfq.RequesterPhone,
		rfq.ContainerQuantity, rfq.ContainerType, rfq.Incoterm, rfq.EstimatedDeliveryDate,
		rfq.LogisticsComments, rfq.SpecialRequirements, rfq.Priority, nullDecimal(rfq.EstimatedValue),
		rfq.Currency, rfq.Freight, rfq.Status, rfq.AcceptedQuoteID, rfq.RejectionReason,
		rfq.CreatedAt, rfq.UpdatedAt, rfq.ValidUntil, rfq.Version,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("rfq_id", rfq.ID.String()).
			Msg("failed to create rfq")
		return fmt.Errorf("failed to create rfq: %w", err)
	}

	r.logger.Debug().
		Str("rfq_id", rfq.ID.String()).
		Str("rfq_number", rfq.RFQNumber).
		Msg("rfq created successfully")

	return nil
}

// GetByID retrieves an RFQ with its quotes and documents.
func (r *rfqRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	query := `SELECT ` + rfqColumns + ` FROM rfqs WHERE id = $1`

	rfq, err := scanRFQ(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("rfq_id", id.String()).Msg("rfq not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("rfq_id", id.String()).Msg("failed to query rfq")
		return nil, fmt.Errorf("failed to query rfq: %w", err)
	}

	byID := map[uuid.UUID]*model.RFQ{rfq.ID: rfq}
	if err := r.loadChildren(ctx, byID); err != nil {
		return nil, err
	}

	return rfq, nil
}

// List retrieves RFQs matching filter, newest first.
func (r *rfqRepository) List(ctx context.Context, filter RFQFilter) ([]model.RFQ, error) {
	var (
		where []string
		args  []any
	)
	if filter.BuyerID != nil {
		args = append(args, *filter.BuyerID)
		where = append(where, fmt.Sprintf("buyer_id = $%d", len(args)))
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		where = append(where, fmt.Sprintf("supplier_id = $%d", len(args)))
	}
	if filter.Status != "" {
		where = append(where, statusPredicate(filter, &args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := `SELECT ` + rfqColumns + ` FROM rfqs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query rfqs")
		return nil, fmt.Errorf("failed to query rfqs: %w", err)
	}
	defer rows.Close()

	rfqs := make([]model.RFQ, 0)
	for rows.Next() {
		rfq, err := scanRFQ(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan rfq row")
			return nil, fmt.Errorf("failed to scan rfq: %w", err)
		}
		rfqs = append(rfqs, *rfq)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating rfq rows")
		return nil, fmt.Errorf("error iterating rfqs: %w", err)
	}

	byID := make(map[uuid.UUID]*model.RFQ, len(rfqs))
	for i := range rfqs {
		byID[rfqs[i].ID] = &rfqs[i]
	}
	if err := r.loadChildren(ctx, byID); err != nil {
		return nil, err
	}

	return rfqs, nil
}

// statusPredicate matches stored status, or with AsOf set the status after expiry.
func statusPredicate(filter RFQFilter, args *[]any) string {
	switch {
	case filter.AsOf.IsZero(), filter.Status == model.RFQStatusAccepted, filter.Status == model.RFQStatusRejected:
		*args = append(*args, filter.Status)
		return fmt.Sprintf("status = $%d", len(*args))
	case filter.Status == model.RFQStatusExpired:
		*args = append(*args, filter.AsOf)
		return fmt.Sprintf("(status = 'expired' OR (valid_until < $%d AND status NOT IN ('accepted', 'rejected')))", len(*args))
	default:
		*args = append(*args, filter.Status, filter.AsOf)
		return fmt.Sprintf("(status = $%d AND valid_until >= $%d)", len(*args)-1, len(*args))
	}
}

// UpdateStatus persists status fields guarded by the expected status and version.
func (r *rfqRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, rfq *model.RFQ, expected model.RFQStatus) error {
	query := `
		UPDATE rfqs
		SET status = $1, accepted_quote_id = $2, rejection_reason = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND status = $6 AND version = $7
	`

	tag, err := tx.Exec(ctx, query,
		rfq.Status, rfq.AcceptedQuoteID, rfq.RejectionReason, rfq.UpdatedAt,
		rfq.ID, expected, rfq.Version,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("rfq_id", rfq.ID.String()).
			Msg("failed to update rfq status")
		return fmt.Errorf("failed to update rfq status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("rfq_id", rfq.ID.String()).
			Str("expected_status", string(expected)).
			Int("expected_version", rfq.Version).
			Msg("rfq changed since it was read")
		return model.ErrStaleState
	}

	rfq.Version++

	r.logger.Debug().
		Str("rfq_id", rfq.ID.String()).
		Str("from", string(expected)).
		Str("to", string(rfq.Status)).
		Msg("rfq status updated")

	return nil
}

// CreateQuote appends a quote within the provided transaction.
func (r *rfqRepository) CreateQuote(ctx context.Context, tx pgx.Tx, q *model.RFQQuote) error {
	query := `INSERT INTO rfq_quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := tx.Exec(ctx, query,
		q.ID, q.RFQID, q.SupplierID, q.QuoteNumber, q.UnitPrice, q.TotalPrice, q.Currency,
		q.Incoterm, q.LeadTime, q.ValidUntil, q.PaymentTerms, q.SpecialConditions,
		q.IsCounterOffer, q.CounterOfferTo, q.Status, q.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("rfq_id", q.RFQID.String()).
			Str("quote_id", q.ID.String()).
			Msg("failed to create quote")
		return fmt.Errorf("failed to create quote: %w", err)
	}

	r.logger.Debug().
		Str("rfq_id", q.RFQID.String()).
		Str("quote_number", q.QuoteNumber).
		Bool("counter_offer", q.IsCounterOffer).
		Msg("quote created successfully")

	return nil
}

// UpdateQuoteStatuses persists the status of every given quote.
func (r *rfqRepository) UpdateQuoteStatuses(ctx context.Context, tx pgx.Tx, quotes []model.RFQQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	query := `UPDATE rfq_quotes SET status = $1 WHERE id = $2`

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(query, q.Status, q.ID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(quotes); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("quote_id", quotes[i].ID.String()).
				Msg("failed to update quote status")
			return fmt.Errorf("failed to update quote status: %w", err)
		}
	}

	return nil
}

// CreateDocument appends document metadata within the provided transaction.
func (r *rfqRepository) CreateDocument(ctx context.Context, tx pgx.Tx, doc *model.RFQDocument) error {
	query := `
		INSERT INTO rfq_documents (id, rfq_id, name, url, content_type, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query, doc.ID, doc.RFQID, doc.Name, doc.URL, doc.ContentType, doc.UploadedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("rfq_id", doc.RFQID.String()).
			Msg("failed to create document")
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// loadChildren fills quotes and documents of every RFQ in byID.
func (r *rfqRepository) loadChildren(ctx context.Context, byID map[uuid.UUID]*model.RFQ) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(byID))
	for id, rfq := range byID {
		ids = append(ids, id)
		rfq.Quotes = []model.RFQQuote{}
		rfq.Documents = []model.RFQDocument{}
	}

	quoteQuery := `SELECT ` + quoteColumns + ` FROM rfq_quotes WHERE rfq_id = ANY($1) ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, quoteQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query quotes")
		return fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q model.RFQQuote
		err := rows.Scan(
			&q.ID, &q.RFQID, &q.SupplierID, &q.QuoteNumber, &q.UnitPrice, &q.TotalPrice, &q.Currency,
			&q.Incoterm, &q.LeadTime, &q.ValidUntil, &q.PaymentTerms, &q.SpecialConditions,
			&q.IsCounterOffer, &q.CounterOfferTo, &q.Status, &q.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan quote row")
			return fmt.Errorf("failed to scan quote: %w", err)
		}
		if rfq, ok := byID[q.RFQID]; ok {
			rfq.Quotes = append(rfq.Quotes, q)
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating quote rows")
		return fmt.Errorf("error iterating quotes: %w", err)
	}

	docQuery := `
		SELECT id, rfq_id, name, url, content_type, uploaded_at
		FROM rfq_documents
		WHERE rfq_id = ANY($1)
		ORDER BY uploaded_at, id
	`

	docRows, err := r.pool.Query(ctx, docQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query documents")
		return fmt.Errorf("failed to query documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var d model.RFQDocument
		if err := docRows.Scan(&d.ID, &d.RFQID, &d.Name, &d.URL, &d.ContentType, &d.UploadedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan document row")
			return fmt.Errorf("failed to scan document: %w", err)
		}
		if rfq, ok := byID[d.RFQID]; ok {
			rfq.Documents = append(rfq.Documents, d)
		}
	}
	if err := docRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating document rows")
		return fmt.Errorf("error iterating documents: %w", err)
	}

	return nil
}

func scanRFQ(row pgx.Row) (*model.RFQ, error) {
	var (
		rfq       model.RFQ
		estimated decimal.NullDecimal
	)

	err := row.Scan(
		&rfq.ID, &rfq.RFQNumber, &rfq.ProductID, &rfq.ProductTitle, &rfq.SupplierID, &rfq.SupplierName,
		&rfq.BuyerID, &rfq.BuyerCompany, &rfq.RequesterName, &rfq.RequesterEmail, &rfq.RequesterPhone,
		&rfq.ContainerQuantity, &rfq.ContainerType, &rfq.Incoterm, &rfq.EstimatedDeliveryDate,
		&rfq.LogisticsComments, &rfq.SpecialRequirements, &rfq.Priority, &estimated,
		&rfq.Currency, &rfq.Freight, &rfq.Status, &rfq.AcceptedQuoteID, &rfq.RejectionReason,
		&rfq.CreatedAt, &rfq.UpdatedAt, &rfq.ValidUntil, &rfq.Version,
	)
	if err != nil {
		return nil, err
	}

	if estimated.Valid {
		v := estimated.Decimal
		rfq.EstimatedValue = &v
	}

	return &rfq, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
