package cxc

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository is the Document History Loader: the only component that touches
// the database. It returns fully materialized, pre-sorted documents; all
// downstream computation is in-memory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUnitDocuments returns the unit's posted, non-voided documents with
// their lines, ordered by (issued_at, id) as the engine requires.
func (r *Repository) ListUnitDocuments(ctx context.Context, unitID int64) ([]SourceDocument, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ph_units WHERE id = $1)`, unitID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("cxc: check unit: %w", err)
	}
	if !exists {
		return nil, ErrUnitNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT d.id, d.issued_at, d.kind, l.description, l.amount::text, l.account_id
FROM ph_documents d
JOIN ph_document_lines l ON l.document_id = d.id
WHERE d.unit_id = $1 AND d.status = 'POSTED'
ORDER BY d.issued_at, d.id, l.id`, unitID)
	if err != nil {
		return nil, fmt.Errorf("cxc: list documents: %w", err)
	}
	defer rows.Close()

	var documents []SourceDocument
	for rows.Next() {
		var (
			doc    SourceDocument
			line   DocumentLine
			amount string
		)
		if err := rows.Scan(&doc.ID, &doc.Date, &doc.Kind, &line.Description, &amount, &line.AccountID); err != nil {
			return nil, fmt.Errorf("cxc: scan document line: %w", err)
		}
		line.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("cxc: document %d amount: %w", doc.ID, err)
		}
		if n := len(documents); n > 0 && documents[n-1].ID == doc.ID {
			documents[n-1].Lines = append(documents[n-1].Lines, line)
			continue
		}
		doc.Lines = []DocumentLine{line}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cxc: list documents: %w", err)
	}
	return documents, nil
}

// ListUnitIDs returns every unit with at least one posted document.
func (r *Repository) ListUnitIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT unit_id FROM ph_documents WHERE status = 'POSTED' ORDER BY unit_id`)
	if err != nil {
		return nil, fmt.Errorf("cxc: list units: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("cxc: scan unit: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cxc: list units: %w", err)
	}
	return ids, nil
}

// LoadClassifierConfig reads the account sets that drive classification.
func (r *Repository) LoadClassifierConfig(ctx context.Context) (Config, error) {
	cfg := Config{
		InterestAccountIDs:   make(map[int64]struct{}),
		FineAccountIDs:       make(map[int64]struct{}),
		ReceivableAccountIDs: make(map[int64]struct{}),
	}
	rows, err := r.pool.Query(ctx, `SELECT account_id, role FROM ph_account_roles WHERE role IN ('INTEREST','FINE','RECEIVABLE')`)
	if err != nil {
		return Config{}, fmt.Errorf("cxc: load account roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID int64
			role      string
		)
		if err := rows.Scan(&accountID, &role); err != nil {
			return Config{}, fmt.Errorf("cxc: scan account role: %w", err)
		}
		switch role {
		case "INTEREST":
			cfg.InterestAccountIDs[accountID] = struct{}{}
		case "FINE":
			cfg.FineAccountIDs[accountID] = struct{}{}
		case "RECEIVABLE":
			cfg.ReceivableAccountIDs[accountID] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return Config{}, fmt.Errorf("cxc: load account roles: %w", err)
	}
	return cfg, nil
}
