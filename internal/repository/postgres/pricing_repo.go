package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"billsage/internal/domain"
	"billsage/internal/port"
)

type pricingRepo struct {
	db *sqlx.DB
}

// NewPricingRepo creates a new PostgreSQL-backed PricingRepository.
func NewPricingRepo(db *sqlx.DB) port.PricingRepository {
	return &pricingRepo{db: db}
}

func (r *pricingRepo) LoadAll(ctx context.Context) ([]domain.ReferencePricingRecord, error) {
	var records []domain.ReferencePricingRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT code, procedure_name, medicare_rate, typical_range_low, typical_range_high
		 FROM reference_pricing
		 ORDER BY code`)
	if err != nil {
		return nil, err
	}
	return records, nil
}
