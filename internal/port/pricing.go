package port

import (
	"context"

	"billsage/internal/domain"
)

// PricingRepository provides read-only access to the reference pricing
// table. The pipeline performs one full read per analysis run.
type PricingRepository interface {
	LoadAll(ctx context.Context) ([]domain.ReferencePricingRecord, error)
}
