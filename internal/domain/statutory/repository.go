package statutory

import "context"

type Repository interface {
	GetByCompanyID(ctx context.Context, companyID string) (Config, error)
	Upsert(ctx context.Context, cfg Config) (Config, error)
}
