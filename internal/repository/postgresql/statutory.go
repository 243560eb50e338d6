package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type statutoryRepository struct {
	db *database.DB
}

func NewStatutoryRepository(db *database.DB) statutory.Repository {
	return &statutoryRepository{db: db}
}

func scanStatutoryConfig(row pgx.Row) (statutory.Config, error) {
	var cfg statutory.Config
	var pf, esi, pt []byte
	if err := row.Scan(&cfg.ID, &cfg.CompanyID, &pf, &esi, &pt, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return statutory.Config{}, err
	}

	if err := json.Unmarshal(pf, &cfg.PF); err != nil {
		return statutory.Config{}, fmt.Errorf("%w: pf: %v", statutory.ErrInvalidContribution, err)
	}
	if err := json.Unmarshal(esi, &cfg.ESI); err != nil {
		return statutory.Config{}, fmt.Errorf("%w: esi: %v", statutory.ErrInvalidContribution, err)
	}
	if err := json.Unmarshal(pt, &cfg.ProfessionalTax); err != nil {
		return statutory.Config{}, fmt.Errorf("%w: %v", statutory.ErrMalformedSlabs, err)
	}
	return cfg, nil
}

// GetByCompanyID implements statutory.Repository.
func (r *statutoryRepository) GetByCompanyID(ctx context.Context, companyID string) (statutory.Config, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, pf, esi, professional_tax, created_at, updated_at
		FROM statutory_configs
		WHERE company_id = $1
	`

	cfg, err := scanStatutoryConfig(q.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return statutory.Config{}, statutory.ErrConfigNotFound
		}
		if errors.Is(err, statutory.ErrMalformedSlabs) || errors.Is(err, statutory.ErrInvalidContribution) {
			slog.Warn("Stored statutory config is unreadable", "company_id", companyID, "error", err)
			return statutory.Config{CompanyID: companyID, Malformed: true}, nil
		}
		return statutory.Config{}, fmt.Errorf("failed to get statutory config: %w", err)
	}
	return cfg, nil
}

// Upsert implements statutory.Repository.
func (r *statutoryRepository) Upsert(ctx context.Context, cfg statutory.Config) (statutory.Config, error) {
	q := GetQuerier(ctx, r.db)

	pf, err := json.Marshal(cfg.PF)
	if err != nil {
		return statutory.Config{}, fmt.Errorf("failed to encode pf: %w", err)
	}
	esi, err := json.Marshal(cfg.ESI)
	if err != nil {
		return statutory.Config{}, fmt.Errorf("failed to encode esi: %w", err)
	}
	if cfg.ProfessionalTax.Slabs == nil {
		cfg.ProfessionalTax.Slabs = []statutory.Slab{}
	}
	pt, err := json.Marshal(cfg.ProfessionalTax)
	if err != nil {
		return statutory.Config{}, fmt.Errorf("failed to encode professional tax: %w", err)
	}

	query := `
		INSERT INTO statutory_configs (company_id, pf, esi, professional_tax)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id) DO UPDATE SET
			pf = EXCLUDED.pf,
			esi = EXCLUDED.esi,
			professional_tax = EXCLUDED.professional_tax,
			updated_at = NOW()
		RETURNING id, company_id, pf, esi, professional_tax, created_at, updated_at
	`

	saved, err := scanStatutoryConfig(q.QueryRow(ctx, query, cfg.CompanyID, pf, esi, pt))
	if err != nil {
		return statutory.Config{}, fmt.Errorf("failed to upsert statutory config: %w", err)
	}
	return saved, nil
}
