package salary

import "context"

type Repository interface {
	// GetStructuresByIDs returns structures keyed by ID, lines in position order.
	// Missing IDs are absent from the map rather than an error.
	GetStructuresByIDs(ctx context.Context, ids []string, companyID string) (map[string]Structure, error)
}
