package rawdata

import "context"

// Repository stores raw payloads keyed by (source, entity_type, entity_key).
// A payload whose hash is unchanged is left as is.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
