package audit

import "context"

// Repository port for persisting and querying analysis records
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
	Get(ctx context.Context, id RecordID) (*Record, error)
}
