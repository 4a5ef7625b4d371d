package petmoji

import "context"

// PhotoArchive keeps a copy of analyzed photos for operators.
type PhotoArchive interface {
	Put(ctx context.Context, key string, p Photo) (string, error)
}
