package ai

import (
	"context"

	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// Request is one emoji-assignment call: the prompt plus the photo it refers to.
type Request struct {
	Prompt Prompt
	Photo  petmoji.Photo
}

// Client is a generative model provider. It returns the raw JSON reply; the
// caller validates it against the prompt's schema.
type Client interface {
	AssignEmoji(ctx context.Context, req Request) (string, error)
	Name() string
	Model() string
}
