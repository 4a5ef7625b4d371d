package fixture

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/petmoji/internal/domain/ai"
)

type mood struct {
	emoji   string
	comment string
}

var moods = []mood{
	{"😄", "This little one is absolutely beaming with happiness!"},
	{"😴", "Someone is deep in a dream about snacks."},
	{"🤔", "Clearly pondering the great mysteries of the treat jar."},
	{"😠", "Not amused. Not amused at all."},
	{"😮", "Wait, was that the fridge door?"},
	{"😍", "Head over paws in love with the camera."},
	{"😂", "Living their best, silliest life."},
}

// Client answers without any network call. The mood is derived from the photo
// bytes, so the same photo always yields the same reply.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (Client) Name() string  { return "fixture" }
func (Client) Model() string { return "fixture-v1" }

// AssignEmoji returns a JSON string matching the prompt's schema.
func (Client) AssignEmoji(ctx context.Context, req ai.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Photo.Empty() {
		return "", ai.ErrEmptyReply
	}

	sum := sha256.Sum256(req.Photo.Data)
	m := moods[int(sum[0])%len(moods)]

	out := map[string]any{"emoji": m.emoji, "comment": m.comment}
	if req.Prompt.WithConfidence {
		out["confidence"] = 50 + int(sum[1])%50
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fixture reply: %w", err)
	}
	return string(b), nil
}
