package fixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/petmoji/internal/domain/ai"
	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
	"github.com/bryanwahyu/petmoji/internal/infra/ai/prompt"
)

func TestAssignEmojiIsDeterministic(t *testing.T) {
	p, err := prompt.Lookup("v2")
	require.NoError(t, err)
	req := ai.Request{Prompt: p, Photo: petmoji.Photo{MIMEType: "image/png", Data: []byte("cat pixels")}}

	c := NewClient()
	a, err := c.AssignEmoji(context.Background(), req)
	require.NoError(t, err)
	b, err := c.AssignEmoji(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	res, err := ai.DecodeReply(a)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Emoji)
	assert.NotEmpty(t, res.Comment)
	require.NotNil(t, res.Confidence)
	assert.GreaterOrEqual(t, *res.Confidence, 50.0)
}

func TestAssignEmojiV1OmitsConfidence(t *testing.T) {
	p, err := prompt.Lookup("v1")
	require.NoError(t, err)
	raw, err := NewClient().AssignEmoji(context.Background(), ai.Request{Prompt: p, Photo: petmoji.Photo{Data: []byte{1, 2, 3}}})
	require.NoError(t, err)
	assert.NotContains(t, raw, "confidence")
}

func TestAssignEmojiHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().AssignEmoji(ctx, ai.Request{Photo: petmoji.Photo{Data: []byte{1}}})
	assert.ErrorIs(t, err, context.Canceled)
}
