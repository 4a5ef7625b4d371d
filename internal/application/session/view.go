package session

import (
	"net/url"
	"time"

	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// HistoryItem is one entry of the history strip.
type HistoryItem struct {
	Index        int       `json:"index"`
	PhotoDataURI string    `json:"photo_data_uri"`
	Emoji        string    `json:"emoji"`
	Comment      string    `json:"comment"`
	Confidence   *float64  `json:"confidence,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// View is an immutable snapshot of a session, ready to render.
type View struct {
	SessionID    string        `json:"-"`
	Status       Status        `json:"status"`
	PhotoDataURI string        `json:"photo_data_uri,omitempty"`
	Emoji        string        `json:"emoji,omitempty"`
	ModelEmoji   string        `json:"model_emoji,omitempty"`
	Comment      string        `json:"comment,omitempty"`
	Confidence   *float64      `json:"confidence,omitempty"`
	ErrorTitle   string        `json:"error_title,omitempty"`
	Error        string        `json:"error,omitempty"`
	Palette      []string      `json:"palette,omitempty"`
	History      []HistoryItem `json:"history"`
	ShareURL     string        `json:"share_url,omitempty"`
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot(page *url.URL) View {
	v := View{
		SessionID:    s.id,
		Status:       s.status,
		PhotoDataURI: s.photo.DataURI(),
		Emoji:        s.emoji,
		History:      historyView(s.history),
	}
	if s.result != nil {
		v.ModelEmoji = s.result.Emoji
		v.Comment = s.result.Comment
		v.Confidence = s.result.Confidence
	}
	if s.errMsg != "" {
		v.ErrorTitle = petmoji.ErrorTitle
		v.Error = s.errMsg
	}
	if s.emoji != "" {
		if !s.photo.Empty() {
			v.Palette = petmoji.Palette(s.paletteBase())
		}
		if page != nil {
			v.ShareURL = petmoji.ShareLink(page, s.emoji)
		}
	}
	return v
}

// paletteBase keeps the model's emoji in the palette after an override.
func (s *Session) paletteBase() string {
	if s.result != nil {
		return s.result.Emoji
	}
	return s.emoji
}

// historyView renders most recent first.
func historyView(h []petmoji.HistoryEntry) []HistoryItem {
	out := make([]HistoryItem, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		e := h[i]
		out = append(out, HistoryItem{
			Index:        len(out),
			PhotoDataURI: e.Photo.DataURI(),
			Emoji:        e.Emoji,
			Comment:      e.Comment,
			Confidence:   e.Confidence,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out
}
