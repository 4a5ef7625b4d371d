package petmoji

import "time"

// Photo is the uploaded image as the provider will see it.
type Photo struct {
	MIMEType string
	Data     []byte
}

// Empty reports whether there is nothing to analyze.
func (p Photo) Empty() bool { return len(p.Data) == 0 }

// AnalysisResult is what the model said about one photo. Emoji and Comment
// are kept exactly as the provider returned them.
type AnalysisResult struct {
	Emoji      string   `json:"emoji"`
	Comment    string   `json:"comment"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// HistoryEntry pairs a past result with the photo it came from.
type HistoryEntry struct {
	Photo      Photo     `json:"-"`
	Emoji      string    `json:"emoji"`
	Comment    string    `json:"comment"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewHistoryEntry builds the entry appended after a successful analysis.
func NewHistoryEntry(p Photo, r AnalysisResult, at time.Time) HistoryEntry {
	return HistoryEntry{
		Photo:      p,
		Emoji:      r.Emoji,
		Comment:    r.Comment,
		Confidence: r.Confidence,
		CreatedAt:  at,
	}
}
