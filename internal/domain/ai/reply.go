package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// reply mirrors the schema. Pointers tell "missing" apart from "zero".
type reply struct {
	Emoji      *string  `json:"emoji"`
	Comment    *string  `json:"comment"`
	Confidence *float64 `json:"confidence"`
}

// DecodeReply validates a raw model reply. emoji and comment are required
// non-blank strings; confidence is optional but must lie in [0,100] when
// present. Every violation wraps petmoji.ErrNoOutput.
func DecodeReply(raw string) (petmoji.AnalysisResult, error) {
	body := stripFence(raw)
	if body == "" {
		return petmoji.AnalysisResult{}, fmt.Errorf("%w: %v", petmoji.ErrNoOutput, ErrEmptyReply)
	}

	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return petmoji.AnalysisResult{}, fmt.Errorf("%w: decode reply: %v", petmoji.ErrNoOutput, err)
	}
	if r.Emoji == nil || strings.TrimSpace(*r.Emoji) == "" {
		return petmoji.AnalysisResult{}, fmt.Errorf("%w: missing emoji", petmoji.ErrNoOutput)
	}
	if r.Comment == nil || strings.TrimSpace(*r.Comment) == "" {
		return petmoji.AnalysisResult{}, fmt.Errorf("%w: missing comment", petmoji.ErrNoOutput)
	}
	if c := r.Confidence; c != nil && (*c < 0 || *c > 100) {
		return petmoji.AnalysisResult{}, fmt.Errorf("%w: confidence %v out of range", petmoji.ErrNoOutput, *c)
	}

	return petmoji.AnalysisResult{
		Emoji:      *r.Emoji,
		Comment:    *r.Comment,
		Confidence: r.Confidence,
	}, nil
}

// stripFence removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
