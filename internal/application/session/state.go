package session

import (
	"sync"
	"time"

	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// Status is the UI state of one visitor.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusFailed   Status = "failed"
)

// Session holds what one page view shows. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	id      string
	status  Status
	photo   petmoji.Photo
	result  *petmoji.AnalysisResult
	emoji   string // displayed emoji: model's, overridden, or preselected
	errMsg  string
	history []petmoji.HistoryEntry // append-only, oldest first
	seq     uint64
	touched time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{id: id, status: StatusIdle, touched: now}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) clearDisplay() {
	s.photo = petmoji.Photo{}
	s.result = nil
	s.emoji = ""
	s.errMsg = ""
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
