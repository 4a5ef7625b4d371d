package session

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/bryanwahyu/petmoji/internal/application"
	apppetmoji "github.com/bryanwahyu/petmoji/internal/application/petmoji"
	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

// Analyzer is the pet expression capability the controller depends on. The
// orchestrator implements it; tests substitute fixtures.
type Analyzer interface {
	Analyze(ctx context.Context, photo petmoji.Photo) (petmoji.AnalysisResult, error)
}

var (
	ErrSuperseded        = errors.New("a newer action replaced this submission")
	ErrNothingToOverride = errors.New("no emoji is displayed")
	ErrNotInPalette      = errors.New("emoji is not in the palette")
	ErrHistoryIndex      = errors.New("history entry does not exist")
	ErrInvalidEmoji      = errors.New("invalid emoji")
)

// Controller drives the idle → pending → resolved|failed state machine of each
// visitor session. Starting over (Submit, Reject, Reset, Preselect) supersedes
// an analysis still in flight; its outcome is then dropped.
type Controller struct {
	analyzer Analyzer
	store    *Store
	page     *url.URL
	clock    application.Clock
	logger   *zap.Logger
}

// NewController wires the controller. page is the public URL share links point to.
func NewController(a Analyzer, store *Store, page *url.URL, clock application.Clock, logger *zap.Logger) *Controller {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{analyzer: a, store: store, page: page, clock: clock, logger: logger}
}

// View returns the current state without changing it.
func (c *Controller) View(id string) View {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(c.page)
}

// Submit analyzes a photo. It calls the analyzer exactly once for a non-empty
// photo and never for an empty one.
func (c *Controller) Submit(ctx context.Context, id string, photo petmoji.Photo) (View, error) {
	s := c.store.Get(id)
	if photo.Empty() {
		return c.Reject(s.id, petmoji.ErrNoInput)
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.clearDisplay()
	s.photo = photo
	s.status = StatusPending
	s.touched = c.clock.Now()
	s.mu.Unlock()

	res, err := c.analyzer.Analyze(apppetmoji.ContextWithSession(ctx, s.id), photo)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		c.logger.Debug("dropping superseded analysis", zap.String("session_id", s.id))
		return s.snapshot(c.page), ErrSuperseded
	}
	s.touched = c.clock.Now()
	if err != nil {
		s.status = StatusFailed
		s.errMsg = petmoji.UserMessage(err)
		return s.snapshot(c.page), err
	}
	s.status = StatusResolved
	s.result = &res
	s.emoji = res.Emoji
	s.history = append(s.history, petmoji.NewHistoryEntry(photo, res, s.touched))
	return s.snapshot(c.page), nil
}

// Reject records an input failure found before any analysis, such as a
// non-image upload. The analyzer is not called.
func (c *Controller) Reject(id string, cause error) (View, error) {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.clearDisplay()
	s.status = StatusFailed
	s.errMsg = petmoji.UserMessage(cause)
	s.touched = c.clock.Now()
	return s.snapshot(c.page), cause
}

// Override shows another emoji from the palette. History keeps the model's
// choice. It needs a displayed photo, so a preselected emoji from a share link
// cannot be overridden.
func (c *Controller) Override(id, emoji string) (View, error) {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emoji == "" || s.photo.Empty() || s.status == StatusPending {
		return s.snapshot(c.page), ErrNothingToOverride
	}
	if !petmoji.InPalette(s.paletteBase(), emoji) {
		return s.snapshot(c.page), ErrNotInPalette
	}
	s.emoji = emoji
	s.touched = c.clock.Now()
	return s.snapshot(c.page), nil
}

// SelectHistory redisplays an entry. index counts from the most recent entry.
func (c *Controller) SelectHistory(id string, index int) (View, error) {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.history) {
		return s.snapshot(c.page), ErrHistoryIndex
	}
	e := s.history[len(s.history)-1-index]
	s.photo = e.Photo
	s.result = &petmoji.AnalysisResult{Emoji: e.Emoji, Comment: e.Comment, Confidence: e.Confidence}
	s.emoji = e.Emoji
	s.errMsg = ""
	s.status = StatusResolved
	s.touched = c.clock.Now()
	return s.snapshot(c.page), nil
}

// Reset starts over. History is kept.
func (c *Controller) Reset(id string) View {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.clearDisplay()
	s.status = StatusIdle
	s.touched = c.clock.Now()
	return s.snapshot(c.page)
}

// Preselect displays a shared emoji without running any analysis.
func (c *Controller) Preselect(id, emoji string) (View, error) {
	s := c.store.Get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !petmoji.ValidEmoji(emoji) {
		return s.snapshot(c.page), ErrInvalidEmoji
	}
	s.seq++
	s.clearDisplay()
	s.emoji = emoji
	s.status = StatusResolved
	s.touched = c.clock.Now()
	return s.snapshot(c.page), nil
}

// ShareLink returns the link for the displayed emoji, or the bare page URL.
func (c *Controller) ShareLink(id string) string {
	v := c.View(id)
	if v.ShareURL != "" {
		return v.ShareURL
	}
	if c.page == nil {
		return ""
	}
	return petmoji.ShareLink(c.page, "")
}
