package petmoji

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/petmoji/internal/application"
	"github.com/bryanwahyu/petmoji/internal/domain/ai"
	"github.com/bryanwahyu/petmoji/internal/domain/audit"
	domain "github.com/bryanwahyu/petmoji/internal/domain/petmoji"
)

const (
	auditTimeout          = 5 * time.Second
	defaultArchiveTimeout = 10 * time.Second
	maxLoggedBody         = 512
)

// Service is the request orchestrator: one photo in, one validated result or
// one opaque error out. It never retries.
// Service is safe for concurrent use.
type Service struct {
	client         ai.Client
	prompt         ai.Prompt
	audit          audit.Repository
	archive        domain.PhotoArchive
	archiveTimeout time.Duration
	clock          application.Clock
	logger         *zap.Logger
	timeout        time.Duration
}

type Option func(*Service)

// WithAudit records every attempt, including upstream error details.
func WithAudit(r audit.Repository) Option { return func(s *Service) { s.audit = r } }

// WithArchive stores a copy of each analyzed photo.
func WithArchive(a domain.PhotoArchive) Option { return func(s *Service) { s.archive = a } }

// WithArchiveTimeout bounds each archive write. A stalled store then costs at
// most d per analysis.
func WithArchiveTimeout(d time.Duration) Option { return func(s *Service) { s.archiveTimeout = d } }

func WithClock(c application.Clock) Option { return func(s *Service) { s.clock = c } }

// WithTimeout bounds the provider call. Zero means only the caller's context applies.
func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

func NewService(client ai.Client, p ai.Prompt, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		client:         client,
		prompt:         p,
		clock:          application.SystemClock{},
		logger:         logger,
		archiveTimeout: defaultArchiveTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type sessionKey struct{}

// ContextWithSession tags the context so audit rows can be traced to a visitor.
func ContextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// PromptVersion reports which prompt revision the service sends.
func (s *Service) PromptVersion() string { return s.prompt.Version }

// Analyze sends the photo to the model and validates the reply. Failures are
// one of domain.ErrNoInput, domain.ErrNoOutput or domain.ErrProvider; the
// upstream cause is logged, never returned.
func (s *Service) Analyze(ctx context.Context, photo domain.Photo) (res domain.AnalysisResult, err error) {
	if photo.Empty() {
		return domain.AnalysisResult{}, domain.ErrNoInput
	}

	start := s.clock.Now()
	rec := &audit.Record{
		ID:            audit.RecordID(uuid.New().String()),
		SessionID:     sessionFrom(ctx),
		Provider:      s.client.Name(),
		Model:         s.client.Model(),
		PromptVersion: s.prompt.Version,
		PhotoMIME:     photo.MIMEType,
		PhotoBytes:    len(photo.Data),
		CreatedAt:     start,
	}
	log := s.logger.With(
		zap.String("analysis_id", string(rec.ID)),
		zap.String("session_id", rec.SessionID),
		zap.String("provider", rec.Provider),
		zap.String("prompt_version", rec.PromptVersion),
	)

	var detail error
	defer func() {
		if p := recover(); p != nil {
			log.Error("ai provider panicked", zap.Any("panic", p))
			res, err, detail = domain.AnalysisResult{}, domain.ErrProvider, fmt.Errorf("panic: %v", p)
		}
		rec.DurationMS = s.clock.Now().Sub(start).Milliseconds()
		s.record(ctx, log, rec, res, err, detail)
	}()

	if s.archive != nil {
		key := fmt.Sprintf("%s/%s%s", start.UTC().Format("2006/01/02"), rec.ID, photo.Extension())
		actx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
		url, aerr := s.archive.Put(actx, key, photo)
		cancel()
		if aerr != nil {
			log.Warn("photo archive failed", zap.Error(aerr))
		} else {
			rec.PhotoURL = url
		}
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, cerr := s.client.AssignEmoji(callCtx, ai.Request{Prompt: s.prompt, Photo: photo})
	if cerr != nil {
		log.Error("ai provider call failed",
			zap.Error(cerr),
			zap.Bool("quota_exceeded", errors.Is(cerr, ai.ErrQuotaExceeded)),
		)
		detail = cerr
		return domain.AnalysisResult{}, domain.ErrProvider
	}

	res, derr := ai.DecodeReply(raw)
	if derr != nil {
		log.Error("ai reply failed validation", zap.Error(derr), zap.String("reply", truncate(raw, maxLoggedBody)))
		detail = derr
		return domain.AnalysisResult{}, domain.ErrNoOutput
	}

	log.Info("pet analyzed", zap.String("emoji", res.Emoji))
	return res, nil
}

func (s *Service) record(ctx context.Context, log *zap.Logger, rec *audit.Record, res domain.AnalysisResult, err, detail error) {
	if s.audit == nil {
		return
	}
	if err != nil {
		rec.Status = audit.StatusFailed
		rec.ErrorKind = domain.ErrorKind(err)
		if detail != nil {
			rec.ErrorDetail = detail.Error()
		}
	} else {
		rec.Status = audit.StatusSuccess
		rec.Emoji = res.Emoji
		rec.Comment = res.Comment
		rec.Confidence = res.Confidence
	}

	// the request may already be cancelled; the audit row should still land
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if serr := s.audit.Save(sctx, rec); serr != nil {
		log.Warn("audit save failed", zap.Error(serr))
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
