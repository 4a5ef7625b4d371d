package httpserver

import (
	"context"
	"database/sql"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appaudit "github.com/bryanwahyu/petmoji/internal/application/audit"
	"github.com/bryanwahyu/petmoji/internal/application/session"
	"github.com/bryanwahyu/petmoji/internal/domain/audit"
	"github.com/bryanwahyu/petmoji/internal/domain/petmoji"
	"github.com/bryanwahyu/petmoji/internal/middleware"
)

// SessionCookie carries the visitor's session id.
const SessionCookie = "petmoji_session"

//go:embed templates/index.html
var templates embed.FS

// Options configures the HTTP surface. Zero values disable the optional parts.
type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	AdminKeys      map[string]string
	Limiter        *middleware.RateLimiter
	Checkers       map[string]middleware.HealthChecker
	Ready          *atomic.Bool
	SecureCookies  bool
	CookieMaxAge   time.Duration
}

type Router struct {
	ctrl     *session.Controller
	auditSvc *appaudit.Service
	logger   *zap.Logger
	opts     Options
	page     *template.Template
}

func NewRouter(ctrl *session.Controller, auditSvc *appaudit.Service, logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.Ready == nil {
		opts.Ready = new(atomic.Bool)
		opts.Ready.Store(true)
	}
	r := &Router{
		ctrl:     ctrl,
		auditSvc: auditSvc,
		logger:   logger,
		opts:     opts,
		page: template.Must(template.New("index.html").Funcs(template.FuncMap{
			"safeURL": func(s string) template.URL { return template.URL(s) },
			"deref":   func(f *float64) float64 { return *f },
		}).ParseFS(templates, "templates/index.html")),
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(logger))
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Ready))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	limit := func(h http.Handler) http.Handler { return h }
	if opts.Limiter != nil {
		limit = middleware.RateLimitMiddleware(opts.Limiter)
	}

	mux.Group(func(rt chi.Router) {
		rt.Use(r.withSession)
		rt.Get("/", r.wrap(r.handlePage))
		rt.With(limit).Post("/photo", r.wrap(r.handlePagePhoto))
		rt.Post("/emoji", r.wrap(r.handlePageEmoji))
		rt.Post("/reset", r.wrap(r.handlePageReset))
		rt.Post("/history/{index}", r.wrap(r.handlePageHistory))
	})

	mux.Route("/v1", func(rt chi.Router) {
		if len(opts.AllowedOrigins) > 0 {
			rt.Use(cors.Handler(cors.Options{
				AllowedOrigins:   opts.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}

		rt.Group(func(rt chi.Router) {
			rt.Use(r.withSession)
			rt.With(limit).Post("/photos", r.wrap(r.handleSubmit))
			rt.Get("/state", r.wrap(r.handleState))
			rt.Post("/emoji", r.wrap(r.handleOverride))
			rt.Post("/reset", r.wrap(r.handleReset))
			rt.Get("/history", r.wrap(r.handleHistory))
			rt.Post("/history/{index}/select", r.wrap(r.handleSelectHistory))
			rt.Get("/share", r.wrap(r.handleShare))
		})

		if auditSvc != nil {
			rt.Route("/admin", func(rt chi.Router) {
				rt.Use(middleware.AdminKeyAuth(opts.AdminKeys))
				rt.Get("/analyses", r.wrap(r.handleAuditList))
				rt.Get("/analyses/{id}", r.wrap(r.handleAuditGet))
			})
		}
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks malformed requests that never reach the controller
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequest
			switch {
			case errors.As(err, &br):
				http.Error(w, br.Error(), http.StatusBadRequest)
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			default:
				r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}
	}
}

// statusFor maps controller outcomes to HTTP status codes
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case petmoji.IsInputError(err), errors.Is(err, session.ErrInvalidEmoji):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrHistoryIndex):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNothingToOverride),
		errors.Is(err, session.ErrNotInPalette),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, petmoji.ErrNoOutput), errors.Is(err, petmoji.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type sessionCtxKey struct{}

// withSession makes sure every request carries a well-formed session id
func (r *Router) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := ""
		if c, err := req.Cookie(SessionCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = session.NewID()
		}
		cookie := &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.opts.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		}
		if r.opts.CookieMaxAge > 0 {
			cookie.MaxAge = int(r.opts.CookieMaxAge.Seconds())
		}
		http.SetCookie(w, cookie)
		next.ServeHTTP(w, req.WithContext(contextWithSession(req.Context(), id)))
	})
}

func contextWithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, id)
}

func sessionID(req *http.Request) string {
	id, _ := req.Context().Value(sessionCtxKey{}).(string)
	return id
}

// readPhoto extracts the upload from a multipart form or a JSON data URI body.
// Violations come back as petmoji input errors.
func (r *Router) readPhoto(w http.ResponseWriter, req *http.Request) (petmoji.Photo, error) {
	maxBytes := r.opts.MaxUploadBytes

	if strings.HasPrefix(req.Header.Get("Content-Type"), "application/json") {
		// base64 grows the payload by 4/3; the rest covers the envelope and data: prefix
		req.Body = http.MaxBytesReader(w, req.Body, int64(base64.StdEncoding.EncodedLen(int(maxBytes)))+4<<10)
		var body struct {
			PhotoDataURI string `json:"photo_data_uri"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return petmoji.Photo{}, fmt.Errorf("%w: %v", petmoji.ErrInvalidInput, err)
		}
		p, err := petmoji.ParseDataURI(body.PhotoDataURI)
		if err != nil {
			return petmoji.Photo{}, err
		}
		if int64(len(p.Data)) > maxBytes {
			return petmoji.Photo{}, fmt.Errorf("%w: photo larger than %d bytes", petmoji.ErrInvalidInput, maxBytes)
		}
		return p, nil
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxBytes+(1<<20))
	if err := req.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return petmoji.Photo{}, petmoji.ErrNoInput
		}
		return petmoji.Photo{}, fmt.Errorf("%w: %v", petmoji.ErrInvalidInput, err)
	}
	f, hdr, err := req.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return petmoji.Photo{}, petmoji.ErrNoInput
	}
	if err != nil {
		return petmoji.Photo{}, fmt.Errorf("%w: %v", petmoji.ErrInvalidInput, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return petmoji.Photo{}, fmt.Errorf("%w: %v", petmoji.ErrInvalidInput, err)
	}
	if int64(len(data)) > maxBytes {
		return petmoji.Photo{}, fmt.Errorf("%w: photo larger than %d bytes", petmoji.ErrInvalidInput, maxBytes)
	}
	return petmoji.NewPhoto(hdr.Header.Get("Content-Type"), data)
}

// submit runs one analysis and keeps the counters in step
func (r *Router) submit(w http.ResponseWriter, req *http.Request) (session.View, error) {
	id := sessionID(req)
	photo, err := r.readPhoto(w, req)
	if err != nil {
		return r.ctrl.Reject(id, err)
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	v, err := r.ctrl.Submit(req.Context(), id, photo)
	if err != nil && !petmoji.IsInputError(err) && !errors.Is(err, session.ErrSuperseded) {
		middleware.IncrementAnalysesFailed()
	}
	return v, err
}

func (r *Router) override(req *http.Request, emoji string) (session.View, error) {
	v, err := r.ctrl.Override(sessionID(req), middleware.SanitizeString(emoji))
	if err == nil {
		middleware.IncrementOverrides()
	}
	return v, err
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeView(w http.ResponseWriter, v session.View, err error) error {
	return writeJSON(w, statusFor(err), v)
}

// POST /v1/photos
// Body: multipart field "photo", or {"photo_data_uri": "data:image/png;base64,..."}
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	v, err := r.submit(w, req)
	return writeView(w, v, err)
}

// GET /v1/state[?emoji=]
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) error {
	id := sessionID(req)
	if e, ok := petmoji.EmojiFromQuery(req.URL.Query()); ok {
		v, err := r.ctrl.Preselect(id, e)
		return writeView(w, v, err)
	}
	return writeView(w, r.ctrl.View(id), nil)
}

// POST /v1/emoji
// Body: {"emoji": "😴"}
func (r *Router) handleOverride(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, 4<<10)).Decode(&body); err != nil {
		return badRequest{err}
	}
	v, err := r.override(req, body.Emoji)
	return writeView(w, v, err)
}

// POST /v1/reset
func (r *Router) handleReset(w http.ResponseWriter, req *http.Request) error {
	return writeView(w, r.ctrl.Reset(sessionID(req)), nil)
}

// GET /v1/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.ctrl.View(sessionID(req)).History)
}

// POST /v1/history/{index}/select
func (r *Router) handleSelectHistory(w http.ResponseWriter, req *http.Request) error {
	idx, err := middleware.ValidateHistoryIndex(chi.URLParam(req, "index"))
	if err != nil {
		return badRequest{err}
	}
	v, err := r.ctrl.SelectHistory(sessionID(req), idx)
	return writeView(w, v, err)
}

// GET /v1/share
func (r *Router) handleShare(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"url": r.ctrl.ShareLink(sessionID(req))})
}

// GET /v1/admin/analyses?page=&page_size=
func (r *Router) handleAuditList(w http.ResponseWriter, req *http.Request) error {
	page := middleware.ValidatePage(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	size = middleware.ValidateLimit(size)
	r.logger.Info("audit log read",
		zap.String("operator", middleware.GetOperatorFromContext(req.Context())),
		zap.Int("page", page),
		zap.Int("page_size", size),
	)

	list, err := r.auditSvc.List(req.Context(), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/admin/analyses/{id}
func (r *Router) handleAuditGet(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	r.logger.Info("audit record read",
		zap.String("operator", middleware.GetOperatorFromContext(req.Context())),
		zap.String("analysis_id", id),
	)

	rec, err := r.auditSvc.Get(req.Context(), audit.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

type pageData struct {
	Accept string
	View   session.View
}

// GET /[?emoji=]
func (r *Router) handlePage(w http.ResponseWriter, req *http.Request) error {
	id := sessionID(req)
	v := r.ctrl.View(id)
	if e, ok := petmoji.EmojiFromQuery(req.URL.Query()); ok {
		v, _ = r.ctrl.Preselect(id, e)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return r.page.Execute(w, pageData{Accept: strings.Join(petmoji.AcceptedTypes, ","), View: v})
}

func redirectHome(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, "/", http.StatusSeeOther)
	return nil
}

// POST /photo
func (r *Router) handlePagePhoto(w http.ResponseWriter, req *http.Request) error {
	_, _ = r.submit(w, req)
	return redirectHome(w, req)
}

// POST /emoji
func (r *Router) handlePageEmoji(w http.ResponseWriter, req *http.Request) error {
	_, _ = r.override(req, req.PostFormValue("emoji"))
	return redirectHome(w, req)
}

// POST /reset
func (r *Router) handlePageReset(w http.ResponseWriter, req *http.Request) error {
	r.ctrl.Reset(sessionID(req))
	return redirectHome(w, req)
}

// POST /history/{index}
func (r *Router) handlePageHistory(w http.ResponseWriter, req *http.Request) error {
	idx, err := middleware.ValidateHistoryIndex(chi.URLParam(req, "index"))
	if err != nil {
		return badRequest{err}
	}
	_, _ = r.ctrl.SelectHistory(sessionID(req), idx)
	return redirectHome(w, req)
}
