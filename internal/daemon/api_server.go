package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"chorus/internal/api"
	"chorus/internal/clips"
	"chorus/internal/fetch"
	"chorus/internal/logging"
	"chorus/internal/resultcache"
	"chorus/internal/services"
)

const maxRequestBody = 1 << 20

// previewService is the part of preview.Service the API needs.
type previewService interface {
	Normalize(req api.Request) (api.Request, error)
	Analyze(ctx context.Context, req api.Request) api.Response
}

// cacheManager is the part of resultcache.Store the API needs.
type cacheManager interface {
	List(ctx context.Context) ([]resultcache.Entry, error)
	Remove(ctx context.Context, identifier string) (int64, error)
	Clear(ctx context.Context) (int64, error)
	MaxEntries() int
}

// clipManager is the part of clips.Store the API needs.
type clipManager interface {
	List(ctx context.Context) ([]clips.Clip, error)
	Get(ctx context.Context, identifier string) (clips.Clip, bool, error)
	Set(ctx context.Context, identifier string, start float64, end *float64) (clips.Clip, error)
	Delete(ctx context.Context, identifier string) (bool, error)
}

type apiServer struct {
	bind    string
	logger  *slog.Logger
	service previewService
	cache   cacheManager
	clips   clipManager
	status  func(context.Context) Status

	handler  http.Handler
	listener net.Listener
	address  atomic.Pointer[string]
	server   *http.Server
}

func newAPIServer(bind, token string, service previewService, cache cacheManager, clipStore clipManager, status func(context.Context) Status, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(bind),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		service: service,
		cache:   cache,
		clips:   clipStore,
		status:  status,
	}

	protected := http.NewServeMux()
	protected.HandleFunc("POST /analyze", srv.handleAnalyze)
	protected.HandleFunc("POST /analyze/{identifier}", srv.handleAnalyze)
	protected.HandleFunc("GET /api/status", srv.handleStatus)
	protected.HandleFunc("GET /api/cache", srv.handleCacheList)
	protected.HandleFunc("DELETE /api/cache", srv.handleCacheDelete)
	protected.HandleFunc("GET /clips", srv.handleClipList)
	protected.HandleFunc("GET /clips/{identifier}", srv.handleClipGet)
	protected.HandleFunc("POST /clips/{identifier}", srv.handleClipSet)
	protected.HandleFunc("DELETE /clips/{identifier}", srv.handleClipDelete)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", srv.handleHealth)
	mux.Handle("/", authMiddleware(token, protected))

	srv.handler = srv.withRequestContext(mux)
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Analysis of a cold identifier includes a download.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	address := listener.Addr().String()
	s.address.Store(&address)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", address))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) addr() string {
	if p := s.address.Load(); p != nil {
		return *p
	}
	return ""
}

// withRequestContext assigns a request id, echoes it in X-Request-ID and logs
// the request once it completes.
func (s *apiServer) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := services.WithRequestID(r.Context(), requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.WithContext(ctx, s.logger).Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req api.Request
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}
	if id := r.PathValue("identifier"); id != "" {
		req.Identifier = id
	}

	req, err = s.service.Normalize(req)
	if err != nil {
		s.writeError(w, r, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.service.Analyze(r.Context(), req))
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.status(r.Context())
	payload := api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		ListenAddress: status.ListenAddress,
		DatabasePath:  status.DatabasePath,
		ClipsPath:     status.ClipsPath,
		LockFilePath:  status.LockFilePath,
		CacheEntries:  status.CacheEntries,
		Dependencies:  make([]api.DependencyStatus, 0, len(status.Dependencies)),
	}
	for _, dep := range status.Dependencies {
		payload.Dependencies = append(payload.Dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleCacheList(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, http.StatusNotFound, "result cache is disabled")
		return
	}
	entries, err := s.cache.List(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.CacheListResponse{
		Entries:    api.FromCacheEntries(entries),
		MaxEntries: s.cache.MaxEntries(),
	})
}

func (s *apiServer) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeError(w, r, http.StatusNotFound, "result cache is disabled")
		return
	}
	var (
		removed int64
		err     error
	)
	if raw := r.URL.Query().Get("identifier"); strings.TrimSpace(raw) != "" {
		id, normErr := fetch.NormalizeIdentifier(raw)
		if normErr != nil {
			s.writeError(w, r, http.StatusBadRequest, normErr.Error())
			return
		}
		removed, err = s.cache.Remove(r.Context(), id)
	} else {
		removed, err = s.cache.Clear(r.Context())
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("result cache entries removed", logging.Int64("removed", removed))
	s.writeJSON(w, http.StatusOK, api.CacheClearResponse{Removed: removed})
}

func (s *apiServer) handleClipList(w http.ResponseWriter, r *http.Request) {
	list, err := s.clips.List(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClipListResponse{Clips: api.FromClips(list)})
}

func (s *apiServer) handleClipGet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIdentifier(w, r)
	if !ok {
		return
	}
	clip, found, err := s.clips.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		s.writeError(w, r, http.StatusNotFound, "no clip saved for "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromClip(clip))
}

func (s *apiServer) handleClipSet(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIdentifier(w, r)
	if !ok {
		return
	}
	var req api.ClipRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, services.HTTPStatus(err), err.Error())
		return
	}
	clip, err := s.clips.Set(r.Context(), id, *req.StartTime, req.EndTime)
	if errors.Is(err, clips.ErrInvalidClip) {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("clip saved",
		logging.String(logging.FieldIdentifier, id),
		logging.Float64("start_time", clip.StartTime),
		logging.Float64("duration", clip.Duration),
	)
	s.writeJSON(w, http.StatusOK, api.FromClip(clip))
}

func (s *apiServer) handleClipDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clipIdentifier(w, r)
	if !ok {
		return
	}
	deleted, err := s.clips.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClipDeleteResponse{Deleted: deleted})
}

// clipIdentifier normalizes the {identifier} path value, writing a 400 when
// it is unusable.
func (s *apiServer) clipIdentifier(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := fetch.NormalizeIdentifier(r.PathValue("identifier"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID, _ := services.RequestIDFromContext(r.Context())
	s.writeJSON(w, status, api.ErrorResponse{Error: message, RequestID: requestID})
}
