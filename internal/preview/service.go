package preview

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"chorus/internal/analysis"
	"chorus/internal/api"
	"chorus/internal/config"
	"chorus/internal/fetch"
	"chorus/internal/logging"
	"chorus/internal/media/waveform"
	"chorus/internal/resultcache"
	"chorus/internal/services"
)

// Fetcher produces a local audio path for an identifier.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (string, error)
}

// SourceOpener turns a local path into a lazily decoded waveform source.
type SourceOpener interface {
	Source(path string) analysis.Source
}

// Analyzer computes a start offset from a waveform source.
type Analyzer interface {
	Analyze(ctx context.Context, src analysis.Source, requested float64) analysis.Result
}

// Cache memoizes results. A nil Cache disables memoization.
type Cache interface {
	Get(ctx context.Context, key resultcache.Key) (resultcache.Entry, bool, error)
	Put(ctx context.Context, entry resultcache.Entry) error
}

// Options wires a Service.
type Options struct {
	Fetcher         Fetcher
	Sources         SourceOpener
	Analyzer        Analyzer
	Cache           Cache
	DefaultDuration float64
}

// Service handles analysis requests.
type Service struct {
	opts   Options
	group  singleflight.Group
	logger *slog.Logger
}

// NewService constructs a Service from explicit collaborators.
func NewService(opts Options, logger *slog.Logger) *Service {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = config.Default().Analysis.DefaultDuration
	}
	return &Service{opts: opts, logger: logging.NewComponentLogger(logger, "preview")}
}

// NewFromConfig wires the yt-dlp fetcher, the waveform loader and the
// analyzer from cfg. cache may be nil.
func NewFromConfig(cfg *config.Config, cache Cache, logger *slog.Logger) *Service {
	return NewService(Options{
		Fetcher:         fetch.New(fetch.OptionsFromConfig(cfg), logger),
		Sources:         waveform.NewLoader(cfg.Analysis.SampleRate, cfg.Analysis.FFmpegBinary, logger),
		Analyzer:        analysis.NewAnalyzer(logger),
		Cache:           cache,
		DefaultDuration: cfg.Analysis.DefaultDuration,
	}, logger)
}

// Normalize applies the default duration, validates the request and
// normalizes the identifier. Errors are marked services.ErrValidation.
func (s *Service) Normalize(req api.Request) (api.Request, error) {
	req = req.WithDefaults(s.opts.DefaultDuration)
	if err := req.Validate(); err != nil {
		return req, err
	}
	id, err := fetch.NormalizeIdentifier(req.Identifier)
	if err != nil {
		return req, services.Wrap(services.ErrValidation, "preview", "normalize identifier", "", err)
	}
	req.Identifier = id
	return req, nil
}

// Analyze answers req. It never returns an error: failures to obtain audio
// are reported through Response.Status.
func (s *Service) Analyze(ctx context.Context, req api.Request) api.Response {
	req, err := s.Normalize(req)
	if err != nil {
		return errorResponse(req, err)
	}
	ctx = services.WithIdentifier(ctx, req.Identifier)
	logger := logging.WithContext(ctx, s.logger)
	key := resultcache.Key{Identifier: req.Identifier, RequestedDuration: req.RequestedDuration}

	if resp, ok := s.lookup(ctx, key); ok {
		logger.Debug("result cache hit", logging.Float64("requested_duration", key.RequestedDuration))
		return resp
	}

	flightKey := req.Identifier + "|" + strconv.FormatFloat(req.RequestedDuration, 'g', -1, 64)
	ch := s.group.DoChan(flightKey, func() (any, error) {
		return s.compute(context.WithoutCancel(ctx), key), nil
	})
	select {
	case <-ctx.Done():
		return errorResponse(req, ctx.Err())
	case res := <-ch:
		return res.Val.(api.Response)
	}
}

func (s *Service) compute(ctx context.Context, key resultcache.Key) api.Response {
	logger := logging.WithContext(ctx, s.logger)
	req := api.Request{Identifier: key.Identifier, RequestedDuration: key.RequestedDuration}

	// A flight that finished just before this one may already have stored the answer.
	if resp, ok := s.lookup(ctx, key); ok {
		return resp
	}

	started := time.Now()
	path, err := s.opts.Fetcher.Fetch(ctx, key.Identifier)
	if err != nil {
		logging.WarnWithContext(logger, "audio unavailable", "fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the identifier and that yt-dlp can reach the source"),
			logging.String(logging.FieldImpact, "request answered with status error"),
		)
		return errorResponse(req, err)
	}

	result := s.opts.Analyzer.Analyze(ctx, s.opts.Sources.Source(path), key.RequestedDuration)
	resp := api.Response{
		Identifier:        key.Identifier,
		StartTime:         result.StartTime,
		RequestedDuration: key.RequestedDuration,
		Status:            api.StatusSuccess,
		Outcome:           string(result.Outcome),
		Reason:            result.Reason,
	}
	s.store(ctx, key, resp)
	logger.Info("preview offset ready",
		logging.Float64("start_time", resp.StartTime),
		logging.String("outcome", resp.Outcome),
		logging.Duration("elapsed", time.Since(started)),
	)
	return resp
}

func (s *Service) lookup(ctx context.Context, key resultcache.Key) (api.Response, bool) {
	if s.opts.Cache == nil {
		return api.Response{}, false
	}
	entry, ok, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "result cache read failed", "cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "result recomputed"),
			logging.String(logging.FieldErrorHint, "check the state_dir database"),
		)
		return api.Response{}, false
	}
	if !ok {
		return api.Response{}, false
	}
	return api.Response{
		Identifier:        entry.Identifier,
		StartTime:         entry.StartTime,
		RequestedDuration: entry.RequestedDuration,
		Status:            api.StatusSuccess,
		Outcome:           entry.Outcome,
		Reason:            entry.Reason,
		Cached:            true,
	}, true
}

func (s *Service) store(ctx context.Context, key resultcache.Key, resp api.Response) {
	if s.opts.Cache == nil {
		return
	}
	err := s.opts.Cache.Put(ctx, resultcache.Entry{
		Key:       key,
		StartTime: resp.StartTime,
		Outcome:   resp.Outcome,
		Reason:    resp.Reason,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "result cache write failed", "cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "result will be recomputed on the next request"),
			logging.String(logging.FieldErrorHint, "check the state_dir database"),
		)
	}
}

func errorResponse(req api.Request, err error) api.Response {
	resp := api.Response{
		Identifier:        req.Identifier,
		StartTime:         analysis.FallbackStart,
		RequestedDuration: req.RequestedDuration,
		Status:            api.StatusError,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
