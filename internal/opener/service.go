// Package opener coalesces the launch signals racing to report the session
// open event and performs the attribution call at most once per foreground
// window.
package opener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-attribution/pkg/config"
	"github.com/goliatone/go-attribution/pkg/device"
	"github.com/goliatone/go-attribution/pkg/interfaces/executor"
	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
	"github.com/goliatone/go-attribution/pkg/secrets"
	"github.com/goliatone/go-attribution/pkg/session"
)

// ReferringParams is the parsed open response, delivered verbatim to the
// observer and cached for later synchronous inspection.
type ReferringParams map[string]any

// Observer receives the parsed open response on the main executor. At most
// one observer is registered per service.
type Observer interface {
	OnOpenResponse(params ReferringParams)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(params ReferringParams)

func (f ObserverFunc) OnOpenResponse(params ReferringParams) { f(params) }

// Attempt error kinds. Trigger swallows these after logging; Open returns
// them so callers can layer retry policies on top (see pkg/retry).
var (
	// ErrGateClosed reports a trigger that lost the once-per-window race.
	ErrGateClosed = errors.New("opener: window already open")
	// ErrEncode reports a failure gathering metadata or serializing the body.
	ErrEncode = errors.New("opener: encode payload")
	// ErrTransport reports a transport-level failure.
	ErrTransport = errors.New("opener: transport")
	// ErrStatus reports a non-2xx response.
	ErrStatus = errors.New("opener: unexpected status")
	// ErrDecode reports an undecodable response body.
	ErrDecode = errors.New("opener: decode response")
)

// StatusError carries the offending HTTP status; errors.Is matches ErrStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("opener: unexpected status %d", e.Code)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Window states. Pending covers user-agent resolution through the POST;
// Completed is terminal until the next background reset.
const (
	StateIdle = iota
	StatePending
	StateCompleted
)

// Dependencies wires the collaborators the requester needs.
type Dependencies struct {
	Session     *session.Context
	Device      device.Provider
	UserAgent   device.UserAgentResolver
	Main        executor.Executor
	Client      *http.Client
	Logger      logger.Logger
	Config      config.OpenConfig
	Credentials config.CredentialsConfig
	Observer    Observer
}

var (
	ErrMissingSession     = errors.New("opener: session context is required")
	ErrMissingDevice      = errors.New("opener: device provider is required")
	ErrMissingCredentials = errors.New("opener: credentials are required")
)

// Service is the open-attribution requester.
type Service struct {
	sess      *session.Context
	device    device.Provider
	userAgent device.UserAgentResolver
	main      executor.Executor
	client    *http.Client
	logger    logger.Logger
	cfg       config.OpenConfig
	creds     config.CredentialsConfig
	observer  Observer

	mu     sync.Mutex
	state  int
	latest ReferringParams
}

// New validates dependencies and builds the requester.
func New(deps Dependencies) (*Service, error) {
	if deps.Session == nil {
		return nil, ErrMissingSession
	}
	if deps.Device == nil {
		return nil, ErrMissingDevice
	}
	if deps.Credentials.Key == "" || deps.Credentials.Secret == "" {
		return nil, ErrMissingCredentials
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Main == nil {
		deps.Main = executor.Inline{}
	}
	defaults := config.Defaults().Open
	if deps.Config.Endpoint == "" {
		deps.Config.Endpoint = defaults.Endpoint
	}
	if deps.Config.LaunchDelay == 0 {
		deps.Config.LaunchDelay = defaults.LaunchDelay
	}
	if deps.Config.RequestTimeout == 0 {
		deps.Config.RequestTimeout = defaults.RequestTimeout
	}
	if deps.Config.UserAgentTimeout == 0 {
		deps.Config.UserAgentTimeout = defaults.UserAgentTimeout
	}
	if deps.Client == nil {
		deps.Client = &http.Client{Timeout: deps.Config.RequestTimeout}
	}
	return &Service{
		sess:      deps.Session,
		device:    deps.Device,
		userAgent: deps.UserAgent,
		main:      deps.Main,
		client:    deps.Client,
		logger: deps.Logger.With(
			logger.F("component", "opener"),
			logger.F("branch_key", secrets.Mask(deps.Credentials.Key)),
		),
		cfg:      deps.Config,
		creds:    deps.Credentials,
		observer: deps.Observer,
	}, nil
}

// State reports the current window state.
func (s *Service) State() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LatestReferringParams returns the cached response of the last successful
// open call, or nil when none succeeded yet.
func (s *Service) LatestReferringParams() ReferringParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return nil
	}
	out := make(ReferringParams, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}

// MarkBackground closes the window so the next trigger starts a new one.
// A Pending window keeps its state; its in-flight request is never cancelled.
func (s *Service) MarkBackground() {
	s.sess.MarkBackground()
	s.mu.Lock()
	if s.state == StateCompleted {
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.logger.Debug("window reset on background")
}

// Trigger starts an attempt unless one already ran this window. Callable any
// number of times from any launch path; failures are logged and dropped, so
// a failed window stays closed until the next background cycle.
func (s *Service) Trigger() {
	go func() {
		if _, err := s.Open(context.Background()); err != nil && !errors.Is(err, ErrGateClosed) {
			s.logger.Error("open event dropped", logger.F("error", err))
		}
	}()
}

// LaunchAfterDelay waits out the launch debounce before triggering, giving a
// deep-link callback racing the cold start a chance to record its identifier
// first. Returns early when ctx is cancelled.
func (s *Service) LaunchAfterDelay(ctx context.Context) {
	timer := time.NewTimer(s.cfg.LaunchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.Trigger()
}

// Open performs one gated attempt synchronously and returns the parsed
// response. This is the reliability hook: unlike Trigger it surfaces the
// typed error so callers can retry, but it never retries by itself and it
// never reopens the window on failure.
func (s *Service) Open(ctx context.Context) (ReferringParams, error) {
	windowID, ok := s.sess.TryOpen()
	if !ok {
		return nil, ErrGateClosed
	}
	s.setState(StatePending)

	log := s.logger.With(logger.F("window_id", windowID))
	log.Debug("window opened")

	params, err := s.attempt(ctx, log)

	s.setState(StateCompleted)
	if err != nil {
		return nil, err
	}

	// Cache a private copy; the observer receives the original and may
	// mutate it freely.
	cached := make(ReferringParams, len(params))
	for k, v := range params {
		cached[k] = v
	}
	s.mu.Lock()
	s.latest = cached
	s.mu.Unlock()

	if s.observer != nil {
		s.main.Do(func() {
			s.observer.OnOpenResponse(params)
		})
	}
	return params, nil
}

func (s *Service) attempt(ctx context.Context, log logger.Logger) (ReferringParams, error) {
	// UI-affinity hop: the resolver depends on a web-rendering component.
	// Resolution failure or timeout drops the user_agent field, nothing more.
	ua := device.ResolveUserAgent(ctx, s.main, s.userAgent, s.cfg.UserAgentTimeout)
	if ua == "" {
		log.Debug("user agent unresolved, omitting field")
	}

	info, err := s.device.Info(ctx)
	if err != nil {
		log.Error("device metadata unavailable", logger.F("error", err))
		return nil, fmt.Errorf("%w: device info: %v", ErrEncode, err)
	}

	// Snapshot and clear immediately before the network call so an
	// overlapping window cannot reuse the identifiers.
	ids := s.sess.TakeIdentifiers()

	body, err := json.Marshal(buildPayload(s.creds, info, ua, ids))
	if err != nil {
		log.Error("payload serialization failed", logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Error("request build failed", logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error("open request failed", logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		log.Error("open request rejected", logger.F("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var params ReferringParams
	if err := json.NewDecoder(resp.Body).Decode(&params); err != nil {
		log.Error("open response undecodable", logger.F("error", err))
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	log.Info("open event reported",
		logger.F("status", resp.StatusCode),
		logger.F("has_link", !ids.Empty()),
	)
	return params, nil
}

func (s *Service) setState(state int) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
