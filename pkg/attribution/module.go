// Package attribution assembles the open-attribution module: session
// context, requester, and lifecycle command handlers, configured from a
// single options struct. Hosts import this package and wire the four
// lifecycle notifications plus an optional observer.
package attribution

import (
	"errors"
	"net/http"

	internalcommands "github.com/goliatone/go-attribution/internal/commands"
	"github.com/goliatone/go-attribution/internal/opener"
	"github.com/goliatone/go-attribution/pkg/commands"
	"github.com/goliatone/go-attribution/pkg/config"
	"github.com/goliatone/go-attribution/pkg/device"
	"github.com/goliatone/go-attribution/pkg/interfaces/executor"
	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
	"github.com/goliatone/go-attribution/pkg/secrets"
	"github.com/goliatone/go-attribution/pkg/session"
)

// Re-export the requester surface so hosts import one package.
type (
	ReferringParams = opener.ReferringParams
	Observer        = opener.Observer
	ObserverFunc    = opener.ObserverFunc
	Requester       = opener.Service
)

// Re-export the lifecycle notification types alongside the requester surface.
type (
	AppLaunched       = commands.AppLaunched
	ContinueActivity  = commands.ContinueActivity
	OpenURL           = commands.OpenURL
	EnteredBackground = commands.EnteredBackground
)

// Attempt error kinds, re-exported for callers layering retry policies.
var (
	ErrGateClosed = opener.ErrGateClosed
	ErrEncode     = opener.ErrEncode
	ErrTransport  = opener.ErrTransport
	ErrStatus     = opener.ErrStatus
	ErrDecode     = opener.ErrDecode
)

// ModuleOptions configure the attribution module facade.
type ModuleOptions struct {
	Config    config.Config
	Logger    logger.Logger
	Device    device.Provider
	UserAgent device.UserAgentResolver
	// Main is the host's UI-affinity executor; user-agent resolution and
	// observer delivery run on it. Defaults to executor.Inline.
	Main     executor.Executor
	Client   *http.Client
	Observer Observer
	// Secrets resolves Config.Credentials.SecretRef when the secret is not
	// supplied inline.
	Secrets secrets.Resolver
}

// Module bundles the assembled pieces and exposes high-level accessors.
type Module struct {
	sess      *session.Context
	requester *opener.Service
	registry  *commands.Registry
}

// ErrMissingSecret reports credentials whose secret could not be resolved.
var ErrMissingSecret = errors.New("attribution: branch secret unresolved")

// NewModule validates options, resolves credentials, and assembles the
// session, requester, and command registry.
func NewModule(opts ModuleOptions) (*Module, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	creds, err := resolveCredentials(cfg.Credentials, opts.Secrets)
	if err != nil {
		return nil, err
	}

	sess := session.NewContext()
	requester, err := opener.New(opener.Dependencies{
		Session:     sess,
		Device:      opts.Device,
		UserAgent:   opts.UserAgent,
		Main:        opts.Main,
		Client:      opts.Client,
		Logger:      opts.Logger,
		Config:      cfg.Open,
		Credentials: creds,
		Observer:    opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	registry, err := commands.New(commands.Dependencies{
		Session:   sess,
		Requester: requester,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Module{sess: sess, requester: requester, registry: registry}, nil
}

func resolveCredentials(creds config.CredentialsConfig, resolver secrets.Resolver) (config.CredentialsConfig, error) {
	if creds.Secret != "" || creds.SecretRef == "" {
		return creds, nil
	}
	if resolver == nil {
		return creds, ErrMissingSecret
	}
	ref := secrets.Ref(creds.SecretRef)
	values, err := resolver.Resolve(ref)
	if err != nil {
		return creds, err
	}
	val, ok := values[ref]
	if !ok || len(val.Data) == 0 {
		return creds, ErrMissingSecret
	}
	creds.Secret = val.String()
	return creds, nil
}

// Requester returns the open-attribution requester.
func (m *Module) Requester() *Requester {
	if m == nil {
		return nil
	}
	return m.requester
}

// Session returns the launch context shared by the lifecycle handlers.
func (m *Module) Session() *session.Context {
	if m == nil {
		return nil
	}
	return m.sess
}

// Commands returns the lifecycle command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Ensure the requester still satisfies the command catalog contract.
var _ internalcommands.Requester = (*opener.Service)(nil)
