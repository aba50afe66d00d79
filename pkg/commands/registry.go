package commands

import (
	internalcommands "github.com/goliatone/go-attribution/internal/commands"
	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
	"github.com/goliatone/go-attribution/pkg/session"
	command "github.com/goliatone/go-command"
)

// Re-export request types so consumers need not import internal packages.
type (
	AppLaunched       = internalcommands.AppLaunched
	ContinueActivity  = internalcommands.ContinueActivity
	OpenURL           = internalcommands.OpenURL
	EnteredBackground = internalcommands.EnteredBackground
	Requester         = internalcommands.Requester
)

// Registry exposes go-command compatible handlers backed by the requester.
type Registry struct {
	Catalog           *internalcommands.Catalog
	AppLaunched       command.Commander[AppLaunched]
	ContinueActivity  command.Commander[ContinueActivity]
	OpenURL           command.Commander[OpenURL]
	EnteredBackground command.Commander[EnteredBackground]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Session   *session.Context
	Requester Requester
	Logger    logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Session:   deps.Session,
		Requester: deps.Requester,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:           catalog,
		AppLaunched:       catalog.AppLaunched,
		ContinueActivity:  catalog.ContinueActivity,
		OpenURL:           catalog.OpenURL,
		EnteredBackground: catalog.EnteredBackground,
	}, nil
}
