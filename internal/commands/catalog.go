// Package commands maps host application lifecycle notifications onto the
// open-attribution requester through go-command handlers, so transports
// (app delegates, test harnesses) stay decoupled from the requester API.
package commands

import (
	"context"
	"errors"

	"github.com/goliatone/go-attribution/pkg/interfaces/logger"
	"github.com/goliatone/go-attribution/pkg/session"
	command "github.com/goliatone/go-command"
)

// AppLaunched is the cold-start notification. The trigger fires after the
// launch debounce so racing deep-link callbacks can land first.
type AppLaunched struct{}

// ContinueActivity carries the verified-domain URL of a Universal Link open.
type ContinueActivity struct {
	WebpageURL string `json:"webpage_url"`
}

// OpenURL carries a URI-scheme launch URL, e.g. app://open?link_click_id=1.
type OpenURL struct {
	URL string `json:"url"`
}

// EnteredBackground closes the current attribution window.
type EnteredBackground struct{}

// Requester is the slice of the opener the catalog drives.
type Requester interface {
	Trigger()
	LaunchAfterDelay(ctx context.Context)
	MarkBackground()
}

// Dependencies wires the session context and requester into the catalog.
type Dependencies struct {
	Session   *session.Context
	Requester Requester
	Logger    logger.Logger
}

// Catalog exposes go-command compatible handlers for the four lifecycle
// notifications.
type Catalog struct {
	AppLaunched       command.Commander[AppLaunched]
	ContinueActivity  command.Commander[ContinueActivity]
	OpenURL           command.Commander[OpenURL]
	EnteredBackground command.Commander[EnteredBackground]
}

// NewCatalog builds the catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Session == nil {
		return nil, errors.New("commands: session context is required")
	}
	if deps.Requester == nil {
		return nil, errors.New("commands: requester is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		AppLaunched:       appLaunchedCommand{requester: deps.Requester},
		ContinueActivity:  continueActivityCommand{session: deps.Session, requester: deps.Requester, log: deps.Logger},
		OpenURL:           openURLCommand{session: deps.Session, requester: deps.Requester, log: deps.Logger},
		EnteredBackground: enteredBackgroundCommand{requester: deps.Requester},
	}, nil
}

type appLaunchedCommand struct {
	requester Requester
}

func (c appLaunchedCommand) Execute(ctx context.Context, msg AppLaunched) error {
	// The debounce outlives the notification delivery context.
	go c.requester.LaunchAfterDelay(context.WithoutCancel(ctx))
	return nil
}

type continueActivityCommand struct {
	session   *session.Context
	requester Requester
	log       logger.Logger
}

func (c continueActivityCommand) Execute(ctx context.Context, msg ContinueActivity) error {
	if !c.session.RecordUniversalLink(msg.WebpageURL) {
		c.log.Debug("continue-activity without webpage url")
		return nil
	}
	c.requester.Trigger()
	return nil
}

type openURLCommand struct {
	session   *session.Context
	requester Requester
	log       logger.Logger
}

func (c openURLCommand) Execute(ctx context.Context, msg OpenURL) error {
	if !c.session.RecordLinkClickID(msg.URL) {
		// Missing or malformed link click id is a plain open, not an error.
		c.log.Debug("open-url without link click id", logger.F("url", msg.URL))
		return nil
	}
	c.requester.Trigger()
	return nil
}

type enteredBackgroundCommand struct {
	requester Requester
}

func (c enteredBackgroundCommand) Execute(ctx context.Context, msg EnteredBackground) error {
	c.requester.MarkBackground()
	return nil
}
