// Package session holds the transient per-process state behind open
// attribution: the identifiers captured from whichever launch path fired and
// the once-per-window gate that de-duplicates racing triggers.
package session

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// LinkClickParam is the query parameter carrying the link click id on
// URI-scheme launches, e.g. app://open?link_click_id=123.
const LinkClickParam = "link_click_id"

// Identifiers is the snapshot consumed by a single open attempt. At most one
// of the two fields is used; a universal link wins over a link click id.
type Identifiers struct {
	UniversalLink string
	LinkClickID   string
}

// Empty reports whether neither identifier is set.
func (i Identifiers) Empty() bool {
	return i.UniversalLink == "" && i.LinkClickID == ""
}

// Context is the one-per-process launch context. All fields are guarded by a
// single mutex so identifier writes from concurrent launch callbacks cannot
// interleave with a payload snapshot. It survives background/foreground
// cycles; only the gate resets.
type Context struct {
	mu            sync.Mutex
	linkClickID   string
	universalLink string
	openTriggered bool
}

// NewContext returns an empty launch context with the gate closed.
func NewContext() *Context {
	return &Context{}
}

// RecordUniversalLink stores the verified-domain URL delivered by the host's
// continue-activity callback, overwriting any prior value.
func (c *Context) RecordUniversalLink(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	c.mu.Lock()
	c.universalLink = raw
	c.mu.Unlock()
	return true
}

// RecordLinkClickID extracts the link click id from a URI-scheme launch URL
// and stores it, overwriting any prior value. Returns false when the URL does
// not parse or carries no id; the caller treats that as a no-op launch.
func (c *Context) RecordLinkClickID(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	id := u.Query().Get(LinkClickParam)
	if id == "" {
		return false
	}
	c.mu.Lock()
	c.linkClickID = id
	c.mu.Unlock()
	return true
}

// TryOpen attempts to open the gate. Only the first caller per window
// succeeds and receives a window id for log correlation; every later caller
// gets ok=false until the next MarkBackground.
func (c *Context) TryOpen() (windowID uuid.UUID, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openTriggered {
		return uuid.Nil, false
	}
	c.openTriggered = true
	return uuid.New(), true
}

// MarkBackground closes the current window so the next trigger can open a new
// one. Stored identifiers are kept; a link that arrived too late for this
// window is reported with the next one instead of being dropped.
func (c *Context) MarkBackground() {
	c.mu.Lock()
	c.openTriggered = false
	c.mu.Unlock()
}

// TakeIdentifiers snapshots both identifier slots and clears them, in one
// critical section. Called immediately before the network call is issued so
// an overlapping window cannot reuse them.
func (c *Context) TakeIdentifiers() Identifiers {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := Identifiers{
		UniversalLink: c.universalLink,
		LinkClickID:   c.linkClickID,
	}
	c.universalLink = ""
	c.linkClickID = ""
	return ids
}

// Peek returns the current identifiers without clearing them. Diagnostic use
// only.
func (c *Context) Peek() Identifiers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Identifiers{
		UniversalLink: c.universalLink,
		LinkClickID:   c.linkClickID,
	}
}
