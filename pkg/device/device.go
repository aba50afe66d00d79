// Package device abstracts the host-provided collaborators the open event is
// enriched from: bundle/version metadata, the vendor-scoped hardware
// identifier, and the platform user-agent string.
package device

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Info is the metadata snapshot gathered for a single open attempt.
type Info struct {
	// Model is the hardware model identifier, e.g. "iPhone14,2".
	Model string
	// OSName names the platform, e.g. "iOS".
	OSName string
	// OSVersion holds the major/minor/patch triple.
	OSVersion [3]int
	// AppVersion is the app's short bundle version; empty when unavailable.
	AppVersion string
	// VendorID is the vendor-scoped hardware identifier; empty when the
	// host cannot provide one.
	VendorID string
}

// OSVersionString renders the version triple as "major.minor.patch".
func (i Info) OSVersionString() string {
	return fmt.Sprintf("%d.%d.%d", i.OSVersion[0], i.OSVersion[1], i.OSVersion[2])
}

// Provider supplies device metadata on demand. Implementations typically
// bridge to the host platform; StaticProvider serves tests and demos.
type Provider interface {
	Info(ctx context.Context) (Info, error)
}

// StaticProvider returns a fixed Info snapshot.
type StaticProvider struct {
	Snapshot Info
}

var _ Provider = (*StaticProvider)(nil)

func (p *StaticProvider) Info(ctx context.Context) (Info, error) {
	return p.Snapshot, nil
}

// GeneratedVendorID returns a random identifier for hosts that have no
// durable vendor id store. Callers are expected to persist and reuse it;
// a fresh id per process breaks install attribution.
func GeneratedVendorID() string {
	return uuid.NewString()
}
