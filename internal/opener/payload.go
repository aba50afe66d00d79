package opener

import (
	"github.com/goliatone/go-attribution/pkg/config"
	"github.com/goliatone/go-attribution/pkg/device"
	"github.com/goliatone/go-attribution/pkg/session"
)

const hardwareIDTypeVendor = "vendor_id"

// openPayload is the wire body for the open event. Field order follows the
// attribution API docs; optional fields are omitted when unavailable.
type openPayload struct {
	ServerToServer    bool   `json:"server_to_server"`
	OS                string `json:"os"`
	IsHardwareIDReal  bool   `json:"is_hardware_id_real"`
	AdTrackingEnabled bool   `json:"ad_tracking_enabled"`
	BranchKey         string `json:"branch_key"`
	BranchSecret      string `json:"branch_secret"`
	AppVersion        string `json:"app_version,omitempty"`
	Model             string `json:"model"`
	UserAgent         string `json:"user_agent,omitempty"`
	OSVersion         string `json:"os_version"`
	HardwareID        string `json:"hardware_id,omitempty"`
	HardwareIDType    string `json:"hardware_id_type,omitempty"`
	IOSVendorID       string `json:"ios_vendor_id,omitempty"`
	UniversalLinkURL  string `json:"universal_link_url,omitempty"`
	LinkIdentifier    string `json:"link_identifier,omitempty"`
}

// buildPayload assembles the request body for one attempt. The universal link
// wins over a link click id when both were captured.
func buildPayload(creds config.CredentialsConfig, info device.Info, userAgent string, ids session.Identifiers) openPayload {
	p := openPayload{
		ServerToServer:    true,
		OS:                "iOS",
		IsHardwareIDReal:  true,
		AdTrackingEnabled: false,
		BranchKey:         creds.Key,
		BranchSecret:      creds.Secret,
		AppVersion:        info.AppVersion,
		Model:             info.Model,
		UserAgent:         userAgent,
		OSVersion:         info.OSVersionString(),
	}
	if info.VendorID != "" {
		p.HardwareID = info.VendorID
		p.HardwareIDType = hardwareIDTypeVendor
		p.IOSVendorID = info.VendorID
	}
	if ids.UniversalLink != "" {
		p.UniversalLinkURL = ids.UniversalLink
	} else if ids.LinkClickID != "" {
		p.LinkIdentifier = ids.LinkClickID
	}
	return p
}
