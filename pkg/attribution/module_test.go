package attribution

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-attribution/pkg/config"
	"github.com/goliatone/go-attribution/pkg/device"
	"github.com/goliatone/go-attribution/pkg/secrets"
)

type recordingTransport struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (rt *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	raw, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	json.Unmarshal(raw, &decoded)
	rt.mu.Lock()
	rt.bodies = append(rt.bodies, decoded)
	rt.mu.Unlock()
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"+match_guaranteed":true}`)),
		Header:     make(http.Header),
	}, nil
}

func (rt *recordingTransport) count() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.bodies)
}

func testOptions(transport http.RoundTripper) ModuleOptions {
	return ModuleOptions{
		Config: config.Config{
			Credentials: config.CredentialsConfig{Key: "key_live_abc", Secret: "secret_live_def"},
			Open:        config.OpenConfig{LaunchDelay: 5 * time.Millisecond},
		},
		Device: &device.StaticProvider{Snapshot: device.Info{
			Model:     "iPhone14,2",
			OSName:    "iOS",
			OSVersion: [3]int{17, 0, 1},
		}},
		Client: &http.Client{Transport: transport},
	}
}

func TestNewModuleAssemblesPieces(t *testing.T) {
	module, err := NewModule(testOptions(&recordingTransport{}))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if module.Requester() == nil || module.Session() == nil || module.Commands() == nil {
		t.Fatal("expected all accessors to be populated")
	}
}

func TestNewModuleRejectsInvalidConfig(t *testing.T) {
	opts := testOptions(&recordingTransport{})
	opts.Config.Credentials = config.CredentialsConfig{}
	if _, err := NewModule(opts); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestNewModuleResolvesSecretRef(t *testing.T) {
	transport := &recordingTransport{}
	opts := testOptions(transport)
	opts.Config.Credentials = config.CredentialsConfig{
		Key:       "key_live_abc",
		SecretRef: "attribution/secret",
	}
	opts.Secrets = secrets.SimpleResolver{
		Provider: secrets.NewStaticProvider(map[string]string{
			"attribution/secret": "secret_live_resolved",
		}),
	}

	module, err := NewModule(opts)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	if _, err := module.Requester().Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	transport.mu.Lock()
	secret := transport.bodies[0]["branch_secret"]
	transport.mu.Unlock()
	if secret != "secret_live_resolved" {
		t.Fatalf("expected resolved secret in payload, got %v", secret)
	}
}

func TestNewModuleFailsWhenSecretRefUnresolvable(t *testing.T) {
	opts := testOptions(&recordingTransport{})
	opts.Config.Credentials = config.CredentialsConfig{
		Key:       "key_live_abc",
		SecretRef: "attribution/secret",
	}
	if _, err := NewModule(opts); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret without resolver, got %v", err)
	}

	opts.Secrets = secrets.SimpleResolver{Provider: secrets.NewStaticProvider(nil)}
	if _, err := NewModule(opts); !errors.Is(err, secrets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from resolver, got %v", err)
	}
}

func TestLifecycleEndToEnd(t *testing.T) {
	transport := &recordingTransport{}
	opts := testOptions(transport)

	// Buffered: the observer fires once per window and this test runs two.
	deliveries := make(chan ReferringParams, 2)
	opts.Observer = ObserverFunc(func(params ReferringParams) {
		deliveries <- params
	})

	module, err := NewModule(opts)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	cmds := module.Commands()

	// Universal Link callback beats the cold-start timer.
	if err := cmds.ContinueActivity.Execute(context.Background(), ContinueActivity{
		WebpageURL: "https://example.app.link/promo",
	}); err != nil {
		t.Fatalf("continue activity: %v", err)
	}
	if err := cmds.AppLaunched.Execute(context.Background(), AppLaunched{}); err != nil {
		t.Fatalf("app launched: %v", err)
	}

	var observed ReferringParams
	select {
	case observed = <-deliveries:
	case <-time.After(2 * time.Second):
		t.Fatal("expected observer delivery")
	}
	if observed["+match_guaranteed"] != true {
		t.Fatalf("unexpected referring params: %v", observed)
	}

	// The debounced launch trigger must coalesce with the link trigger.
	time.Sleep(30 * time.Millisecond)
	if got := transport.count(); got != 1 {
		t.Fatalf("expected one open request, got %d", got)
	}
	if transport.bodies[0]["universal_link_url"] != "https://example.app.link/promo" {
		t.Fatalf("expected universal link in payload, got %v", transport.bodies[0])
	}

	cached := module.Requester().LatestReferringParams()
	if cached["+match_guaranteed"] != true {
		t.Fatalf("expected cached referring params, got %v", cached)
	}

	// Background reset reopens the window for the next foreground.
	if err := cmds.EnteredBackground.Execute(context.Background(), EnteredBackground{}); err != nil {
		t.Fatalf("entered background: %v", err)
	}
	if err := cmds.OpenURL.Execute(context.Background(), OpenURL{URL: "app://open?link_click_id=77"}); err != nil {
		t.Fatalf("open url: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for transport.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("expected a second open request after background cycle")
		}
		time.Sleep(5 * time.Millisecond)
	}
	transport.mu.Lock()
	second := transport.bodies[1]
	transport.mu.Unlock()
	if second["link_identifier"] != "77" {
		t.Fatalf("expected link identifier in second payload, got %v", second)
	}

	// The second window notifies the observer again.
	select {
	case observed = <-deliveries:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a second observer delivery")
	}
	if observed["+match_guaranteed"] != true {
		t.Fatalf("unexpected second referring params: %v", observed)
	}
}
