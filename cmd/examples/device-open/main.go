// Command device-open wires the attribution module against a stubbed host
// and walks it through a launch cycle: a universal link racing the cold-start
// timer, one open event, a background reset, and a second window opened by a
// URI-scheme link.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/goliatone/go-attribution/adapters/zaplog"
	"github.com/goliatone/go-attribution/pkg/attribution"
	"github.com/goliatone/go-attribution/pkg/commands"
	"github.com/goliatone/go-attribution/pkg/config"
	"github.com/goliatone/go-attribution/pkg/device"
	"github.com/goliatone/go-attribution/pkg/interfaces/executor"
	"github.com/goliatone/go-attribution/pkg/secrets"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	zl, err := zaplog.NewDevelopment()
	if err != nil {
		return err
	}

	provider := secrets.NewStaticProvider(map[string]string{
		"attribution/branch_secret": envOr("BRANCH_SECRET", "secret_live_demo"),
	})

	mainLoop := executor.NewSerial()
	defer mainLoop.Close()

	module, err := attribution.NewModule(attribution.ModuleOptions{
		Config: config.Config{
			Credentials: config.CredentialsConfig{
				Key:       envOr("BRANCH_KEY", "key_live_demo"),
				SecretRef: "attribution/branch_secret",
			},
		},
		Logger: zl,
		Device: &device.StaticProvider{Snapshot: device.Info{
			Model:      "iPhone14,2",
			OSName:     "iOS",
			OSVersion:  [3]int{17, 0, 1},
			AppVersion: "1.2.3",
			VendorID:   device.GeneratedVendorID(),
		}},
		UserAgent: device.StaticUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0_1 like Mac OS X)"),
		Main:      mainLoop,
		Secrets:   secrets.SimpleResolver{Provider: provider},
		Observer: attribution.ObserverFunc(func(params attribution.ReferringParams) {
			fmt.Printf("referring params: %v\n", params)
		}),
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	cmds := module.Commands()

	if err := cmds.ContinueActivity.Execute(ctx, commands.ContinueActivity{
		WebpageURL: "https://example.app.link/summer-sale",
	}); err != nil {
		return err
	}
	if err := cmds.AppLaunched.Execute(ctx, commands.AppLaunched{}); err != nil {
		return err
	}

	time.Sleep(time.Second)

	if err := cmds.EnteredBackground.Execute(ctx, commands.EnteredBackground{}); err != nil {
		return err
	}
	if err := cmds.OpenURL.Execute(ctx, commands.OpenURL{
		URL: "attributiondemo://open?link_click_id=348527481794276288",
	}); err != nil {
		return err
	}

	time.Sleep(time.Second)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
