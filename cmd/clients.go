package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/pkg/emailfinder"
	"github.com/sells-group/leadgen-cli/pkg/notifier"
	"github.com/sells-group/leadgen-cli/pkg/registry"
)

// initClients builds the external API clients from config. The notifier is
// optional: missing SMS credentials return a nil notifier and the pipeline
// records not_configured on affected tasks.
func initClients() (registry.Client, emailfinder.Client, notifier.Client, error) {
	if cfg.Registry.Key == "" {
		return nil, nil, nil, eris.New("registry API key is not configured (LEADGEN_REGISTRY_KEY)")
	}
	if cfg.EmailFinder.Key == "" {
		return nil, nil, nil, eris.New("email finder API key is not configured (LEADGEN_EMAIL_FINDER_KEY)")
	}

	reg := registry.NewClient(cfg.Registry.Key,
		registry.WithBaseURL(cfg.Registry.BaseURL),
		registry.WithTimeout(time.Duration(cfg.Registry.TimeoutSecs)*time.Second),
		registry.WithRetryDelay(time.Duration(cfg.Registry.RetryDelayMs)*time.Millisecond),
	)

	emails := emailfinder.NewClient(cfg.EmailFinder.Key,
		emailfinder.WithBaseURL(cfg.EmailFinder.BaseURL),
		emailfinder.WithTimeout(time.Duration(cfg.EmailFinder.TimeoutSecs)*time.Second),
		emailfinder.WithRetryDelay(time.Duration(cfg.EmailFinder.RetryDelayMs)*time.Millisecond),
	)

	var notif notifier.Client
	if cfg.Notifier.AccountSID != "" && cfg.Notifier.AuthToken != "" {
		notif = notifier.NewClient(cfg.Notifier.AccountSID, cfg.Notifier.AuthToken, cfg.Notifier.FromNumber,
			notifier.WithBaseURL(cfg.Notifier.BaseURL))
	} else {
		zap.L().Warn("SMS credentials not set, notifications disabled")
	}

	return reg, emails, notif, nil
}
