package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
	"github.com/abdul-hamid-achik/reqspec/packages/core/suite"
	"github.com/abdul-hamid-achik/reqspec/packages/http"
)

const (
	defaultWaitTimeout  = 30 * time.Second
	defaultWaitInterval = 500 * time.Millisecond
)

// waitForService polls a URL until it returns the expected status code or times out
func (r *Runner) waitForService(ctx context.Context, cfg *suite.WaitFor, resolver *env.Resolver) error {
	if cfg == nil {
		return nil
	}

	url := resolver.Resolve(cfg.URL)
	expectedStatus := cfg.Status
	if expectedStatus == 0 {
		expectedStatus = 200
	}
	timeout := defaultWaitTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Millisecond
	}
	interval := defaultWaitInterval
	if cfg.Interval > 0 {
		interval = time.Duration(cfg.Interval) * time.Millisecond
	}

	r.logger.Info().
		Str("url", url).
		Int("status", expectedStatus).
		Dur("timeout", timeout).
		Msg("waiting for service")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	var lastStatus int
	for {
		resp, err := r.client.Get(ctx, http.RequestSpec{}, url)
		if err != nil {
			lastErr = err
		} else {
			lastStatus = resp.StatusCode
			if resp.StatusCode == expectedStatus {
				r.logger.Debug().Str("url", url).Msg("service ready")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastErr != nil && lastStatus == 0 {
				return fmt.Errorf("service %s not ready after %v: %w", url, timeout, lastErr)
			}
			return fmt.Errorf("service %s not ready after %v: got status %d, expected %d",
				url, timeout, lastStatus, expectedStatus)
		case <-time.After(interval):
		}
	}
}
