//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	// Duration stops the run after this much wall time (0 = run until canceled).
	Duration time.Duration
}

// RunHeadless boots the system without opening a window and waits for ctx to
// be canceled or the configured duration to pass. The HAL is returned so the
// caller can inspect it after the run.
func RunHeadless(ctx context.Context, boot func(HAL) error, hostCfg HostConfig, cfg HeadlessConfig) (HAL, error) {
	h, err := NewHost(hostCfg)
	if err != nil {
		return nil, fmt.Errorf("host hal: %w", err)
	}
	if err := boot(h); err != nil {
		return h, err
	}

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	<-ctx.Done()
	if cfg.Duration > 0 && ctx.Err() == context.DeadlineExceeded {
		return h, nil
	}
	return h, ctx.Err()
}
