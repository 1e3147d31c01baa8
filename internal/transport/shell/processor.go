// Package shell runs the backup product's retention rules as an external command.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoCommand is returned when no retention command is configured.
var ErrNoCommand = errors.New("retention command is not configured")

// Processor runs a command and then waits for the index to settle.
type Processor struct {
	argv   []string
	settle time.Duration
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewProcessor creates a Processor for argv, e.g. ["ssh", "node", "rtn-process"].
func NewProcessor(argv []string, settle time.Duration, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{argv: argv, settle: settle, logger: logger, sleep: sleepCtx}
}

// ProcessRetention runs the command. A non-zero exit is an error carrying the
// trimmed combined output.
func (p *Processor) ProcessRetention(ctx context.Context) error {
	if len(p.argv) == 0 {
		return ErrNoCommand
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...) //nolint:gosec // operator supplied
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	p.logger.Info("running retention command", zap.Strings("argv", p.argv))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", p.argv[0], err, strings.TrimSpace(out.String()))
	}
	p.logger.Info("retention command finished",
		zap.Duration("duration", time.Since(start)),
		zap.String("output", strings.TrimSpace(out.String())),
	)

	if p.settle > 0 {
		p.logger.Debug("waiting for index to settle", zap.Duration("settle", p.settle))
		if err := p.sleep(ctx, p.settle); err != nil {
			return fmt.Errorf("settle: %w", err)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
