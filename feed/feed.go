// Package feed applies membership commands to a hash ring.
//
// Commands are applied strictly one at a time in the order the source
// delivers them. Malformed and oversized lines are logged and skipped.
package feed

import (
	"context"
	"errors"
	"io"

	"github.com/zeromicro/go-zero/core/logx"
)

// Run reads lines from src and applies them to m until src is exhausted.
// It returns nil at the end of the stream, ctx.Err() if ctx is done or the
// source error otherwise.
func Run(ctx context.Context, src Source, m Membership) error {
	logger := logx.WithContext(ctx)
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			logger.Info("feed: end of stream")
			return nil
		}
		if errors.Is(err, ErrLineTooLong) {
			logger.Errorf("feed: skipping line: %v", err)
			continue
		}
		if err != nil {
			return err
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			logger.Errorf("feed: skipping line %q: %v", line, err)
			continue
		}
		cmd.Apply(m)
		logger.Infow("feed: applied",
			logx.Field("op", cmd.Op.String()),
			logx.Field("host", cmd.Host),
		)
	}
}
