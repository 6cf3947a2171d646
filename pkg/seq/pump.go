package seq

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Garik-/smfrec/pkg/smf"
)

var ErrInvalidTimeout = errors.New("timeout must be 0 (disabled) or positive")

type result struct {
	ev  smf.Event
	err error
}

func isBadEvent(err error) bool {
	return errors.Cause(err) == ErrBadEvent
}

// readWorker pulls events from src until it fails or ctx is done.
func readWorker(ctx context.Context, src Source) <-chan result {
	out := make(chan result)

	go func() {
		defer close(out)
		for {
			ev, err := src.Next(ctx)
			select {
			case out <- result{ev: ev, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !isBadEvent(err) {
				return
			}
		}
	}()

	return out
}

// Pump feeds events from src to record until src is exhausted or ctx is
// cancelled. With idle > 0 it also stops once idle has passed without a
// new event, counting only from the first event. It returns the number of
// events passed to record. Cancellation is a normal stop, not an error.
//
// Sources that block without watching ctx keep their reader goroutine
// alive until Next returns.
func Pump(ctx context.Context, src Source, record func(smf.Event), idle time.Duration) (int, error) {
	log := pumpLog.Named("Pump")

	if idle < 0 {
		return 0, errors.Wrapf(ErrInvalidTimeout, "%v", idle)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := readWorker(ctx, src)

	var timer *time.Timer
	var timeout <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	n := 0
	for {
		select {
		case <-ctx.Done():
			log.Debug("context done", zap.Int("events", n))
			return n, nil

		case <-timeout:
			log.Debug("idle timeout", zap.Int("events", n), zap.Duration("idle", idle))
			return n, nil

		case res, ok := <-results:
			if !ok {
				return n, nil
			}
			if res.err != nil {
				if isBadEvent(res.err) {
					log.Warn("skip", zap.Error(res.err))
					continue
				}
				if res.err == io.EOF || errors.Cause(res.err) == context.Canceled {
					log.Debug("end of events", zap.Int("events", n))
					return n, nil
				}
				return n, res.err
			}

			record(res.ev)
			n++

			if idle > 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(idle)
				timeout = timer.C
			}
		}
	}
}
