package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Garik-/smfrec/pkg/seq"
	"github.com/Garik-/smfrec/pkg/smf"
)

type config struct {
	options smf.Options
	output  string // "-" writes to stdout
	idle    time.Duration
}

// stdout hides the Seek method of os.Stdout, which fails on pipes.
type stdout struct {
	io.Writer
}

func run(ctx context.Context, cfg config, src seq.Source, logger *zap.Logger) error {
	rec, err := smf.NewRecorder(cfg.options)
	if err != nil {
		return err
	}

	if cfg.output == "-" {
		return record(ctx, cfg, rec, src, stdout{os.Stdout}, logger)
	}

	f, err := os.Create(cfg.output)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	err = closeOutput(f, record(ctx, cfg, rec, src, f, logger))
	if err != nil {
		// a file without a valid length is useless
		os.Remove(cfg.output)
	}
	return err
}

// closeOutput closes c and returns err, or the close error if err is nil.
func closeOutput(c io.Closer, err error) error {
	if cerr := c.Close(); cerr != nil && err == nil {
		return errors.Wrap(cerr, "close output")
	}
	return err
}

func record(ctx context.Context, cfg config, rec *smf.Recorder, src seq.Source, out io.Writer, logger *zap.Logger) error {
	w := smf.NewWriter(out)
	if err := w.WriteHeader(rec.Options().Division()); err != nil {
		return err
	}

	logger.Info("recording", zap.String("output", cfg.output), zap.Bool("seekable", w.Seekable()))

	n, err := seq.Pump(ctx, src, rec.Record, cfg.idle)
	if err != nil {
		return err
	}

	finalTick := src.Tick()
	if err := rec.WriteTo(w, finalTick); err != nil {
		return err
	}

	if f, ok := out.(*os.File); ok {
		if err := f.Sync(); err != nil {
			return errors.Wrap(err, "sync output")
		}
	}

	logger.Info("done",
		zap.Int("received", n),
		zap.Int("recorded", rec.Events()),
		zap.Uint32("tick", finalTick),
		zap.Int64("bytes", w.Written()),
	)
	return nil
}
