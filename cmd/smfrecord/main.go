package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Garik-/smfrec/pkg/seq"
	"github.com/Garik-/smfrec/pkg/smf"
)

var (
	bpmFlag     = flag.Int("b", 120, "Tempo in beats per minute")
	fpsFlag     = flag.Int("f", 0, "Resolution in frames per second (SMPTE: 24, 25, 29 or 30)")
	ticksFlag   = flag.Int("t", 0, "Resolution in ticks per beat or frame (default 384, or 40 with -f)")
	timesigFlag = flag.String("i", "4:4", "Time signature nn:dd")
	timeoutFlag = flag.Int("T", 0, "Stop recording n milliseconds after the last event, 0 disables")
	portFlag    = flag.Int("p", 0, "Destination port to record")
	queueFlag   = flag.Int("q", 0, "Sequencer queue the events are stamped on")
	inFlag      = flag.String("in", "", "Event log with one JSON event per line, default stdin")
	verboseFlag = flag.Bool("v", false, "Debug logging")
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] outputfile\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *timeoutFlag < 0 {
		flag.Usage()
		os.Exit(1)
	}

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *verboseFlag {
		smf.EnableDebugLogging(logger)
		seq.EnableDebugLogging(logger)
	}

	ts, err := smf.ParseTimeSignature(*timesigFlag)
	if err != nil {
		logger.Fatal("options", zap.Error(err))
	}

	opts := smf.DefaultOptions()
	opts.BPM = *bpmFlag
	opts.Frames = *fpsFlag
	opts.Ticks = *ticksFlag
	opts.TimeSignature = ts
	opts.Port = *portFlag
	opts.Queue = *queueFlag

	in := os.Stdin
	if *inFlag != "" {
		in, err = os.Open(*inFlag)
		if err != nil {
			logger.Fatal("open events", zap.Error(err))
		}
		defer in.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config{
		options: opts,
		output:  flag.Arg(0),
		idle:    time.Duration(*timeoutFlag) * time.Millisecond,
	}

	if err := run(ctx, cfg, seq.NewJSONSource(in), logger); err != nil {
		logger.Fatal("record", zap.Error(err))
	}
}
