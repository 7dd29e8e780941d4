package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/promptly/pkg/engine"
	"github.com/germanamz/promptly/pkg/settings"
	"github.com/germanamz/promptly/pkg/state"
	"github.com/germanamz/promptly/pkg/stream"
)

// errBusy is returned when a generation could not be started because one is
// already in flight.
var errBusy = errors.New("a generation is already running")

// runHeadless generates once from the saved prompt (or --file) and streams
// the reply to stdout. The reply is appended to the saved prompt exactly as
// the editor would do.
func runHeadless(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var opts options
	opts.register(fs)
	file := fs.String("file", "", "read the prompt from this file (- for stdin) instead of the saved one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	st := env.engine.State()
	st.Pull(opts.pageURL)

	if *file != "" {
		text, err := readPrompt(*file, os.Stdin)
		if err != nil {
			return err
		}
		st.Update(func(s *settings.Settings) { s.Prompt = text })
	}

	return generateTo(ctx, env.engine, os.Stdout)
}

// generateTo mounts a headless editor, runs one generation and writes every
// delta to w as it arrives.
func generateTo(ctx context.Context, eng *engine.Engine, w io.Writer) error {
	st := eng.State()
	st.Mount(state.NewBufferEditor(""))
	defer st.Unmount()

	g := eng.Prepare()
	if g == nil {
		return errBusy
	}

	g.Stream(ctx, func(ev stream.Event) {
		g.Apply(ev)
		if ev.Kind == stream.EventDelta {
			_, _ = io.WriteString(w, ev.Delta)
		}
	})

	if g.Deltas() > 0 {
		_, _ = io.WriteString(w, "\n")
	}

	return g.Err()
}

func readPrompt(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is a user-provided flag
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}

	return string(data), nil
}
