package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	dir        string
	envFile    string
	pageURL    string
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (default: .promptly/config.yaml or .promptly/config.toml)")
	fs.StringVar(&o.dir, "dir", ".promptly", "path to .promptly directory")
	fs.StringVar(&o.envFile, "env", ".env", "path to .env file (ignored if missing)")
	fs.StringVar(&o.pageURL, "url", "", "share link whose state is loaded on start")
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func dispatch(args []string) error {
	// Handle subcommands before flag parsing.
	if len(args) > 0 {
		switch args[0] {
		case "init":
			return runInit(args[1:])
		case "settings":
			return runSettings(args[1:])
		case "share":
			return runShare(args[1:])
		case "run":
			return runHeadless(args[1:])
		}
	}

	fs := flag.NewFlagSet("promptly", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: promptly [flags]\n       promptly <command> [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n"+
			"  init      Create a .promptly directory with a default config\n"+
			"  settings  Edit connection settings, parameters and the API key\n"+
			"  share     Print a share link for the saved prompt\n"+
			"  run       Generate once without the editor and stream to stdout\n")
	}

	var opts options
	opts.register(fs)
	_ = fs.Parse(args)

	if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // Fd fits in int on supported platforms
		return fmt.Errorf("stdout is not a terminal; use 'promptly run' for headless generation")
	}

	return runTUI(opts)
}

func runTUI(opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	model := newAppModel(ctx, env.engine, opts.pageURL)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if m, ok := final.(appModel); ok {
		m.detach()
	}

	return err
}
