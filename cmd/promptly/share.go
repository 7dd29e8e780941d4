package main

import (
	"flag"
	"fmt"
	"os"
)

func runShare(args []string) error {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	var opts options
	opts.register(fs)
	copyLink := fs.Bool("copy", false, "also copy the link to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.close()

	env.engine.State().Pull(opts.pageURL)

	link, err := env.engine.ShareURL()
	if err != nil {
		return err
	}

	fmt.Println(link)

	if *copyLink {
		if err := writeClipboard(link); err != nil {
			fmt.Fprintf(os.Stderr, "warning: clipboard unavailable: %v\n", err)
		}
	}

	return nil
}
