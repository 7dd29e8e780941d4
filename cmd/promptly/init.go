package main

import (
	"flag"
	"fmt"

	"github.com/germanamz/promptly/pkg/promptdir"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dir := fs.String("dir", ".promptly", "path to .promptly directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := promptdir.New(*dir)

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}

	wrote, err := promptdir.WriteConfig(d, content)
	if err != nil {
		return err
	}

	if !wrote {
		fmt.Printf("Config already exists at %s\n", d.FindConfig())
		return nil
	}

	fmt.Printf("Initialized %s\n", d.ConfigPath())
	fmt.Println("Set OPENAI_API_KEY (or run 'promptly settings') before generating.")

	return nil
}
