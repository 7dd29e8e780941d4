package promptdir

import (
	"fmt"
	"os"
)

const gitignoreContent = "local/\n"

// EnsureStructure creates the root, the local/ directory and the .gitignore
// file if they are missing. It is safe to call multiple times.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.LocalDir(), 0o750); err != nil {
		return fmt.Errorf("promptdir: create local dir: %w", err)
	}

	if err := ensureGitignore(d); err != nil {
		return fmt.Errorf("promptdir: gitignore: %w", err)
	}

	return nil
}

// WriteConfig writes content to the YAML config path unless a config file
// already exists. It reports whether it wrote the file.
func WriteConfig(d Dir, content []byte) (bool, error) {
	if d.FindConfig() != "" {
		return false, nil
	}

	if err := EnsureStructure(d); err != nil {
		return false, err
	}

	if err := os.WriteFile(d.ConfigPath(), content, 0o600); err != nil {
		return false, fmt.Errorf("promptdir: write config: %w", err)
	}

	return true, nil
}

// ensureGitignore creates the .gitignore file if it does not exist.
func ensureGitignore(d Dir) error {
	path := d.GitignorePath()

	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}

	return os.WriteFile(path, []byte(gitignoreContent), 0o600)
}
