// Package promptdir encapsulates all path knowledge for the .promptly/
// project directory: configuration, the persisted state store and the log
// file.
package promptdir

import (
	"os"
	"path/filepath"
)

// DefaultName is the directory name looked up in the working directory.
const DefaultName = ".promptly"

// Dir is a value object that resolves paths within a .promptly/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create the
// directory layout.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .promptly/ directory.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the YAML config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// TOMLConfigPath returns the path to the alternative TOML config file.
func (d Dir) TOMLConfigPath() string { return filepath.Join(d.root, "config.toml") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// SQLitePath returns the path to the SQLite state store inside local/.
func (d Dir) SQLitePath() string { return filepath.Join(d.root, "local", "state.db") }

// JSONStatePath returns the path to the JSON state store inside local/.
func (d Dir) JSONStatePath() string { return filepath.Join(d.root, "local", "state.json") }

// LogPath returns the path to the log file inside local/.
func (d Dir) LogPath() string { return filepath.Join(d.root, "local", "promptly.log") }

// GitignorePath returns the path to the .gitignore file inside .promptly/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

// FindConfig returns the first existing config file, preferring YAML, or ""
// when there is none.
func (d Dir) FindConfig() string {
	for _, p := range []string{d.ConfigPath(), d.TOMLConfigPath()} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}

	return ""
}

// Exists reports whether the .promptly/ root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
