package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"codingagent/config"
	"codingagent/mcp"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobLimit caps the number of paths returned by Glob.
const GlobLimit = 10000

type GlobRequest struct {
	RootDirectory string `mapstructure:"root_directory"`
	Pattern       string `mapstructure:"pattern"`
}

func (r *GlobRequest) Validate() error {
	if r.RootDirectory == "" {
		return fmt.Errorf("root_directory is required")
	}
	if !filepath.IsAbs(r.RootDirectory) {
		return fmt.Errorf("root_directory must be absolute: %s", r.RootDirectory)
	}
	if r.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if !doublestar.ValidatePattern(r.Pattern) {
		return fmt.Errorf("invalid pattern: %s", r.Pattern)
	}
	return nil
}

var globSchema = mcp.ToolSchema{
	Name: "glob",
	Description: "Fast file pattern matching that works with any codebase size. " +
		"Searches recursively from root_directory and supports patterns like **/*.go. " +
		"Returns matching file paths sorted by modification time, newest first. " +
		"Paths ignored by the root's .gitignore are skipped.",
	Parameters: mcp.ToolParameters{
		Required:   []string{"root_directory", "pattern"},
		Properties: map[string]string{"root_directory": "string", "pattern": "string"},
	},
}

type globMatch struct {
	path  string
	mtime int64
}

// Glob returns a JSON array of paths under req.RootDirectory matching
// req.Pattern, relative to the root.
func Glob(ctx context.Context, req GlobRequest) (string, error) {
	ignore, err := loadGitignore(req.RootDirectory)
	if err != nil {
		return "", fmt.Errorf("failed to read .gitignore: %w", err)
	}

	fsys := os.DirFS(req.RootDirectory)
	var matches []globMatch
	err = doublestar.GlobWalk(fsys, req.Pattern, func(path string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ignore.Match(path, d.IsDir()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			// removed while walking
			return nil
		}
		matches = append(matches, globMatch{path: path, mtime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("glob failed: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].mtime > matches[j].mtime
	})
	if len(matches) > GlobLimit {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[TOOLS] glob %q matched %d paths, keeping %d", req.Pattern, len(matches), GlobLimit)
		}
		matches = matches[:GlobLimit]
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.path
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
