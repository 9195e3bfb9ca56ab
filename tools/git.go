package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"codingagent/config"
	"codingagent/mcp"
)

// GitOutputLimit caps the characters returned by the git tool.
const GitOutputLimit = 25000

// SafeGitCommands are the git subcommands the git tool will run.
// A command is allowed when it equals an entry or starts with an entry
// followed by a space.
var SafeGitCommands = []string{
	"status", "log", "diff", "show", "branch", "rev-parse", "fetch", "remote",
	"tag", "describe", "ls-files", "grep", "config --get user.name", "config --get user.email",
	"cat-file", "rev-list", "for-each-ref", "merge-base",
}

type GitRequest struct {
	Command string `mapstructure:"command"`
}

func (r *GitRequest) Validate() error {
	r.Command = strings.TrimPrefix(strings.TrimSpace(r.Command), "git ")
	r.Command = strings.TrimSpace(r.Command)
	if r.Command == "" {
		return fmt.Errorf("command is required")
	}
	if !GitCommandAllowed(r.Command) {
		return fmt.Errorf("the git command '%s' is not allowed for security reasons", r.Command)
	}
	return nil
}

// unsafeGitFlags write files or start other programs, whatever the
// subcommand. "-O" is grep's pager and takes its argument attached.
var unsafeGitFlags = []string{"--output", "--open-files-in-pager", "--ext-diff", "--upload-pack", "--exec"}

// GitCommandAllowed reports whether command, given without the leading
// "git", is on the whitelist and carries none of the unsafe flags.
func GitCommandAllowed(command string) bool {
	allowed := false
	for _, safe := range SafeGitCommands {
		if command == safe || strings.HasPrefix(command, safe+" ") {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	for _, arg := range strings.Fields(command) {
		if strings.HasPrefix(arg, "-O") {
			return false
		}
		for _, flag := range unsafeGitFlags {
			if arg == flag || strings.HasPrefix(arg, flag+"=") {
				return false
			}
		}
	}
	return true
}

var gitSchema = mcp.ToolSchema{
	Name: "git",
	Description: "Runs a git command in the current repository for inspecting history and state. " +
		"Pass the command without the leading 'git', e.g. \"status\" or \"log -1\". " +
		"Only whitelisted subcommands are allowed, and flags that write files or start other programs are refused. " +
		"Arguments are split on whitespace and no shell is involved.",
	Parameters: mcp.ToolParameters{
		Required:   []string{"command"},
		Properties: map[string]string{"command": "string"},
	},
}

// Git runs the whitelisted command and returns its combined output. A
// non-zero exit is not an error; git's own message is the result.
func Git(ctx context.Context, req GitRequest) (string, error) {
	args := strings.Fields(req.Command)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[TOOLS] git %s", req.Command)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to run git: %w", err)
		}
	}

	return truncateRunes(strings.TrimSpace(string(output)), GitOutputLimit, ""), nil
}

// truncateRunes cuts s to limit characters and appends marker when it did.
func truncateRunes(s string, limit int, marker string) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + marker
}
