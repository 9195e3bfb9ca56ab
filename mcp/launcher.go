package mcp

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// DefaultAllowedLaunchers lists the executables a tool server may be started
// with unless the configuration says otherwise.
var DefaultAllowedLaunchers = []string{
	"uv", "uvx", "python", "python3", "node", "npx", "go", "docker", "codingagent",
}

// LaunchSpec describes how to start one tool server.
type LaunchSpec struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
}

// ParseLaunchCommand splits a command line such as "uv run --with mcp ls.py"
// into a LaunchSpec. The server name defaults to the last argument's base name
// without extension, or the launcher itself.
func ParseLaunchCommand(line string) (LaunchSpec, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return LaunchSpec{}, fmt.Errorf("empty tool server command")
	}

	spec := LaunchSpec{
		Command: fields[0],
		Args:    fields[1:],
	}

	name := launcherName(spec.Command)
	if len(spec.Args) > 0 {
		last := filepath.Base(spec.Args[len(spec.Args)-1])
		name = strings.TrimSuffix(last, filepath.Ext(last))
	}
	spec.Name = name

	return spec, nil
}

func launcherName(command string) string {
	base := filepath.Base(command)
	return strings.TrimSuffix(base, ".exe")
}

// ValidateLaunch rejects commands whose executable is not on the allow-list.
// Only the executable's base name is compared, so "/usr/bin/python3" matches
// "python3".
func ValidateLaunch(spec LaunchSpec, allowed []string) error {
	if strings.TrimSpace(spec.Command) == "" {
		return fmt.Errorf("tool server %q has no command", spec.Name)
	}

	name := launcherName(spec.Command)
	if !slices.Contains(allowed, name) {
		return &LaunchRejectedError{Command: spec.Command, Allowed: allowed}
	}
	return nil
}

// Launcher records what is known about one launcher executable on this host.
type Launcher struct {
	Name      string
	Installed bool
	Version   string
	Path      string
	Error     string
}

// LauncherChecker looks up launcher executables and caches the result.
type LauncherChecker struct {
	mu        sync.Mutex
	launchers map[string]*Launcher
}

func NewLauncherChecker() *LauncherChecker {
	return &LauncherChecker{
		launchers: make(map[string]*Launcher),
	}
}

var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// Check resolves the launcher on PATH and asks it for a version. A launcher
// that is missing returns an error; a launcher that does not report a version
// is still considered installed.
func (lc *LauncherChecker) Check(command string) (*Launcher, error) {
	name := launcherName(command)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if l, ok := lc.launchers[name]; ok {
		return l, l.err()
	}

	l := &Launcher{Name: name}
	lc.launchers[name] = l

	path, err := exec.LookPath(command)
	if err != nil {
		l.Error = fmt.Sprintf("%s not found", name)
		return l, l.err()
	}
	l.Path = path
	l.Installed = true

	versionArg := "--version"
	if name == "go" {
		versionArg = "version"
	}
	output, err := exec.Command(path, versionArg).Output()
	if err != nil {
		return l, nil
	}

	if matches := versionPattern.FindStringSubmatch(strings.TrimSpace(string(output))); len(matches) > 1 {
		l.Version = matches[1]
	}

	return l, nil
}

func (l *Launcher) err() error {
	if l.Installed {
		return nil
	}
	if l.Error != "" {
		return fmt.Errorf("%s", l.Error)
	}
	return fmt.Errorf("%s not found", l.Name)
}
