package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"
)

type LaunchersConfig struct {
	Allowed []string `toml:"allowed"`
}

type TimeoutsConfig struct {
	Handshake  string `toml:"handshake"`
	Call       string `toml:"call"`
	CloseGrace string `toml:"close_grace"`
}

// ToolServerConfig describes one tool server started as a child process.
type ToolServerConfig struct {
	Name    string            `toml:"name"`
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env,omitempty"`
}

type Config struct {
	InferenceURL    string             `toml:"inference_url"`
	Provider        string             `toml:"provider"`
	Model           string             `toml:"model"`
	APIKey          string             `toml:"api_key,omitempty"`
	ContextSize     int                `toml:"context_size"`
	Think           bool               `toml:"think"`
	SystemPrompt    string             `toml:"system_prompt,omitempty"`
	MaxRounds       int                `toml:"max_rounds"`
	ParallelTools   bool               `toml:"parallel_tools"`
	LoopWindow      int                `toml:"loop_window"`
	CollisionPolicy string             `toml:"collision_policy"`
	BuiltinTools    bool               `toml:"builtin_tools"`
	AuditLog        bool               `toml:"audit_log"`
	DataDirectory   string             `toml:"data_directory"`
	Launchers       LaunchersConfig    `toml:"launchers"`
	Timeouts        TimeoutsConfig     `toml:"timeouts"`
	ToolServers     []ToolServerConfig `toml:"tool_servers"`

	path string
}

var Providers = []string{"ollama", "openai", "anthropic", "gemini"}

var CollisionPolicies = []string{"shadow", "error"}

var Debug = false
var DebugLog *log.Logger

func (c *Config) Path() string {
	return c.path
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) HandshakeTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Handshake, 10*time.Second)
}

func (c *Config) CallTimeout() time.Duration {
	return parseDurationOr(c.Timeouts.Call, 60*time.Second)
}

func (c *Config) CloseGrace() time.Duration {
	return parseDurationOr(c.Timeouts.CloseGrace, 2*time.Second)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// AddToolServer appends a server, replacing an existing one with the same name.
func (c *Config) AddToolServer(server ToolServerConfig) {
	for i, existing := range c.ToolServers {
		if existing.Name == server.Name {
			c.ToolServers[i] = server
			return
		}
	}
	c.ToolServers = append(c.ToolServers, server)
}

func (c *Config) Validate() error {
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("unknown provider %q (expected one of %v)", c.Provider, Providers)
	}
	if !slices.Contains(CollisionPolicies, c.CollisionPolicy) {
		return fmt.Errorf("unknown collision_policy %q (expected one of %v)", c.CollisionPolicy, CollisionPolicies)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.MaxRounds)
	}
	if c.LoopWindow < 0 {
		return fmt.Errorf("loop_window must not be negative, got %d", c.LoopWindow)
	}
	if c.ContextSize < 0 {
		return fmt.Errorf("context_size must not be negative, got %d", c.ContextSize)
	}

	for field, value := range map[string]string{
		"timeouts.handshake":   c.Timeouts.Handshake,
		"timeouts.call":        c.Timeouts.Call,
		"timeouts.close_grace": c.Timeouts.CloseGrace,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", field, err)
		}
	}

	for i, server := range c.ToolServers {
		if server.Command == "" {
			return fmt.Errorf("tool_servers[%d] (%s) has no command", i, server.Name)
		}
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CODINGAGENT_INFERENCE_URL"); url != "" {
		c.InferenceURL = url
	}
	if model := os.Getenv("CODINGAGENT_MODEL"); model != "" {
		c.Model = model
	}
	if provider := os.Getenv("CODINGAGENT_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if dataDir := os.Getenv("CODINGAGENT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if key := os.Getenv("CODINGAGENT_API_KEY"); key != "" {
		c.APIKey = key
	}

	if c.APIKey == "" {
		switch c.Provider {
		case "openai":
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			c.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("CODINGAGENT_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: tool arguments and child stderr end up here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (CODINGAGENT_DEBUG=%s) ===", os.Getenv("CODINGAGENT_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load reads the config file at path, creating it from the template when it
// does not exist, then applies environment overrides. An empty path means the
// default location.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}
	path = ExpandPath(path)

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	dataDir := cfg.DataDir()
	if err := EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}
