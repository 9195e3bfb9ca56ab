package main

import (
	"flag"
	"fmt"
	"os"

	"codingagent/config"
	"codingagent/mcp"
	"codingagent/tools"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

type options struct {
	configPath    string
	addToolServer string
	inferenceURL  string
	model         string
	provider      string
	version       bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 && args[0] == "serve-tools" {
		return serveTools()
	}

	opts, err := parseFlags(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("codingagent %s (%s)\n", Version, License)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	config.InitDebugLog(cfg.DataDir())

	if done, err := applyPersistentFlags(cfg, opts); done {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	// one-off overrides, not saved
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	if err := validateToolServers(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	return runSession(cfg)
}

func parseFlags(args []string) (options, error) {
	var opts options

	fs := flag.NewFlagSet("codingagent", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "c", config.GetConfigFilePath(), "path to the config file")
	fs.StringVar(&opts.addToolServer, "add-tool-server", "", "add a tool server command line to the config and exit")
	fs.StringVar(&opts.inferenceURL, "inference-url", "", "save the inference server URL to the config and exit")
	fs.StringVar(&opts.model, "model", "", "model to use for this session")
	fs.StringVar(&opts.provider, "provider", "", "provider to use for this session (ollama, openai, anthropic, gemini)")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: codingagent [flags]\n       codingagent serve-tools\n\nFlags:\n")
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	return opts, err
}

// applyPersistentFlags handles the flags that edit the config file. It
// reports whether one was given, in which case the program exits.
func applyPersistentFlags(loaded *config.Config, opts options) (bool, error) {
	if opts.addToolServer == "" && opts.inferenceURL == "" {
		return false, nil
	}

	// re-read without environment overrides so they are not persisted
	cfg, err := config.LoadFile(loaded.Path())
	if err != nil {
		return true, err
	}

	switch {
	case opts.addToolServer != "":
		spec, err := mcp.ParseLaunchCommand(opts.addToolServer)
		if err != nil {
			return true, err
		}
		if err := mcp.ValidateLaunch(spec, cfg.Launchers.Allowed); err != nil {
			return true, err
		}
		cfg.AddToolServer(config.ToolServerConfig{
			Name:    spec.Name,
			Command: spec.Command,
			Args:    spec.Args,
		})
		if err := cfg.Save(); err != nil {
			return true, err
		}
		fmt.Printf("Added tool server %q to %s\n", spec.Name, cfg.Path())

	case opts.inferenceURL != "":
		cfg.InferenceURL = opts.inferenceURL
		if err := cfg.Save(); err != nil {
			return true, err
		}
		fmt.Printf("Inference URL set to %s in %s\n", cfg.InferenceURL, cfg.Path())
	}

	return true, nil
}

// validateToolServers checks every configured launcher against the
// allow-list before anything is spawned. config cannot do this itself since
// mcp depends on it.
func validateToolServers(cfg *config.Config) error {
	for _, spec := range launchSpecs(cfg.ToolServers) {
		if err := mcp.ValidateLaunch(spec, cfg.Launchers.Allowed); err != nil {
			return fmt.Errorf("tool server %q: %w", spec.Name, err)
		}
	}
	return nil
}

// serveTools exposes the builtin tools over MCP on stdin/stdout.
func serveTools() int {
	if err := mcp.ServeStdio("codingagent-tools", Version, tools.Builtins()); err != nil {
		fmt.Fprintf(os.Stderr, "Tool server failed: %v\n", err)
		return 1
	}
	return 0
}
