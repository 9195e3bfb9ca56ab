package config

const DefaultSystemPrompt = "You are a coding agent running in the user's terminal. " +
	"Use the available tools to inspect and change files in the working directory. " +
	"Prefer reading before writing, keep answers short, and say so when a tool fails."

func DefaultConfig() *Config {
	return &Config{
		InferenceURL:    "http://localhost:11434",
		Provider:        "ollama",
		Model:           "qwen3:8b",
		ContextSize:     32000,
		Think:           false,
		SystemPrompt:    DefaultSystemPrompt,
		MaxRounds:       25,
		ParallelTools:   false,
		LoopWindow:      6,
		CollisionPolicy: "shadow",
		BuiltinTools:    true,
		AuditLog:        true,
		DataDirectory:   "~/.local/share/codingagent",
		Launchers: LaunchersConfig{
			Allowed: []string{"uv", "uvx", "python", "python3", "node", "npx", "go", "docker", "codingagent"},
		},
		Timeouts: TimeoutsConfig{
			Handshake:  "10s",
			Call:       "60s",
			CloseGrace: "2s",
		},
	}
}

func GenerateConfigTemplate() string {
	return `# codingagent configuration
# Location: ~/.config/codingagent/config.toml
# This file uses TOML format: https://toml.io

# Inference backend: ollama, openai, anthropic or gemini
provider = "ollama"

# Base URL of the inference endpoint (ignored by gemini)
inference_url = "http://localhost:11434"

model = "qwen3:8b"

# API key for hosted providers. OPENAI_API_KEY, ANTHROPIC_API_KEY and
# GEMINI_API_KEY are used when this is empty.
# api_key = ""

# Context window requested from ollama
context_size = 32000

# Ask the model to reason before answering. Qwen3 models also honour
# a literal \think or \nothink in the prompt.
think = false

# Maximum inference rounds per user query
max_rounds = 25

# Run the tool calls of one round concurrently. Results keep call order.
parallel_tools = false

# Number of recent tool calls checked for repeating patterns (0 disables)
loop_window = 6

# What to do when two tool servers export the same tool name: shadow or error
collision_policy = "shadow"

# Register ls, glob, git, read_file, write_file and sub_agent
builtin_tools = true

# Record every tool call in <data_directory>/audit.db
audit_log = true

data_directory = "~/.local/share/codingagent"

[launchers]
# Executables allowed to start tool servers
allowed = ["uv", "uvx", "python", "python3", "node", "npx", "go", "docker", "codingagent"]

[timeouts]
handshake = "10s"
call = "60s"
close_grace = "2s"

# [[tool_servers]]
# name = "search"
# command = "uv"
# args = ["run", "--with", "mcp", "search.py"]
`
}
