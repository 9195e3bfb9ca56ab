package model

import (
	"context"
	"errors"
	"slices"
	"strings"

	"codingagent/mcp"
)

const SubAgentToolName = "sub_agent"

type subAgentRequest struct {
	Query string `mapstructure:"query"`
}

func (r *subAgentRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query must not be empty")
	}
	return nil
}

// NewSubAgentTool returns a tool that answers a query with a nested
// orchestrator. The nested run starts from a fresh conversation, shares the
// provider and tools, and cannot call sub_agent itself.
func NewSubAgentTool(provider Provider, router ToolRouter, systemPrompt string, opts Options) mcp.Tool {
	if !slices.Contains(opts.ExcludeTools, SubAgentToolName) {
		opts.ExcludeTools = append(slices.Clone(opts.ExcludeTools), SubAgentToolName)
	}
	opts.Observer = nil
	opts.Recorder = nil

	return mcp.Tool{
		Schema: mcp.ToolSchema{
			Name:        SubAgentToolName,
			Description: "Delegate a self-contained task to a sub-agent with a fresh context. Returns the sub-agent's final answer.",
			Parameters: mcp.ToolParameters{
				Required:   []string{"query"},
				Properties: map[string]string{"query": "string"},
			},
		},
		Handler: mcp.TypedHandler(func(ctx context.Context, req subAgentRequest) (string, error) {
			conv := NewConversation(systemPrompt)
			sub := NewOrchestrator(provider, router, conv, opts)
			defer sub.Close()

			if err := sub.Submit(ctx, req.Query); err != nil {
				return "", err
			}

			answer, _ := conv.Last(RoleAssistant)
			return answer.Content, nil
		}),
	}
}
