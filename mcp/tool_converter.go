package mcp

import (
	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

// advertisedType is the single parameter type every tool is advertised with.
// Models handle a flat string interface more reliably than the providers'
// declared types; handlers coerce on their side.
const advertisedType = "string"

// SchemaFromMCPTool reads the name, description, property names and required
// list out of an MCP tool definition.
func SchemaFromMCPTool(tool mcptypes.Tool) ToolSchema {
	schema := ToolSchema{
		Name:        tool.Name,
		Description: tool.Description,
		Parameters: ToolParameters{
			Required:   append([]string(nil), tool.InputSchema.Required...),
			Properties: make(map[string]string, len(tool.InputSchema.Properties)),
		},
	}

	for propName, propValue := range tool.InputSchema.Properties {
		schema.Parameters.Properties[propName] = propertyType(propValue)
	}

	return schema
}

func SchemasFromMCPTools(tools []mcptypes.Tool) []ToolSchema {
	schemas := make([]ToolSchema, 0, len(tools))
	for _, tool := range tools {
		schemas = append(schemas, SchemaFromMCPTool(tool))
	}
	return schemas
}

// propertyType extracts the declared JSON-schema type of a property, falling
// back to "string" for unions or missing types.
func propertyType(propValue any) string {
	propMap, ok := propValue.(map[string]any)
	if !ok {
		return advertisedType
	}
	if t, ok := propMap["type"].(string); ok && t != "" {
		return t
	}
	return advertisedType
}

// ToOllamaTools renders schemas in Ollama's function-tool format.
func ToOllamaTools(schemas []ToolSchema) []api.Tool {
	if len(schemas) == 0 {
		return nil
	}

	tools := make([]api.Tool, 0, len(schemas))
	for _, schema := range schemas {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Required:   requiredOrEmpty(schema),
			Properties: make(map[string]api.ToolProperty, len(schema.Parameters.Properties)),
		}
		for _, name := range schema.ParameterNames() {
			params.Properties[name] = api.ToolProperty{
				Type: api.PropertyType{advertisedType},
			}
		}

		tools = append(tools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        schema.Name,
				Description: schema.Description,
				Parameters:  params,
			},
		})
	}

	return tools
}

// ToOpenAITools renders schemas for the chat completions API. The same format
// is accepted by OpenAI-compatible local servers.
func ToOpenAITools(schemas []ToolSchema) []openai.ChatCompletionToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(schemas))
	for i, schema := range schemas {
		params := openai.FunctionParameters{
			"type":       "object",
			"properties": stringProperties(schema),
			"required":   requiredOrEmpty(schema),
		}

		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        schema.Name,
				Description: openai.String(schema.Description),
				Parameters:  params,
			},
		)
	}

	return result
}

// ToAnthropicTools renders schemas as Anthropic tool definitions.
func ToAnthropicTools(schemas []ToolSchema) []anthropic.ToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(schemas))
	for i, schema := range schemas {
		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: stringProperties(schema),
		}
		if len(schema.Parameters.Required) > 0 {
			inputSchema.Required = schema.Parameters.Required
		}

		result[i] = anthropic.ToolUnionParamOfTool(inputSchema, schema.Name)
		if schema.Description != "" {
			result[i].OfTool.Description = anthropic.String(schema.Description)
		}
	}

	return result
}

// ToGeminiTools renders schemas as a single Gemini tool holding one function
// declaration per schema.
func ToGeminiTools(schemas []ToolSchema) []*genai.Tool {
	if len(schemas) == 0 {
		return nil
	}

	decls := make([]*genai.FunctionDeclaration, 0, len(schemas))
	for _, schema := range schemas {
		params := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema, len(schema.Parameters.Properties)),
			Required:   requiredOrEmpty(schema),
		}
		for _, name := range schema.ParameterNames() {
			params.Properties[name] = &genai.Schema{Type: genai.TypeString}
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        schema.Name,
			Description: schema.Description,
			Parameters:  params,
		})
	}

	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// ToMCPTool renders a schema as an MCP tool for serving. Unlike the model
// facing converters this keeps the declared parameter types.
func ToMCPTool(schema ToolSchema) mcptypes.Tool {
	required := make(map[string]bool, len(schema.Parameters.Required))
	for _, name := range schema.Parameters.Required {
		required[name] = true
	}

	opts := []mcptypes.ToolOption{mcptypes.WithDescription(schema.Description)}
	for _, name := range schema.ParameterNames() {
		var propOpts []mcptypes.PropertyOption
		if required[name] {
			propOpts = append(propOpts, mcptypes.Required())
		}

		switch schema.Parameters.Properties[name] {
		case "integer", "number":
			opts = append(opts, mcptypes.WithNumber(name, propOpts...))
		case "boolean":
			opts = append(opts, mcptypes.WithBoolean(name, propOpts...))
		default:
			opts = append(opts, mcptypes.WithString(name, propOpts...))
		}
	}

	return mcptypes.NewTool(schema.Name, opts...)
}

func stringProperties(schema ToolSchema) map[string]any {
	props := make(map[string]any, len(schema.Parameters.Properties))
	for name := range schema.Parameters.Properties {
		props[name] = map[string]any{"type": advertisedType}
	}
	return props
}

func requiredOrEmpty(schema ToolSchema) []string {
	if schema.Parameters.Required == nil {
		return []string{}
	}
	return schema.Parameters.Required
}
