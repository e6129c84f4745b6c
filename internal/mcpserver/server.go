// Package mcpserver publishes the command surface as Model Context Protocol
// tools, over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"llmrouter/internal/commands"
	"llmrouter/pkg/types"
)

// Commands is the surface the tools call into; *commands.Surface
// implements it.
type Commands interface {
	DetectServers(ctx context.Context) types.ServerStatus
	ListModels(ctx context.Context) []types.ModelInfo
	Generate(ctx context.Context, p commands.GenerateParams) (types.GenerateResponse, error)
	Chat(ctx context.Context, p commands.ChatParams) (types.ChatResponse, error)
	HardwareInfo(ctx context.Context) (types.HardwareInfo, error)
	OptimalModel(ctx context.Context, p commands.OptimalModelParams) (types.RecommendationResponse, error)
}

type modelList struct {
	Models []types.ModelInfo `json:"models"`
}

// New builds an MCP server exposing one tool per command.
func New(cmds Commands, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "llmrouter", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.DetectLLMServers,
		Description: "Check which local LLM servers (Ollama, LM Studio) are reachable and list their models",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, types.ServerStatus, error) {
		return nil, cmds.DetectServers(ctx), nil
	})

	// The model listing carries a custom-encoded status, so it is published
	// without an inferred output schema.
	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.ListAvailableModels,
		Description: "List models offered by every reachable LLM server",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		return nil, modelList{Models: cmds.ListModels(ctx)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.GenerateCode,
		Description: "Complete a prompt on the chosen server, falling back to the other server on failure",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in commands.GenerateParams) (*mcp.CallToolResult, types.GenerateResponse, error) {
		out, err := cmds.Generate(ctx, in)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.ChatWithModel,
		Description: "Continue a conversation on the chosen server, falling back to the other server on failure",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in commands.ChatParams) (*mcp.CallToolResult, types.ChatResponse, error) {
		out, err := cmds.Chat(ctx, in)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.GetHardwareInfo,
		Description: "Describe the host CPU, memory and configured GPU",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, types.HardwareInfo, error) {
		out, err := cmds.HardwareInfo(ctx)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        commands.GetOptimalModel,
		Description: "Recommend a model file that fits the given or detected hardware",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in commands.OptimalModelParams) (*mcp.CallToolResult, types.RecommendationResponse, error) {
		out, err := cmds.OptimalModel(ctx, in)
		return nil, out, err
	})

	return server
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

// ServeStdio runs server on stdin/stdout until ctx is done or the client
// disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
