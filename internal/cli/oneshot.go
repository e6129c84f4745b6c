package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"llmrouter/internal/commands"
	"llmrouter/internal/hardware"
	"llmrouter/internal/llm"
	"llmrouter/pkg/types"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Report which backends are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			surface, _, err := a.newSurface(nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), surface.DetectServers(cmd.Context()))
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models from every reachable backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			surface, _, err := a.newSurface(nil)
			if err != nil {
				return err
			}
			models := surface.ListModels(cmd.Context())
			if provider != "" {
				p, err := llm.ParseProvider(provider)
				if err != nil {
					return err
				}
				filtered := []types.ModelInfo{}
				for _, m := range models {
					if m.Provider == p {
						filtered = append(filtered, m)
					}
				}
				models = filtered
			}
			return printJSON(cmd.OutOrStdout(), types.ModelsResponse{Models: models})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Only list models from this backend")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var p commands.GenerateParams
	var temperature float64
	cmd := &cobra.Command{
		Use:     "generate [prompt...]",
		Short:   "Complete a prompt, falling back to the other backend on failure",
		Example: "  llmrouter generate --provider ollama --model codellama:7b 'func fib(n int) int {'\n  echo 'hello' | llmrouter generate --model llama3 -",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			p.Prompt = prompt
			if cmd.Flags().Changed("temperature") {
				p.Temperature = &temperature
			}
			surface, _, err := a.newSurface(nil)
			if err != nil {
				return err
			}
			resp, err := surface.Generate(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&p.Provider, "provider", "", "Preferred backend: ollama or lmstudio")
	cmd.Flags().StringVar(&p.Model, "model", "", "Backend model id")
	cmd.Flags().Float64Var(&temperature, "temperature", llm.DefaultTemperature, "Sampling temperature")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func newChatCmd(a *app) *cobra.Command {
	var p commands.ChatParams
	var system string
	var temperature float64
	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send a single-turn chat, falling back to the other backend on failure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			if system != "" {
				p.Messages = append(p.Messages, types.SystemMessage(system))
			}
			p.Messages = append(p.Messages, types.UserMessage(msg))
			if cmd.Flags().Changed("temperature") {
				p.Temperature = &temperature
			}
			surface, _, err := a.newSurface(nil)
			if err != nil {
				return err
			}
			resp, err := surface.Chat(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&p.Provider, "provider", "", "Preferred backend: ollama or lmstudio")
	cmd.Flags().StringVar(&p.Model, "model", "", "Backend model id")
	cmd.Flags().StringVar(&system, "system", "", "Optional system prompt")
	cmd.Flags().Float64Var(&temperature, "temperature", llm.DefaultTemperature, "Sampling temperature")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

type hardwareReport struct {
	Hardware         types.HardwareInfo `json:"hardware"`
	RecommendedModel string             `json:"recommended_model"`
}

func newHardwareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hardware",
		Short: "Describe the host and recommend a model file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.detector().Detect(cmd.Context())
			if err != nil {
				return fmt.Errorf("detect hardware: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), hardwareReport{Hardware: info, RecommendedModel: hardware.RecommendModel(info)})
		},
	}
}
