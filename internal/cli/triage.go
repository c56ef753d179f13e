package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/supportops/internal/config"
	"github.com/spec-kit/supportops/internal/triage"
)

type triageOutput struct {
	Priority       string `json:"priority"`
	SuggestedReply string `json:"suggestedReply"`
	Fallback       bool   `json:"fallback"`
}

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "triage <text>",
		Short: "Run the configured AI triage locally, without creating a ticket",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTriage,
	})
}

// Uses the same AI_* environment as the server.
func runTriage(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if cfg.Logger.Level == "debug" {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	result := triage.NewTriager(triage.NewGenerator(cfg.AI), cfg.AI.Timeout(), logger, nil).
		Triage(cmd.Context(), strings.Join(args, " "))

	out := triageOutput{
		Priority:       string(result.Priority),
		SuggestedReply: result.SuggestedReply,
		Fallback:       result.Fallback,
	}
	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "priority: %s\nreply: %s\n", out.Priority, out.SuggestedReply)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), out)
}
