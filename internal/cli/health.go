package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE:  runHealth,
	})
}

func runHealth(cmd *cobra.Command, args []string) error {
	if err := validateFormat(); err != nil {
		return err
	}
	health, err := newClient().Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if formatFlag == "text" {
		fmt.Fprintln(cmd.OutOrStdout(), health.Status)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), health)
}
