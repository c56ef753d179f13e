// Package cli implements the supportctl commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/supportops/internal/client"
)

const defaultServer = "http://localhost:4000"

var (
	serverURL  string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "supportctl",
	Short:        "Operate a SupportOps ticket intake server",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Server URL (default: $SUPPORTOPS_SERVER or "+defaultServer+")")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getServer() string {
	if serverURL != "" {
		return serverURL
	}
	if env := os.Getenv("SUPPORTOPS_SERVER"); env != "" {
		return env
	}
	return defaultServer
}

func newClient() *client.Client {
	return client.New(getServer(), nil)
}

func validateFormat() error {
	switch formatFlag {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("unknown format %q", formatFlag)
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
