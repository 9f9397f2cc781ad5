package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"aerogate/internal/client"
)

var (
	serverFlag string
	timeout    time.Duration
	api        *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "aerogate",
	Short: "Lounge terminal client",
	Long: `aerogate talks to an aerogate-server: enroll members, verify face
captures, browse and watch the access log.

The server comes from --server, then AEROGATE_SERVER, then
` + client.DefaultServer + `.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		// --timeout is applied per request through the context.
		api = client.New(client.ResolveServer(serverFlag), &http.Client{})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "server base URL (e.g. http://127.0.0.1:8000)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
