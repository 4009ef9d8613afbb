package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	appVersion = "1.0.0"
	appName    = "hasrequest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Assert that a browser session made a request",
		Long: `hasrequest checks captured browser requests for one whose URL contains a
filter string and whose query parameters fuzzily match an expected set.

Requests are captured by running "hasrequest serve" and pointing the browser
at it as its HTTP proxy, or read from JSON, YAML or HAR files.
`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newServeCmd(), newCheckCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}
