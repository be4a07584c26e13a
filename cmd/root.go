package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slotbooker",
	Short: "Calendar availability and booking engine for chatbot tenants",
	Long: `slotbooker computes bookable appointment slots from a tenant's Google
Calendar and business hours policy, and books slots as calendar events.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (default)
  - A standalone CLI for inspecting tenant availability`,
	SilenceUsage: true,
}

// version is injected by main before Execute runs.
var version = "dev"

// SetVersion records the build version on the root command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI. Invoking the binary with no arguments starts the
// MCP server, so `slotbooker` alone is a valid server invocation.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "slotbooker version %s\n" .Version}}`)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAvailabilityCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
