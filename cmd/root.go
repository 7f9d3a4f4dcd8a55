package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "draftdesk",
	Short: "MCP server for AI-assisted proposal email drafting",
	Long: `draftdesk is an MCP server that manages per-message AI drafting
sessions for a contracting team's inbox.

Each Gmail message or draft can carry its own conversation with an AI
provider. The server keeps session transcripts, runs provider exchanges
in the background, recommends attachments from a shared Drive folder,
and projects session status for dashboard notification badges.

Tools are exposed over stdio or streamable HTTP transports.`,
}

// SetVersion sets the version string used by the version command and the
// MCP server handshake.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAuthCmd())
}
