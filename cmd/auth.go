package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draftdesk/draftdesk/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail and Drive access",
		Long: `Runs the out-of-band OAuth flow for the Google account whose inbox
draftdesk serves. Grants are read-only: the server never sends mail or
modifies Drive files.

The token is cached on disk and reused on subsequent runs. Use --account
to authorize more than one account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google.HasTokenForAccount(account) {
				fmt.Printf("Account %q is already authorized.\n", account)
				return nil
			}

			fmt.Println("Visit the following URL and paste the authorization code:")
			fmt.Println()
			fmt.Println(google.GetAuthURL())
			fmt.Println()
			fmt.Print("Authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("authorization code is empty")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Account %q authorized.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account identifier for the cached token")

	return cmd
}
