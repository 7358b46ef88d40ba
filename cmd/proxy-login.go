package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/config"
	"github.com/tanq16/clipshr/internal/output"
	"golang.org/x/term"
)

func newProxyLoginCmd() *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "proxy-login [USERNAME] [--forget]",
		Short: "Store the proxy password for USERNAME in the system keyring",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			user := args[0]
			if forget {
				if err := config.DeleteProxyPassword(user); err != nil {
					fatal("%v", err)
				}
				output.PrintSuccess("Removed proxy password for " + user)
				return
			}
			fmt.Printf("Proxy password for %s: ", user)
			password, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				fatal("Error reading password: %v", err)
			}
			if err := config.SaveProxyPassword(user, string(password)); err != nil {
				fatal("%v", err)
			}
			output.PrintSuccess("Saved proxy password for " + user + ", use --proxy-username " + user)
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "Remove the stored password instead")
	return cmd
}
