package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a user's statistics, progress and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		out := cmd.OutOrStdout()
		if !force {
			fmt.Fprintf(out, "Delete all progress of %q? [y/N] ", env.user)
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := env.svc.Reset(cmd.Context(), env.user); err != nil {
			return err
		}
		fmt.Fprintln(out, "Progress deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")
}
