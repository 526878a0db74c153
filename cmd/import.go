package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/aprende/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load lessons and quizzes from a YAML or JSON catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Load(args[0])
		if err != nil {
			return err
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		sum, err := catalog.Import(cmd.Context(), env.store, c)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d subjects, %d lessons, %d questions.\n",
			sum.Subjects, sum.Lessons, sum.Questions)
		return nil
	},
}
