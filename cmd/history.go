package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent quiz results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		entries, err := env.svc.History(cmd.Context(), env.user, limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No quizzes finished yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-32s  %-7s  %s\n", "Finished", "Lesson", "Correct", "Score")
		fmt.Fprintln(out, strings.Repeat("─", 68))
		for _, e := range entries {
			fmt.Fprintf(out, "%-16s  %-32s  %3d/%-3d  %3d%%\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				e.LessonTitle,
				e.CorrectAnswers,
				e.QuestionsServed,
				e.Score,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of quizzes to show")
}
