package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/aprende/internal/learn"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List recommended lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		items, err := env.svc.Recommended(cmd.Context(), env.user)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No lessons yet. Load a catalog with: aprende import <file>")
			return nil
		}
		printLessons(out, items)
		return nil
	},
}

func printLessons(out io.Writer, items []learn.LessonItem) {
	fmt.Fprintf(out, "   %-20s  %-32s  %-12s  %s\n", "ID", "Title", "Difficulty", "Min")
	fmt.Fprintln(out, strings.Repeat("─", 76))
	for _, it := range items {
		mark := " "
		if it.Completed {
			mark = "✓"
		}
		title := it.Title
		if r := []rune(title); len(r) > 32 {
			title = string(r[:31]) + "…"
		}
		fmt.Fprintf(out, "%s  %-20s  %-32s  %-12s  %d\n", mark, it.ID, title, it.Difficulty, it.DurationMinutes)
	}
}
