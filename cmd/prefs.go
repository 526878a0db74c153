package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/aprende/internal/store"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or set preferred subjects and the daily goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		flags := cmd.Flags()

		if flags.Changed("subjects") || flags.Changed("daily") {
			current, err := env.store.PreferencesRepo().Get(ctx, env.user)
			if err != nil {
				return err
			}
			p := store.Preferences{UserID: env.user}
			if current != nil {
				p = *current
			}
			if flags.Changed("subjects") {
				p.SubjectIDs, _ = flags.GetStringSlice("subjects")
			}
			if flags.Changed("daily") {
				p.DailyMinutes, _ = flags.GetInt("daily")
			}
			if err := env.svc.SetPreferences(ctx, p); err != nil {
				return err
			}
			fmt.Fprintln(out, "Preferences saved.")
		}

		p, err := env.store.PreferencesRepo().Get(ctx, env.user)
		if err != nil {
			return err
		}
		subjects, err := env.store.LessonRepo().Subjects(ctx)
		if err != nil {
			return err
		}

		preferred := map[string]bool{}
		daily := 0
		if p != nil {
			for _, id := range p.SubjectIDs {
				preferred[id] = true
			}
			daily = p.DailyMinutes
		}

		if len(preferred) == 0 {
			fmt.Fprintln(out, "Subjects: all")
		} else {
			fmt.Fprintf(out, "Subjects: %s\n", strings.Join(p.SubjectIDs, ", "))
		}
		fmt.Fprintf(out, "Daily goal: %d min\n", daily)

		if len(subjects) > 0 {
			fmt.Fprintln(out, "\nAvailable subjects")
			for _, s := range subjects {
				mark := " "
				if preferred[s.ID] {
					mark = "✓"
				}
				fmt.Fprintf(out, "%s  %-16s  %s\n", mark, s.ID, s.Name)
			}
		}
		return nil
	},
}

func init() {
	prefsCmd.Flags().StringSlice("subjects", nil, "Preferred subject IDs, comma separated (empty for all)")
	prefsCmd.Flags().Int("daily", 0, "Daily study goal in minutes")
}
