package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/abhisek/aprende/internal/achievements"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStats(cmd)
	},
}

func runStats(cmd *cobra.Command) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	d, err := env.svc.Dashboard(cmd.Context(), env.user, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := d.Stats
	fmt.Fprintf(out, "%s\n\n", d.Phrase)
	fmt.Fprintf(out, "  Level            %d\n", s.Level)
	fmt.Fprintf(out, "  Points           %d\n", s.TotalPoints)
	fmt.Fprintf(out, "  Lessons          %d\n", s.LessonsCompleted)
	fmt.Fprintf(out, "  Study time       %d min\n", s.TotalMinutes)
	fmt.Fprintf(out, "  Current streak   %d days (next milestone: %d)\n", s.CurrentStreak, d.NextStreak)
	fmt.Fprintf(out, "  Longest streak   %d days\n", s.LongestStreak)
	if !s.LastActivity.IsZero() {
		fmt.Fprintf(out, "  Last activity    %s\n", s.LastActivity)
	}

	if len(d.Challenges) > 0 {
		fmt.Fprintln(out, "\nDaily challenges")
		for _, c := range d.Challenges {
			fmt.Fprintf(out, "  %-28s +%d\n", c.Title, c.Points)
			if c.Description != "" {
				fmt.Fprintf(out, "    %s\n", c.Description)
			}
		}
	}

	if len(d.Achievements) > 0 {
		fmt.Fprintf(out, "\nAchievements (%d/%d)\n", len(d.Achievements), d.Available)
		printAchievements(out, d.Achievements)
	}

	if len(d.Lessons) > 0 {
		fmt.Fprintln(out, "\nRecommended lessons")
		printLessons(out, d.Lessons)
	}
	return nil
}

// printAchievements lists awards grouped by kind.
func printAchievements(w io.Writer, awards []achievements.Award) {
	byKind := make(map[achievements.Kind][]achievements.Award)
	for _, a := range awards {
		byKind[a.Kind] = append(byKind[a.Kind], a)
	}

	printGroup := func(header string, group []achievements.Award) {
		if len(group) == 0 {
			return
		}
		fmt.Fprintf(w, "  %s\n", header)
		for _, a := range group {
			fmt.Fprintf(w, "    %s %-16s  %s\n", a.Kind.Icon(), a.Name, a.Description)
		}
	}

	known := make(map[achievements.Kind]bool)
	for _, k := range achievements.AllKinds() {
		known[k] = true
		printGroup(k.DisplayName(), byKind[k])
	}

	var other []achievements.Award
	for _, a := range awards {
		if !known[a.Kind] {
			other = append(other, a)
		}
	}
	printGroup("Other", other)
}
