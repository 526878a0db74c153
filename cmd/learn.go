package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/aprende/internal/learn"
)

// errQuit is returned when the learner leaves a quiz before finishing it.
var errQuit = errors.New("quiz abandoned")

var learnCmd = &cobra.Command{
	Use:   "learn <lesson-id>",
	Short: "Study a lesson and take its quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		return runLesson(cmd.Context(), env.svc, env.user, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runLesson shows the lesson, runs its quiz over in/out and records the
// outcome. Quitting early records nothing but the answers given.
func runLesson(ctx context.Context, svc *learn.Service, userID, lessonID string, in io.Reader, out io.Writer) error {
	a, err := svc.Open(ctx, userID, lessonID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n%s\n", a.Lesson.Title, strings.Repeat("═", len([]rune(a.Lesson.Title))))
	if p := a.Previous; p != nil && p.Completed {
		fmt.Fprintf(out, "Last completed %s with a score of %d%%.\n", p.CompletedAt.Format("2006-01-02"), p.Score)
	}
	if a.Lesson.Content != "" {
		fmt.Fprintf(out, "\n%s\n", a.Lesson.Content)
	}
	if a.Lesson.VideoURL != "" {
		fmt.Fprintf(out, "\nVideo: %s\n", a.Lesson.VideoURL)
	}

	sc := bufio.NewScanner(in)
	if a.Quiz.Total() > 0 {
		fmt.Fprintf(out, "\nQuiz: %d questions. Type an option number to select it, Enter to confirm, q to quit.\n", a.Quiz.Total())
		if err := runQuiz(ctx, svc, a, sc, out); err != nil {
			if errors.Is(err, errQuit) {
				fmt.Fprintln(out, "\nQuiz abandoned. Your statistics were not updated.")
				return nil
			}
			return err
		}
	}

	o, err := svc.Complete(ctx, a, svc.Today())
	if err != nil {
		return err
	}
	printOutcome(out, o)
	return nil
}

func runQuiz(ctx context.Context, svc *learn.Service, a *learn.Attempt, sc *bufio.Scanner, out io.Writer) error {
	s := a.Quiz
	for !s.Complete() {
		q, _ := s.Current()
		fmt.Fprintf(out, "\n[%d/%d] %s\n", s.Index()+1, s.Total(), q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return err
				}
				return errQuit
			}
			line := strings.TrimSpace(sc.Text())

			if strings.EqualFold(line, "q") {
				return errQuit
			}
			if line == "" {
				rec, ok := svc.Confirm(ctx, a)
				if !ok {
					fmt.Fprintln(out, "Select an option first.")
					continue
				}
				if rec.Correct {
					fmt.Fprintln(out, "✓ Correct!")
				} else {
					fmt.Fprintf(out, "✗ Incorrect. The answer is: %s\n", q.Options[q.Correct])
				}
				if q.Explanation != "" {
					fmt.Fprintln(out, q.Explanation)
				}
				s.Advance()
				break
			}

			n, err := strconv.Atoi(line)
			if err != nil || !s.SelectOption(n-1) {
				fmt.Fprintf(out, "Choose a number from 1 to %d.\n", len(q.Options))
				continue
			}
			fmt.Fprintf(out, "Selected %d) %s. Press Enter to confirm.\n", n, q.Options[n-1])
		}
	}
	return nil
}

func printOutcome(out io.Writer, o *learn.Outcome) {
	r := o.Result
	fmt.Fprintf(out, "\nResult: %d/%d correct, score %d%%\n", r.Correct, r.Total, r.Score)
	fmt.Fprintln(out, r.Feedback().Message())

	s := o.Stats
	fmt.Fprintf(out, "+%d points (total %d, level %d)\n", o.PointsAwarded, s.TotalPoints, s.Level)
	if o.LeveledUp() {
		fmt.Fprintf(out, "Level up! You reached level %d.\n", s.Level)
	}
	if o.StreakExtended() {
		fmt.Fprintf(out, "🔥 Streak: %d days\n", s.CurrentStreak)
	} else {
		fmt.Fprintf(out, "Streak: %d days\n", s.CurrentStreak)
	}
	for _, a := range o.Awards {
		fmt.Fprintf(out, "%s Achievement unlocked: %s (%s)\n", a.Kind.Icon(), a.Name, a.Description)
	}
}
