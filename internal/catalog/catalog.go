// Package catalog loads lesson catalogs and challenges from YAML or JSON
// documents and imports them into the store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/aprende/internal/quiz"
	"github.com/abhisek/aprende/internal/store"
)

// ErrInvalidCatalog is returned when a document fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is a set of subjects, lessons with their quizzes, and challenges.
type Catalog struct {
	Subjects   []Subject   `json:"subjects"`
	Lessons    []Lesson    `json:"lessons"`
	Challenges []Challenge `json:"challenges"`
}

// Subject is a catalog subject entry.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Lesson is a catalog lesson entry.
type Lesson struct {
	ID              string     `json:"id"`
	Subject         string     `json:"subject"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	DurationMinutes int        `json:"duration_minutes"`
	Difficulty      string     `json:"difficulty"`
	VideoURL        string     `json:"video_url"`
	Order           int        `json:"order"`
	Questions       []Question `json:"questions"`
}

// Challenge is a catalog challenge entry. Times are RFC 3339.
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"` // daily (default) or weekly
	Points      int       `json:"points"`
	ActiveFrom  time.Time `json:"active_from"`
	ActiveUntil time.Time `json:"active_until"`
}

// Question is a catalog quiz question.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

func (q Question) toQuiz() quiz.Question {
	return quiz.Question{
		ID:          q.ID,
		Prompt:      q.Prompt,
		Options:     q.Options,
		Correct:     q.Correct,
		Explanation: q.Explanation,
	}
}

// QuizQuestions converts the lesson's questions to quiz questions.
func (l Lesson) QuizQuestions() []quiz.Question {
	out := make([]quiz.Question, len(l.Questions))
	for i, q := range l.Questions {
		out[i] = q.toQuiz()
	}
	return out
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML or JSON document, validates it against the catalog
// schema and checks cross references. Validation failures wrap
// ErrInvalidCatalog.
func Parse(data []byte) (*Catalog, error) {
	// JSON is valid YAML, so one decoder serves both formats.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidCatalog, err)
	}

	// Round-trip through JSON so the validator and the typed decode see
	// plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks what the schema cannot express: unique IDs, known
// subjects, well-formed questions and challenge windows.
func (c *Catalog) Validate() error {
	subjects := make(map[string]bool, len(c.Subjects))
	for _, s := range c.Subjects {
		if subjects[s.ID] {
			return fmt.Errorf("%w: duplicate subject %q", ErrInvalidCatalog, s.ID)
		}
		subjects[s.ID] = true
	}

	lessons := make(map[string]bool, len(c.Lessons))
	for _, l := range c.Lessons {
		if lessons[l.ID] {
			return fmt.Errorf("%w: duplicate lesson %q", ErrInvalidCatalog, l.ID)
		}
		lessons[l.ID] = true

		if !subjects[l.Subject] {
			return fmt.Errorf("%w: lesson %q: unknown subject %q", ErrInvalidCatalog, l.ID, l.Subject)
		}

		for i, q := range l.Questions {
			if err := q.toQuiz().Validate(); err != nil {
				qerr := &quiz.QuestionError{Index: i, ID: q.ID, Err: err}
				return fmt.Errorf("%w: lesson %q: %w", ErrInvalidCatalog, l.ID, qerr)
			}
		}
	}

	challenges := make(map[string]bool, len(c.Challenges))
	for _, ch := range c.Challenges {
		if challenges[ch.ID] {
			return fmt.Errorf("%w: duplicate challenge %q", ErrInvalidCatalog, ch.ID)
		}
		challenges[ch.ID] = true

		if !ch.ActiveFrom.IsZero() && ch.ActiveUntil.Before(ch.ActiveFrom) {
			return fmt.Errorf("%w: challenge %q ends before it starts", ErrInvalidCatalog, ch.ID)
		}
	}
	return nil
}

// Summary counts what an import wrote.
type Summary struct {
	Subjects   int
	Lessons    int
	Questions  int
	Challenges int
}

// Import writes the catalog in one transaction. Existing subjects, lessons
// and challenges with the same IDs are replaced, lessons along with their
// questions.
func Import(ctx context.Context, st *store.Store, c *Catalog) (Summary, error) {
	var sum Summary
	err := st.WithinTx(ctx, func(tx *store.Tx) error {
		repo := tx.LessonRepo()
		for _, s := range c.Subjects {
			err := repo.UpsertSubject(ctx, store.Subject{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
				Icon:        s.Icon,
				Color:       s.Color,
			})
			if err != nil {
				return err
			}
			sum.Subjects++
		}

		for _, l := range c.Lessons {
			err := repo.UpsertLesson(ctx, store.Lesson{
				ID:              l.ID,
				SubjectID:       l.Subject,
				Title:           l.Title,
				Content:         l.Content,
				DurationMinutes: l.DurationMinutes,
				Difficulty:      l.Difficulty,
				VideoURL:        l.VideoURL,
				OrderIndex:      l.Order,
			})
			if err != nil {
				return err
			}
			if err := repo.ReplaceQuestions(ctx, l.ID, l.QuizQuestions()); err != nil {
				return err
			}
			sum.Lessons++
			sum.Questions += len(l.Questions)
		}

		challenges := tx.ChallengeRepo()
		for _, ch := range c.Challenges {
			err := challenges.Upsert(ctx, store.Challenge{
				ID:          ch.ID,
				Title:       ch.Title,
				Description: ch.Description,
				Type:        ch.Type,
				Points:      ch.Points,
				ActiveFrom:  ch.ActiveFrom,
				ActiveUntil: ch.ActiveUntil,
			})
			if err != nil {
				return err
			}
			sum.Challenges++
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("import catalog: %w", err)
	}
	return sum, nil
}
