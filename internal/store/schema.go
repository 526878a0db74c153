package store

import (
	"context"
	"fmt"
	"math"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textSize makes ent emit an unbounded text column on every dialect.
const textSize = math.MaxInt32

var (
	subjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "icon", Type: field.TypeString, Default: ""},
		{Name: "color", Type: field.TypeString, Default: ""},
	}
	subjectsTable = &schema.Table{
		Name:       "subjects",
		Columns:    subjectsColumns,
		PrimaryKey: []*schema.Column{subjectsColumns[0]},
	}

	lessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "subject_id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "content", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "duration_minutes", Type: field.TypeInt, Default: 0},
		{Name: "difficulty", Type: field.TypeString, Default: ""},
		{Name: "video_url", Type: field.TypeString, Default: ""},
		{Name: "order_index", Type: field.TypeInt, Default: 0},
	}
	lessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    lessonsColumns,
		PrimaryKey: []*schema.Column{lessonsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "lesson_subject_id", Columns: []*schema.Column{lessonsColumns[1]}},
			{Name: "lesson_order_index", Columns: []*schema.Column{lessonsColumns[7]}},
		},
	}

	quizQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "prompt", Type: field.TypeString, Size: textSize},
		{Name: "options", Type: field.TypeString, Size: textSize}, // JSON array of strings
		{Name: "correct_option", Type: field.TypeInt},
		{Name: "explanation", Type: field.TypeString, Size: textSize, Default: ""},
	}
	quizQuestionsTable = &schema.Table{
		Name:       "quiz_questions",
		Columns:    quizQuestionsColumns,
		PrimaryKey: []*schema.Column{quizQuestionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizquestion_lesson_id_position", Columns: []*schema.Column{quizQuestionsColumns[1], quizQuestionsColumns[2]}},
		},
	}

	userStatsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "lessons_completed", Type: field.TypeInt, Default: 0},
		{Name: "current_streak", Type: field.TypeInt, Default: 0},
		{Name: "longest_streak", Type: field.TypeInt, Default: 0},
		{Name: "total_points", Type: field.TypeInt, Default: 0},
		{Name: "total_minutes", Type: field.TypeInt, Default: 0},
		{Name: "level", Type: field.TypeInt, Default: 1},
		{Name: "last_activity", Type: field.TypeString, Default: ""}, // YYYY-MM-DD or empty
		{Name: "updated_at", Type: field.TypeTime},
	}
	userStatsTable = &schema.Table{
		Name:       "user_stats",
		Columns:    userStatsColumns,
		PrimaryKey: []*schema.Column{userStatsColumns[0]},
	}

	userProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "score", Type: field.TypeInt, Default: 0},
		{Name: "time_spent_minutes", Type: field.TypeInt, Default: 0},
		{Name: "completed_at", Type: field.TypeTime},
	}
	userProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    userProgressColumns,
		PrimaryKey: []*schema.Column{userProgressColumns[0]},
		Indexes: []*schema.Index{
			{Name: "userprogress_user_id_lesson_id", Unique: true, Columns: []*schema.Column{userProgressColumns[1], userProgressColumns[2]}},
		},
	}

	userAchievementsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "code", Type: field.TypeString},
		{Name: "unlocked_at", Type: field.TypeTime},
	}
	userAchievementsTable = &schema.Table{
		Name:       "user_achievements",
		Columns:    userAchievementsColumns,
		PrimaryKey: []*schema.Column{userAchievementsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "userachievement_user_id_code", Unique: true, Columns: []*schema.Column{userAchievementsColumns[1], userAchievementsColumns[2]}},
		},
	}

	learningPreferencesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "subjects", Type: field.TypeString, Size: textSize, Default: "[]"}, // JSON array of subject IDs
		{Name: "daily_minutes", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	learningPreferencesTable = &schema.Table{
		Name:       "learning_preferences",
		Columns:    learningPreferencesColumns,
		PrimaryKey: []*schema.Column{learningPreferencesColumns[0]},
	}

	sessionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "questions_served", Type: field.TypeInt, Default: 0},
		{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 0},
	}
	sessionEventsTable = &schema.Table{
		Name:       "session_events",
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_session_id", Columns: []*schema.Column{sessionEventsColumns[2]}},
			{Name: "sessionevent_user_id_action", Columns: []*schema.Column{sessionEventsColumns[3], sessionEventsColumns[5]}},
		},
	}

	answerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "lesson_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_index", Type: field.TypeInt},
		{Name: "selected_option", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeBool},
	}
	answerEventsTable = &schema.Table{
		Name:       "answer_events",
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_session_id", Columns: []*schema.Column{answerEventsColumns[2]}},
		},
	}

	dailyChallengesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "challenge_type", Type: field.TypeString, Default: "daily"},
		{Name: "points", Type: field.TypeInt, Default: 0},
		{Name: "active_from", Type: field.TypeTime},
		{Name: "active_until", Type: field.TypeTime},
	}
	dailyChallengesTable = &schema.Table{
		Name:       "daily_challenges",
		Columns:    dailyChallengesColumns,
		PrimaryKey: []*schema.Column{dailyChallengesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "dailychallenge_challenge_type_active_until", Columns: []*schema.Column{dailyChallengesColumns[3], dailyChallengesColumns[6]}},
		},
	}

	// tables lists every table owned by the store, in creation order.
	tables = []*schema.Table{
		subjectsTable,
		lessonsTable,
		quizQuestionsTable,
		userStatsTable,
		userProgressTable,
		userAchievementsTable,
		learningPreferencesTable,
		sessionEventsTable,
		answerEventsTable,
		dailyChallengesTable,
	}
)

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
