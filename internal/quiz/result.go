package quiz

// AnswerRecord is the outcome of one confirmed answer. Records are only
// ever appended.
type AnswerRecord struct {
	QuestionIndex int
	Selected      int
	Correct       bool
}

// Feedback is the qualitative band a score falls into.
type Feedback string

const (
	FeedbackPerfect Feedback = "perfect" // every answer correct
	FeedbackGood    Feedback = "good"    // 70% or better
	FeedbackReview  Feedback = "review"  // below 70%, revisit the lesson
)

// GoodScoreThreshold is the lowest score that still counts as FeedbackGood.
const GoodScoreThreshold = 70

// Result summarizes a quiz.
type Result struct {
	Total   int
	Correct int
	Score   int // 0-100
}

// NewResult builds a Result for correct answers out of total questions.
func NewResult(correct, total int) Result {
	return Result{
		Total:   total,
		Correct: correct,
		Score:   Score(correct, total),
	}
}

// Score returns round(100 * correct / total) with halves rounded up.
// An empty quiz scores 0.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

// Feedback classifies the result for display.
func (r Result) Feedback() Feedback {
	switch {
	case r.Score >= 100:
		return FeedbackPerfect
	case r.Score >= GoodScoreThreshold:
		return FeedbackGood
	default:
		return FeedbackReview
	}
}

// Message returns a short learner-facing line for the feedback band.
func (f Feedback) Message() string {
	switch f {
	case FeedbackPerfect:
		return "Perfect! You mastered this lesson."
	case FeedbackGood:
		return "Great job! Keep going to improve even more."
	default:
		return "Good try. Reviewing the lesson is recommended."
	}
}
