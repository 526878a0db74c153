package quiz

const noSelection = -1

// Session walks a learner through an ordered list of questions.
//
// Every transition method reports whether it was applied. A call that is
// not valid in the current state leaves the session untouched and returns
// false; callers are expected to disable the matching action instead of
// relying on the rejection.
type Session struct {
	questions []Question
	current   int
	selected  int
	state     State
	answers   []AnswerRecord
}

// NewSession validates questions and starts a session on the first one.
// An empty list yields a session that is already complete.
func NewSession(questions []Question) (*Session, error) {
	qs := make([]Question, len(questions))
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, &QuestionError{Index: i, ID: q.ID, Err: err}
		}
		qs[i] = q.clone()
	}

	s := &Session{
		questions: qs,
		selected:  noSelection,
		state:     StateAwaitingSelection,
		answers:   make([]AnswerRecord, 0, len(qs)),
	}
	if len(qs) == 0 {
		s.state = StateComplete
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Complete reports whether every question has been answered and advanced past.
func (s *Session) Complete() bool { return s.state == StateComplete }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// Index returns the zero-based position of the current question. Once the
// session is complete it equals Total.
func (s *Session) Index() int { return s.current }

// Current returns the question being answered. ok is false once complete.
func (s *Session) Current() (q Question, ok bool) {
	if s.state == StateComplete {
		return Question{}, false
	}
	return s.questions[s.current].clone(), true
}

// Selected returns the tentative or confirmed option for the current question.
func (s *Session) Selected() (option int, ok bool) {
	if s.selected == noSelection {
		return 0, false
	}
	return s.selected, true
}

// SelectOption sets the tentative choice for the current question.
// Choosing the option that is already selected is accepted and changes
// nothing. Out-of-range options are rejected.
func (s *Session) SelectOption(option int) bool {
	if s.state != StateAwaitingSelection && s.state != StateAnswerSelected {
		return false
	}
	if !s.questions[s.current].HasOption(option) {
		return false
	}
	s.selected = option
	s.state = StateAnswerSelected
	return true
}

// Confirm locks the selected option and records the answer.
func (s *Session) Confirm() bool {
	if s.state != StateAnswerSelected || s.selected == noSelection {
		return false
	}
	q := s.questions[s.current]
	s.answers = append(s.answers, AnswerRecord{
		QuestionIndex: s.current,
		Selected:      s.selected,
		Correct:       q.IsCorrect(s.selected),
	})
	s.state = StateAnswerConfirmed
	return true
}

// Advance moves past a confirmed answer, either to the next question or,
// after the last one, to StateComplete.
func (s *Session) Advance() bool {
	if s.state != StateAnswerConfirmed {
		return false
	}
	s.selected = noSelection
	s.current++
	if s.current >= len(s.questions) {
		s.state = StateComplete
		return true
	}
	s.state = StateAwaitingSelection
	return true
}

// LastAnswer returns the most recently confirmed answer.
func (s *Session) LastAnswer() (AnswerRecord, bool) {
	if len(s.answers) == 0 {
		return AnswerRecord{}, false
	}
	return s.answers[len(s.answers)-1], true
}

// Answers returns a copy of the confirmed answers in order.
func (s *Session) Answers() []AnswerRecord {
	out := make([]AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// CorrectCount returns how many confirmed answers were correct so far.
func (s *Session) CorrectCount() int {
	n := 0
	for _, a := range s.answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// Result scores the confirmed answers against the full question count.
// Before completion it is a running score in which unanswered questions
// count as wrong.
func (s *Session) Result() Result {
	return NewResult(s.CorrectCount(), len(s.questions))
}
