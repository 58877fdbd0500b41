// Package quiz implements the question-by-question quiz flow used by the
// student viewer: answer locking, navigation, scoring and retake.
package quiz

import (
	"errors"
	"fmt"
	"math"

	"trail-backend/internal/models"
)

const unanswered = -1

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrOptionOutOfRange = errors.New("option index out of range")
	ErrNotAnswered      = errors.New("current question has not been answered")
)

// Session is the state of one quiz run. It serialises to JSON so it can be
// kept in a session store between requests.
type Session struct {
	Questions       []models.QuizQuestion `json:"questions"`
	CurrentIndex    int                   `json:"currentIndex"`
	SelectedAnswers []int                 `json:"selectedAnswers"`
	Revealed        bool                  `json:"revealed"`
	Completed       bool                  `json:"completed"`
}

func New(questions []models.QuizQuestion) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{Questions: append([]models.QuizQuestion(nil), questions...)}
	s.Retake()
	return s, nil
}

func (s *Session) Total() int { return len(s.Questions) }

// Select records option for the current question and reveals it. Selecting
// again once revealed, or after completion, changes nothing.
func (s *Session) Select(option int) error {
	if s.Revealed || s.Completed {
		return nil
	}
	q := s.Questions[s.CurrentIndex]
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: %d of %d", ErrOptionOutOfRange, option, len(q.Options))
	}
	s.SelectedAnswers[s.CurrentIndex] = option
	s.Revealed = true
	return nil
}

// Next advances to the following question. On the last question it completes
// the quiz instead.
func (s *Session) Next() error {
	if s.Completed {
		return nil
	}
	if !s.Revealed {
		return ErrNotAnswered
	}
	if s.CurrentIndex == len(s.Questions)-1 {
		s.Completed = true
		return nil
	}
	s.CurrentIndex++
	s.Revealed = false
	return nil
}

// Previous steps back one question. The earlier question shows as revealed
// only if it was answered.
func (s *Session) Previous() {
	if s.Completed || s.CurrentIndex == 0 {
		return
	}
	s.CurrentIndex--
	s.Revealed = s.SelectedAnswers[s.CurrentIndex] != unanswered
}

func (s *Session) Retake() {
	s.SelectedAnswers = make([]int, len(s.Questions))
	for i := range s.SelectedAnswers {
		s.SelectedAnswers[i] = unanswered
	}
	s.CurrentIndex = 0
	s.Revealed = false
	s.Completed = false
}

func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.SelectedAnswers {
		if a != unanswered {
			n++
		}
	}
	return n
}

// Progress is the share of answered questions, regardless of correctness.
func (s *Session) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.AnsweredCount()) / float64(len(s.Questions)) * 100
}

func (s *Session) CorrectCount() int {
	n := 0
	for i, q := range s.Questions {
		if i < len(s.SelectedAnswers) && s.SelectedAnswers[i] == q.Correct {
			n++
		}
	}
	return n
}

func (s *Session) ScorePercent() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	return float64(s.CorrectCount()) / float64(len(s.Questions)) * 100
}

func (s *Session) DisplayScore() string {
	return fmt.Sprintf("%d%%", int(math.Round(s.ScorePercent())))
}

// View is what the student viewer renders for the current position. The
// answer key is withheld until the question is revealed.
type View struct {
	CurrentIndex int      `json:"currentIndex"`
	Total        int      `json:"total"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Selected     int      `json:"selected"`
	Revealed     bool     `json:"revealed"`
	Correct      *int     `json:"correct,omitempty"`
	IsCorrect    *bool    `json:"isCorrect,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Progress     float64  `json:"progress"`
	Completed    bool     `json:"completed"`
	CorrectCount *int     `json:"correctCount,omitempty"`
	ScorePercent *float64 `json:"scorePercent,omitempty"`
	DisplayScore string   `json:"displayScore,omitempty"`
}

func (s *Session) View() View {
	q := s.Questions[s.CurrentIndex]
	v := View{
		CurrentIndex: s.CurrentIndex,
		Total:        len(s.Questions),
		Question:     q.Question,
		Options:      q.Options,
		Selected:     s.SelectedAnswers[s.CurrentIndex],
		Revealed:     s.Revealed,
		Progress:     s.Progress(),
		Completed:    s.Completed,
	}
	if s.Revealed || s.Completed {
		correct := q.Correct
		isCorrect := v.Selected == correct
		v.Correct = &correct
		v.IsCorrect = &isCorrect
		v.Explanation = q.Explanation
	}
	if s.Completed {
		count := s.CorrectCount()
		score := s.ScorePercent()
		v.CorrectCount = &count
		v.ScorePercent = &score
		v.DisplayScore = s.DisplayScore()
	}
	return v
}
