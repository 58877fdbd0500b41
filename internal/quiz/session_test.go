package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trail-backend/internal/models"
)

func threeQuestions() []models.QuizQuestion {
	opts := []string{"a", "b", "c", "d"}
	return []models.QuizQuestion{
		{Question: "q1", Options: opts, Correct: 0, Explanation: "e1"},
		{Question: "q2", Options: opts, Correct: 1, Explanation: "e2"},
		{Question: "q3", Options: opts, Correct: 0, Explanation: "e3"},
	}
}

func answerAll(t *testing.T, s *Session, picks []int) {
	t.Helper()
	for _, p := range picks {
		require.NoError(t, s.Select(p))
		require.NoError(t, s.Next())
	}
}

func TestNew_EmptyQuestions(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestNew_StartsUnanswered(t *testing.T) {
	s, err := New(threeQuestions())
	require.NoError(t, err)

	assert.Equal(t, []int{-1, -1, -1}, s.SelectedAnswers)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.False(t, s.Revealed)
	assert.False(t, s.Completed)
}

func TestScore_TwoOfThree(t *testing.T) {
	s, _ := New(threeQuestions())
	answerAll(t, s, []int{0, 2, 0})

	assert.True(t, s.Completed)
	assert.Equal(t, 2, s.CorrectCount())
	assert.InDelta(t, 66.67, s.ScorePercent(), 0.01)
	assert.Equal(t, "67%", s.DisplayScore())
}

func TestCompletedOnlyAfterLastAdvance(t *testing.T) {
	s, _ := New(threeQuestions())

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Select(1))
		assert.False(t, s.Completed, "completed before advancing past question %d", i)
		require.NoError(t, s.Next())
	}
	assert.True(t, s.Completed)
}

func TestSelect_IdempotentWhenRevealed(t *testing.T) {
	s, _ := New(threeQuestions())
	require.NoError(t, s.Select(2))
	before := *s
	before.SelectedAnswers = append([]int(nil), s.SelectedAnswers...)

	require.NoError(t, s.Select(2))
	require.NoError(t, s.Select(0))

	assert.Equal(t, before.SelectedAnswers, s.SelectedAnswers)
	assert.Equal(t, before.CurrentIndex, s.CurrentIndex)
	assert.True(t, s.Revealed)
}

func TestSelect_OutOfRange(t *testing.T) {
	s, _ := New(threeQuestions())

	assert.ErrorIs(t, s.Select(4), ErrOptionOutOfRange)
	assert.ErrorIs(t, s.Select(-1), ErrOptionOutOfRange)
	assert.False(t, s.Revealed)
}

func TestNext_RequiresAnswer(t *testing.T) {
	s, _ := New(threeQuestions())
	assert.ErrorIs(t, s.Next(), ErrNotAnswered)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestPrevious_RestoresReveal(t *testing.T) {
	s, _ := New(threeQuestions())
	require.NoError(t, s.Select(0))
	require.NoError(t, s.Next())

	s.Previous()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.True(t, s.Revealed)

	s.Previous()
	assert.Equal(t, 0, s.CurrentIndex, "previous at the first question stays put")
}

func TestPrevious_UnansweredStaysHidden(t *testing.T) {
	s, _ := New(threeQuestions())
	s.CurrentIndex = 2
	s.Previous()

	assert.Equal(t, 1, s.CurrentIndex)
	assert.False(t, s.Revealed)
}

func TestRetake_ResetsEverything(t *testing.T) {
	s, _ := New(threeQuestions())
	answerAll(t, s, []int{0, 1, 0})
	require.True(t, s.Completed)

	s.Retake()

	assert.Equal(t, float64(0), s.Progress())
	assert.False(t, s.Revealed)
	assert.False(t, s.Completed)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, []int{-1, -1, -1}, s.SelectedAnswers)
}

func TestProgress_IgnoresCorrectness(t *testing.T) {
	s, _ := New(threeQuestions())
	require.NoError(t, s.Select(3))
	require.NoError(t, s.Next())
	require.NoError(t, s.Select(3))

	assert.InDelta(t, 66.67, s.Progress(), 0.01)
	assert.Equal(t, 0, s.CorrectCount())
}

func TestView_HidesAnswerUntilRevealed(t *testing.T) {
	s, _ := New(threeQuestions())

	v := s.View()
	assert.Nil(t, v.Correct)
	assert.Empty(t, v.Explanation)
	assert.Equal(t, -1, v.Selected)

	require.NoError(t, s.Select(1))
	v = s.View()
	require.NotNil(t, v.Correct)
	assert.Equal(t, 0, *v.Correct)
	assert.False(t, *v.IsCorrect)
	assert.Equal(t, "e1", v.Explanation)
	assert.Nil(t, v.ScorePercent)
}

func TestView_ScoreAfterCompletion(t *testing.T) {
	s, _ := New(threeQuestions())
	answerAll(t, s, []int{0, 1, 0})

	v := s.View()
	require.NotNil(t, v.ScorePercent)
	assert.Equal(t, float64(100), *v.ScorePercent)
	assert.Equal(t, "100%", v.DisplayScore)
	assert.Equal(t, 3, *v.CorrectCount)
}
