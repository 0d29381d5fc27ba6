package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lithuaningo/pkg/models"
)

func testQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{ID: 101, SentenceID: 1, Question: "What does 'labas' mean?", Options: []string{"hello", "bye"}, CorrectIndex: 0},
		{ID: 102, SentenceID: 2, Question: "What does 'rytas' mean?", Options: []string{"evening", "morning"}, CorrectIndex: 1},
		{ID: 103, SentenceID: 3, Question: "What does 'namas' mean?", Options: []string{"house", "street"}, CorrectIndex: 0},
	}
}

func startedQuiz(t *testing.T) (*Tracker, context.Context) {
	t.Helper()
	tr := newTestTracker(t, Options{SkipWordGating: true})
	ctx := context.Background()
	tr.Load(ctx, testSentences())
	_, err := tr.ProceedToQuiz(ctx)
	require.NoError(t, err)
	require.NoError(t, tr.StartQuiz(ctx, testQuestions()))
	return tr, ctx
}

func TestStartQuizRequiresSentencePhase(t *testing.T) {
	tr := newTestTracker(t, Options{})
	ctx := context.Background()
	tr.Load(ctx, testSentences())

	err := tr.StartQuiz(ctx, testQuestions())
	assert.Error(t, err)
}

func TestStartQuizRequiresQuestions(t *testing.T) {
	tr := newTestTracker(t, Options{SkipWordGating: true})
	ctx := context.Background()
	tr.Load(ctx, testSentences())
	_, err := tr.ProceedToQuiz(ctx)
	require.NoError(t, err)

	assert.Error(t, tr.StartQuiz(ctx, nil))
}

func TestQuizFlow(t *testing.T) {
	tr, ctx := startedQuiz(t)

	assert.Equal(t, QuizInProgress, tr.State())
	q, ok := tr.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, int64(101), q.ID)

	// Answer must come before advance
	assert.Error(t, tr.Advance(ctx))

	require.NoError(t, tr.SubmitAnswer(ctx, true))
	// Double submission of the same question is rejected
	assert.Error(t, tr.SubmitAnswer(ctx, false))
	require.NoError(t, tr.Advance(ctx))

	require.NoError(t, tr.SubmitAnswer(ctx, false))
	require.NoError(t, tr.Advance(ctx))

	require.NoError(t, tr.SubmitAnswer(ctx, true))
	require.NoError(t, tr.Advance(ctx))

	assert.Equal(t, QuizCompleted, tr.State())
	answered, total, correct := tr.QuizProgress()
	assert.Equal(t, 3, answered)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, correct)

	// Nothing left to answer
	_, ok = tr.CurrentQuestion()
	assert.False(t, ok)
	assert.Error(t, tr.SubmitAnswer(ctx, true))
}

func TestQuizResumeAfterRestart(t *testing.T) {
	tr, ctx := startedQuiz(t)

	require.NoError(t, tr.SubmitAnswer(ctx, true))
	require.NoError(t, tr.Advance(ctx))
	require.NoError(t, tr.SubmitAnswer(ctx, false))
	// Killed before advancing past question two

	reloaded := reopenTracker(Options{})
	state := reloaded.Load(ctx, testSentences())
	assert.Equal(t, QuizInProgress, state)

	q, ok := reloaded.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, int64(102), q.ID)

	answered, total, correct := reloaded.QuizProgress()
	assert.Equal(t, 2, answered)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, correct)

	// The show-continue flag survived, so advance works without re-answering
	require.NoError(t, reloaded.Advance(ctx))
	q, ok = reloaded.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, int64(103), q.ID)
}

func TestQuizCompletedSurvivesRestart(t *testing.T) {
	tr, ctx := startedQuiz(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, tr.SubmitAnswer(ctx, true))
		require.NoError(t, tr.Advance(ctx))
	}
	assert.Equal(t, QuizCompleted, tr.State())

	reloaded := reopenTracker(Options{})
	assert.Equal(t, QuizCompleted, reloaded.Load(ctx, testSentences()))
}

func TestIncorrectAnswersRecordedOnce(t *testing.T) {
	tr, ctx := startedQuiz(t)

	require.NoError(t, tr.SubmitAnswer(ctx, false))
	require.NoError(t, tr.Advance(ctx))
	require.NoError(t, tr.SubmitAnswer(ctx, false))
	require.NoError(t, tr.Advance(ctx))
	require.NoError(t, tr.SubmitAnswer(ctx, true))
	require.NoError(t, tr.Advance(ctx))

	assert.Equal(t, []int64{101, 102}, tr.IncorrectQuestionIDs(ctx))
}

func TestResetClearsQuiz(t *testing.T) {
	tr, ctx := startedQuiz(t)
	require.NoError(t, tr.SubmitAnswer(ctx, false))

	state, err := tr.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, NotStarted, state)
	assert.Empty(t, tr.IncorrectQuestionIDs(ctx))

	reloaded := reopenTracker(Options{})
	assert.Equal(t, NotStarted, reloaded.Load(ctx, testSentences()))
}
