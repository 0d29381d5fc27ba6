package session

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/lithuaningo/pkg/models"
)

// quizState pairs the day's question set with the resume snapshot
type quizState struct {
	questions []models.QuizQuestion
	snapshot  models.QuizSnapshot
}

// loadQuizLocked reconciles any in-progress quiz persisted earlier today.
// Both the question set and the snapshot must be present; a half-persisted
// quiz reads as no quiz.
func (t *Tracker) loadQuizLocked(ctx context.Context) {
	var questions []models.QuizQuestion
	foundQ, err := t.kv.GetJSON(ctx, t.key(concernQuestions), &questions)
	if err != nil {
		t.logger.Warn("failed to load quiz questions",
			zap.String("user_id", t.userID), zap.Error(err))
		return
	}
	var snapshot models.QuizSnapshot
	foundS, err := t.kv.GetJSON(ctx, t.key(concernQuiz), &snapshot)
	if err != nil {
		t.logger.Warn("failed to load quiz snapshot",
			zap.String("user_id", t.userID), zap.Error(err))
		return
	}
	if !foundQ || !foundS || len(questions) == 0 {
		return
	}
	if snapshot.Answers == nil {
		snapshot.Answers = make(map[int]bool)
	}
	t.quiz = &quizState{questions: questions, snapshot: snapshot}
	// A resumed quiz implies the sentence phase was finished
	t.sentencesDone = true
}

// StartQuiz begins the day's quiz with the given questions. The sentence
// phase must be finished first.
func (t *Tracker) StartQuiz(ctx context.Context, questions []models.QuizQuestion) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sentencesDone {
		return fmt.Errorf("cannot start quiz before completing sentences")
	}
	if len(questions) == 0 {
		return fmt.Errorf("cannot start quiz with no questions")
	}
	if t.quiz != nil {
		return fmt.Errorf("quiz already in progress")
	}

	t.quiz = &quizState{
		questions: questions,
		snapshot: models.QuizSnapshot{
			Answers:   make(map[int]bool),
			UpdatedAt: time.Now().UTC(),
		},
	}
	if err := t.kv.Set(ctx, t.key(concernQuestions), questions); err != nil {
		t.quiz = nil
		return fmt.Errorf("failed to persist quiz questions: %w", err)
	}
	t.persistQuizLocked(ctx)
	return nil
}

// CurrentQuestion returns the question awaiting an answer, or false when no
// quiz is in progress or the quiz is finished
func (t *Tracker) CurrentQuestion() (models.QuizQuestion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quiz == nil || t.quiz.snapshot.Completed {
		return models.QuizQuestion{}, false
	}
	idx := t.quiz.snapshot.CurrentIndex
	if idx < 0 || idx >= len(t.quiz.questions) {
		return models.QuizQuestion{}, false
	}
	return t.quiz.questions[idx], true
}

// SubmitAnswer records correctness for the current question and raises the
// show-continue flag. Incorrectly answered questions are added to the day's
// persisted incorrect set for later review.
func (t *Tracker) SubmitAnswer(ctx context.Context, correct bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quiz == nil {
		return fmt.Errorf("no quiz in progress")
	}
	if t.quiz.snapshot.Completed {
		return fmt.Errorf("quiz already completed")
	}
	idx := t.quiz.snapshot.CurrentIndex
	if t.quiz.snapshot.ShowContinue {
		return fmt.Errorf("question %d already answered", idx)
	}

	t.quiz.snapshot.Answers[idx] = correct
	t.quiz.snapshot.ShowContinue = true
	t.persistQuizLocked(ctx)

	if !correct && idx < len(t.quiz.questions) {
		t.recordIncorrectLocked(ctx, t.quiz.questions[idx].ID)
	}
	return nil
}

// Advance moves past an answered question, completing the quiz after the
// last one
func (t *Tracker) Advance(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.quiz == nil {
		return fmt.Errorf("no quiz in progress")
	}
	if !t.quiz.snapshot.ShowContinue {
		return fmt.Errorf("current question not answered yet")
	}

	t.quiz.snapshot.CurrentIndex++
	t.quiz.snapshot.ShowContinue = false
	if t.quiz.snapshot.CurrentIndex >= len(t.quiz.questions) {
		t.quiz.snapshot.Completed = true
	}
	t.persistQuizLocked(ctx)
	return nil
}

// QuizProgress returns answered count, total count and correct count
func (t *Tracker) QuizProgress() (answered, total, correct int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quiz == nil {
		return 0, 0, 0
	}
	for _, ok := range t.quiz.snapshot.Answers {
		answered++
		if ok {
			correct++
		}
	}
	return answered, len(t.quiz.questions), correct
}

// IncorrectQuestionIDs returns the day's persisted set of question IDs the
// user answered incorrectly
func (t *Tracker) IncorrectQuestionIDs(ctx context.Context) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []int64
	if _, err := t.kv.GetJSON(ctx, t.key(concernIncorrect), &ids); err != nil {
		t.logger.Warn("failed to load incorrect set",
			zap.String("user_id", t.userID), zap.Error(err))
	}
	return ids
}

func (t *Tracker) recordIncorrectLocked(ctx context.Context, questionID int64) {
	var ids []int64
	if _, err := t.kv.GetJSON(ctx, t.key(concernIncorrect), &ids); err != nil {
		t.logger.Warn("failed to load incorrect set",
			zap.String("user_id", t.userID), zap.Error(err))
		return
	}
	for _, id := range ids {
		if id == questionID {
			return
		}
	}
	ids = append(ids, questionID)
	if err := t.kv.Set(ctx, t.key(concernIncorrect), ids); err != nil {
		t.logger.Warn("failed to persist incorrect set",
			zap.String("user_id", t.userID), zap.Error(err))
	}
}

func (t *Tracker) persistQuizLocked(ctx context.Context) {
	t.quiz.snapshot.UpdatedAt = time.Now().UTC()
	if err := t.kv.Set(ctx, t.key(concernQuiz), t.quiz.snapshot); err != nil {
		t.logger.Warn("failed to persist quiz snapshot",
			zap.String("user_id", t.userID), zap.Error(err))
	}
}
