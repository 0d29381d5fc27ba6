package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/lithuaningo/internal/daykey"
	"github.com/example/lithuaningo/internal/storage"
	"github.com/example/lithuaningo/pkg/models"
)

// State is the phase of a user's daily learning session
type State string

const (
	NotStarted         State = "not_started"
	WordsInProgress    State = "words_in_progress"
	WordsCompleted     State = "words_completed"
	SentencesCompleted State = "sentences_completed"
	QuizInProgress     State = "quiz_in_progress"
	QuizCompleted      State = "quiz_completed"
)

// Persistence concerns namespacing day-scoped keys. None contain underscores.
const (
	concernSession   = "session"
	concernQuiz      = "quiz"
	concernQuestions = "quizquestions"
	concernIncorrect = "incorrect"
)

// Options tunes tracker behavior
type Options struct {
	// DateKey overrides the current learning day. Empty means today.
	DateKey string
	// SkipWordGating short-circuits the all-words-clicked check. Debug aid.
	SkipWordGating bool
}

// Tracker owns what the user has done today and the transition rules that
// unlock subsequent activities. One instance per (user, learning day).
//
// Word completion is recomputed from the sentence content on every read
// rather than maintained incrementally, so content changing mid-session
// cannot leave the derived flag stale.
type Tracker struct {
	userID  string
	dateKey string
	opts    Options
	kv      *storage.KVRepository
	logger  *zap.Logger

	mu            sync.Mutex
	sentences     []models.Sentence
	clicked       map[string]struct{}
	sentencesDone bool
	quiz          *quizState
}

// NewTracker creates a tracker for a user's current learning day. The caller
// must guard against an empty userID.
func NewTracker(kv *storage.KVRepository, userID string, logger *zap.Logger, opts Options) *Tracker {
	dk := opts.DateKey
	if dk == "" {
		dk = daykey.Current()
	}
	return &Tracker{
		userID:  userID,
		dateKey: dk,
		opts:    opts,
		kv:      kv,
		logger:  logger,
		clicked: make(map[string]struct{}),
	}
}

// UserID returns the tracked user
func (t *Tracker) UserID() string { return t.userID }

// DateKey returns the learning day this tracker is scoped to
func (t *Tracker) DateKey() string { return t.dateKey }

// Load sets the day's sentence content and reconciles in-memory state against
// whatever was persisted earlier today. Persistence failures degrade to an
// empty session; the user can always restart the flow.
func (t *Tracker) Load(ctx context.Context, sentences []models.Sentence) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sentences = sentences
	t.clicked = make(map[string]struct{})
	t.sentencesDone = false
	t.quiz = nil

	var persisted models.SessionState
	found, err := t.kv.GetJSON(ctx, t.key(concernSession), &persisted)
	if err != nil {
		t.logger.Warn("failed to load session state, starting empty",
			zap.String("user_id", t.userID), zap.Error(err))
	}
	if found {
		for _, w := range persisted.ClickedWords {
			if w = daykey.CleanWord(w); w != "" {
				t.clicked[w] = struct{}{}
			}
		}
		// The persisted flag wins even when the clicked set is empty in
		// this process: a user who already advanced is never re-prompted.
		t.sentencesDone = persisted.SentencesCompleted
	}

	t.loadQuizLocked(ctx)
	return t.stateLocked()
}

// ClickWord records a tapped word and returns the resulting state. Words are
// normalized before membership tests; repeated clicks are idempotent.
func (t *Tracker) ClickWord(ctx context.Context, word string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := daykey.CleanWord(word)
	if w == "" {
		return t.stateLocked()
	}
	if _, seen := t.clicked[w]; !seen {
		t.clicked[w] = struct{}{}
		t.persistSessionLocked(ctx)
	}
	return t.stateLocked()
}

// WordsCompleted reports whether every normalized word across today's
// sentences has been clicked. Vacuously true for an empty sentence set.
func (t *Tracker) WordsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wordsCompletedLocked()
}

func (t *Tracker) wordsCompletedLocked() bool {
	if t.opts.SkipWordGating {
		return true
	}
	for _, s := range t.sentences {
		for _, w := range daykey.Words(s.Text) {
			if _, ok := t.clicked[w]; !ok {
				return false
			}
		}
	}
	// An empty required set is trivially satisfied
	return true
}

// ProceedToQuiz marks the sentence phase finished. The flag is persisted
// before the transition is reported so a restart cannot re-prompt the user.
func (t *Tracker) ProceedToQuiz(ctx context.Context) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.wordsCompletedLocked() {
		return t.stateLocked(), fmt.Errorf("cannot proceed to quiz: %d words still unclicked", t.remainingLocked())
	}
	if !t.sentencesDone {
		t.sentencesDone = true
		if err := t.writeSessionLocked(ctx); err != nil {
			t.sentencesDone = false
			return t.stateLocked(), fmt.Errorf("failed to persist completion: %w", err)
		}
	}
	return t.stateLocked(), nil
}

// Reset clears all day-scoped state for the current user and returns the
// session to NotStarted without waiting for day rollover. This is the only
// user-triggered reset.
func (t *Tracker) Reset(ctx context.Context) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clicked = make(map[string]struct{})
	t.sentencesDone = false
	t.quiz = nil
	if err := t.kv.DeleteUserDay(ctx, t.userID, t.dateKey); err != nil {
		return t.stateLocked(), fmt.Errorf("failed to clear day state: %w", err)
	}
	return t.stateLocked(), nil
}

// State derives the current session phase
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	if t.quiz != nil {
		if t.quiz.snapshot.Completed {
			return QuizCompleted
		}
		return QuizInProgress
	}
	if t.sentencesDone {
		return SentencesCompleted
	}
	if t.wordsCompletedLocked() {
		return WordsCompleted
	}
	if len(t.clicked) > 0 {
		return WordsInProgress
	}
	return NotStarted
}

// ClickedWords returns the normalized clicked set, sorted
func (t *Tracker) ClickedWords() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	words := make([]string, 0, len(t.clicked))
	for w := range t.clicked {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Remaining returns how many distinct required words are still unclicked
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingLocked()
}

func (t *Tracker) remainingLocked() int {
	missing := make(map[string]struct{})
	for _, s := range t.sentences {
		for _, w := range daykey.Words(s.Text) {
			if _, ok := t.clicked[w]; !ok {
				missing[w] = struct{}{}
			}
		}
	}
	return len(missing)
}

func (t *Tracker) key(concern string) string {
	return daykey.BuildKey(concern, t.userID, t.dateKey)
}

// persistSessionLocked writes the session snapshot, logging instead of
// failing: the next successful write overwrites.
func (t *Tracker) persistSessionLocked(ctx context.Context) {
	if err := t.writeSessionLocked(ctx); err != nil {
		t.logger.Warn("failed to persist session state",
			zap.String("user_id", t.userID), zap.Error(err))
	}
}

func (t *Tracker) writeSessionLocked(ctx context.Context) error {
	words := make([]string, 0, len(t.clicked))
	for w := range t.clicked {
		words = append(words, w)
	}
	sort.Strings(words)
	return t.kv.Set(ctx, t.key(concernSession), models.SessionState{
		UserID:             t.userID,
		DateKey:            t.dateKey,
		ClickedWords:       words,
		SentencesCompleted: t.sentencesDone,
		UpdatedAt:          time.Now().UTC(),
	})
}
