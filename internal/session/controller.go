// Package session routes user actions to the word list, the editor and the
// quiz, and derives what the surfaces show after each action.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"tango/internal/domain"
	"tango/internal/editor"
	"tango/internal/quiz"
	"tango/internal/tangofile"
	"tango/internal/wordlist"

	"go.uber.org/zap"
)

// ErrUnknownAction is returned for an action kind the controller does not handle
var ErrUnknownAction = errors.New("unknown action")

// Translator is the external batch translation collaborator
type Translator interface {
	TranslateBatch(ctx context.Context, words []string) ([]string, error)
}

// Controller owns the single study session. Dispatch runs one action at a
// time to completion; surfaces never touch the components directly.
type Controller struct {
	mu sync.Mutex

	store      *wordlist.Store
	quiz       *quiz.Session
	translator Translator
	logger     *zap.Logger

	// sectionsHidden is true exactly while a started quiz has not ended
	sectionsHidden bool
}

// NewController creates a controller with an empty word list. rng drives the
// quiz shuffle; nil means time-seeded.
func NewController(translator Translator, rng *rand.Rand, logger *zap.Logger) *Controller {
	return &Controller{
		store:      wordlist.New(),
		quiz:       quiz.NewSession(rng),
		translator: translator,
		logger:     logger,
	}
}

// Dispatch applies one action and returns the recomputed view. Parse and
// translation failures are reported as notices with a nil error; an error
// return means the action was aborted and state is unchanged.
func (c *Controller) Dispatch(ctx context.Context, a Action) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("Dispatching action", zap.String("action", string(a.Kind)))

	var v View
	var err error

	switch a.Kind {
	case ActionView:
	case ActionAddWords:
		c.addWords(&v, a.Text)
	case ActionClearList:
		c.clearList(&v)
	case ActionTranslate:
		c.translate(ctx, &v)
	case ActionSaveEdits:
		c.saveEdits(&v, a.Rows)
	case ActionStartTest:
		c.startTest(&v, a.Direction)
	case ActionEndTest:
		c.quiz.End()
		c.sectionsHidden = false
		v.notify(NoticeSuccess, "Test ended.")
	case ActionResetResults:
		c.quiz.Reset()
		c.sectionsHidden = false
		v.notify(NoticeInfo, "Results reset.")
	case ActionSubmitAnswer:
		err = c.submitAnswer(&v, a.Text)
	case ActionRevealAnswer:
		err = c.revealAnswer(&v)
	case ActionAdvance:
		err = c.advance(&v)
	case ActionRestartQuiz:
		c.restartQuiz(&v)
	case ActionLoad:
		c.load(&v, a.Text)
	case ActionSave:
		c.save(&v)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}

	if err != nil {
		c.logger.Error("Action aborted",
			zap.String("action", string(a.Kind)),
			zap.Error(err),
		)
		return View{}, err
	}

	c.derive(&v)
	return v, nil
}

func (c *Controller) addWords(v *View, text string) {
	added := c.store.AddWords(text)
	v.notify(NoticeSuccess, fmt.Sprintf("Added %d words.", added))
}

func (c *Controller) clearList(v *View) {
	c.store.Clear()
	c.quiz.Reset()
	c.sectionsHidden = false
	v.notify(NoticeInfo, "List cleared.")
}

func (c *Controller) translate(ctx context.Context, v *View) {
	words := c.store.NativeWords()
	if len(words) == 0 {
		c.store.SetTranslations(nil)
		v.notify(NoticeSuccess, "Translated.")
		return
	}

	if c.translator == nil {
		v.notify(NoticeError, (&domain.TranslationError{Err: errors.New("no translator configured")}).Error())
		return
	}

	translations, err := c.translator.TranslateBatch(ctx, words)
	if err != nil {
		trErr := &domain.TranslationError{Err: err}
		c.logger.Warn("Translation failed",
			zap.Int("words", len(words)),
			zap.Error(err),
		)
		v.notify(NoticeError, trErr.Error())
		return
	}

	c.store.SetTranslations(translations)
	c.logger.Info("Word list translated", zap.Int("words", len(words)))
	v.notify(NoticeSuccess, "Translated.")
}

func (c *Controller) saveEdits(v *View, rows []domain.EditableRow) {
	native, translations := editor.Reconcile(rows)
	c.store.ReplaceAll(native, translations)
	c.quiz.Reset()
	c.sectionsHidden = false
	v.notify(NoticeSuccess, fmt.Sprintf("Edits saved (%d pairs).", len(native)))
}

func (c *Controller) startTest(v *View, direction domain.Direction) {
	if err := c.quiz.Start(c.store.PairedView(), direction); err != nil {
		v.notify(NoticeWarning, "There are no pairs to test.")
		return
	}
	c.sectionsHidden = true
	c.logger.Info("Test started",
		zap.Int("pairs", c.quiz.Total()),
		zap.String("direction", direction.String()),
	)
}

func (c *Controller) submitAnswer(v *View, text string) error {
	result, err := c.quiz.SubmitAnswer(text)
	if errors.Is(err, domain.ErrQuizInactive) {
		v.notify(NoticeWarning, "No test in progress.")
		return nil
	}
	if err != nil {
		return err
	}

	v.LastResult = &result
	switch {
	case result.Correct:
		v.notify(NoticeSuccess, "Correct!")
	case result.Close():
		v.notify(NoticeError, "Incorrect, but close.")
		v.notify(NoticeInfo, "Answer: "+result.Expected)
	default:
		v.notify(NoticeError, "Incorrect.")
		v.notify(NoticeInfo, "Answer: "+result.Expected)
	}
	return nil
}

func (c *Controller) revealAnswer(v *View) error {
	answer, err := c.quiz.Reveal()
	if errors.Is(err, domain.ErrQuizInactive) {
		v.notify(NoticeWarning, "No test in progress.")
		return nil
	}
	if err != nil {
		return err
	}
	v.Revealed = answer
	return nil
}

func (c *Controller) advance(v *View) error {
	completed, err := c.quiz.Advance()
	if errors.Is(err, domain.ErrQuizInactive) {
		v.notify(NoticeWarning, "No test in progress.")
		return nil
	}
	if err != nil {
		return err
	}

	if completed {
		c.sectionsHidden = false
		v.Completed = true
		v.notify(NoticeSuccess, "The test is finished.")
		c.logger.Info("Test completed",
			zap.Int("correct", c.quiz.Correct()),
			zap.Int("total", c.quiz.Total()),
		)
	}
	return nil
}

func (c *Controller) restartQuiz(v *View) {
	if !c.quiz.Active() {
		v.notify(NoticeWarning, "No test in progress.")
		return
	}
	c.quiz.Restart()
}

func (c *Controller) load(v *View, text string) {
	native, translations, err := tangofile.Decode(text)
	if err != nil {
		c.logger.Warn("Failed to load word list", zap.Error(err))
		v.notify(NoticeError, "Load failed: "+err.Error())
		return
	}
	c.store.ReplaceAll(native, translations)
	v.notify(NoticeSuccess, fmt.Sprintf("Loaded %d words.", len(native)))
}

func (c *Controller) save(v *View) {
	native, translations := c.store.NativeWords(), c.store.Translations()
	v.Exported = tangofile.Encode(native, translations)

	v.Unaligned = tangofile.Unaligned(native, translations)
	if len(v.Unaligned) > 0 {
		c.logger.Warn("Exported list has blank entries", zap.Strings("words", v.Unaligned))
		v.notify(NoticeWarning, fmt.Sprintf(
			"Missing entries for: %s. Fill them in before saving, or they will pair with the wrong words when loaded.",
			strings.Join(v.Unaligned, ", "),
		))
	}
}

// derive fills the display state shared by every action
func (c *Controller) derive(v *View) {
	v.SectionsHidden = c.sectionsHidden
	v.WordCount = c.store.Len()
	v.Pairs = c.store.PairedView()

	if c.quiz.Total() > 0 {
		v.Score = c.quiz.ScoreText()
		v.Correct = c.quiz.Correct()
	}

	if !c.quiz.Active() {
		return
	}
	q, err := c.quiz.CurrentQuestion()
	if err != nil {
		// Active sessions always have a current question
		c.logger.Error("Active quiz without current question", zap.Error(err))
		return
	}
	v.Quiz = &QuizView{
		Index:       c.quiz.Index(),
		Total:       c.quiz.Total(),
		Progress:    c.quiz.Progress(),
		Direction:   c.quiz.Direction().String(),
		PromptLabel: q.PromptLabel,
		AnswerLabel: q.AnswerLabel,
		Prompt:      q.Prompt,
		Answered:    c.quiz.Answered(),
	}
}

func (v *View) notify(level NoticeLevel, text string) {
	v.Notices = append(v.Notices, Notice{Level: level, Text: text})
}
