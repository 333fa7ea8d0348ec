// Package quiz runs one shuffled self-test over a fixed deck of pairs.
//
// A session moves Idle -> Presenting -> Answered -> Presenting or Idle.
// Presenting and Answered differ only in whether the current item has been
// judged; the first judgment for an item decides its score.
package quiz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"tango/internal/domain"

	"github.com/agnivade/levenshtein"
)

// Question is the item currently shown
type Question struct {
	Prompt      string
	Expected    string
	PromptLabel string
	AnswerLabel string
}

// Result is the judgment of one submitted answer
type Result struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected"`
	// Distance is the edit distance between the normalized answer and the
	// expected one. It is a hint only and never affects the score.
	Distance int `json:"distance"`
}

// Close reports a wrong answer that is one edit away from the expected one
func (r Result) Close() bool {
	return !r.Correct && r.Distance == 1
}

// Session owns the deck and the position within it
type Session struct {
	rng *rand.Rand

	deck            []domain.Pair
	direction       domain.Direction
	currentIndex    int
	correctCount    int
	answeredCurrent bool
	active          bool
}

// NewSession creates an idle session. A nil rng is replaced by a time-seeded one.
func NewSession(rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{rng: rng}
}

// Start shuffles a copy of pairs into a new deck and presents the first item
func (s *Session) Start(pairs []domain.Pair, direction domain.Direction) error {
	if len(pairs) == 0 {
		return domain.ErrNothingToTest
	}

	deck := make([]domain.Pair, len(pairs))
	copy(deck, pairs)
	s.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	s.deck = deck
	s.direction = direction
	s.currentIndex = 0
	s.correctCount = 0
	s.answeredCurrent = false
	s.active = true
	return nil
}

// CurrentQuestion returns the item at the current position
func (s *Session) CurrentQuestion() (Question, error) {
	if len(s.deck) == 0 || s.currentIndex >= len(s.deck) {
		return Question{}, fmt.Errorf("%w: index %d, deck size %d", domain.ErrOutOfRange, s.currentIndex, len(s.deck))
	}

	pair := s.deck[s.currentIndex]
	if s.direction == domain.TargetToNative {
		return Question{
			Prompt:      pair.Translation,
			Expected:    pair.Native,
			PromptLabel: "English",
			AnswerLabel: "Japanese",
		}, nil
	}
	return Question{
		Prompt:      pair.Native,
		Expected:    pair.Translation,
		PromptLabel: "Japanese",
		AnswerLabel: "English",
	}, nil
}

// SubmitAnswer judges text against the expected answer, ignoring case and
// surrounding whitespace. Only the first judgment for an item can score.
func (s *Session) SubmitAnswer(text string) (Result, error) {
	if !s.active {
		return Result{}, domain.ErrQuizInactive
	}
	q, err := s.CurrentQuestion()
	if err != nil {
		return Result{}, err
	}

	got, want := normalize(text), normalize(q.Expected)
	result := Result{
		Correct:  got == want,
		Expected: q.Expected,
		Distance: levenshtein.ComputeDistance(got, want),
	}

	if result.Correct && !s.answeredCurrent {
		s.correctCount++
	}
	s.answeredCurrent = true

	return result, nil
}

// Reveal shows the expected answer without judging. The item counts as
// answered, so a later correct submission does not score.
func (s *Session) Reveal() (string, error) {
	if !s.active {
		return "", domain.ErrQuizInactive
	}
	q, err := s.CurrentQuestion()
	if err != nil {
		return "", err
	}
	s.answeredCurrent = true
	return q.Expected, nil
}

// Advance moves to the next item. At the last item it completes the
// session instead and reports true; the score is kept and the deck counts
// as exhausted.
func (s *Session) Advance() (bool, error) {
	if !s.active {
		return false, domain.ErrQuizInactive
	}
	if len(s.deck) == 0 || s.currentIndex >= len(s.deck) {
		return false, fmt.Errorf("%w: index %d, deck size %d", domain.ErrOutOfRange, s.currentIndex, len(s.deck))
	}

	if s.currentIndex < len(s.deck)-1 {
		s.currentIndex++
		s.answeredCurrent = false
		return false, nil
	}

	s.currentIndex = len(s.deck)
	s.answeredCurrent = false
	s.active = false
	return true, nil
}

// Restart returns to the first item of the same deck, keeping the score
func (s *Session) Restart() {
	s.currentIndex = 0
	s.answeredCurrent = false
}

// Reset discards the deck and all progress
func (s *Session) Reset() {
	s.deck = nil
	s.currentIndex = 0
	s.correctCount = 0
	s.answeredCurrent = false
	s.active = false
}

// End stops the session but keeps deck, position and score for display
func (s *Session) End() {
	s.active = false
}

// Active reports whether questions can still be answered
func (s *Session) Active() bool { return s.active }

// Answered reports whether the current item has been judged
func (s *Session) Answered() bool { return s.answeredCurrent }

func (s *Session) Index() int { return s.currentIndex }

func (s *Session) Total() int { return len(s.deck) }

func (s *Session) Correct() int { return s.correctCount }

func (s *Session) Direction() domain.Direction { return s.direction }

// Deck returns a copy of the current deck
func (s *Session) Deck() []domain.Pair {
	deck := make([]domain.Pair, len(s.deck))
	copy(deck, s.deck)
	return deck
}

// Progress returns (index+1)/len(deck), or 0 without a deck
func (s *Session) Progress() float64 {
	if len(s.deck) == 0 {
		return 0
	}
	if s.currentIndex >= len(s.deck) {
		return 1
	}
	return float64(s.currentIndex+1) / float64(len(s.deck))
}

// Judged returns how many items the user has gone through
func (s *Session) Judged() int {
	if s.currentIndex >= len(s.deck) {
		return len(s.deck)
	}
	if s.answeredCurrent {
		return s.currentIndex + 1
	}
	return s.currentIndex
}

// ScoreText renders the running score as "Correct: n / judged"
func (s *Session) ScoreText() string {
	return fmt.Sprintf("Correct: %d / %d", s.correctCount, s.Judged())
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
