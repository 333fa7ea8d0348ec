package handler

import (
	"context"
	"math/rand"
	"testing"

	"tango/internal/domain"
	"tango/internal/service"
	"tango/internal/session"
	"tango/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// fakeContext records what the handler sends for one text message
type fakeContext struct {
	tele.Context
	sender *tele.User
	text   string
	sent   []interface{}
}

func (c *fakeContext) Sender() *tele.User { return c.sender }

func (c *fakeContext) Text() string { return c.text }

func (c *fakeContext) Callback() *tele.Callback { return nil }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func (c *fakeContext) lastSent() string {
	if len(c.sent) == 0 {
		return ""
	}
	s, _ := c.sent[len(c.sent)-1].(string)
	return s
}

const testUserID = int64(42)

func newTestHandler(t *testing.T, authorized bool) (*Handler, *testutil.MockUserRepository) {
	t.Helper()

	userRepo := new(testutil.MockUserRepository)
	userRepo.On("Touch", mock.Anything, testUserID).Return(authorized, nil)

	logger := testutil.NewTestLogger()
	h := NewHandler(
		context.Background(),
		nil,
		service.NewAuthService(userRepo, "secret", logger),
		service.NewSnapshotService(new(testutil.MockSnapshotRepository), logger),
		session.NewController(nil, rand.New(rand.NewSource(1)), logger),
		logger,
	)
	return h, userRepo
}

func sendText(t *testing.T, h *Handler, text string) *fakeContext {
	t.Helper()
	c := &fakeContext{sender: &tele.User{ID: testUserID}, text: text}
	require.NoError(t, h.handleText(c))
	return c
}

func TestHandleText_Password(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		h, _ := newTestHandler(t, false)

		c := sendText(t, h, "guess")

		assert.Equal(t, msgWrongPassword, c.lastSent())
	})

	t.Run("correct password", func(t *testing.T) {
		h, userRepo := newTestHandler(t, false)
		userRepo.On("Authorize", mock.Anything, testUserID).Return(nil)

		c := sendText(t, h, "secret")

		require.Len(t, c.sent, 2)
		assert.Contains(t, c.sent[0], "Access granted")
		userRepo.AssertExpectations(t)
	})
}

func TestHandleText_IdleAddsWords(t *testing.T) {
	h, _ := newTestHandler(t, true)

	c := sendText(t, h, "犬\n猫")

	assert.Contains(t, c.lastSent(), "Added 2 words.")
	v, err := h.controller.Dispatch(context.Background(), session.Action{Kind: session.ActionView})
	require.NoError(t, err)
	assert.Equal(t, 2, v.WordCount)
}

func TestHandleText_QuizTakesAnswers(t *testing.T) {
	h, _ := newTestHandler(t, true)
	_, err := h.controller.Dispatch(context.Background(), session.Action{
		Kind: session.ActionLoad,
		Text: "ja_list:\n犬\nen_list:\ndog\n",
	})
	require.NoError(t, err)
	_, err = h.controller.Dispatch(context.Background(), session.Action{Kind: session.ActionStartTest})
	require.NoError(t, err)

	c := sendText(t, h, "Dog")

	assert.Contains(t, c.lastSent(), "Correct!")
	v, err := h.controller.Dispatch(context.Background(), session.Action{Kind: session.ActionView})
	require.NoError(t, err)
	assert.Equal(t, 1, v.WordCount)
	assert.Equal(t, 1, v.Correct)
}

func TestHandleText_WaitingEditSavesTable(t *testing.T) {
	h, _ := newTestHandler(t, true)
	h.SetState(testUserID, &domain.StateData{State: domain.StateWaitingEdit})

	c := sendText(t, h, "犬 = dog\n\n学校 = school")

	assert.Contains(t, c.lastSent(), "Edits saved (2 pairs).")
	assert.Equal(t, domain.StateIdle, h.GetState(testUserID).State)
	v, err := h.controller.Dispatch(context.Background(), session.Action{Kind: session.ActionView})
	require.NoError(t, err)
	assert.Equal(t, []domain.Pair{{Native: "犬", Translation: "dog"}, {Native: "学校", Translation: "school"}}, v.Pairs)
}

func TestHandleText_WaitingWords(t *testing.T) {
	h, _ := newTestHandler(t, true)
	h.SetState(testUserID, &domain.StateData{State: domain.StateWaitingWords})

	c := sendText(t, h, "犬")

	assert.Contains(t, c.lastSent(), "Added 1 words.")
	assert.Equal(t, domain.StateIdle, h.GetState(testUserID).State)
}

func TestHandleText_UnknownCommand(t *testing.T) {
	h, _ := newTestHandler(t, true)

	c := sendText(t, h, "/dance")

	assert.Contains(t, c.lastSent(), "Unknown command")
}
