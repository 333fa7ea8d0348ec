package middleware

import (
	"context"
	"fmt"
	"testing"

	"tango/internal/service"
	"tango/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	tele "gopkg.in/telebot.v3"
)

// fakeContext implements the parts of tele.Context the middleware uses
type fakeContext struct {
	tele.Context
	sender *tele.User
	sent   []interface{}
}

func (c *fakeContext) Sender() *tele.User { return c.sender }

func (c *fakeContext) Callback() *tele.Callback { return nil }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		authorized   bool
		authErr      error
		expectNext   bool
		expectedSent string
	}{
		{
			name:       "authorized user passes",
			authorized: true,
			expectNext: true,
		},
		{
			name:         "unauthorized user asked for password",
			authorized:   false,
			expectedSent: msgAskPassword,
		},
		{
			name:         "authorization check fails",
			authErr:      fmt.Errorf("db error"),
			expectedSent: msgInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockUserRepository)
			mockRepo.On("Touch", mock.Anything, int64(42)).Return(tt.authorized, tt.authErr)

			authService := service.NewAuthService(mockRepo, "secret", testutil.NewTestLogger())
			mw := AuthMiddleware(context.Background(), authService, testutil.NewTestLogger())

			called := false
			next := func(tele.Context) error {
				called = true
				return nil
			}

			c := &fakeContext{sender: &tele.User{ID: 42}}
			err := mw(next)(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectNext, called)
			if tt.expectedSent != "" {
				assert.Equal(t, []interface{}{tt.expectedSent}, c.sent)
			} else {
				assert.Empty(t, c.sent)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
