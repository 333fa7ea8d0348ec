package service

import (
	"context"
	"errors"
	"testing"

	"tango/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthService_Admit(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		authorized    bool
		mockError     error
		expectedError bool
	}{
		{name: "authorized user", userID: 123, authorized: true},
		{name: "new user", userID: 456, authorized: false},
		{name: "database error", userID: 789, mockError: errors.New("db error"), expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testutil.NewTestUser(tt.userID, tt.authorized)
			mockRepo := new(testutil.MockUserRepository)
			mockRepo.On("Touch", mock.Anything, user.UserID).Return(user.Authorized, tt.mockError)

			service := NewAuthService(mockRepo, "password", testutil.NewTestLogger())

			authorized, err := service.Admit(context.Background(), tt.userID)

			if tt.expectedError {
				assert.ErrorIs(t, err, tt.mockError)
				assert.False(t, authorized)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.authorized, authorized)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Unlock(t *testing.T) {
	tests := []struct {
		name           string
		botPassword    string
		inputPassword  string
		authorizeErr   error
		expectUnlocked bool
		expectedError  bool
	}{
		{name: "correct password", botPassword: "secret123", inputPassword: "secret123", expectUnlocked: true},
		{name: "surrounding spaces", botPassword: "secret123", inputPassword: " secret123\n", expectUnlocked: true},
		{name: "incorrect password", botPassword: "secret123", inputPassword: "wrong"},
		{name: "empty password", botPassword: "secret123", inputPassword: ""},
		{name: "case sensitive", botPassword: "Secret123", inputPassword: "secret123"},
		{name: "no password configured", botPassword: "", inputPassword: ""},
		{
			name:          "store fails",
			botPassword:   "secret123",
			inputPassword: "secret123",
			authorizeErr:  errors.New("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockUserRepository)
			if tt.expectUnlocked || tt.authorizeErr != nil {
				mockRepo.On("Authorize", mock.Anything, int64(42)).Return(tt.authorizeErr)
			}

			service := NewAuthService(mockRepo, tt.botPassword, testutil.NewTestLogger())

			unlocked, err := service.Unlock(context.Background(), 42, tt.inputPassword)

			if tt.expectedError {
				assert.ErrorIs(t, err, tt.authorizeErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectUnlocked, unlocked)
			mockRepo.AssertExpectations(t)
			if !tt.expectUnlocked && tt.authorizeErr == nil {
				mockRepo.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
			}
		})
	}
}
