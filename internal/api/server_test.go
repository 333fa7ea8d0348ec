package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tango/internal/domain"
	"tango/internal/session"
	"tango/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test_password"

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }

type failingDispatcher struct {
	err error
}

func (d failingDispatcher) Dispatch(context.Context, session.Action) (session.View, error) {
	return session.View{}, d.err
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := testutil.NewTestLogger()
	controller := session.NewController(nil, rand.New(rand.NewSource(1)), logger)
	return NewServer(controller, fakePinger{}, testToken, logger).Routes([]string{"*"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if method == http.MethodPost && strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) session.View {
	t.Helper()
	var v session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestServer_ActionFlow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/actions", `{"kind":"add_words","text":"犬\n猫"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 2, v.WordCount)

	rec = do(t, h, http.MethodPost, "/api/actions", `{"kind":"save_edits","rows":[{"native":"犬","translation":"dog"},{"native":"","translation":""}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.Equal(t, []domain.Pair{{Native: "犬", Translation: "dog"}}, v.Pairs)

	rec = do(t, h, http.MethodPost, "/api/actions", `{"kind":"start_test","direction":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.True(t, v.SectionsHidden)
	require.NotNil(t, v.Quiz)
	assert.Equal(t, "dog", v.Quiz.Prompt)
	assert.Equal(t, "en→ja", v.Quiz.Direction)

	rec = do(t, h, http.MethodPost, "/api/actions", `{"kind":"submit_answer","text":" 犬 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	require.NotNil(t, v.LastResult)
	assert.True(t, v.LastResult.Correct)

	rec = do(t, h, http.MethodPost, "/api/actions", `{"kind":"advance"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	v = decodeView(t, rec)
	assert.True(t, v.Completed)
	assert.False(t, v.SectionsHidden)
	assert.Equal(t, "Correct: 1 / 1", v.Score)

	rec = do(t, h, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeView(t, rec).WordCount)
}

func TestServer_ActionValidation(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedCode  string
		expectedField string
	}{
		{name: "malformed json", body: `{"kind":`, expectedCode: "INVALID_REQUEST_BODY"},
		{name: "unknown field", body: `{"kind":"view","extra":1}`, expectedCode: "INVALID_REQUEST_BODY"},
		{name: "missing kind", body: `{}`, expectedCode: "VALIDATION_ERROR", expectedField: "kind"},
		{name: "unknown kind", body: `{"kind":"dance"}`, expectedCode: "VALIDATION_ERROR", expectedField: "kind"},
		{name: "unknown direction", body: `{"kind":"start_test","direction":"fr"}`, expectedCode: "INVALID_DIRECTION", expectedField: "direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t)

			rec := do(t, h, http.MethodPost, "/api/actions", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tt.expectedCode, detail.Code)
			assert.Equal(t, tt.expectedField, detail.Field)
		})
	}
}

func TestServer_ExportImport(t *testing.T) {
	h := newTestServer(t)
	content := "ja_list:\n犬\n猫\nen_list:\ndog\ncat\n"

	rec := do(t, h, http.MethodPost, "/api/import", content)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 2, v.WordCount)
	assert.Equal(t, "Loaded 2 words.", v.Notices[0].Text)

	rec = do(t, h, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, content, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tango_data.txt")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestServer_ImportParseErrorKeepsList(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/actions", `{"kind":"add_words","text":"犬"}`)

	rec := do(t, h, http.MethodPost, "/api/import", "犬\ndog\n")

	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeView(t, rec)
	assert.Equal(t, 1, v.WordCount)
	require.NotEmpty(t, v.Notices)
	assert.Equal(t, session.NoticeError, v.Notices[0].Level)
	assert.Contains(t, v.Notices[0].Text, "ja_list:")
}

func TestServer_DispatchErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "out of range",
			err:            fmt.Errorf("%w: index 3, deck size 2", domain.ErrOutOfRange),
			expectedStatus: http.StatusConflict,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:           "unknown action",
			err:            fmt.Errorf("%w: %q", session.ErrUnknownAction, "dance"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
		},
		{
			name:           "unexpected",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewServer(failingDispatcher{err: tt.err}, nil, testToken, testutil.NewTestLogger()).Routes([]string{"*"})

			rec := do(t, h, http.MethodGet, "/api/view", "")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
		})
	}
}

func TestServer_Health(t *testing.T) {
	logger := testutil.NewTestLogger()
	controller := session.NewController(nil, nil, logger)

	t.Run("database up", func(t *testing.T) {
		h := NewServer(controller, fakePinger{}, testToken, logger).Routes(nil)
		rec := do(t, h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		h := NewServer(controller, fakePinger{err: errors.New("connection refused")}, testToken, logger).Routes(nil)
		rec := do(t, h, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_CORS(t *testing.T) {
	logger := testutil.NewTestLogger()
	h := NewServer(session.NewController(nil, nil, logger), nil, testToken, logger).Routes([]string{"https://app.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RequiresToken(t *testing.T) {
	tests := []struct {
		name          string
		serverToken   string
		authorization string
		expectedMsg   string
	}{
		{name: "missing header", serverToken: testToken, expectedMsg: "authorization header required"},
		{name: "wrong scheme", serverToken: testToken, authorization: "Basic " + testToken, expectedMsg: "invalid token"},
		{name: "wrong token", serverToken: testToken, authorization: "Bearer nope", expectedMsg: "invalid token"},
		{name: "server without token", serverToken: "", authorization: "Bearer ", expectedMsg: "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := testutil.NewTestLogger()
			controller := session.NewController(nil, nil, logger)
			_, err := controller.Dispatch(context.Background(), session.Action{Kind: session.ActionAddWords, Text: "犬"})
			require.NoError(t, err)
			h := NewServer(controller, nil, tt.serverToken, logger).Routes([]string{"*"})

			req := httptest.NewRequest(http.MethodPost, "/api/actions", strings.NewReader(`{"kind":"clear_list"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, "UNAUTHORIZED", detail.Code)
			assert.Equal(t, tt.expectedMsg, detail.Message)

			v, err := controller.Dispatch(context.Background(), session.Action{Kind: session.ActionView})
			require.NoError(t, err)
			assert.Equal(t, 1, v.WordCount)
		})
	}
}

func TestServer_HealthNeedsNoToken(t *testing.T) {
	logger := testutil.NewTestLogger()
	h := NewServer(session.NewController(nil, nil, logger), fakePinger{}, testToken, logger).Routes(nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
