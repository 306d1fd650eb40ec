package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActionHandler_Validation(t *testing.T) {
	m := newTestManager(t)
	sessions := NewSessionHandler(m, testLogger())
	actions := NewActionHandler(m, testLogger())
	created := createSession(t, sessions)
	id := created.State.ID.String()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			path:           "/v1/sessions/" + id + "/actions",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedError:  "Method not allowed. Use POST",
		},
		{
			name:           "invalid session id",
			method:         http.MethodPost,
			path:           "/v1/sessions/not-a-uuid/actions",
			body:           `{"type":"look"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid session ID format",
		},
		{
			name:           "unknown session",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + uuid.NewString() + "/actions",
			body:           `{"type":"look"}`,
			expectedStatus: http.StatusNotFound,
			expectedError:  "Session not found",
		},
		{
			name:           "invalid JSON body",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + id + "/actions",
			body:           `{"type":`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in request body",
		},
		{
			name:           "unknown action type",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + id + "/actions",
			body:           `{"type":"teleport"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "unknown action type: teleport",
		},
		{
			name:           "unknown npc maps to not found",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + id + "/actions",
			body:           `{"type":"select_npc","npc":"Zelda"}`,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "gated action maps to forbidden",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + id + "/actions",
			body:           `{"type":"schedule_date","npc":"Eve","location":"beach"}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "rule violation maps to conflict",
			method:         http.MethodPost,
			path:           "/v1/sessions/" + id + "/actions",
			body:           `{"type":"move_to","location":"hotelRoom"}`,
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *bytes.Reader
			if tt.body != "" {
				body = bytes.NewReader([]byte(tt.body))
			} else {
				body = bytes.NewReader(nil)
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()
			actions.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.expectedError != "" {
				var errResp ErrorResponse
				err := json.NewDecoder(w.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, errResp.Error)
			}
		})
	}

	// Rejected actions must not leak partial state into the session.
	w := postAction(t, actions, id, ActionRequest{Type: "look"})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp ActionResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "bar", resp.State.CurrentLocation)
	assert.Equal(t, "Eve", resp.State.CurrentNPC)
	assert.NotEmpty(t, resp.Output)
}
