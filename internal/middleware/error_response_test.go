package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/dda/internal/model"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	for _, key := range []string{"data", "errorCode", "errorMessage"} {
		if _, ok := body[key]; !ok {
			t.Errorf("envelope is missing %q: %v", key, body)
		}
	}
	return body
}

func TestWriteJSON_SuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, map[string]string{"token": "tk-1"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := decodeEnvelope(t, w)
	data, ok := body["data"].(map[string]any)
	if !ok || data["token"] != "tk-1" {
		t.Errorf("data = %v", body["data"])
	}
	if body["errorCode"] != nil || body["errorMessage"] != nil {
		t.Errorf("error fields should be null: %v", body)
	}
}

func TestWriteJSON_NilDataIsNull(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusAccepted, nil)

	body := decodeEnvelope(t, w)
	if body["data"] != nil {
		t.Errorf("data = %v, want null", body["data"])
	}
}

func TestWriteErrorResponse_ErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, model.NewUnauthenticatedAPIError())

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeEnvelope(t, w)
	if body["data"] != nil {
		t.Errorf("data = %v, want null", body["data"])
	}
	if body["errorCode"] != "UserUnauthenticated" {
		t.Errorf("errorCode = %v", body["errorCode"])
	}
	if body["errorMessage"] != "Unauthenticated users cannot make this request." {
		t.Errorf("errorMessage = %v", body["errorMessage"])
	}
}

func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := decodeEnvelope(t, w)
	if body["errorCode"] != "UnknownError" || body["errorMessage"] != "An unknown error has occurred" {
		t.Errorf("unexpected body: %v", body)
	}
}
