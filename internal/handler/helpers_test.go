package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

// envelope mirrors the response body for decoding in tests.
type envelope struct {
	Data         json.RawMessage `json:"data"`
	ErrorCode    *string         `json:"errorCode"`
	ErrorMessage *string         `json:"errorMessage"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

// decodeData decodes the data field into dst.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeResponse(t, w)
	if env.ErrorCode != nil {
		t.Fatalf("unexpected error response: %s", *env.ErrorCode)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data %s: %v", env.Data, err)
	}
}

// assertError checks status, errorCode and errorMessage of an error response.
func assertError(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode, wantMessage string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Errorf("status = %d, want %d (body %s)", w.Code, wantStatus, w.Body.String())
	}
	env := decodeResponse(t, w)
	if string(env.Data) != "null" {
		t.Errorf("data = %s, want null", env.Data)
	}
	if env.ErrorCode == nil || *env.ErrorCode != wantCode {
		t.Errorf("errorCode = %v, want %q", env.ErrorCode, wantCode)
	}
	if wantMessage != "" && (env.ErrorMessage == nil || *env.ErrorMessage != wantMessage) {
		t.Errorf("errorMessage = %v, want %q", env.ErrorMessage, wantMessage)
	}
}

func strPtr(s string) *string { return &s }
