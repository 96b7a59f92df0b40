package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dda/internal/model"
)

// Envelope is the body of every API response. Exactly one of Data or the
// error pair is meaningful.
type Envelope struct {
	Data         any     `json:"data"`
	ErrorCode    *string `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}

// WriteJSON writes data in a success envelope. A nil data is encoded as null.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, Envelope{Data: data})
}

// WriteErrorResponse writes apiErr in an error envelope with apiErr.Status.
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	code, message := apiErr.Code, apiErr.Message
	writeEnvelope(w, apiErr.Status, Envelope{ErrorCode: &code, ErrorMessage: &message})
}

// WriteInternalServerError writes the generic 500 envelope. Details belong in the logs only.
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, model.NewUnknownAPIError())
}

func writeEnvelope(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
