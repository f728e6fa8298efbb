package response

import (
	"encoding/json"
	"net/http"

	"github.com/txgate/txgate/domain"
	apperror "github.com/txgate/txgate/domain/error"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, status bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	envelope := Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	}

	json.NewEncoder(w).Encode(envelope)
}

// WriteResult maps an orchestrator envelope directly onto the wire: the
// envelope code doubles as the HTTP status when it is a known status,
// otherwise the body carries the code and the status is 200.
func WriteResult(w http.ResponseWriter, result *domain.Result) {
	status := http.StatusOK
	if result.Code >= 400 && result.Code < 600 && http.StatusText(result.Code) != "" {
		status = result.Code
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

// WriteAppError writes a catalog error with its canonical HTTP status.
func WriteAppError(w http.ResponseWriter, appErr *apperror.AppError, traceID string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apperror.GetHTTPStatusCode(appErr))
	json.NewEncoder(w).Encode(apperror.NewErrorResponse(appErr, traceID))
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, false, message, nil)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func ServiceUnavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
