package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/txgate/txgate/application/port/inbound"
	apperror "github.com/txgate/txgate/domain/error"
	"github.com/txgate/txgate/infrastructure/http/middleware"
	"github.com/txgate/txgate/infrastructure/http/response"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// TransactionHandler is the single business endpoint: every operation is
// addressed by its transaction code in the request body, not by the path.
type TransactionHandler struct {
	executor inbound.TransactionExecutor
	auth     *middleware.AuthMiddleware
}

func NewTransactionHandler(executor inbound.TransactionExecutor, auth *middleware.AuthMiddleware) *TransactionHandler {
	return &TransactionHandler{
		executor: executor,
		auth:     auth,
	}
}

type TransactionRequest struct {
	TX     json.Number `json:"tx"`
	Params interface{} `json:"params"`
}

func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/tx", h.auth.OptionalAuth(h.Execute)).Methods("POST")
}

// Execute validates the envelope and hands off to the orchestrator. The
// envelope validation here is the caller-side contract of the dispatcher:
// the TX code must be a positive integer before Execute is reached.
func (h *TransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	tx, err := req.TX.Int64()
	if err != nil || tx <= 0 {
		response.BadRequest(w, "Transaction code must be a positive integer")
		return
	}

	ectx, ok := middleware.GetExecContext(r.Context())
	if !ok {
		response.WriteAppError(w,
			apperror.ErrInternalServerError("execution context missing", nil),
			logger.CorrelationID(r.Context()))
		return
	}

	result := h.executor.Execute(r.Context(), tx, ectx, req.Params)
	response.WriteResult(w, result)
}
