package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/txgate/txgate/application/port/inbound"
	apperror "github.com/txgate/txgate/domain/error"
	"github.com/txgate/txgate/infrastructure/http/middleware"
	"github.com/txgate/txgate/infrastructure/http/response"
	"github.com/txgate/txgate/infrastructure/service/logger"
)

// permissionAdminObject guards the admin endpoints: the caller's profile
// must hold this grant. Managed like any other grant, seeded for the
// admin profile.
const (
	permissionAdminObject = "Permissions"
	permissionAdminMethod = "manage"
)

// AdminHandler exposes the cache and registry operations to operational
// tooling.
type AdminHandler struct {
	admin inbound.PermissionAdmin
	auth  *middleware.AuthMiddleware
}

func NewAdminHandler(admin inbound.PermissionAdmin, auth *middleware.AuthMiddleware) *AdminHandler {
	return &AdminHandler{
		admin: admin,
		auth:  auth,
	}
}

type GrantRequest struct {
	ProfileID  int64  `json:"profile_id"`
	ObjectName string `json:"object_name"`
	MethodName string `json:"method_name"`
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/admin/grants", h.auth.RequireAuth(h.requireManage(h.Grant))).Methods("POST")
	router.HandleFunc("/v1/admin/grants", h.auth.RequireAuth(h.requireManage(h.Revoke))).Methods("DELETE")
	router.HandleFunc("/v1/admin/grants/check", h.auth.RequireAuth(h.requireManage(h.Check))).Methods("GET")
	router.HandleFunc("/v1/admin/resolve/{tx}", h.auth.RequireAuth(h.requireManage(h.Resolve))).Methods("GET")
	router.HandleFunc("/v1/admin/reload", h.auth.RequireAuth(h.requireManage(h.Reload))).Methods("POST")
}

func (h *AdminHandler) requireManage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ectx, ok := middleware.GetExecContext(r.Context())
		if !ok || !h.admin.Check(ectx.ProfileID, permissionAdminObject, permissionAdminMethod) {
			response.WriteAppError(w,
				apperror.ErrForbidden(ectx.ProfileID, permissionAdminObject, permissionAdminMethod),
				logger.CorrelationID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (h *AdminHandler) Grant(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGrantRequest(w, r)
	if !ok {
		return
	}

	if !h.admin.Grant(r.Context(), req.ProfileID, req.ObjectName, req.MethodName) {
		response.WriteAppError(w,
			apperror.NewAppError(apperror.ErrCodeGrantWriteFailed, "Grant could not be persisted", "", nil),
			logger.CorrelationID(r.Context()))
		return
	}

	response.Success(w, http.StatusOK, "granted", req)
}

func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGrantRequest(w, r)
	if !ok {
		return
	}

	if !h.admin.Revoke(r.Context(), req.ProfileID, req.ObjectName, req.MethodName) {
		response.WriteAppError(w,
			apperror.NewAppError(apperror.ErrCodeGrantWriteFailed, "Revoke could not be persisted", "", nil),
			logger.CorrelationID(r.Context()))
		return
	}

	response.Success(w, http.StatusOK, "revoked", req)
}

func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	profileID, err := strconv.ParseInt(query.Get("profile_id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "profile_id must be an integer")
		return
	}

	granted := h.admin.Check(profileID, query.Get("object_name"), query.Get("method_name"))
	response.Success(w, http.StatusOK, "success", map[string]bool{"granted": granted})
}

func (h *AdminHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tx, err := strconv.ParseInt(vars["tx"], 10, 64)
	if err != nil {
		response.BadRequest(w, "tx must be an integer")
		return
	}

	target, ok := h.admin.Resolve(tx)
	if !ok {
		response.WriteAppError(w, apperror.ErrUnknownTransaction(tx), logger.CorrelationID(r.Context()))
		return
	}

	response.Success(w, http.StatusOK, "success", target)
}

func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.Reload(r.Context()); err != nil {
		response.WriteAppError(w,
			apperror.ErrStoreUnavailable("reload", err),
			logger.CorrelationID(r.Context()))
		return
	}

	response.Success(w, http.StatusOK, "reloaded", nil)
}

func decodeGrantRequest(w http.ResponseWriter, r *http.Request) (GrantRequest, bool) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return req, false
	}

	if req.ProfileID <= 0 || req.ObjectName == "" || req.MethodName == "" {
		response.BadRequest(w, "profile_id, object_name and method_name are required")
		return req, false
	}

	return req, true
}
