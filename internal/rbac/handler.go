package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-hq/praxis/internal/platform/httpx"
	"github.com/praxis-hq/praxis/internal/shared"
)

// Handler exposes the role administration API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	identity  shared.IdentityResolver
	gates     Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, identity shared.IdentityResolver, gates Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		identity:  identity,
		gates:     gates,
		validator: validator.New(),
	}
}

// MountRoutes registers role administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
	r.Post("/", h.mutateRole)
	r.With(h.gates.RequireAny(PermUserView)).Get("/permissions", h.listPermissions)
}

type assignmentResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	identity, _ := h.identity.CurrentIdentity(r.Context())

	assignments, err := h.service.ListAssignments(r.Context(), identity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, assignmentResponse{Email: a.Email, Role: string(a.Role)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

type mutateRoleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role"`
	Action string `json:"action" validate:"required,oneof=assign remove"`
}

type mutateRoleResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) mutateRole(w http.ResponseWriter, r *http.Request) {
	var req mutateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and action are required")
		return
	}
	if req.Action == "assign" && req.Role == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "assign requires a role")
		return
	}

	identity, _ := h.identity.CurrentIdentity(r.Context())

	var err error
	var message string
	switch req.Action {
	case "assign":
		err = h.service.AssignRole(r.Context(), identity, req.Email, Role(req.Role))
		message = "role assigned"
	case "remove":
		err = h.service.RemoveRole(r.Context(), identity, req.Email)
		message = "role removed"
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mutateRoleResponse{Success: true, Message: message})
}

type rolePermissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// listPermissions reports each role's effective permission set, for
// administrative UIs that render the grant matrix. Access is gated by
// the route middleware.
func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	out := make([]rolePermissionsResponse, 0, len(Roles()))
	for _, role := range Roles() {
		perms := PermissionsFor(role)
		names := make([]string, len(perms))
		for i, p := range perms {
			names[i] = string(p)
		}
		out = append(out, rolePermissionsResponse{Role: string(role), Permissions: names})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": out})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to continue")
	case errors.Is(err, shared.ErrPermissionDenied):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrInvalidRole):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error("role administration", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "please retry")
	}
}
