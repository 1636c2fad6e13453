package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"crm-backend/internal/domain"
	"crm-backend/internal/middleware"
	"crm-backend/pkg/response"
	"crm-backend/pkg/xerrors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pageParams reads ?page and ?limit, returning the limit/offset pair for the
// repository and the 1-based page for the pagination envelope.
func pageParams(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = defaultPageLimit

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, (page - 1) * limit
}

// daysParam reads ?days for the metrics endpoints. Zero means "use the
// default window"; garbage is treated the same way.
func daysParam(r *http.Request) int {
	v := r.URL.Query().Get("days")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func paginationOf(total, page, limit int) response.Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return response.Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// ownerFor resolves who a created record belongs to. Admins may create on
// behalf of another user by supplying userId in the body; everyone else
// creates for themselves.
func ownerFor(r *http.Request, requested string) string {
	userID, _ := middleware.GetUserID(r.Context())
	if requested == "" || requested == userID {
		return userID
	}
	if role, _ := middleware.GetRole(r.Context()); role == string(domain.RoleAdmin) {
		return requested
	}
	return userID
}

// writeError maps usecase sentinels onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrUnknownEventType),
		errors.Is(err, xerrors.ErrEstimateContactMismatch):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrContactNotFound),
		errors.Is(err, xerrors.ErrEstimateNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrEmailAlreadyInUse):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, xerrors.ErrForwardingFailed):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
