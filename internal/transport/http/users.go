package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/app"
	"github.com/cimillas/bookstore-backoffice/internal/auth"
	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

// AccountService is the minimal interface needed by the auth and user
// endpoints.
type AccountService interface {
	Register(ctx context.Context, in app.RegisterInput) (domain.User, error)
	Login(ctx context.Context, in app.LoginInput) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Logout(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, requester domain.User, id int64) (domain.User, error)
	ListUsers(ctx context.Context, requester domain.User, page, pageSize int) ([]domain.User, error)
	UpdateUser(ctx context.Context, requester domain.User, id int64, in app.UpdateUserInput) (domain.User, error)
	DeleteUser(ctx context.Context, requester domain.User, id int64) error
}

// HandleLogin serves POST /auth/login.
func HandleLogin(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID <= 0 || req.Password == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "user_id and password are required")
			return
		}

		pair, err := svc.Login(r.Context(), app.LoginInput{
			UserID:   req.UserID,
			Password: req.Password,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTokenResponse(pair))
	}
}

// HandleRefresh serves POST /auth/refresh.
func HandleRefresh(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req refreshRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil || req.RefreshToken == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "refresh_token is required")
			return
		}

		pair, err := svc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTokenResponse(pair))
	}
}

// HandleLogout serves POST /auth/logout for the authenticated operator.
func HandleLogout(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		operator, ok := mustUser(w, r)
		if !ok {
			return
		}

		if err := svc.Logout(r.Context(), operator.ID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleUsers serves POST (register) and GET (list) on the user collection.
// Both are super-admin operations.
func HandleUsers(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator, ok := mustUser(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			page, pageSize := parsePagination(r)
			users, err := svc.ListUsers(r.Context(), operator, page, pageSize)
			if err != nil {
				respondError(w, err)
				return
			}
			resp := make([]userResponse, 0, len(users))
			for _, u := range users {
				resp = append(resp, newUserResponse(u))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			if operator.Role != domain.RoleSuperAdmin {
				writeError(w, http.StatusForbidden, codeForbidden, domain.ErrForbidden.Error())
				return
			}

			var req registerRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			user, err := svc.Register(r.Context(), app.RegisterInput{
				RealName: req.RealName,
				Role:     req.Role,
				Password: req.Password,
			})
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, newUserResponse(user))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleUserByID serves GET, PATCH and DELETE on /users/{id}.
func HandleUserByID(svc AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator, ok := mustUser(w, r)
		if !ok {
			return
		}

		id, ok := parseUserPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid user id")
			return
		}

		switch r.Method {
		case http.MethodGet:
			user, err := svc.GetUser(r.Context(), operator, id)
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newUserResponse(user))
		case http.MethodPatch:
			var req updateUserRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			user, err := svc.UpdateUser(r.Context(), operator, id, app.UpdateUserInput{
				RealName: req.RealName,
				Role:     req.Role,
				Password: req.Password,
			})
			if err != nil {
				respondError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, newUserResponse(user))
		case http.MethodDelete:
			if err := svc.DeleteUser(r.Context(), operator, id); err != nil {
				respondError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseUserPath(path string) (int64, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "users" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type loginRequest struct {
	UserID   int64  `json:"user_id"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type registerRequest struct {
	RealName string `json:"real_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	RealName *string `json:"real_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func newTokenResponse(pair auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	RealName  string    `json:"real_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		RealName:  u.RealName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
