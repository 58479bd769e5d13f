package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	memberdomain "club-pass-go/internal/domain/member"
	"club-pass-go/internal/transport/httpserver/middleware"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	Role      string         `json:"role"`
	ExpiresAt time.Time      `json:"expires_at"`
	Member    memberResponse `json:"member"`
}

type memberResponse struct {
	MemberNumber string    `json:"member_number"`
	FirstName    string    `json:"first_name"`
	Surname      string    `json:"surname"`
	Identifier   string    `json:"identifier"`
	Category     string    `json:"category"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Status       string    `json:"status"`
	Points       int64     `json:"points"`
	Role         string    `json:"role"`
}

func toMemberResponse(m *memberdomain.Member) memberResponse {
	return memberResponse{
		MemberNumber: m.MemberNumber,
		FirstName:    m.FirstName,
		Surname:      m.Surname,
		Identifier:   m.Identifier,
		Category:     m.Category,
		ExpiryDate:   m.ExpiryDate,
		Status:       m.Status,
		Points:       m.Points,
		Role:         m.Role,
	}
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "identifier and password are required")
		return
	}

	m, err := h.Members.VerifyPassword(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, memberdomain.ErrInvalidCredentials) {
			h.log.BusinessError("auth.login: invalid credentials", err, "identifier", req.Identifier)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid identifier or password")
			return
		}
		h.log.InternalError("auth.login: verify failed", err, "identifier", req.Identifier)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	issued, err := h.Sessions.Issue(r.Context(), m.MemberNumber, m.Role)
	if err != nil {
		h.log.InternalError("auth.login: issue token failed", err, "member_number", m.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     issued.Token,
		Role:      issued.Role,
		ExpiresAt: issued.ExpiresAt,
		Member:    toMemberResponse(m),
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Sessions.Revoke(r.Context(), identity.Token); err != nil {
		h.log.InternalError("auth.logout: revoke failed", err, "member_number", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

type authMeResponse struct {
	MemberNumber string `json:"member_number"`
	Role         string `json:"role"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		MemberNumber: identity.MemberNumber,
		Role:         identity.Role,
	})
}
