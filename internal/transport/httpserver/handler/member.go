package handler

import (
	"errors"
	"net/http"
	"time"

	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	"club-pass-go/internal/transport/httpserver/middleware"
)

type dependentResponse struct {
	CardNumber   string `json:"card_number"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Points       int64  `json:"points"`
}

type eventResponse struct {
	CardNumber  string    `json:"card_number"`
	MemberName  string    `json:"member_name"`
	EventName   string    `json:"event_name"`
	ScannedBy   string    `json:"scanned_by"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
	PointsDelta int64     `json:"points_delta"`
	Timestamp   time.Time `json:"timestamp"`
}

func toEventResponses(events []admissiondomain.Event) []eventResponse {
	result := make([]eventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, eventResponse{
			CardNumber:  event.CardNumber,
			MemberName:  event.MemberName,
			EventName:   event.EventName,
			ScannedBy:   event.ScannedBy,
			Outcome:     string(event.Outcome),
			Reason:      string(event.Reason),
			PointsDelta: event.PointsDelta,
			Timestamp:   event.CreatedAt,
		})
	}
	return result
}

type profileResponse struct {
	Member     memberResponse      `json:"member"`
	Dependents []dependentResponse `json:"dependents"`
	Attendance []eventResponse     `json:"attendance"`
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Members.Profile(r.Context(), identity.MemberNumber)
	if err != nil {
		if errors.Is(err, memberdomain.ErrMemberNotFound) {
			h.log.BusinessError("member.profile: member not found", err, "member_number", identity.MemberNumber)
			writeError(w, http.StatusNotFound, "member_not_found", "member not found")
			return
		}
		h.log.InternalError("member.profile: load failed", err, "member_number", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	cardNumbers := make([]string, 0, len(profile.Dependents)+1)
	cardNumbers = append(cardNumbers, profile.Member.MemberNumber)
	dependents := make([]dependentResponse, 0, len(profile.Dependents))
	for _, dep := range profile.Dependents {
		cardNumbers = append(cardNumbers, dep.CardNumber)
		dependents = append(dependents, dependentResponse{
			CardNumber:   dep.CardNumber,
			Name:         dep.Name,
			Relationship: dep.Relationship,
			Points:       dep.Points,
		})
	}

	history, err := h.Admissions.HistoryForCards(r.Context(), cardNumbers, 50)
	if err != nil {
		h.log.InternalError("member.profile: load history failed", err, "member_number", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Member:     toMemberResponse(&profile.Member),
		Dependents: dependents,
		Attendance: toEventResponses(history),
	})
}

type passResponse struct {
	Passes []passEntry `json:"passes"`
}

type passEntry struct {
	CardNumber string `json:"card_number"`
	Name       string `json:"name"`
	Payload    string `json:"payload"`
}

// Pass returns server-signed scan payloads for the caller's own card and
// dependents. These are what member QR codes encode.
func (h *Handlers) Pass(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Members.Profile(r.Context(), identity.MemberNumber)
	if err != nil {
		h.log.InternalError("member.pass: load profile failed", err, "member_number", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	entries := make([]passEntry, 0, len(profile.Dependents)+1)

	payload, err := h.Admissions.IssuePass(profile.Member.MemberNumber)
	if err != nil {
		h.log.InternalError("member.pass: issue pass failed", err, "member_number", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	entries = append(entries, passEntry{
		CardNumber: profile.Member.MemberNumber,
		Name:       profile.Member.FullName(),
		Payload:    payload,
	})

	for _, dep := range profile.Dependents {
		payload, err := h.Admissions.IssuePass(dep.CardNumber)
		if err != nil {
			h.log.InternalError("member.pass: issue dependent pass failed", err, "card_number", dep.CardNumber)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		entries = append(entries, passEntry{
			CardNumber: dep.CardNumber,
			Name:       dep.Name,
			Payload:    payload,
		})
	}

	writeJSON(w, http.StatusOK, passResponse{Passes: entries})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "current and new password are required")
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	err := h.Admins.ChangeOwnPassword(r.Context(), identity.MemberNumber, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, memberdomain.ErrInvalidCredentials):
			h.log.BusinessError("member.change_password: wrong current password", err, "member_number", identity.MemberNumber)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect")
		case errors.Is(err, memberdomain.ErrPasswordTooShort):
			h.log.BusinessError("member.change_password: password too short", err, "member_number", identity.MemberNumber)
			writeError(w, http.StatusBadRequest, "password_too_short", "new password must be at least 6 characters")
		default:
			h.log.InternalError("member.change_password: change failed", err, "member_number", identity.MemberNumber)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}
