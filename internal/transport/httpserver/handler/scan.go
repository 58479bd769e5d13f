package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	"club-pass-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type scanRequest struct {
	Payload       string `json:"payload"`
	EventName     string `json:"event_name"`
	DeviceContext string `json:"device_context"`
}

type scanResponse struct {
	Outcome       string `json:"outcome"`
	Reason        string `json:"reason,omitempty"`
	CardNumber    string `json:"card_number,omitempty"`
	MemberName    string `json:"member_name,omitempty"`
	PointsAwarded int64  `json:"points_awarded"`
}

func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Payload) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "payload is required")
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	result, err := h.Admissions.Scan(r.Context(), admissiondomain.ScanInput{
		Payload:       req.Payload,
		EventName:     req.EventName,
		ScannedBy:     identity.MemberNumber,
		DeviceContext: req.DeviceContext,
	})
	if err != nil {
		h.log.InternalError("scan: scan failed", err, "scanned_by", identity.MemberNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if result.Outcome == admissiondomain.OutcomeDenied {
		h.log.BusinessError("scan: admission denied", errors.New(string(result.Reason)),
			"card_number", result.CardNumber, "reason", result.Reason, "scanned_by", identity.MemberNumber)
	}

	writeJSON(w, http.StatusOK, scanResponse{
		Outcome:       string(result.Outcome),
		Reason:        string(result.Reason),
		CardNumber:    result.CardNumber,
		MemberName:    result.MemberName,
		PointsAwarded: result.PointsAwarded,
	})
}

type memberInfoResponse struct {
	Found      bool      `json:"found"`
	CardNumber string    `json:"card_number"`
	MemberName string    `json:"member_name,omitempty"`
	IsActive   bool      `json:"is_active,omitempty"`
	Status     string    `json:"status,omitempty"`
	Category   string    `json:"category,omitempty"`
	ExpiryDate time.Time `json:"expiry_date,omitempty"`
}

// MemberInfo is the pre-scan confirmation lookup used by scanning stations.
func (h *Handlers) MemberInfo(w http.ResponseWriter, r *http.Request) {
	cardNumber := strings.TrimSpace(chi.URLParam(r, "card_number"))
	if cardNumber == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "card number is required")
		return
	}

	card, err := h.Members.ResolveCard(r.Context(), cardNumber)
	if err != nil {
		if errors.Is(err, memberdomain.ErrCardNotFound) {
			writeJSON(w, http.StatusOK, memberInfoResponse{Found: false, CardNumber: cardNumber})
			return
		}
		h.log.InternalError("scan.member_info: lookup failed", err, "card_number", cardNumber)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	active := card.Status == memberdomain.StatusActive && time.Now().UTC().Before(card.ExpiryDate)
	writeJSON(w, http.StatusOK, memberInfoResponse{
		Found:      true,
		CardNumber: card.CardNumber,
		MemberName: card.Name,
		IsActive:   active,
		Status:     card.Status,
		Category:   card.Category,
		ExpiryDate: card.ExpiryDate,
	})
}
