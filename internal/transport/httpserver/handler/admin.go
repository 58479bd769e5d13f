package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	admindomain "club-pass-go/internal/domain/admin"
	memberdomain "club-pass-go/internal/domain/member"
	"club-pass-go/internal/transport/httpserver/middleware"
)

type createAdminRequest struct {
	MemberNumber string `json:"member_number"`
	FirstName    string `json:"first_name"`
	Surname      string `json:"surname"`
	Identifier   string `json:"identifier"`
	Password     string `json:"password"`
}

func (h *Handlers) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	identity, _ := middleware.IdentityFromContext(r.Context())

	created, err := h.Admins.CreateAdmin(r.Context(), admindomain.CreateAdminInput{
		MemberNumber: req.MemberNumber,
		FirstName:    req.FirstName,
		Surname:      req.Surname,
		Identifier:   req.Identifier,
		Password:     req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, admindomain.ErrAdminLimitReached):
			h.log.BusinessError("admin.create: account limit reached", err, "requested_by", identity.MemberNumber)
			writeError(w, http.StatusForbidden, "admin_limit_reached", "admin account limit reached")
		case errors.Is(err, memberdomain.ErrIdentifierTaken):
			h.log.BusinessError("admin.create: identifier taken", err, "identifier", req.Identifier)
			writeError(w, http.StatusConflict, "identifier_taken", "identifier already taken")
		case errors.Is(err, memberdomain.ErrMemberNumberTaken):
			h.log.BusinessError("admin.create: member number taken", err, "member_number", req.MemberNumber)
			writeError(w, http.StatusConflict, "member_number_taken", "member number already taken")
		case errors.Is(err, memberdomain.ErrPasswordTooShort):
			writeError(w, http.StatusBadRequest, "password_too_short", "password must be at least 6 characters")
		default:
			h.log.InternalError("admin.create: create failed", err, "requested_by", identity.MemberNumber)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info("admin.create: admin account created", "member_number", created.MemberNumber, "created_by", identity.MemberNumber)
	writeJSON(w, http.StatusCreated, map[string]string{"member_number": created.MemberNumber})
}

type importRequest struct {
	Members []importRecord `json:"members"`
}

type importRecord struct {
	MemberNumber string            `json:"member_number"`
	FirstName    string            `json:"first_name"`
	Surname      string            `json:"surname"`
	Identifier   string            `json:"identifier"`
	Category     string            `json:"category"`
	ExpiryDate   string            `json:"expiry_date"`
	Status       string            `json:"status"`
	Role         string            `json:"role"`
	Dependents   []importDependent `json:"dependents"`
}

type importDependent struct {
	CardNumber   string `json:"card_number"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
}

type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Import applies normalized member records. Spreadsheet parsing happens
// client-side; the server only ever sees this shape.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if len(req.Members) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "members are required")
		return
	}

	records := make([]memberdomain.ImportRecord, 0, len(req.Members))
	var rejected []string
	for _, raw := range req.Members {
		expiry, err := parseDateRequired(raw.ExpiryDate)
		if err != nil {
			name := strings.TrimSpace(raw.MemberNumber)
			if name == "" {
				name = "unknown"
			}
			rejected = append(rejected, fmt.Sprintf("%s: invalid expiry_date %q", name, raw.ExpiryDate))
			continue
		}

		record := memberdomain.ImportRecord{
			MemberNumber: raw.MemberNumber,
			FirstName:    raw.FirstName,
			Surname:      raw.Surname,
			Identifier:   raw.Identifier,
			Category:     raw.Category,
			ExpiryDate:   expiry,
			Status:       raw.Status,
			Role:         raw.Role,
		}
		for _, dep := range raw.Dependents {
			record.Dependents = append(record.Dependents, memberdomain.ImportDependent{
				CardNumber:   dep.CardNumber,
				Name:         dep.Name,
				Relationship: dep.Relationship,
			})
		}
		records = append(records, record)
	}

	summary := &memberdomain.ImportSummary{}
	if len(records) > 0 {
		var err error
		summary, err = h.Members.ImportRecords(r.Context(), records)
		if err != nil {
			h.log.InternalError("admin.import: import failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
	}

	allErrors := append(append([]string{}, summary.Errors...), rejected...)
	h.log.Info("admin.import: batch applied", "imported", summary.Imported, "errors", len(allErrors))
	writeJSON(w, http.StatusOK, importResponse{
		Imported: summary.Imported,
		Errors:   allErrors,
	})
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Admins.ListMembers(r.Context())
	if err != nil {
		h.log.InternalError("admin.members: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]admindomain.MemberOverview{"members": members})
}

func (h *Handlers) Attendance(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.Admissions.ListEvents(r.Context(), limit)
	if err != nil {
		h.log.InternalError("admin.attendance: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]eventResponse{"attendance": toEventResponses(events)})
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admins.Stats(r.Context())
	if err != nil {
		h.log.InternalError("admin.stats: load failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) ExpiringMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Admins.ExpiringMembers(r.Context())
	if err != nil {
		h.log.InternalError("admin.expiring: list failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]admindomain.ExpiringMember{"expiring_members": members})
}

type pointsAdjustRequest struct {
	MemberNumber string `json:"member_number"`
	Delta        int64  `json:"delta"`
	Reason       string `json:"reason"`
}

func (h *Handlers) PointsAdjust(w http.ResponseWriter, r *http.Request) {
	var req pointsAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.MemberNumber = strings.TrimSpace(req.MemberNumber)
	if req.MemberNumber == "" || req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "member number and non-zero delta are required")
		return
	}

	m, err := h.Admins.AdjustPoints(r.Context(), req.MemberNumber, req.Delta, strings.TrimSpace(req.Reason))
	if err != nil {
		switch {
		case errors.Is(err, memberdomain.ErrMemberNotFound):
			writeError(w, http.StatusNotFound, "member_not_found", "member not found")
		case errors.Is(err, memberdomain.ErrPointsNegative):
			h.log.BusinessError("admin.points_adjust: would go negative", err, "member_number", req.MemberNumber)
			writeError(w, http.StatusBadRequest, "points_negative", "points cannot go negative")
		default:
			h.log.InternalError("admin.points_adjust: adjust failed", err, "member_number", req.MemberNumber)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"points": m.Points})
}

func parseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
