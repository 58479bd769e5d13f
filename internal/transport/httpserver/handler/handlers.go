package handler

import (
	admindomain "club-pass-go/internal/domain/admin"
	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	sessiondomain "club-pass-go/internal/domain/session"
	"club-pass-go/pkg/logger"
)

type Handlers struct {
	Members    *memberdomain.Service
	Sessions   *sessiondomain.Service
	Admissions *admissiondomain.Service
	Admins     *admindomain.Service
	log        logger.Logger
}

func New(members *memberdomain.Service, sessions *sessiondomain.Service, admissions *admissiondomain.Service, admins *admindomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Members:    members,
		Sessions:   sessions,
		Admissions: admissions,
		Admins:     admins,
		log:        log,
	}
}
