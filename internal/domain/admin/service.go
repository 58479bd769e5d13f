package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"club-pass-go/internal/domain/member"
	"club-pass-go/pkg/logger"
	"github.com/google/uuid"
)

// MaxAdminAccounts is a hard ceiling: one default admin plus six creatable.
const MaxAdminAccounts = 7

const expiringWindow = 30 * 24 * time.Hour

type MemberService interface {
	ChangePassword(ctx context.Context, memberNumber, current, next string) error
	AdjustPoints(ctx context.Context, memberNumber string, delta int64) (*member.Member, error)
}

type Service struct {
	repo    Repository
	members MemberService
	log     logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, members MemberService, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		log:     log,
		now:     time.Now,
	}
}

type CreateAdminInput struct {
	MemberNumber string
	FirstName    string
	Surname      string
	Identifier   string
	Password     string
}

// CreateAdmin provisions a new admin account, enforcing the account
// ceiling transactionally. The new account is immediately usable.
func (s *Service) CreateAdmin(ctx context.Context, input CreateAdminInput) (*member.Member, error) {
	input.MemberNumber = strings.TrimSpace(input.MemberNumber)
	input.Identifier = member.NormalizeIdentifier(input.Identifier)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Surname = strings.TrimSpace(input.Surname)

	if input.MemberNumber == "" || input.Identifier == "" {
		return nil, fmt.Errorf("member number and identifier are required")
	}
	if err := member.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := member.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	created := member.Member{
		ID:           uuid.NewString(),
		MemberNumber: input.MemberNumber,
		FirstName:    input.FirstName,
		Surname:      input.Surname,
		Identifier:   input.Identifier,
		PasswordHash: hash,
		Category:     "Solo",
		ExpiryDate:   s.now().UTC().Add(10 * 365 * 24 * time.Hour),
		Status:       member.StatusActive,
		Role:         member.RoleAdmin,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		count, err := tx.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if count >= MaxAdminAccounts {
			return ErrAdminLimitReached
		}

		taken, err := tx.IsIdentifierTaken(ctx, created.Identifier)
		if err != nil {
			return err
		}
		if taken {
			return member.ErrIdentifierTaken
		}

		taken, err = tx.IsNumberTaken(ctx, created.MemberNumber)
		if err != nil {
			return err
		}
		if taken {
			return member.ErrMemberNumberTaken
		}

		return tx.CreateMember(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *Service) ChangeOwnPassword(ctx context.Context, memberNumber, current, next string) error {
	return s.members.ChangePassword(ctx, memberNumber, current, next)
}

func (s *Service) AdjustPoints(ctx context.Context, memberNumber string, delta int64, reason string) (*member.Member, error) {
	m, err := s.members.AdjustPoints(ctx, memberNumber, delta)
	if err != nil {
		return nil, err
	}
	s.log.Info("admin: points adjusted", "member_number", memberNumber, "delta", delta, "reason", reason)
	return m, nil
}

// EnsureDefaultAdmin seeds the installation's first admin account when no
// admin exists yet, mirroring first-boot behavior.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, identifier, password string) error {
	identifier = member.NormalizeIdentifier(identifier)
	if identifier == "" || password == "" {
		return nil
	}

	count, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	created, err := s.CreateAdmin(ctx, CreateAdminInput{
		MemberNumber: "M0000",
		FirstName:    "Default",
		Surname:      "Admin",
		Identifier:   identifier,
		Password:     password,
	})
	if err != nil {
		return err
	}

	s.log.Info("admin: default admin seeded", "identifier", created.Identifier, "member_number", created.MemberNumber)
	return nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx, s.now().UTC(), expiringWindow)
}

func (s *Service) ListMembers(ctx context.Context) ([]MemberOverview, error) {
	return s.repo.ListMembers(ctx)
}

func (s *Service) ExpiringMembers(ctx context.Context) ([]ExpiringMember, error) {
	return s.repo.ExpiringMembers(ctx, s.now().UTC(), expiringWindow)
}
