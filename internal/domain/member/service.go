package member

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	MemberNumber string
	FirstName    string
	Surname      string
	Identifier   string
	Password     string
	Category     string
	ExpiryDate   time.Time
	Status       string
	Role         string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Member, error) {
	input.MemberNumber = strings.TrimSpace(input.MemberNumber)
	input.Identifier = NormalizeIdentifier(input.Identifier)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.Surname = strings.TrimSpace(input.Surname)

	if input.MemberNumber == "" {
		return nil, fmt.Errorf("member number is required")
	}
	if input.Identifier == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = StatusActive
	}
	if input.Role == "" {
		input.Role = RoleMember
	}
	if input.Category == "" {
		input.Category = "Solo"
	}

	created := Member{
		ID:           uuid.NewString(),
		MemberNumber: input.MemberNumber,
		FirstName:    input.FirstName,
		Surname:      input.Surname,
		Identifier:   input.Identifier,
		PasswordHash: hash,
		Category:     input.Category,
		ExpiryDate:   input.ExpiryDate,
		Status:       input.Status,
		Role:         input.Role,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsIdentifierTaken(ctx, created.Identifier, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrIdentifierTaken
		}

		taken, err = tx.IsNumberTaken(ctx, created.MemberNumber)
		if err != nil {
			return err
		}
		if taken {
			return ErrMemberNumberTaken
		}

		return tx.Create(ctx, &created)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*Member, error) {
	return s.repo.GetByIdentifier(ctx, NormalizeIdentifier(identifier))
}

func (s *Service) GetByNumber(ctx context.Context, memberNumber string) (*Member, error) {
	return s.repo.GetByNumber(ctx, strings.TrimSpace(memberNumber))
}

// ResolveCard looks up a scannable card number, checking primary members
// first and dependent sub-cards second.
func (s *Service) ResolveCard(ctx context.Context, cardNumber string) (*Card, error) {
	return s.repo.GetCard(ctx, strings.TrimSpace(cardNumber))
}

func (s *Service) VerifyPassword(ctx context.Context, identifier, password string) (*Member, error) {
	m, err := s.repo.GetByIdentifier(ctx, NormalizeIdentifier(identifier))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(password, m.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return m, nil
}

func (s *Service) SetPassword(ctx context.Context, memberNumber, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	return s.repo.UpdatePasswordHash(ctx, strings.TrimSpace(memberNumber), hash)
}

// ChangePassword verifies the current password before accepting the new
// one, so a stolen live session cannot silently take over the credential.
func (s *Service) ChangePassword(ctx context.Context, memberNumber, current, next string) error {
	m, err := s.repo.GetByNumber(ctx, strings.TrimSpace(memberNumber))
	if err != nil {
		return err
	}

	if !CheckPassword(current, m.PasswordHash) {
		return ErrInvalidCredentials
	}

	return s.SetPassword(ctx, m.MemberNumber, next)
}

// AdjustPoints is the only path that may lower a points balance. Scan
// grants go through the admission engine instead.
func (s *Service) AdjustPoints(ctx context.Context, memberNumber string, delta int64) (*Member, error) {
	memberNumber = strings.TrimSpace(memberNumber)

	var result *Member
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		m, err := tx.GetByNumber(ctx, memberNumber)
		if err != nil {
			return err
		}
		if m.Points+delta < 0 {
			return ErrPointsNegative
		}
		if err := tx.AddPoints(ctx, memberNumber, delta); err != nil {
			return err
		}
		m.Points += delta
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type Profile struct {
	Member     Member
	Dependents []DependentCard
}

func (s *Service) Profile(ctx context.Context, memberNumber string) (*Profile, error) {
	m, err := s.repo.GetByNumber(ctx, strings.TrimSpace(memberNumber))
	if err != nil {
		return nil, err
	}

	dependents, err := s.repo.ListDependents(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{Member: *m, Dependents: dependents}, nil
}

func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
