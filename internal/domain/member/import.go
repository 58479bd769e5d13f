package member

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImportRecord is the normalized shape produced by the external import
// adapter. Parsing spreadsheets into this shape happens outside the core.
type ImportRecord struct {
	MemberNumber string
	FirstName    string
	Surname      string
	Identifier   string
	Category     string
	ExpiryDate   time.Time
	Status       string
	Role         string
	Dependents   []ImportDependent
}

type ImportDependent struct {
	CardNumber   string
	Name         string
	Relationship string
}

type ImportSummary struct {
	Imported int
	Errors   []string
}

// ImportRecords upserts a batch of normalized records. Imported members get
// their login identifier as the initial password; it is expected to be
// changed through the self-service password path. Records are applied
// independently so one bad row does not abort the batch.
func (s *Service) ImportRecords(ctx context.Context, records []ImportRecord) (*ImportSummary, error) {
	summary := &ImportSummary{}

	for _, record := range records {
		if err := s.importRecord(ctx, record); err != nil {
			name := strings.TrimSpace(record.MemberNumber)
			if name == "" {
				name = "unknown"
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		summary.Imported++
	}

	return summary, nil
}

func (s *Service) importRecord(ctx context.Context, record ImportRecord) error {
	number := strings.TrimSpace(record.MemberNumber)
	identifier := NormalizeIdentifier(record.Identifier)
	if number == "" || identifier == "" {
		return fmt.Errorf("member number and identifier are required")
	}
	if record.ExpiryDate.IsZero() {
		return fmt.Errorf("expiry date is required")
	}

	hash, err := HashPassword(identifier)
	if err != nil {
		return err
	}

	status := strings.TrimSpace(record.Status)
	if status == "" {
		status = StatusActive
	}
	role := strings.TrimSpace(record.Role)
	if role != RoleAdmin {
		role = RoleMember
	}
	category := strings.TrimSpace(record.Category)
	if category == "" {
		category = "Solo"
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		taken, err := tx.IsIdentifierTaken(ctx, identifier, number)
		if err != nil {
			return err
		}
		if taken {
			return ErrIdentifierTaken
		}

		m := Member{
			ID:           uuid.NewString(),
			MemberNumber: number,
			FirstName:    strings.TrimSpace(record.FirstName),
			Surname:      strings.TrimSpace(record.Surname),
			Identifier:   identifier,
			PasswordHash: hash,
			Category:     category,
			ExpiryDate:   record.ExpiryDate,
			Status:       status,
			Role:         role,
		}
		if err := tx.Upsert(ctx, &m); err != nil {
			return err
		}

		cards := make([]DependentCard, 0, len(record.Dependents))
		for _, dep := range record.Dependents {
			cardNumber := strings.TrimSpace(dep.CardNumber)
			if cardNumber == "" {
				continue
			}
			relationship := strings.TrimSpace(dep.Relationship)
			if relationship == "" {
				relationship = "Family"
			}
			cards = append(cards, DependentCard{
				ID:           uuid.NewString(),
				PrimaryID:    m.ID,
				CardNumber:   cardNumber,
				Name:         strings.TrimSpace(dep.Name),
				Relationship: relationship,
			})
		}
		if len(cards) == 0 {
			return nil
		}
		return tx.ReplaceDependents(ctx, m.ID, cards)
	})
}
