package admission

import (
	"context"
	"errors"
	"strings"
	"time"

	"club-pass-go/internal/domain/member"
	"github.com/google/uuid"
)

const DefaultDedupWindow = 24 * time.Hour

type CardResolver interface {
	ResolveCard(ctx context.Context, cardNumber string) (*member.Card, error)
}

type Service struct {
	repo   Repository
	cards  CardResolver
	signer *PassSigner
	award  int64
	window time.Duration
	now    func() time.Time
}

func NewService(repo Repository, cards CardResolver, signer *PassSigner, award int64, window time.Duration) *Service {
	if award <= 0 {
		award = DefaultPointsAward
	}
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Service{
		repo:   repo,
		cards:  cards,
		signer: signer,
		award:  award,
		window: window,
		now:    time.Now,
	}
}

func (s *Service) IssuePass(cardNumber string) (string, error) {
	return s.signer.Issue(cardNumber)
}

// Scan runs the validation sequence for one scan attempt. Every attempt,
// granted or denied, lands in the append-only admission log. Duplicate
// denial is a normal outcome at busy events, not a fault.
func (s *Service) Scan(ctx context.Context, input ScanInput) (*Result, error) {
	input.EventName = strings.TrimSpace(input.EventName)
	if input.EventName == "" {
		input.EventName = "General Access"
	}

	cardNumber, err := s.signer.Verify(input.Payload)
	if err != nil {
		return s.deny(ctx, input, "", "", ReasonTampered)
	}

	card, err := s.cards.ResolveCard(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, member.ErrCardNotFound) {
			return s.deny(ctx, input, cardNumber, "", ReasonUnknownMember)
		}
		return nil, err
	}

	if card.Status != member.StatusActive {
		return s.deny(ctx, input, card.CardNumber, card.Name, ReasonInactive)
	}

	now := s.now().UTC()
	if now.After(card.ExpiryDate) {
		return s.deny(ctx, input, card.CardNumber, card.Name, ReasonExpired)
	}

	result := Result{CardNumber: card.CardNumber, MemberName: card.Name}
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockCard(ctx, card); err != nil {
			return err
		}

		duplicate, err := tx.HasGrantSince(ctx, card.CardNumber, now.Add(-s.window))
		if err != nil {
			return err
		}
		if duplicate {
			result.Outcome = OutcomeDenied
			result.Reason = ReasonDuplicateScan
			return tx.AppendEvent(ctx, s.newEvent(input, card.CardNumber, card.Name, OutcomeDenied, ReasonDuplicateScan, 0))
		}

		if err := tx.AppendEvent(ctx, s.newEvent(input, card.CardNumber, card.Name, OutcomeGranted, "", s.award)); err != nil {
			return err
		}
		if err := tx.AddPoints(ctx, card, s.award); err != nil {
			return err
		}

		result.Outcome = OutcomeGranted
		result.PointsAwarded = s.award
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) deny(ctx context.Context, input ScanInput, cardNumber, name string, reason Reason) (*Result, error) {
	if err := s.repo.AppendEvent(ctx, s.newEvent(input, cardNumber, name, OutcomeDenied, reason, 0)); err != nil {
		return nil, err
	}
	return &Result{
		Outcome:    OutcomeDenied,
		Reason:     reason,
		CardNumber: cardNumber,
		MemberName: name,
	}, nil
}

func (s *Service) newEvent(input ScanInput, cardNumber, name string, outcome Outcome, reason Reason, points int64) *Event {
	return &Event{
		ID:            uuid.NewString(),
		CardNumber:    cardNumber,
		MemberName:    name,
		EventName:     input.EventName,
		ScannedBy:     input.ScannedBy,
		DeviceContext: input.DeviceContext,
		Outcome:       outcome,
		Reason:        reason,
		PointsDelta:   points,
		CreatedAt:     s.now().UTC(),
	}
}

func (s *Service) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListEvents(ctx, limit)
}

func (s *Service) HistoryForCards(ctx context.Context, cardNumbers []string, limit int) ([]Event, error) {
	if len(cardNumbers) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListEventsForCards(ctx, cardNumbers, limit)
}
