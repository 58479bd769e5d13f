package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"club-pass-go/internal/domain/member"
)

type fakeAdmissionRepo struct {
	mu     sync.Mutex
	events []Event
	points map[string]int64
}

func newFakeAdmissionRepo() *fakeAdmissionRepo {
	return &fakeAdmissionRepo{points: make(map[string]int64)}
}

func (r *fakeAdmissionRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&lockedAdmissionRepo{repo: r})
}

func (r *fakeAdmissionRepo) LockCard(ctx context.Context, card *member.Card) error {
	return nil
}

func (r *fakeAdmissionRepo) HasGrantSince(ctx context.Context, cardNumber string, since time.Time) (bool, error) {
	for _, event := range r.events {
		if event.CardNumber == cardNumber && event.Outcome == OutcomeGranted && event.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAdmissionRepo) AppendEvent(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeAdmissionRepo) AddPoints(ctx context.Context, card *member.Card, delta int64) error {
	r.points[card.CardNumber] += delta
	return nil
}

func (r *fakeAdmissionRepo) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = r.events[len(r.events)-1-i]
	}
	return out, nil
}

func (r *fakeAdmissionRepo) ListEventsForCards(ctx context.Context, cardNumbers []string, limit int) ([]Event, error) {
	wanted := make(map[string]bool, len(cardNumbers))
	for _, n := range cardNumbers {
		wanted[n] = true
	}
	var out []Event
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		if wanted[r.events[i].CardNumber] {
			out = append(out, r.events[i])
		}
	}
	return out, nil
}

// lockedAdmissionRepo runs inside a held transaction lock, so its methods
// touch state directly instead of re-taking the mutex.
type lockedAdmissionRepo struct {
	repo *fakeAdmissionRepo
}

func (r *lockedAdmissionRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *lockedAdmissionRepo) LockCard(ctx context.Context, card *member.Card) error {
	return nil
}

func (r *lockedAdmissionRepo) HasGrantSince(ctx context.Context, cardNumber string, since time.Time) (bool, error) {
	return r.repo.HasGrantSince(ctx, cardNumber, since)
}

func (r *lockedAdmissionRepo) AppendEvent(ctx context.Context, event *Event) error {
	r.repo.events = append(r.repo.events, *event)
	return nil
}

func (r *lockedAdmissionRepo) AddPoints(ctx context.Context, card *member.Card, delta int64) error {
	return r.repo.AddPoints(ctx, card, delta)
}

func (r *lockedAdmissionRepo) ListEvents(ctx context.Context, limit int) ([]Event, error) {
	return r.repo.ListEvents(ctx, limit)
}

func (r *lockedAdmissionRepo) ListEventsForCards(ctx context.Context, cardNumbers []string, limit int) ([]Event, error) {
	return r.repo.ListEventsForCards(ctx, cardNumbers, limit)
}

type fakeCardResolver struct {
	cards map[string]*member.Card
}

func (f *fakeCardResolver) ResolveCard(ctx context.Context, cardNumber string) (*member.Card, error) {
	card, ok := f.cards[cardNumber]
	if !ok {
		return nil, member.ErrCardNotFound
	}
	copied := *card
	return &copied, nil
}

func activeCard(cardNumber string) *member.Card {
	return &member.Card{
		CardNumber:   cardNumber,
		Name:         "Jane Doe",
		MemberNumber: cardNumber,
		Category:     "Solo",
		Status:       member.StatusActive,
		ExpiryDate:   time.Now().UTC().Add(365 * 24 * time.Hour),
	}
}

func newScanService(t *testing.T, repo Repository, cards map[string]*member.Card) (*Service, *PassSigner) {
	t.Helper()
	signer, err := NewPassSigner("test-secret", 0)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return NewService(repo, &fakeCardResolver{cards: cards}, signer, 10, 24*time.Hour), signer
}

func TestScanGranted(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": activeCard("M1001")})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload, ScannedBy: "M0000"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeGranted {
		t.Fatalf("expected granted, got %s/%s", result.Outcome, result.Reason)
	}
	if result.PointsAwarded != 10 {
		t.Fatalf("expected 10 points awarded, got %d", result.PointsAwarded)
	}
	if repo.points["M1001"] != 10 {
		t.Fatalf("expected balance 10, got %d", repo.points["M1001"])
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	event := repo.events[0]
	if event.Outcome != OutcomeGranted || event.PointsDelta != 10 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.EventName != "General Access" {
		t.Fatalf("expected default event name, got %q", event.EventName)
	}
	if event.ScannedBy != "M0000" {
		t.Fatalf("expected scanner recorded, got %q", event.ScannedBy)
	}
}

func TestScanTamperedPayload(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, _ := newScanService(t, repo, map[string]*member.Card{"M1001": activeCard("M1001")})

	result, err := svc.Scan(context.Background(), ScanInput{Payload: "M1001", ScannedBy: "M0000"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeDenied || result.Reason != ReasonTampered {
		t.Fatalf("expected tampered denial, got %s/%s", result.Outcome, result.Reason)
	}
	if len(repo.events) != 1 || repo.events[0].Reason != ReasonTampered {
		t.Fatalf("tampered scan must still be logged, got %+v", repo.events)
	}
	if repo.points["M1001"] != 0 {
		t.Fatalf("no points for denied scan, got %d", repo.points["M1001"])
	}
}

func TestScanUnknownMember(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{})

	payload, err := signer.Issue("M9999")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeDenied || result.Reason != ReasonUnknownMember {
		t.Fatalf("expected unknown_member denial, got %s/%s", result.Outcome, result.Reason)
	}
}

func TestScanInactiveMember(t *testing.T) {
	card := activeCard("M1001")
	card.Status = member.StatusSuspended

	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": card})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeDenied || result.Reason != ReasonInactive {
		t.Fatalf("expected inactive denial, got %s/%s", result.Outcome, result.Reason)
	}
}

func TestScanExpiredMembership(t *testing.T) {
	card := activeCard("M1001")
	card.ExpiryDate = time.Now().UTC().Add(-24 * time.Hour)

	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": card})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeDenied || result.Reason != ReasonExpired {
		t.Fatalf("expected expired denial, got %s/%s", result.Outcome, result.Reason)
	}
	if repo.points["M1001"] != 0 {
		t.Fatalf("no points for expired member, got %d", repo.points["M1001"])
	}
}

func TestScanDuplicateWithinWindow(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": activeCard("M1001")})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	first, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if first.Outcome != OutcomeGranted {
		t.Fatalf("expected first scan granted, got %s/%s", first.Outcome, first.Reason)
	}

	second, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.Outcome != OutcomeDenied || second.Reason != ReasonDuplicateScan {
		t.Fatalf("expected duplicate denial, got %s/%s", second.Outcome, second.Reason)
	}
	if second.PointsAwarded != 0 {
		t.Fatalf("duplicate must not award points, got %d", second.PointsAwarded)
	}
	if repo.points["M1001"] != 10 {
		t.Fatalf("balance must stay at 10 after duplicate, got %d", repo.points["M1001"])
	}

	// Both attempts are in the log.
	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
}

func TestScanGrantedAgainAfterWindow(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": activeCard("M1001")})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Scan(context.Background(), ScanInput{Payload: payload}); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if result.Outcome != OutcomeGranted {
		t.Fatalf("expected grant after window, got %s/%s", result.Outcome, result.Reason)
	}
	if repo.points["M1001"] != 20 {
		t.Fatalf("expected balance 20, got %d", repo.points["M1001"])
	}
}

func TestScanDependentCardDeniedBySuspendedPrimary(t *testing.T) {
	card := activeCard("M1001-A")
	card.MemberNumber = "M1001"
	card.IsDependent = true
	card.Status = member.StatusSuspended

	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001-A": card})

	payload, err := signer.Issue("M1001-A")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcome != OutcomeDenied || result.Reason != ReasonInactive {
		t.Fatalf("expected inactive denial for dependent, got %s/%s", result.Outcome, result.Reason)
	}
}

func TestConcurrentScansAwardOnce(t *testing.T) {
	repo := newFakeAdmissionRepo()
	svc, signer := newScanService(t, repo, map[string]*member.Card{"M1001": activeCard("M1001")})

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const attempts = 50
	results := make([]*Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Scan(context.Background(), ScanInput{Payload: payload})
			if err != nil {
				t.Errorf("scan %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	granted := 0
	for _, result := range results {
		if result != nil && result.Outcome == OutcomeGranted {
			granted++
		}
	}
	if granted != 1 {
		t.Fatalf("expected exactly 1 grant from %d concurrent scans, got %d", attempts, granted)
	}
	if repo.points["M1001"] != 10 {
		t.Fatalf("expected exactly one award, balance %d", repo.points["M1001"])
	}
	if len(repo.events) != attempts {
		t.Fatalf("every attempt must be logged, got %d events", len(repo.events))
	}
}
