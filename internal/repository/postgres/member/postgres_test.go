package member

import (
	"context"
	"testing"
	"time"

	memberdomain "club-pass-go/internal/domain/member"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&memberdomain.Member{}, &memberdomain.DependentCard{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func importRecordWithDependent() memberdomain.ImportRecord {
	return memberdomain.ImportRecord{
		MemberNumber: "M1001",
		FirstName:    "Jane",
		Surname:      "Doe",
		Identifier:   "jane@x.com",
		Category:     "Family",
		ExpiryDate:   time.Now().UTC().Add(365 * 24 * time.Hour),
		Dependents: []memberdomain.ImportDependent{
			{CardNumber: "M1001-A", Name: "Sam Doe", Relationship: "Child"},
		},
	}
}

func TestUpsertKeepsStoredID(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewPostgres(db)
	ctx := context.Background()

	first := memberdomain.Member{
		ID:           "id-first",
		MemberNumber: "M1001",
		FirstName:    "Jane",
		Surname:      "Doe",
		Identifier:   "jane@x.com",
		PasswordHash: "hash",
		Category:     "Solo",
		ExpiryDate:   time.Now().UTC(),
		Status:       memberdomain.StatusActive,
		Role:         memberdomain.RoleMember,
	}
	if err := repo.Upsert(ctx, &first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := first
	second.ID = "id-second"
	second.Surname = "Smith"
	if err := repo.Upsert(ctx, &second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != "id-first" {
		t.Fatalf("upsert must report the stored id, got %q", second.ID)
	}

	stored, err := repo.GetByNumber(ctx, "M1001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != "id-first" || stored.Surname != "Smith" {
		t.Fatalf("unexpected stored row %+v", stored)
	}
}

func TestImportIsRerunnableWithDependents(t *testing.T) {
	db := setupRepoDB(t)
	svc := memberdomain.NewService(NewPostgres(db))
	ctx := context.Background()

	for pass := 1; pass <= 2; pass++ {
		summary, err := svc.ImportRecords(ctx, []memberdomain.ImportRecord{importRecordWithDependent()})
		if err != nil {
			t.Fatalf("pass %d: %v", pass, err)
		}
		if summary.Imported != 1 || len(summary.Errors) != 0 {
			t.Fatalf("pass %d: expected clean import, got %+v", pass, summary)
		}
	}

	var cardCount int64
	if err := db.Model(&memberdomain.DependentCard{}).Count(&cardCount).Error; err != nil {
		t.Fatalf("count cards: %v", err)
	}
	if cardCount != 1 {
		t.Fatalf("expected 1 dependent card after re-import, got %d", cardCount)
	}

	stored, err := svc.GetByNumber(ctx, "M1001")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	var card memberdomain.DependentCard
	if err := db.Where("card_number = ?", "M1001-A").First(&card).Error; err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.PrimaryID != stored.ID {
		t.Fatalf("dependent must reference the stored member id %q, got %q", stored.ID, card.PrimaryID)
	}

	if _, err := svc.ResolveCard(ctx, "M1001-A"); err != nil {
		t.Fatalf("resolve dependent after re-import: %v", err)
	}
}
