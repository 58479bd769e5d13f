package admission

import (
	"errors"
	"testing"
	"time"
)

func TestPassRoundTrip(t *testing.T) {
	signer, err := NewPassSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cardNumber, err := signer.Verify(payload)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if cardNumber != "M1001" {
		t.Fatalf("expected M1001, got %q", cardNumber)
	}
}

func TestPassTampered(t *testing.T) {
	signer, err := NewPassSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tampered := payload[:len(payload)-2] + "xx"
	if _, err := signer.Verify(tampered); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
}

func TestPassBareCardNumberRejected(t *testing.T) {
	signer, err := NewPassSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	if _, err := signer.Verify("M1001"); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
	if _, err := signer.Verify(""); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid for empty payload, got %v", err)
	}
}

func TestPassWrongSecret(t *testing.T) {
	signer, err := NewPassSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	other, err := NewPassSigner("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	payload, err := other.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := signer.Verify(payload); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
}

func TestPassExpired(t *testing.T) {
	signer, err := NewPassSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	payload, err := signer.Issue("M1001")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := signer.Verify(payload); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid for expired pass, got %v", err)
	}
}

func TestNewPassSignerRequiresSecret(t *testing.T) {
	if _, err := NewPassSigner("  ", time.Hour); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}
