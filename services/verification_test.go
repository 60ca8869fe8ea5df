package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"quizforge/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memVerificationStore is an in-memory VerificationStore with the same
// conditional-update consumption semantics as the Mongo-backed store.
type memVerificationStore struct {
	mu      sync.Mutex
	records []*models.VerificationCode
}

func (s *memVerificationStore) Insert(ctx context.Context, record models.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = primitive.NewObjectID()
	s.records = append(s.records, &record)
	return nil
}

func (s *memVerificationStore) FindUnused(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Email == email && r.Code == code && !r.Used {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memVerificationStore) MarkUsed(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id && !r.Used {
			r.Used = true
			return true, nil
		}
	}
	return false, nil
}

func TestRequestCodeFormat(t *testing.T) {
	svc := NewVerificationService(&memVerificationStore{})
	pattern := regexp.MustCompile(`^[0-9]{6}$`)

	for i := 0; i < 50; i++ {
		code, err := svc.RequestCode(context.Background(), "alice@example.com")
		if err != nil {
			t.Fatalf("RequestCode failed: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("Expected six-digit code, got %q", code)
		}
	}
}

func TestVerifyConsumesCodeOnce(t *testing.T) {
	svc := NewVerificationService(&memVerificationStore{})

	code, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	if !svc.Verify(context.Background(), "alice@example.com", code) {
		t.Error("Expected first Verify to accept the code")
	}
	if svc.Verify(context.Background(), "alice@example.com", code) {
		t.Error("Expected second Verify to reject the already-used code")
	}
}

func TestVerifyWrongCode(t *testing.T) {
	svc := NewVerificationService(&memVerificationStore{})

	code, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if svc.Verify(context.Background(), "alice@example.com", wrong) {
		t.Error("Expected Verify to reject a wrong code")
	}
	if svc.Verify(context.Background(), "bob@example.com", code) {
		t.Error("Expected Verify to reject a valid code for a different email")
	}

	// The real code must still be consumable after failed attempts
	if !svc.Verify(context.Background(), "alice@example.com", code) {
		t.Error("Expected the issued code to remain valid after failed attempts")
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	store := &memVerificationStore{}
	svc := NewVerificationService(store)

	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	code, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	// Just before expiry the code still works for someone else's clock,
	// just after it must not.
	svc.now = func() time.Time { return issuedAt.Add(codeTTL + time.Second) }
	if svc.Verify(context.Background(), "alice@example.com", code) {
		t.Error("Expected Verify to reject an expired code")
	}

	// Expired codes are left unused, not consumed
	record, err := store.FindUnused(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("FindUnused failed: %v", err)
	}
	if record == nil {
		t.Error("Expected expired code to remain unused in the store")
	}
}

func TestMultipleOutstandingCodes(t *testing.T) {
	svc := NewVerificationService(&memVerificationStore{})

	first, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	second, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	// Requesting a new code does not invalidate the earlier one
	if !svc.Verify(context.Background(), "alice@example.com", first) {
		t.Error("Expected the earlier code to still be accepted")
	}
	if first != second {
		if !svc.Verify(context.Background(), "alice@example.com", second) {
			t.Error("Expected the later code to still be accepted")
		}
	}
}

func TestVerifyConcurrentSingleWinner(t *testing.T) {
	svc := NewVerificationService(&memVerificationStore{})

	code, err := svc.RequestCode(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}

	const attempts = 20
	results := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Verify(context.Background(), "alice@example.com", code)
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for ok := range results {
		if ok {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("Expected exactly one concurrent Verify to win, got %d", accepted)
	}
}
