package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"quizforge/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// codeTTL is how long an issued verification code stays consumable.
const codeTTL = 10 * time.Minute

// VerificationStore persists verification code records. Implemented by
// db.MongoVerificationStore; tests use an in-memory store.
type VerificationStore interface {
	Insert(ctx context.Context, record models.VerificationCode) error
	FindUnused(ctx context.Context, email, code string) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// VerificationService issues and consumes email verification codes, gating
// credential-based sign-in and sign-up.
type VerificationService struct {
	store VerificationStore
	now   func() time.Time
}

// Verification is the process-wide service instance, set up in main via
// InitVerificationService.
var Verification *VerificationService

func InitVerificationService(store VerificationStore) {
	Verification = NewVerificationService(store)
}

func NewVerificationService(store VerificationStore) *VerificationService {
	return &VerificationService{store: store, now: time.Now}
}

// RequestCode issues a fresh six-digit code for email and persists it
// unused. Issuing a new code leaves previously issued codes valid until they
// expire or are consumed.
func (s *VerificationService) RequestCode(ctx context.Context, email string) (string, error) {
	code, err := generateVerificationCode()
	if err != nil {
		return "", err
	}

	now := s.now()
	record := models.VerificationCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(codeTTL),
		Used:      false,
		CreatedAt: now,
	}
	if err := s.store.Insert(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}
	return code, nil
}

// Verify consumes an unused, unexpired code for email and reports whether it
// was accepted. A wrong code, an expired code and a storage failure all
// report false; an expired code is left unused. Consumption is a conditional
// update on the used flag, so each code is accepted at most once even under
// concurrent calls.
func (s *VerificationService) Verify(ctx context.Context, email, submittedCode string) bool {
	record, err := s.store.FindUnused(ctx, email, submittedCode)
	if err != nil {
		log.Printf("Error looking up verification code: %v", err)
		return false
	}
	if record == nil {
		return false
	}

	if s.now().After(record.ExpiresAt) {
		return false
	}

	consumed, err := s.store.MarkUsed(ctx, record.ID)
	if err != nil {
		log.Printf("Error consuming verification code: %v", err)
		return false
	}
	return consumed
}

// generateVerificationCode returns a uniformly random code in
// [100000, 999999] as a numeric string.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %v", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
