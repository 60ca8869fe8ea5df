package services

import (
	"context"
	"sync"
	"testing"

	"quizforge/models"
)

// memProfileStore is an in-memory ProfileStore keyed by uid, matching the
// upsert semantics of the Mongo-backed store.
type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.User
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]*models.User)}
}

func (s *memProfileStore) GetOrCreate(ctx context.Context, defaults models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[defaults.UID]; ok {
		copied := *existing
		return &copied, nil
	}
	stored := defaults
	s.profiles[defaults.UID] = &stored
	copied := stored
	return &copied, nil
}

func (s *memProfileStore) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[uid]
	if !ok {
		return nil
	}
	applyProfileFields(profile, fields)
	return nil
}

func TestFirstSignInCreatesProfileWithDefaults(t *testing.T) {
	manager := NewSessionManager(newMemProfileStore(), nil)

	if !manager.IsLoading() {
		t.Error("Expected a fresh manager to be loading")
	}

	identity := &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	if manager.IsLoading() {
		t.Error("Expected loading to finish after the first session event")
	}

	profile, ok := manager.CurrentProfile()
	if !ok {
		t.Fatal("Expected a current profile after sign-in")
	}
	if profile.UID != "uid-1" || profile.Email != "alice@example.com" {
		t.Errorf("Unexpected identity fields: uid=%s email=%s", profile.UID, profile.Email)
	}
	if profile.DisplayName != "Alice" {
		t.Errorf("Expected display name Alice, got %s", profile.DisplayName)
	}
	if profile.XP != 0 || profile.Level != 1 || profile.Streak != 0 {
		t.Errorf("Expected zeroed gamification defaults, got xp=%d level=%d streak=%d",
			profile.XP, profile.Level, profile.Streak)
	}
	if profile.Badges == nil || len(profile.Badges) != 0 {
		t.Errorf("Expected empty badge list, got %v", profile.Badges)
	}
}

func TestAnonymousDisplayNameFallback(t *testing.T) {
	manager := NewSessionManager(newMemProfileStore(), nil)

	identity := &ProviderIdentity{UID: "uid-2", Email: "bob@example.com"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	profile, ok := manager.CurrentProfile()
	if !ok {
		t.Fatal("Expected a current profile after sign-in")
	}
	if profile.DisplayName != "Anonymous" {
		t.Errorf("Expected Anonymous fallback, got %s", profile.DisplayName)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	manager := NewSessionManager(newMemProfileStore(), nil)

	identity := &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	if err := manager.HandleSessionChange(context.Background(), nil); err != nil {
		t.Fatalf("HandleSessionChange(nil) failed: %v", err)
	}

	if _, ok := manager.CurrentProfile(); ok {
		t.Error("Expected no current profile after sign-out")
	}
	if manager.IsLoading() {
		t.Error("Expected loading to stay finished after sign-out")
	}
}

func TestReturningUserKeepsExistingProfile(t *testing.T) {
	store := newMemProfileStore()
	manager := NewSessionManager(store, nil)

	identity := &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}
	if err := manager.UpdateProfile(context.Background(), map[string]interface{}{"xp": 240, "level": 3}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	// Sign out and back in: the stored profile wins over defaults
	if err := manager.HandleSessionChange(context.Background(), nil); err != nil {
		t.Fatalf("HandleSessionChange(nil) failed: %v", err)
	}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	profile, ok := manager.CurrentProfile()
	if !ok {
		t.Fatal("Expected a current profile after re-sign-in")
	}
	if profile.XP != 240 || profile.Level != 3 {
		t.Errorf("Expected persisted progress to survive re-sign-in, got xp=%d level=%d", profile.XP, profile.Level)
	}
}

func TestUpdateProfileMergesNamedFieldsOnly(t *testing.T) {
	manager := NewSessionManager(newMemProfileStore(), nil)

	identity := &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	if err := manager.UpdateProfile(context.Background(), map[string]interface{}{"bio": "Quiz enthusiast"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	profile, _ := manager.CurrentProfile()
	if profile.Bio != "Quiz enthusiast" {
		t.Errorf("Expected bio to be merged, got %q", profile.Bio)
	}
	if profile.DisplayName != "Alice" || profile.Email != "alice@example.com" {
		t.Error("Expected untouched fields to be preserved by the merge")
	}
}

func TestUpdateProfileWithoutSessionIsNoOp(t *testing.T) {
	store := newMemProfileStore()
	manager := NewSessionManager(store, nil)

	if err := manager.UpdateProfile(context.Background(), map[string]interface{}{"bio": "ignored"}); err != nil {
		t.Fatalf("Expected no-op without a session, got error: %v", err)
	}
	if len(store.profiles) != 0 {
		t.Error("Expected no profile to be written without a session")
	}
}

func TestEndSessionDelegatesToProvider(t *testing.T) {
	store := newMemProfileStore()

	signedOut := false
	manager := NewSessionManager(store, func(ctx context.Context) error {
		signedOut = true
		return nil
	})

	identity := &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	if err := manager.HandleSessionChange(context.Background(), identity); err != nil {
		t.Fatalf("HandleSessionChange failed: %v", err)
	}

	if err := manager.EndSession(context.Background()); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if !signedOut {
		t.Error("Expected EndSession to call the provider sign-out hook")
	}

	// Local state is cleared by the provider's follow-up event, not EndSession
	if _, ok := manager.CurrentProfile(); !ok {
		t.Error("Expected profile to remain until the nil session event arrives")
	}
	if err := manager.HandleSessionChange(context.Background(), nil); err != nil {
		t.Fatalf("HandleSessionChange(nil) failed: %v", err)
	}
	if _, ok := manager.CurrentProfile(); ok {
		t.Error("Expected profile to be cleared by the nil session event")
	}
}

func TestWatchAppliesEventsInOrder(t *testing.T) {
	manager := NewSessionManager(newMemProfileStore(), nil)

	events := make(chan *ProviderIdentity)
	done := make(chan struct{})
	go func() {
		manager.Watch(context.Background(), events)
		close(done)
	}()

	events <- &ProviderIdentity{UID: "uid-1", Email: "alice@example.com", DisplayName: "Alice"}
	events <- nil
	events <- &ProviderIdentity{UID: "uid-2", Email: "bob@example.com"}
	close(events)
	<-done

	profile, ok := manager.CurrentProfile()
	if !ok {
		t.Fatal("Expected the last sign-in event to leave an active session")
	}
	if profile.UID != "uid-2" {
		t.Errorf("Expected the final event's profile, got uid=%s", profile.UID)
	}
}
