package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"quizforge/models"
)

// ProviderIdentity is the stable identity the external auth provider reports
// for a signed-in user.
type ProviderIdentity struct {
	UID         string
	Email       string
	DisplayName string
	AvatarURL   string
}

// ProfileStore persists application profiles keyed by provider uid.
// Implemented by db.MongoProfileStore; tests use an in-memory store.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, defaults models.User) (*models.User, error)
	Merge(ctx context.Context, uid string, fields map[string]interface{}) error
}

// NewProfileDefaults builds the profile persisted on first sign-in for a
// provider identity: gamification fields zeroed, display name falling back
// to "Anonymous".
func NewProfileDefaults(identity *ProviderIdentity) models.User {
	displayName := identity.DisplayName
	if displayName == "" {
		displayName = "Anonymous"
	}
	return models.User{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: displayName,
		AvatarURL:   identity.AvatarURL,
		XP:          0,
		Level:       1,
		Streak:      0,
		Badges:      []string{},
		CreatedAt:   time.Now(),
	}
}

// SessionManager bridges provider-authenticated sessions to persisted
// profiles and is the single source of truth for "who is the current user".
// One manager owns one session; construct it explicitly and pass it to
// consumers rather than sharing a package-level instance.
type SessionManager struct {
	store   ProfileStore
	signOut func(ctx context.Context) error

	mu      sync.RWMutex
	profile *models.User
	loading bool
}

// NewSessionManager returns a manager in the Initializing state. signOut is
// the provider hook invoked by EndSession; it may be nil.
func NewSessionManager(store ProfileStore, signOut func(ctx context.Context) error) *SessionManager {
	return &SessionManager{store: store, signOut: signOut, loading: true}
}

// HandleSessionChange applies one provider callback. A nil identity clears
// the session. Otherwise the profile is looked up by the provider uid and, on
// first sign-in, created with zeroed gamification fields; the display name
// falls back to "Anonymous" when the provider supplies none.
func (m *SessionManager) HandleSessionChange(ctx context.Context, identity *ProviderIdentity) error {
	if identity == nil {
		m.mu.Lock()
		m.profile = nil
		m.loading = false
		m.mu.Unlock()
		return nil
	}

	profile, err := m.store.GetOrCreate(ctx, NewProfileDefaults(identity))
	if err != nil {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		return fmt.Errorf("failed to resolve profile for %s: %w", identity.UID, err)
	}

	m.mu.Lock()
	m.profile = profile
	m.loading = false
	m.mu.Unlock()
	return nil
}

// Watch consumes provider session events until the channel closes or ctx is
// done. Events are applied strictly in arrival order on this goroutine; no
// concurrent mutation of session state happens mid-processing.
func (m *SessionManager) Watch(ctx context.Context, events <-chan *ProviderIdentity) {
	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-events:
			if !ok {
				return
			}
			if err := m.HandleSessionChange(ctx, identity); err != nil {
				log.Printf("Error handling session change: %v", err)
			}
		}
	}
}

// UpdateProfile merges the named fields into the persisted record and, after
// a successful persist, into the in-memory copy. It is a no-op when there is
// no active session.
func (m *SessionManager) UpdateProfile(ctx context.Context, fields map[string]interface{}) error {
	m.mu.RLock()
	uid := ""
	if m.profile != nil {
		uid = m.profile.UID
	}
	m.mu.RUnlock()
	if uid == "" {
		return nil
	}

	if err := m.store.Merge(ctx, uid, fields); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	m.mu.Lock()
	if m.profile != nil && m.profile.UID == uid {
		applyProfileFields(m.profile, fields)
	}
	m.mu.Unlock()
	return nil
}

// CurrentProfile returns a copy of the current profile, if any.
func (m *SessionManager) CurrentProfile() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return models.User{}, false
	}
	return *m.profile, true
}

func (m *SessionManager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// EndSession asks the provider to invalidate the session. Local state is not
// cleared here: the provider's follow-up nil session-change event performs
// the clear, keeping the two-step handoff asynchronous.
func (m *SessionManager) EndSession(ctx context.Context) error {
	if m.signOut == nil {
		return nil
	}
	if err := m.signOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// applyProfileFields mirrors a persisted merge onto the in-memory profile.
func applyProfileFields(profile *models.User, fields map[string]interface{}) {
	for name, value := range fields {
		switch name {
		case "displayName":
			if v, ok := value.(string); ok {
				profile.DisplayName = v
			}
		case "bio":
			if v, ok := value.(string); ok {
				profile.Bio = v
			}
		case "profileImage":
			if v, ok := value.(string); ok {
				profile.ProfileImage = v
			}
		case "avatarUrl":
			if v, ok := value.(string); ok {
				profile.AvatarURL = v
			}
		case "email":
			if v, ok := value.(string); ok {
				profile.Email = v
			}
		case "xp":
			if v, ok := value.(int); ok {
				profile.XP = v
			}
		case "level":
			if v, ok := value.(int); ok {
				profile.Level = v
			}
		case "streak":
			if v, ok := value.(int); ok {
				profile.Streak = v
			}
		case "badges":
			if v, ok := value.([]string); ok {
				profile.Badges = v
			}
		case "lastActive":
			if v, ok := value.(time.Time); ok {
				profile.LastActive = v
			}
		case "updatedAt":
			if v, ok := value.(time.Time); ok {
				profile.UpdatedAt = v
			}
		}
	}
}
