// Package auth implements login, registration and session state.
// Remote calls go first; any remote failure falls closed to the local
// user repository, so the app works with no backend at all.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"go.vokalia.id/voicecheck/api"
	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/repo"
	"go.vokalia.id/voicecheck/store"
)

// Session scalar keys, set at login and cleared at logout.
const (
	keyIsLoggedIn = "isLoggedIn"
	keyRole       = "role"
	keyUsername   = "username"
	keyNPM        = "npm"
	keyToken      = "token"
)

// localToken is the pass-through token stored when authentication
// happens against the local repository instead of the backend.
const localToken = "dummy-token"

// ErrInvalidCredentials is returned when neither the remote backend nor
// the local repository accepts the npm/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionUser is the logged-in identity as read from the session keys.
type SessionUser struct {
	NPM   string
	Nama  string
	Role  string
	Token string
}

// Service performs authentication over the store, the users repository
// and the optional remote client.
type Service struct {
	st    *store.Store
	bus   *bus.Bus
	users *repo.Users
	api   *api.Client
}

// New wires the auth service. api may be nil, in which case every call
// is local-only.
func New(st *store.Store, b *bus.Bus, users *repo.Users, client *api.Client) *Service {
	return &Service{st: st, bus: b, users: users, api: client}
}

// Login authenticates npm/password. The remote backend is tried first;
// on any remote failure the local repository decides. Success persists
// the session scalars and publishes auth.
func (s *Service) Login(ctx context.Context, npm, password string) (*SessionUser, error) {
	if npm == "" || password == "" {
		return nil, &repo.ValidationError{Field: "credentials", Reason: "npm and password required"}
	}

	if s.api != nil {
		res, err := s.api.Login(ctx, npm, password)
		if err == nil {
			return s.persistSession(res.User, res.Token)
		}
		slog.Warn("remote login unavailable, using local fallback", "error", err)
	}

	u, ok := s.users.FindByNPM(npm)
	if !ok || u.Password != password {
		return nil, ErrInvalidCredentials
	}
	return s.persistSession(u, localToken)
}

// Register creates an account. The remote backend is tried first; on
// any remote failure the local repository performs the duplicate check
// and the write. Registration does not log the user in.
func (s *Service) Register(ctx context.Context, u types.User) (types.User, error) {
	if err := validateRegistration(u); err != nil {
		return types.User{}, err
	}
	u.Role = types.NormalizeRole(u.Role)

	if s.api != nil {
		res, err := s.api.Register(ctx, u)
		if err == nil {
			return res.User, nil
		}
		slog.Warn("remote register unavailable, using local fallback", "error", err)
	}

	return s.users.Add(u)
}

// Logout clears the session scalars and publishes auth. Logging out
// while logged out is harmless.
func (s *Service) Logout() {
	for _, key := range []string{keyToken, keyUsername, keyNPM, keyRole, keyIsLoggedIn} {
		if err := s.st.Delete(key); err != nil {
			slog.Warn("clear session key", "key", key, "error", err)
		}
	}
	s.bus.Publish(bus.TopicAuth)
}

// CurrentUser reads the logged-in identity from the session keys, or
// nil when nobody is logged in.
func (s *Service) CurrentUser() *SessionUser {
	if !s.st.ReadBool(keyIsLoggedIn) {
		return nil
	}
	return &SessionUser{
		NPM:   s.st.ReadString(keyNPM),
		Nama:  s.st.ReadString(keyUsername),
		Role:  types.NormalizeRole(s.st.ReadString(keyRole)),
		Token: s.st.ReadString(keyToken),
	}
}

func (s *Service) persistSession(u types.User, token string) (*SessionUser, error) {
	role := types.NormalizeRole(u.Role)
	// isLoggedIn goes last: another view observing it set can trust
	// the identity scalars are already in place.
	writes := []struct{ key, val string }{
		{keyToken, token},
		{keyUsername, u.Nama},
		{keyNPM, u.NPM},
		{keyRole, role},
		{keyIsLoggedIn, "true"},
	}
	for _, w := range writes {
		if err := s.st.WriteString(w.key, w.val); err != nil {
			return nil, err
		}
	}
	s.bus.Publish(bus.TopicAuth)
	return &SessionUser{NPM: u.NPM, Nama: u.Nama, Role: role, Token: token}, nil
}

func validateRegistration(u types.User) error {
	fields := map[string]string{
		"npm":      u.NPM,
		"nama":     u.Nama,
		"password": u.Password,
		"role":     u.Role,
	}
	for field, value := range fields {
		if value == "" {
			return &repo.ValidationError{Field: field, Reason: "must not be empty"}
		}
	}
	return nil
}
