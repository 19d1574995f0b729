// Package session owns the client's authentication state: the current
// credential, the identity derived from it, and the access gate the
// rest of the application consults.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"spendtrack/internal/api"
	"spendtrack/internal/log"
	"spendtrack/internal/token"
)

// Route is a navigation signal emitted after auth transitions. The
// manager never navigates itself; a caller subscribes and decides.
type Route string

const (
	RouteHome  Route = "home"
	RouteLogin Route = "login"
)

// Fallback messages when the backend gives no usable error body.
const (
	loginFailedMessage    = "Login failed. Please try again."
	registerFailedMessage = "Registration failed. Please try again."
)

// AuthService is the slice of the API client the manager needs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (api.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (api.AuthResponse, error)
}

// CredentialStore persists the credential in the single named slot and
// owns the cached query results tied to it.
type CredentialStore interface {
	SaveCredential(ctx context.Context, tok string) error
	Credential(ctx context.Context) (string, bool, error)
	ClearCredential(ctx context.Context) error
	ClearResults(ctx context.Context) error
}

// Snapshot is a read-only view of the session handed to listeners.
type Snapshot struct {
	Identity      *token.Identity
	Authenticated bool
	Busy          bool
	LastError     string
}

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

// AuthError is a failed login or register attempt. Message is what the
// session surfaces to the user; Err keeps the transport cause.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// Manager is the process-wide session. Exactly one exists per running
// client; consumers receive it by injection, never through globals.
type Manager struct {
	auth  AuthService
	store CredentialStore
	now   func() time.Time

	mu            sync.Mutex
	credential    string
	identity      *token.Identity
	authenticated bool
	lastError     string
	busy          bool
	listeners     []Listener
	navigate      func(Route)
}

func NewManager(auth AuthService, store CredentialStore) *Manager {
	return &Manager{
		auth:  auth,
		store: store,
		now:   time.Now,
	}
}

// Subscribe registers a listener for session state changes.
func (m *Manager) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// OnNavigate registers the navigation sink. Only one is supported; the
// last registration wins.
func (m *Manager) OnNavigate(fn func(Route)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigate = fn
}

// Login authenticates against the backend. On success the returned
// credential is stored, persisted and decoded into the identity. On
// failure prior session state is left untouched and LastError carries
// the backend's message when one exists.
//
// busy is cleared on every path out of this method, including a decode
// failure on the freshly issued credential.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.setBusy(true)
	defer m.setBusy(false)

	resp, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return m.fail("login", err, loginFailedMessage)
	}
	return m.adopt(ctx, resp, RouteHome, loginFailedMessage)
}

// Register creates an account. The issued credential is treated
// identically to a login credential.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	m.setBusy(true)
	defer m.setBusy(false)

	resp, err := m.auth.Register(ctx, username, email, password)
	if err != nil {
		return m.fail("register", err, registerFailedMessage)
	}
	return m.adopt(ctx, resp, RouteHome, registerFailedMessage)
}

// Logout clears the session: the credential slot, the in-memory state
// and the cached query results, so the next account on this machine
// never sees this account's lists. It is synchronous and cannot fail:
// a storage error only loses the persisted copy, which is already the
// desired end state, so it is logged and swallowed.
func (m *Manager) Logout() {
	ctx := context.Background()
	if err := m.store.ClearCredential(ctx); err != nil {
		slog.Warn("Failed to erase persisted credential",
			log.FieldComponent, log.ComponentSession, log.FieldError, err)
	}
	if err := m.store.ClearResults(ctx); err != nil {
		slog.Warn("Failed to clear cached query results",
			log.FieldComponent, log.ComponentSession, log.FieldError, err)
	}

	m.mu.Lock()
	m.credential = ""
	m.identity = nil
	m.authenticated = false
	snap := m.snapshotLocked()
	nav := m.navigate
	m.mu.Unlock()

	m.notify(snap)
	if nav != nil {
		nav(RouteLogin)
	}
}

// RestoreFromStorage loads a persisted credential, if any. A malformed
// or expired credential behaves exactly like Logout. Expiry is the only
// client-side enforcement point, so this runs at startup and again
// whenever the stored credential changes.
func (m *Manager) RestoreFromStorage(ctx context.Context) {
	tok, ok, err := m.store.Credential(ctx)
	if err != nil {
		slog.Warn("Failed to read persisted credential",
			log.FieldComponent, log.ComponentSession, log.FieldError, err)
		return
	}
	if !ok {
		return
	}

	claims, err := token.Decode(tok)
	if err != nil || claims.Expired(m.now()) {
		slog.Info("Discarding persisted credential",
			log.FieldComponent, log.ComponentSession,
			"reason", credentialReason(err))
		m.Logout()
		return
	}

	identity := claims.Identity()
	m.mu.Lock()
	m.credential = tok
	m.identity = &identity
	m.authenticated = true
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

func credentialReason(decodeErr error) string {
	if decodeErr != nil {
		return "malformed"
	}
	return "expired"
}

// IsAuthorized is the access gate: true iff a credential is present,
// decodable and unexpired right now. It re-evaluates against the clock
// on every call because time advances.
func (m *Manager) IsAuthorized() bool {
	m.mu.Lock()
	cred := m.credential
	m.mu.Unlock()
	return token.Valid(cred, m.now())
}

// AttachCredential adds the bearer header when a credential is
// present, valid or not. Expiry enforcement stays with the backend.
func (m *Manager) AttachCredential(req *http.Request) {
	if tok, ok := m.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// Token implements api.TokenSource.
func (m *Manager) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credential, m.credential != ""
}

// HandleUnauthorized is the sink for the transport's 401 signal. The
// teardown is unconditional: any endpoint reporting unauthorized ends
// the session, even for an unrelated background request.
func (m *Manager) HandleUnauthorized() {
	slog.Info("Unauthorized response received, clearing session",
		log.FieldComponent, log.ComponentSession)
	m.Logout()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) adopt(ctx context.Context, resp api.AuthResponse, route Route, fallback string) error {
	claims, err := token.Decode(resp.Token)
	if err != nil {
		// The backend handed us a credential we cannot read. Treat it
		// like any other auth failure; prior state stays untouched.
		return m.fail("decode credential", err, fallback)
	}

	if err := m.store.SaveCredential(ctx, resp.Token); err != nil {
		// The in-memory session still works for this run.
		slog.Warn("Failed to persist credential",
			log.FieldComponent, log.ComponentSession, log.FieldError, err)
	}

	identity := token.Identity{
		ID:       claims.Subject,
		Username: resp.Username,
		Email:    resp.Email,
	}

	m.mu.Lock()
	m.credential = resp.Token
	m.identity = &identity
	m.authenticated = true
	m.lastError = ""
	snap := m.snapshotLocked()
	nav := m.navigate
	m.mu.Unlock()

	slog.Info("Session established",
		log.FieldComponent, log.ComponentSession, log.FieldUsername, identity.Username)
	m.notify(snap)
	if nav != nil {
		nav(route)
	}
	return nil
}

func (m *Manager) fail(op string, err error, fallback string) error {
	msg := api.ServerMessage(err)
	if msg == "" {
		msg = fallback
	}

	m.mu.Lock()
	m.lastError = msg
	snap := m.snapshotLocked()
	m.mu.Unlock()

	slog.Warn("Authentication failed",
		log.FieldComponent, log.ComponentSession,
		log.FieldOperation, op, log.FieldError, err)
	m.notify(snap)
	return &AuthError{Message: msg, Err: fmt.Errorf("%s: %w", op, err)}
}

func (m *Manager) setBusy(b bool) {
	m.mu.Lock()
	m.busy = b
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		Authenticated: m.authenticated,
		Busy:          m.busy,
		LastError:     m.lastError,
	}
	if m.identity != nil {
		id := *m.identity
		snap.Identity = &id
	}
	return snap
}

// notify calls listeners outside the lock so a listener may call back
// into the manager.
func (m *Manager) notify(snap Snapshot) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

var _ api.TokenSource = (*Manager)(nil)

// ErrNotAuthorized is returned by callers gating protected operations.
var ErrNotAuthorized = errors.New("not logged in")
