// Package proxyman provides a SOCKS5 relay on demand. The relay only
// exists while a captcha solving exchange needs it: acquiring a lease
// binds the listener and mints a random credential pair, releasing it
// (or the TTL lapsing) tears the listener down and invalidates the
// credentials. Running the relay only on demand keeps the port closed
// the rest of the time.
package proxyman

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/egyptiangio/newspaparr/lib/timezone"

	"github.com/armon/go-socks5"
	"github.com/google/uuid"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/renewal/proxyman")

// ErrProxyUnavailable is returned when the relay cannot be provided,
// either because the port cannot bind or because another lease holds
// it. Callers must fail their captcha step instead of proceeding
// without the relay.
var ErrProxyUnavailable = fmt.Errorf("proxy is unavailable")

type Lease struct {
	ID       string
	Username string
	Password string
	Addr     string
	Expires  time.Time
}

// URL renders the lease as a proxy url usable by an http transport.
// Never log this, it embeds the credentials; log the lease ID instead.
func (l *Lease) URL() string {
	u := url.URL{
		Scheme: "socks5",
		User:   url.UserPassword(l.Username, l.Password),
		Host:   l.Addr,
	}
	return u.String()
}

type Options struct {
	// ListenAddr is the address the relay binds while a lease is live.
	// Defaults to "127.0.0.1:1080". Tests use "127.0.0.1:0".
	ListenAddr string
	// TTL bounds a lease to roughly one captcha solve. Defaults to 90s.
	TTL time.Duration
}

// Manager hands out at most one live lease at a time; the listen port
// is a process-wide resource.
type Manager struct {
	listenAddr string
	ttl        time.Duration

	mu       sync.Mutex
	active   *Lease
	listener net.Listener
	reclaim  *time.Timer
}

func New(opts Options) *Manager {
	listenAddr := opts.ListenAddr
	if listenAddr == "" {
		listenAddr = "127.0.0.1:1080"
	}
	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Second * 90
	}
	return &Manager{
		listenAddr: listenAddr,
		ttl:        ttl,
	}
}

// Acquire binds the relay and returns a fresh lease for it. It fails
// with ErrProxyUnavailable when another lease is still live or the
// port cannot bind.
func (m *Manager) Acquire(ctx context.Context) (*Lease, error) {
	ctx, span := tracer.Start(ctx, "Acquire")
	defer span.End()

	username, err := random.String(16)
	if err != nil {
		return nil, err
	}
	password, err := random.String(32)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, fmt.Errorf("%w: lease %s still holds the relay", ErrProxyUnavailable, m.active.ID)
	}

	server, err := socks5.New(&socks5.Config{
		Credentials: credentialStore{m},
	})
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", m.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyUnavailable, err)
	}

	lease := &Lease{
		ID:       uuid.NewString(),
		Username: username,
		Password: password,
		Addr:     listener.Addr().String(),
		Expires:  timezone.Now().Add(m.ttl),
	}
	m.active = lease
	m.listener = listener
	// forced reclamation: the listener never outlives the TTL even if
	// the consumer forgets to release
	m.reclaim = time.AfterFunc(m.ttl, func() {
		m.Release(context.Background(), lease.ID)
	})

	go func() {
		err := server.Serve(listener)
		if err != nil {
			slog.DebugContext(ctx, "socks5 relay stopped", "lease", lease.ID, "err", err)
		}
	}()

	slog.InfoContext(ctx, "acquired proxy lease",
		"lease", lease.ID, "addr", lease.Addr, "expires", lease.Expires)
	out := *lease
	return &out, nil
}

// Release invalidates the lease and tears the relay down. Releasing an
// unknown or already-released lease is a no-op. Every exit path of a
// captcha step must call this, typically via defer.
func (m *Manager) Release(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active.ID != id {
		return
	}
	if m.reclaim != nil {
		m.reclaim.Stop()
		m.reclaim = nil
	}
	m.listener.Close()
	m.listener = nil
	m.active = nil
	slog.InfoContext(ctx, "released proxy lease", "lease", id)
}

// Held reports whether a lease currently holds the relay.
func (m *Manager) Held() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

type credentialStore struct {
	m *Manager
}

// Valid authenticates a relay connection against the live lease. A
// released or expired credential pair never authenticates again.
func (s credentialStore) Valid(user, password string) bool {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	l := s.m.active
	if l == nil {
		return false
	}
	if timezone.Now().After(l.Expires) {
		return false
	}
	userOk := subtle.ConstantTimeCompare([]byte(l.Username), []byte(user)) == 1
	passOk := subtle.ConstantTimeCompare([]byte(l.Password), []byte(password)) == 1
	return userOk && passOk
}
