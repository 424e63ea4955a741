package proxyman

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/proxy"
)

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	return New(Options{ListenAddr: "127.0.0.1:0", TTL: ttl})
}

// dialThrough fetches an origin server through the relay using the
// lease's credentials.
func dialThrough(t *testing.T, lease *Lease, origin string) error {
	t.Helper()
	dialer, err := proxy.SOCKS5("tcp", lease.Addr, &proxy.Auth{
		User:     lease.Username,
		Password: lease.Password,
	}, proxy.Direct)
	require.NoError(t, err)

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		},
		Timeout: time.Second * 5,
	}
	res, err := client.Get(origin)
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return nil
}

func TestLeaseRelaysTraffic(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer origin.Close()

	m := testManager(t, time.Second*30)
	lease, err := m.Acquire(context.Background())
	require.NoError(t, err)
	defer m.Release(context.Background(), lease.ID)

	require.NoError(t, dialThrough(t, lease, origin.URL))
}

func TestSecondAcquireFailsWhileHeld(t *testing.T) {
	m := testManager(t, time.Second*30)
	ctx := context.Background()

	lease, err := m.Acquire(ctx)
	require.NoError(t, err)

	_, err = m.Acquire(ctx)
	require.ErrorIs(t, err, ErrProxyUnavailable)

	m.Release(ctx, lease.ID)
	require.False(t, m.Held())

	second, err := m.Acquire(ctx)
	require.NoError(t, err)
	m.Release(ctx, second.ID)
}

func TestReleasedCredentialsRejected(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer origin.Close()

	m := testManager(t, time.Second*30)
	ctx := context.Background()

	lease, err := m.Acquire(ctx)
	require.NoError(t, err)
	m.Release(ctx, lease.ID)

	// the listener is torn down with the lease, any later connection
	// attempt must fail
	require.Error(t, dialThrough(t, lease, origin.URL))
}

func TestWrongPasswordRejected(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer origin.Close()

	m := testManager(t, time.Second*30)
	ctx := context.Background()

	lease, err := m.Acquire(ctx)
	require.NoError(t, err)
	defer m.Release(ctx, lease.ID)

	bad := *lease
	bad.Password = "nope"
	require.Error(t, dialThrough(t, &bad, origin.URL))
}

func TestTTLForcesReclamation(t *testing.T) {
	m := testManager(t, time.Millisecond*50)
	ctx := context.Background()

	lease, err := m.Acquire(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return !m.Held()
	}, time.Second*2, time.Millisecond*10)

	// the port is free again even though the lease was never released
	second, err := m.Acquire(ctx)
	require.NoError(t, err)
	m.Release(ctx, second.ID)
	_ = lease
}

func TestReleaseUnknownLeaseIsNoop(t *testing.T) {
	m := testManager(t, time.Second*30)
	m.Release(context.Background(), "not-a-lease")
	require.False(t, m.Held())
}
