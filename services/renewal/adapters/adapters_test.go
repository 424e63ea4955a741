package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/egyptiangio/newspaparr/lib/browser"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	a, err := Lookup("oclc", "nyt")
	require.NoError(t, err)
	require.Equal(t, Key{Library: "oclc", Newspaper: "nyt"}, a.Key())
	require.Equal(t, "oclc", a.LibraryName())

	// case and whitespace from operator input are tolerated
	a, err = Lookup(" OCLC ", "WSJ")
	require.NoError(t, err)
	require.Equal(t, "wsj", a.Key().Newspaper)
}

func TestLookupUnsupported(t *testing.T) {
	_, err := Lookup("oclc", "nytt")
	var unsupported *UnsupportedAdapterError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "oclc/nyt", unsupported.Suggestion)
	require.Contains(t, err.Error(), "did you mean oclc/nyt?")
}

func TestLookupNoSuggestionWhenFarOff(t *testing.T) {
	_, err := Lookup("completely", "unrelated")
	var unsupported *UnsupportedAdapterError
	require.ErrorAs(t, err, &unsupported)
	require.Empty(t, unsupported.Suggestion)
}

// portalServer simulates an OCLC style library portal that links out
// to a newspaper redemption page hosted on the same test server.
func portalServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/portal", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/portal/login" method="post">
				<input type="text" name="code"/>
				<input type="password" name="pin"/>
				<input type="submit" value="Sign In"/>
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/portal/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("code") != "123456" {
			fmt.Fprint(w, `<html><body>Invalid card number.</body></html>`)
			return
		}
		http.Redirect(w, r, "/portal/home", http.StatusFound)
	})
	mux.HandleFunc("/portal/home", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1>Welcome back</h1>
			<a href="/papers/nytimes.com/redeem">Visit The New York Times</a>
		</body></html>`)
	})
	mux.HandleFunc("/papers/nytimes.com/redeem", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/papers/activate" method="post">
				<input type="email" name="email"/>
				<input type="password" name="password"/>
				<button type="submit">Redeem</button>
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/papers/activate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			Your pass is now active and expires on September 15, 2025.
		</body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOclcNytEndToEnd(t *testing.T) {
	server := portalServer(t)
	ctx := context.Background()

	session, err := browser.NewWebSession(browser.WebSessionOptions{})
	require.NoError(t, err)
	defer session.Close(ctx)

	adapter, err := Lookup("oclc", "nyt")
	require.NoError(t, err)

	creds := Credentials{
		LibraryURL:        server.URL + "/portal",
		LibraryUsername:   "123456",
		LibraryPassword:   "9999",
		NewspaperUsername: "reader@example.com",
		NewspaperPassword: "secret",
	}

	step, err := adapter.Authenticate(ctx, session, creds)
	require.NoError(t, err)
	require.Equal(t, StatePortal, step.State)

	step, err = adapter.ActivatePass(ctx, session, creds)
	require.NoError(t, err)
	require.Equal(t, StateSuccessPage, step.State)
	require.Contains(t, step.Text, "expires on September 15, 2025")

	text, err := adapter.DescribeExpiration(ctx, session)
	require.NoError(t, err)
	require.Contains(t, text, "September 15, 2025")
}

func TestObserveDetectsCaptcha(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div class="g-recaptcha" data-sitekey="site-abc"></div>
			<form action="/verify" method="post">
				<textarea name="g-recaptcha-response"></textarea>
			</form>
		</body></html>`)
	}))
	defer server.Close()

	ctx := context.Background()
	session, err := browser.NewWebSession(browser.WebSessionOptions{})
	require.NoError(t, err)
	defer session.Close(ctx)

	require.NoError(t, session.Open(ctx, server.URL))
	step := Observe(session)
	require.Equal(t, StateCaptchaChallenge, step.State)
	require.NotNil(t, step.Challenge)
	require.Equal(t, "site-abc", step.Challenge.SiteKey)
}

func TestSubmitToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<form action="/verify" method="post">
				<textarea name="g-recaptcha-response"></textarea>
			</form>
		</body></html>`)
	})
	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("g-recaptcha-response") != "tok-123" {
			fmt.Fprint(w, `<html><body>Something went wrong.</body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body>Your pass is now active.</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	session, err := browser.NewWebSession(browser.WebSessionOptions{})
	require.NoError(t, err)
	defer session.Close(ctx)

	require.NoError(t, session.Open(ctx, server.URL))
	adapter, err := Lookup("oclc", "nyt")
	require.NoError(t, err)

	step, err := adapter.SubmitToken(ctx, session, "tok-123")
	require.NoError(t, err)
	require.Equal(t, StateSuccessPage, step.State)
}

func TestGiftLinkSkipsPortal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nytimes.com/subscription/redeem", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Your pass is now active.</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	session, err := browser.NewWebSession(browser.WebSessionOptions{})
	require.NoError(t, err)
	defer session.Close(ctx)

	adapter, err := Lookup("oclc", "nyt")
	require.NoError(t, err)

	// the entry point is a direct redemption link; no card number is
	// ever entered
	step, err := adapter.Authenticate(ctx, session, Credentials{
		LibraryURL: server.URL + "/nytimes.com/subscription/redeem",
	})
	require.NoError(t, err)
	require.Equal(t, StateSuccessPage, step.State)
}
