// Package adapters knows how to drive specific library portals and
// newspaper sites through a browser session. An adapter is the
// composition of a library flow (how to log into the portal that
// grants passes) and a newspaper flow (how to redeem the pass on the
// paper's site).
package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/egyptiangio/newspaparr/lib/browser"
	"github.com/egyptiangio/newspaparr/services/renewal/captcha"

	"github.com/antzucaro/matchr"
)

type Key struct {
	Library   string
	Newspaper string
}

func (k Key) String() string {
	return k.Library + "/" + k.Newspaper
}

type Credentials struct {
	// LibraryURL is the portal entry point, or a direct redemption
	// link which skips the portal login entirely.
	LibraryURL        string
	LibraryUsername   string
	LibraryPassword   string
	NewspaperUsername string
	NewspaperPassword string
}

type StateTag string

const (
	StateLoginForm         StateTag = "login_form"
	StatePortal            StateTag = "portal"
	StateCaptchaChallenge  StateTag = "captcha_challenge"
	StateSuccessPage       StateTag = "success_page"
	StateAlreadySubscribed StateTag = "already_subscribed"
	StateUnknown           StateTag = "unknown"
)

// StepResult describes the page a step landed on.
type StepResult struct {
	State StateTag
	Text  string
	URL   string
	// Challenge is set when State is StateCaptchaChallenge.
	Challenge *captcha.Challenge
}

type Adapter interface {
	Key() Key
	LibraryName() string
	// Authenticate logs into the library portal, or opens the
	// redemption link directly when the account uses one.
	Authenticate(ctx context.Context, session browser.Session, creds Credentials) (StepResult, error)
	// ActivatePass drives the redemption flow on the newspaper site.
	ActivatePass(ctx context.Context, session browser.Session, creds Credentials) (StepResult, error)
	// SubmitToken injects a solved challenge token and resumes the
	// activation flow.
	SubmitToken(ctx context.Context, session browser.Session, token string) (StepResult, error)
	// DescribeExpiration returns the text an expiration date should be
	// extracted from, usually the visible text of the landing page.
	DescribeExpiration(ctx context.Context, session browser.Session) (string, error)
}

// UnsupportedAdapterError is returned before any session opens when
// an account names a library/newspaper pair no adapter covers.
type UnsupportedAdapterError struct {
	Library   string
	Newspaper string
	// Suggestion is the closest registered pair, when one is close
	// enough to look like a typo.
	Suggestion string
}

func (e *UnsupportedAdapterError) Error() string {
	msg := fmt.Sprintf("no adapter registered for %s/%s", e.Library, e.Newspaper)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestion)
	}
	return msg
}

var registry = map[Key]Adapter{}

func Register(a Adapter) {
	key := a.Key()
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("adapter registered twice: %s", key))
	}
	registry[key] = a
}

func Keys() []Key {
	keys := make([]Key, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func Lookup(library, newspaper string) (Adapter, error) {
	key := Key{
		Library:   strings.ToLower(strings.TrimSpace(library)),
		Newspaper: strings.ToLower(strings.TrimSpace(newspaper)),
	}
	if a, ok := registry[key]; ok {
		return a, nil
	}
	return nil, &UnsupportedAdapterError{
		Library:   library,
		Newspaper: newspaper,
		Suggestion: suggest(key),
	}
}

// suggest finds the registered pair with the smallest edit distance,
// within a threshold so wildly wrong input gets no suggestion.
func suggest(key Key) string {
	const maxDistance = 5
	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range Keys() {
		d := matchr.Levenshtein(key.String(), candidate.String())
		if d < bestDistance {
			bestDistance = d
			best = candidate.String()
		}
	}
	if bestDistance > maxDistance {
		return ""
	}
	return best
}
