package adapters

import (
	"context"
	"fmt"

	"github.com/egyptiangio/newspaparr/lib/browser"
)

// libraryFlow logs into the portal that grants newspaper passes.
type libraryFlow interface {
	name() string
	login(ctx context.Context, session browser.Session, creds Credentials) error
}

// newspaperFlow redeems a pass on the paper's own site.
type newspaperFlow interface {
	name() string
	// isRedemptionURL reports whether the account's entry point is a
	// direct gift/redemption link that carries its own grant.
	isRedemptionURL(url string) bool
	activate(ctx context.Context, session browser.Session, creds Credentials) error
}

type composite struct {
	key     Key
	library libraryFlow
	paper   newspaperFlow
}

func (c *composite) Key() Key            { return c.key }
func (c *composite) LibraryName() string { return c.library.name() }

func (c *composite) Authenticate(ctx context.Context, session browser.Session, creds Credentials) (StepResult, error) {
	// gift links carry their own grant, the portal login is skipped
	if c.paper.isRedemptionURL(creds.LibraryURL) {
		if err := session.Open(ctx, creds.LibraryURL); err != nil {
			return StepResult{}, err
		}
		return Observe(session), nil
	}
	if err := c.library.login(ctx, session, creds); err != nil {
		return StepResult{}, err
	}
	return Observe(session), nil
}

func (c *composite) ActivatePass(ctx context.Context, session browser.Session, creds Credentials) (StepResult, error) {
	if err := c.paper.activate(ctx, session, creds); err != nil {
		return StepResult{}, err
	}
	return Observe(session), nil
}

func (c *composite) SubmitToken(ctx context.Context, session browser.Session, token string) (StepResult, error) {
	field, ok := session.FindByName("g-recaptcha-response", "cf-turnstile-response", "captcha-token")
	if !ok {
		return StepResult{}, fmt.Errorf("no challenge response field on %s", session.CurrentURL())
	}
	if err := session.Act(ctx, field, browser.FillValue(token)); err != nil {
		return StepResult{}, err
	}
	if err := session.Act(ctx, field, browser.SubmitForm()); err != nil {
		return StepResult{}, err
	}
	return Observe(session), nil
}

func (c *composite) DescribeExpiration(ctx context.Context, session browser.Session) (string, error) {
	if el, ok := session.Find(".expiration,#expiration,[data-expiration]"); ok {
		return el.Text(), nil
	}
	return session.CurrentText(), nil
}

func init() {
	libraries := []libraryFlow{oclcFlow{}, customFlow{}}
	papers := []newspaperFlow{nytFlow{}, wsjFlow{}}
	for _, lib := range libraries {
		for _, paper := range papers {
			Register(&composite{
				key:     Key{Library: lib.name(), Newspaper: paper.name()},
				library: lib,
				paper:   paper,
			})
		}
	}
}
