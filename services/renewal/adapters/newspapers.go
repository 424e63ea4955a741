package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/egyptiangio/newspaparr/lib/browser"
)

// followPaperLink clicks through from the library landing page to the
// paper's redemption page, trying the given href fragments in order.
func followPaperLink(ctx context.Context, session browser.Session, fragments ...string) error {
	for _, fragment := range fragments {
		if link, ok := session.Find(fmt.Sprintf("a[href*='%s']", fragment)); ok {
			return session.Act(ctx, link, browser.ClickOn())
		}
	}
	return fmt.Errorf("no pass link found on %s", session.CurrentURL())
}

// paperLogin fills the paper's own credential form when one guards
// the redemption page. Pages that go straight to redemption skip it.
func paperLogin(ctx context.Context, session browser.Session, creds Credentials) error {
	pass, ok := session.Find("input[type='password']")
	if !ok {
		return nil
	}
	email, ok := session.FindByName("email", "username", "user", "login")
	if !ok {
		return fmt.Errorf("password field without a username field on %s", session.CurrentURL())
	}
	if err := session.Act(ctx, email, browser.FillValue(creds.NewspaperUsername)); err != nil {
		return err
	}
	if err := session.Act(ctx, pass, browser.FillValue(creds.NewspaperPassword)); err != nil {
		return err
	}
	if submit, ok := session.Find("button[type='submit'],input[type='submit']"); ok {
		return session.Act(ctx, submit, browser.ClickOn())
	}
	return session.Act(ctx, pass, browser.SubmitForm())
}

// clickRedeem presses the final activate/redeem control when present.
func clickRedeem(ctx context.Context, session browser.Session) error {
	selectors := []string{
		"a[href*='redeem']",
		"a[href*='activate']",
		"button[name='redeem']",
		"form button[type='submit']",
		"form input[type='submit']",
	}
	for _, selector := range selectors {
		if el, ok := session.Find(selector); ok {
			return session.Act(ctx, el, browser.ClickOn())
		}
	}
	// some gift links redeem on load, nothing left to press
	return nil
}

type nytFlow struct{}

func (nytFlow) name() string { return "nyt" }

func (nytFlow) isRedemptionURL(url string) bool {
	return strings.Contains(url, "nytimes.com/subscription/redeem") ||
		strings.Contains(url, "nytimes.com/activate-access")
}

func (f nytFlow) activate(ctx context.Context, session browser.Session, creds Credentials) error {
	if !f.isRedemptionURL(session.CurrentURL()) {
		if err := followPaperLink(ctx, session, "nytimes.com", "redeem"); err != nil {
			return err
		}
	}
	if err := paperLogin(ctx, session, creds); err != nil {
		return err
	}
	return clickRedeem(ctx, session)
}

type wsjFlow struct{}

func (wsjFlow) name() string { return "wsj" }

func (wsjFlow) isRedemptionURL(url string) bool {
	return strings.Contains(url, "partner.wsj.com/p/") ||
		strings.Contains(url, "wsj.com/partner")
}

func (f wsjFlow) activate(ctx context.Context, session browser.Session, creds Credentials) error {
	if !f.isRedemptionURL(session.CurrentURL()) {
		if err := followPaperLink(ctx, session, "wsj.com", "redeem"); err != nil {
			return err
		}
	}
	if err := paperLogin(ctx, session, creds); err != nil {
		return err
	}
	return clickRedeem(ctx, session)
}
