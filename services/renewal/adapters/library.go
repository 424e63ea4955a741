package adapters

import (
	"context"
	"fmt"

	"github.com/egyptiangio/newspaparr/lib/browser"
)

// cardFieldNames covers the card-number input names seen across OCLC
// hosted portals.
var cardFieldNames = []string{"user", "username", "barcode", "card", "cardnumber", "code", "patronid"}
var pinFieldNames = []string{"pass", "password", "pin"}

// oclcFlow handles OCLC/EZproxy style portals: a card number form,
// an optional PIN, then a landing page linking out to partner papers.
type oclcFlow struct{}

func (oclcFlow) name() string { return "oclc" }

func (oclcFlow) login(ctx context.Context, session browser.Session, creds Credentials) error {
	if err := session.Open(ctx, creds.LibraryURL); err != nil {
		return err
	}

	card, ok := session.FindByName(cardFieldNames...)
	if !ok {
		return fmt.Errorf("no card number field on %s", session.CurrentURL())
	}
	if err := session.Act(ctx, card, browser.FillValue(creds.LibraryUsername)); err != nil {
		return err
	}
	// many OCLC portals authenticate on card number alone
	if pin, ok := session.FindByName(pinFieldNames...); ok {
		if err := session.Act(ctx, pin, browser.FillValue(creds.LibraryPassword)); err != nil {
			return err
		}
	}

	if submit, ok := session.Find("button[type='submit'],input[type='submit']"); ok {
		return session.Act(ctx, submit, browser.ClickOn())
	}
	return session.Act(ctx, card, browser.SubmitForm())
}

// customFlow handles self-hosted library pages with an ordinary
// username/password form.
type customFlow struct{}

func (customFlow) name() string { return "custom" }

func (customFlow) login(ctx context.Context, session browser.Session, creds Credentials) error {
	if err := session.Open(ctx, creds.LibraryURL); err != nil {
		return err
	}

	user, ok := session.Find("form input[type='text'],form input[type='email']")
	if !ok {
		return fmt.Errorf("no username field on %s", session.CurrentURL())
	}
	pass, ok := session.Find("form input[type='password']")
	if !ok {
		return fmt.Errorf("no password field on %s", session.CurrentURL())
	}
	if err := session.Act(ctx, user, browser.FillValue(creds.LibraryUsername)); err != nil {
		return err
	}
	if err := session.Act(ctx, pass, browser.FillValue(creds.LibraryPassword)); err != nil {
		return err
	}

	if submit, ok := session.Find("button[type='submit'],input[type='submit']"); ok {
		return session.Act(ctx, submit, browser.ClickOn())
	}
	return session.Act(ctx, pass, browser.SubmitForm())
}
