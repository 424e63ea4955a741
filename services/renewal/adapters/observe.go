package adapters

import (
	"strings"

	"github.com/egyptiangio/newspaparr/lib/browser"
	"github.com/egyptiangio/newspaparr/services/renewal/captcha"
)

// Observe inspects the current page and tags it. Challenge detection
// runs first so a login form guarded by a captcha is surfaced as the
// challenge, not the form.
func Observe(session browser.Session) StepResult {
	result := StepResult{
		Text: session.CurrentText(),
		URL:  session.CurrentURL(),
	}

	if el, ok := session.Find("div.g-recaptcha[data-sitekey]"); ok {
		result.State = StateCaptchaChallenge
		result.Challenge = &captcha.Challenge{
			Kind:    captcha.KindRecaptchaV2,
			SiteKey: el.Attr("data-sitekey"),
			PageURL: result.URL,
		}
		return result
	}
	if el, ok := session.Find(".cf-turnstile[data-sitekey]"); ok {
		result.State = StateCaptchaChallenge
		result.Challenge = &captcha.Challenge{
			Kind:    captcha.KindTurnstile,
			SiteKey: el.Attr("data-sitekey"),
			PageURL: result.URL,
		}
		return result
	}

	lowered := strings.ToLower(result.Text)
	switch {
	case containsAny(lowered,
		"already have a subscription",
		"already have an active subscription",
		"already a subscriber",
		"already has a digital subscription"):
		result.State = StateAlreadySubscribed
	case containsAny(lowered,
		"successfully activated",
		"successfully redeemed",
		"is now active",
		"pass is active",
		"access has been renewed"):
		result.State = StateSuccessPage
	case hasLoginForm(session):
		result.State = StateLoginForm
	case containsAny(lowered, "welcome", "my account", "sign out", "log out"):
		result.State = StatePortal
	default:
		result.State = StateUnknown
	}
	return result
}

func hasLoginForm(session browser.Session) bool {
	_, ok := session.Find("input[type='password']")
	return ok
}

func containsAny(text string, phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
