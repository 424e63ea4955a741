// Package browser exposes the capability surface the renewal core
// drives sites through: open a page, find elements, fill and click,
// read the visible text back. The core never depends on a concrete
// engine, only on Session.
package browser

import "context"

type ActionKind int

const (
	// Fill records a value for a form input. Nothing is sent until
	// the owning form is submitted.
	Fill ActionKind = iota
	// Click follows a link or submits the enclosing form of a button.
	Click
	// Submit submits the enclosing form of the element directly.
	Submit
)

type Action struct {
	Kind  ActionKind
	Value string
}

func FillValue(v string) Action { return Action{Kind: Fill, Value: v} }
func ClickOn() Action           { return Action{Kind: Click} }
func SubmitForm() Action        { return Action{Kind: Submit} }

// Element is a handle to a node on the current page. Handles are
// invalidated by navigation; acting on a stale handle is an error.
type Element interface {
	// Attr returns the value of an attribute, or "" when absent.
	Attr(name string) string
	// Text returns the element's visible text.
	Text() string
}

type Session interface {
	Open(ctx context.Context, url string) error
	// Find returns the first element matching the CSS selector on the
	// current page, or false when there is none.
	Find(selector string) (Element, bool)
	// FindByName returns the first form input whose name attribute is
	// one of the given names. Library login forms disagree on what the
	// card-number field is called, so adapters probe a list.
	FindByName(names ...string) (Element, bool)
	Act(ctx context.Context, el Element, action Action) error
	// CurrentText returns the visible text of the current page,
	// whitespace-collapsed, suitable for classification.
	CurrentText() string
	CurrentURL() string
	// PageSource returns the raw markup of the current page.
	PageSource() string
	// Screenshot returns a debug artifact for the current page. For
	// non-rendering drivers this is the serialized page source.
	Screenshot(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}
