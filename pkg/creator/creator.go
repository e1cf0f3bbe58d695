// Package creator tracks the inline "add child" mode of a select.
package creator

import (
	"strings"

	"github.com/vanderheijden86/treeselect/pkg/model"
)

// CreateRequest is sent to the host when the user submits a new child.
// The host decides how to add it to its option tree.
type CreateRequest struct {
	Parent model.Value
	Value  string
}

// Creator holds at most one parent currently in "add child" mode.
type Creator struct {
	parent   model.Value
	onCreate func(CreateRequest)
}

// New returns an inactive Creator.
func New() *Creator {
	return &Creator{}
}

// Parent returns the active parent, or model.None.
func (c *Creator) Parent() model.Value { return c.parent }

// Active reports whether a parent is in "add child" mode.
func (c *Creator) Active() bool { return !c.parent.IsNone() }

// Start puts parent into "add child" mode. The parent is not validated
// against any tree.
func (c *Creator) Start(parent model.Value) {
	c.parent = parent
}

// Cancel leaves "add child" mode.
func (c *Creator) Cancel() {
	c.parent = model.None
}

// OnCreate registers the submission handler, replacing any previous one.
func (c *Creator) OnCreate(fn func(CreateRequest)) {
	c.onCreate = fn
}

// Submit sends text as a new child of the active parent, then leaves
// "add child" mode. Blank text only cancels. It reports whether a request
// was sent.
func (c *Creator) Submit(text string) bool {
	parent := c.parent
	c.Cancel()

	text = strings.TrimSpace(text)
	if parent.IsNone() || text == "" {
		return false
	}
	if c.onCreate != nil {
		c.onCreate(CreateRequest{Parent: parent, Value: text})
	}
	return true
}

// SlugValue derives an option value from free text: lower-cased, with runs
// of whitespace joined by "-".
func SlugValue(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), "-")
}

// NewOption builds the option a host typically appends for req.
func NewOption(req CreateRequest) model.Option {
	return model.Option{
		Value: model.StringValue(SlugValue(req.Value)),
		Label: req.Value,
	}
}
