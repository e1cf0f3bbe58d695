package creator

import (
	"testing"

	"github.com/vanderheijden86/treeselect/pkg/model"
)

func TestSubmitSendsTrimmedText(t *testing.T) {
	c := New()
	var got []CreateRequest
	c.OnCreate(func(req CreateRequest) { got = append(got, req) })

	c.Start(model.StringValue("be"))
	if !c.Active() {
		t.Fatal("Expected creator to be active")
	}
	if !c.Submit("  Rust  ") {
		t.Error("Expected Submit to report a sent request")
	}

	if len(got) != 1 || got[0].Value != "Rust" || !got[0].Parent.Equal(model.StringValue("be")) {
		t.Errorf("Unexpected requests: %+v", got)
	}
	if c.Active() {
		t.Error("Expected creator to be inactive after submit")
	}
}

func TestSubmitBlankOnlyCancels(t *testing.T) {
	c := New()
	c.OnCreate(func(CreateRequest) { t.Error("blank text must not be sent") })
	c.Start(model.StringValue("be"))
	if c.Submit("   ") {
		t.Error("Expected Submit to report nothing sent")
	}
	if c.Active() {
		t.Error("Expected creator to be cancelled")
	}
}

func TestSubmitWithoutParent(t *testing.T) {
	c := New()
	c.OnCreate(func(CreateRequest) { t.Error("inactive creator must not send") })
	if c.Submit("x") {
		t.Error("Expected nothing sent")
	}
}

func TestStartReplacesParent(t *testing.T) {
	c := New()
	c.Start(model.StringValue("a"))
	c.Start(model.StringValue("b"))
	if !c.Parent().Equal(model.StringValue("b")) {
		t.Errorf("Expected parent b, got %s", c.Parent())
	}
	c.Cancel()
	if !c.Parent().IsNone() {
		t.Errorf("Expected none after cancel, got %s", c.Parent())
	}
}

func TestNewOption(t *testing.T) {
	o := NewOption(CreateRequest{Parent: model.StringValue("be"), Value: "Ruby on  Rails"})
	if !o.Value.Equal(model.StringValue("ruby-on-rails")) || o.Label != "Ruby on  Rails" {
		t.Errorf("Unexpected option: %+v", o)
	}
}
