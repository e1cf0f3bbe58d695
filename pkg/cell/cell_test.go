package cell

import "testing"

func TestSetNotifiesInOrder(t *testing.T) {
	c := New(1)
	var calls []string
	c.Subscribe(func(old, new int) {
		if old != 1 || new != 2 {
			t.Errorf("Expected 1 -> 2, got %d -> %d", old, new)
		}
		calls = append(calls, "first")
	})
	c.Subscribe(nil)
	c.Subscribe(func(_, _ int) { calls = append(calls, "second") })

	c.Set(2)
	if c.Get() != 2 {
		t.Errorf("Expected 2, got %d", c.Get())
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("Unexpected notification order: %v", calls)
	}
}
