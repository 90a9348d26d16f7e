package command

import (
	"context"
	"testing"
)

func TestDispatch(t *testing.T) {
	d := NewDispatcher()
	var gotArg string
	d.Register(SendText, func(_ context.Context, arg string) error {
		gotArg = arg
		return nil
	})

	if err := d.Dispatch(context.Background(), SendText, "hello there"); err != nil {
		t.Fatal(err)
	}
	if gotArg != "hello there" {
		t.Errorf("arg = %q", gotArg)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	d := NewDispatcher()
	if err := d.Dispatch(context.Background(), "self-destruct", ""); err == nil {
		t.Error("unknown action should error")
	}
}

func TestActionsSorted(t *testing.T) {
	d := NewDispatcher()
	noop := func(context.Context, string) error { return nil }
	d.Register(Navigate, noop)
	d.Register(AddContact, noop)
	d.Register(SendText, noop)

	got := d.Actions()
	want := []string{AddContact, Navigate, SendText}
	if len(got) != len(want) {
		t.Fatalf("actions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArg  string
	}{
		{"send-text hello world", "send-text", "hello world"},
		{"  NAVIGATE contacts  ", "navigate", "contacts"},
		{"reset-all", "reset-all", ""},
		{"add-contact   a2", "add-contact", "a2"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, arg := Parse(tt.input)
			if name != tt.wantName || arg != tt.wantArg {
				t.Errorf("Parse(%q) = (%q, %q), want (%q, %q)", tt.input, name, arg, tt.wantName, tt.wantArg)
			}
		})
	}
}
