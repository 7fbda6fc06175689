package audit

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		in     string
		want   Action
		wantOK bool
	}{
		{"created", ActionCreate, true},
		{" Deleted ", ActionDelete, true},
		{"login", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseAction(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEvent_Validate(t *testing.T) {
	valid := Event{ID: "e1", Action: ActionUpdate, Actor: "admin", ActivityID: 3}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid event: %v", err)
	}

	noActor := valid
	noActor.Actor = " "
	if err := noActor.Validate(); err != ErrEmptyActor {
		t.Errorf("got %v, want ErrEmptyActor", err)
	}

	badAction := valid
	badAction.Action = "archived"
	if err := badAction.Validate(); err != ErrInvalidAction {
		t.Errorf("got %v, want ErrInvalidAction", err)
	}
}
