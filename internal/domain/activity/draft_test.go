package activity_test

import (
	"testing"

	"gymportal/internal/domain/activity"
)

func validDraft() activity.Draft {
	return activity.Draft{
		Title:       "Yoga",
		Description: "Clase de yoga para principiantes",
		Capacity:    "20",
		Weekday:     "Miércoles",
		StartTime:   "10:00",
		EndTime:     "11:00",
		Instructor:  "Ana",
		Category:    "Bienestar",
	}
}

// TestValidateDraft tests each field rule in isolation.
func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *activity.Draft)
		wantField string
		wantMsg   string
	}{
		{name: "empty title", mutate: func(d *activity.Draft) { d.Title = "" }, wantField: "titulo", wantMsg: "El título es requerido"},
		{name: "blank title", mutate: func(d *activity.Draft) { d.Title = "   " }, wantField: "titulo", wantMsg: "El título es requerido"},
		{name: "short title", mutate: func(d *activity.Draft) { d.Title = "AB" }, wantField: "titulo", wantMsg: "El título debe tener al menos 3 caracteres"},
		{name: "blank description", mutate: func(d *activity.Draft) { d.Description = " " }, wantField: "descripcion", wantMsg: "La descripción es requerida"},
		{name: "zero capacity", mutate: func(d *activity.Draft) { d.Capacity = "0" }, wantField: "cupo", wantMsg: "El cupo debe ser mayor a 0"},
		{name: "non-numeric capacity", mutate: func(d *activity.Draft) { d.Capacity = "diez" }, wantField: "cupo", wantMsg: "El cupo debe ser mayor a 0"},
		{name: "empty capacity", mutate: func(d *activity.Draft) { d.Capacity = "" }, wantField: "cupo", wantMsg: "El cupo debe ser mayor a 0"},
		{name: "empty weekday", mutate: func(d *activity.Draft) { d.Weekday = "" }, wantField: "dia", wantMsg: "El día es requerido"},
		{name: "empty start", mutate: func(d *activity.Draft) { d.StartTime = "" }, wantField: "hora_inicio", wantMsg: "La hora de inicio es requerida"},
		{name: "empty end", mutate: func(d *activity.Draft) { d.EndTime = "" }, wantField: "hora_fin", wantMsg: "La hora de fin es requerida"},
		{name: "end before start", mutate: func(d *activity.Draft) { d.EndTime = "09:00" }, wantField: "hora_fin", wantMsg: "La hora de fin debe ser posterior a la hora de inicio"},
		{name: "end equals start", mutate: func(d *activity.Draft) { d.EndTime = "10:00" }, wantField: "hora_fin", wantMsg: "La hora de fin debe ser posterior a la hora de inicio"},
		{name: "blank instructor", mutate: func(d *activity.Draft) { d.Instructor = "" }, wantField: "instructor", wantMsg: "El instructor es requerido"},
		{name: "blank category", mutate: func(d *activity.Draft) { d.Category = "\t" }, wantField: "categoria", wantMsg: "La categoría es requerida"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			errs := activity.ValidateDraft(d)
			if len(errs) != 1 {
				t.Fatalf("got %d errors (%v), want 1", len(errs), errs)
			}
			if got := errs[tt.wantField]; got != tt.wantMsg {
				t.Errorf("errs[%q]: got %q, want %q", tt.wantField, got, tt.wantMsg)
			}
		})
	}
}

// TestValidateDraft_Valid checks that a complete draft yields an empty map.
func TestValidateDraft_Valid(t *testing.T) {
	d := validDraft()
	d.Title = "ABC"
	if errs := activity.ValidateDraft(d); len(errs) != 0 {
		t.Errorf("got errors %v, want none", errs)
	}
}

// TestValidateDraft_PhotoOptional checks that foto_url is never validated.
func TestValidateDraft_PhotoOptional(t *testing.T) {
	d := validDraft()
	d.PhotoURL = "not a url"
	if errs := activity.ValidateDraft(d); len(errs) != 0 {
		t.Errorf("got errors %v, want none", errs)
	}
}

// TestValidateDraft_EmptyDraftReportsEveryRequiredField checks rules are independent.
func TestValidateDraft_EmptyDraftReportsEveryRequiredField(t *testing.T) {
	errs := activity.ValidateDraft(activity.Draft{})
	for _, f := range []string{"titulo", "descripcion", "cupo", "dia", "hora_inicio", "hora_fin", "instructor", "categoria"} {
		if errs[f] == "" {
			t.Errorf("missing error for %s", f)
		}
	}
	if _, ok := errs["foto_url"]; ok {
		t.Error("foto_url should not be validated")
	}
}

// TestFormState_SetClearsOnlyThatField checks that editing clears one error without re-validating.
func TestFormState_SetClearsOnlyThatField(t *testing.T) {
	s := activity.FormState{Draft: activity.Draft{}}
	if s.Validate() {
		t.Fatal("expected empty draft to be invalid")
	}

	// "A" is still too short, but the error must stay cleared until the next full validation.
	if err := s.Set("titulo", "A"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Error("titulo"); got != "" {
		t.Errorf("titulo error: got %q, want cleared", got)
	}
	if got := s.Error("descripcion"); got == "" {
		t.Error("descripcion error should remain")
	}

	s.Validate()
	if got := s.Error("titulo"); got != "El título debe tener al menos 3 caracteres" {
		t.Errorf("titulo after Validate: got %q", got)
	}
}

// TestFormState_SetUnknownField checks the unknown field error.
func TestFormState_SetUnknownField(t *testing.T) {
	s := activity.FormState{}
	if err := s.Set("precio", "10"); err != activity.ErrUnknownField {
		t.Errorf("got %v, want ErrUnknownField", err)
	}
}

// TestDraft_Activity tests the submission payload conversion.
func TestDraft_Activity(t *testing.T) {
	d := validDraft()
	d.Capacity = " 15 "
	a, err := d.Activity(42)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if a.ID != 42 {
		t.Errorf("ID: got %d, want 42", a.ID)
	}
	if a.Capacity != 15 {
		t.Errorf("Capacity: got %d, want 15", a.Capacity)
	}
	if a.Weekday != "Miercoles" {
		t.Errorf("Weekday: got %q, want Miercoles", a.Weekday)
	}
}

// TestDraftFromActivity tests round-tripping through the edit form.
func TestDraftFromActivity(t *testing.T) {
	a := activity.Activity{ID: 3, Title: "Box", Capacity: 12, Weekday: activity.Friday}
	d := activity.DraftFromActivity(a)
	if d.Capacity != "12" {
		t.Errorf("Capacity: got %q, want 12", d.Capacity)
	}
	if d.Weekday != activity.Friday {
		t.Errorf("Weekday: got %q", d.Weekday)
	}
}
