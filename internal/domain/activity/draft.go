package activity

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form field names, shared by the HTML form, JSON bodies, and the error map.
const (
	FieldTitle       = "titulo"
	FieldDescription = "descripcion"
	FieldCapacity    = "cupo"
	FieldWeekday     = "dia"
	FieldStartTime   = "hora_inicio"
	FieldEndTime     = "hora_fin"
	FieldPhotoURL    = "foto_url"
	FieldInstructor  = "instructor"
	FieldCategory    = "categoria"
)

// DraftFields lists the form fields in display order.
var DraftFields = []string{
	FieldTitle, FieldDescription, FieldCapacity, FieldWeekday,
	FieldStartTime, FieldEndTime, FieldPhotoURL, FieldInstructor, FieldCategory,
}

// Domain errors
var (
	ErrInvalidCapacity = errors.New("capacity must be a positive integer")
	ErrUnknownField    = errors.New("unknown draft field")
)

// Draft is the in-progress form record for creating or editing an activity.
// Capacity stays a string until submission so partial input survives re-renders.
type Draft struct {
	Title       string `form:"titulo" json:"titulo" validate:"notblank,min=3"`
	Description string `form:"descripcion" json:"descripcion" validate:"notblank"`
	Capacity    string `form:"cupo" json:"cupo" validate:"posint"`
	Weekday     string `form:"dia" json:"dia" validate:"required"`
	StartTime   string `form:"hora_inicio" json:"hora_inicio" validate:"required"`
	EndTime     string `form:"hora_fin" json:"hora_fin" validate:"required,after=StartTime"`
	PhotoURL    string `form:"foto_url" json:"foto_url"`
	Instructor  string `form:"instructor" json:"instructor" validate:"notblank"`
	Category    string `form:"categoria" json:"categoria" validate:"notblank"`
}

// Errors maps a form field name to its validation message. Empty means valid.
type Errors map[string]string

// messages keys are "<field>.<tag>".
var messages = map[string]string{
	FieldTitle + ".notblank":       "El título es requerido",
	FieldTitle + ".min":            "El título debe tener al menos 3 caracteres",
	FieldDescription + ".notblank": "La descripción es requerida",
	FieldCapacity + ".posint":      "El cupo debe ser mayor a 0",
	FieldWeekday + ".required":     "El día es requerido",
	FieldStartTime + ".required":   "La hora de inicio es requerida",
	FieldEndTime + ".required":     "La hora de fin es requerida",
	FieldEndTime + ".after":        "La hora de fin debe ser posterior a la hora de inicio",
	FieldInstructor + ".notblank":  "El instructor es requerido",
	FieldCategory + ".notblank":    "La categoría es requerida",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "posint", func(fl validator.FieldLevel) bool {
		_, err := parseCapacity(fl.Field().String())
		return err == nil
	})
	// after compares HH:MM strings lexically against a sibling field.
	mustRegister(v, "after", func(fl validator.FieldLevel) bool {
		parent := fl.Parent()
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		other := parent.FieldByName(fl.Param())
		if !other.IsValid() || other.Kind() != reflect.String {
			return false
		}
		return fl.Field().String() > other.String()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ValidateDraft checks every field rule independently.
// PRE: none
// POST: Returns a fresh map with one message per failing field; empty map means valid
// INVARIANT: d is not mutated
func ValidateDraft(d Draft) Errors {
	errs := Errors{}
	err := validate.Struct(d)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable on programmer error (bad tag); surface it on the title.
		errs[FieldTitle] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[field] = msg
	}
	return errs
}

// Get returns the raw value of a form field.
func (d *Draft) Get(field string) (string, error) {
	p, err := d.fieldPtr(field)
	if err != nil {
		return "", err
	}
	return *p, nil
}

// Set assigns the raw value of a form field.
func (d *Draft) Set(field, value string) error {
	p, err := d.fieldPtr(field)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

func (d *Draft) fieldPtr(field string) (*string, error) {
	switch field {
	case FieldTitle:
		return &d.Title, nil
	case FieldDescription:
		return &d.Description, nil
	case FieldCapacity:
		return &d.Capacity, nil
	case FieldWeekday:
		return &d.Weekday, nil
	case FieldStartTime:
		return &d.StartTime, nil
	case FieldEndTime:
		return &d.EndTime, nil
	case FieldPhotoURL:
		return &d.PhotoURL, nil
	case FieldInstructor:
		return &d.Instructor, nil
	case FieldCategory:
		return &d.Category, nil
	}
	return nil, ErrUnknownField
}

// Activity converts a validated draft into the payload sent to the backend:
// capacity parsed as an integer and the weekday stripped of accents.
// PRE: ValidateDraft(d) returned an empty map
// POST: Returns an Activity carrying id; error if capacity does not parse
func (d Draft) Activity(id int) (Activity, error) {
	capacity, err := parseCapacity(d.Capacity)
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Instructor:  d.Instructor,
		Category:    d.Category,
		Weekday:     StripAccents(d.Weekday),
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Capacity:    capacity,
		PhotoURL:    d.PhotoURL,
	}, nil
}

// DraftFromActivity pre-fills the edit form.
func DraftFromActivity(a Activity) Draft {
	return Draft{
		Title:       a.Title,
		Description: a.Description,
		Capacity:    strconv.Itoa(a.Capacity),
		Weekday:     a.Weekday,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		PhotoURL:    a.PhotoURL,
		Instructor:  a.Instructor,
		Category:    a.Category,
	}
}

func parseCapacity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, ErrInvalidCapacity
	}
	return n, nil
}

// FormState pairs a draft with the errors currently shown for it.
type FormState struct {
	Draft  Draft
	Errors Errors
}

// Set edits one field and clears that field's error without re-validating it.
// PRE: field is one of DraftFields
// POST: Draft field updated; Errors[field] removed; other errors untouched
func (s *FormState) Set(field, value string) error {
	if err := s.Draft.Set(field, value); err != nil {
		return err
	}
	delete(s.Errors, field)
	return nil
}

// Validate recomputes the error map from scratch.
// POST: Errors replaced by ValidateDraft(Draft); returns true when valid
func (s *FormState) Validate() bool {
	s.Errors = ValidateDraft(s.Draft)
	return len(s.Errors) == 0
}

// Error returns the message for field, or "".
func (s FormState) Error(field string) string {
	return s.Errors[field]
}
