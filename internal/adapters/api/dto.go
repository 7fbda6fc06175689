package api

import (
	"gymportal/internal/domain/activity"
	"gymportal/internal/domain/enrollment"
)

// activityDTO is the backend's wire shape for an activity.
type activityDTO struct {
	ID          int    `json:"id_actividad,omitempty"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Capacity    int    `json:"cupo"`
	Remaining   int    `json:"lugares,omitempty"`
	Weekday     string `json:"dia"`
	StartTime   string `json:"hora_inicio"`
	EndTime     string `json:"hora_fin"`
	PhotoURL    string `json:"foto_url"`
	Instructor  string `json:"instructor"`
	Category    string `json:"categoria"`
}

func (d activityDTO) toDomain() activity.Activity {
	return activity.Activity{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Instructor:  d.Instructor,
		Category:    d.Category,
		Weekday:     d.Weekday,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		Capacity:    d.Capacity,
		Remaining:   d.Remaining,
		PhotoURL:    d.PhotoURL,
	}
}

func activityFromDomain(a activity.Activity) activityDTO {
	return activityDTO{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Capacity:    a.Capacity,
		Weekday:     a.Weekday,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		PhotoURL:    a.PhotoURL,
		Instructor:  a.Instructor,
		Category:    a.Category,
	}
}

type enrollmentDTO struct {
	UserID     int    `json:"id_usuario"`
	ActivityID int    `json:"id_actividad"`
	EnrolledAt string `json:"fecha_inscripcion"`
	Active     bool   `json:"is_activa"`
}

func (d enrollmentDTO) toDomain() enrollment.Enrollment {
	return enrollment.Enrollment{
		UserID:     d.UserID,
		ActivityID: d.ActivityID,
		EnrolledAt: d.EnrolledAt,
		Active:     d.Active,
	}
}

type idDTO struct {
	ID int `json:"id"`
}

type loginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerDTO struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// Token is the backend's login/register response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}
