package orchestrators

import (
	"errors"

	"gymportal/internal/adapters/api"
)

// User-facing messages.
const (
	MsgEnrolled       = "¡Inscripción exitosa!"
	MsgEnrollFailed   = "Error al inscribirse en la actividad"
	MsgUnenrolled     = "Desinscripto exitosamente"
	MsgUnenrollFailed = "Ups! algo salio mal, vuelve a intentarlo mas tarde"
	MsgConnection     = "Error al conectar con el servidor"
	MsgNoSession      = "No hay sesión activa. Por favor, inicie sesión nuevamente."
	MsgSessionExpired = "Su sesión ha expirado. Por favor, inicie sesión nuevamente."
	MsgCreated        = "Actividad creada con éxito"
	MsgCreateFailed   = "Error al crear la actividad"
	MsgUpdated        = "Actividad actualizada con éxito"
	MsgUpdateFailed   = "Error al actualizar la actividad"
	MsgDeleted        = "Actividad eliminada con éxito"
	MsgDeleteFailed   = "Error al eliminar la actividad"
	MsgDeleteNoID     = "Error: No se puede eliminar la actividad porque no tiene ID"
	MsgLoginFailed    = "Credenciales incorrectas"
	MsgLoginRequired  = "Completá usuario y contraseña"
	MsgRegisterFailed = "Error al registrarse"
	MsgRegisterFields = "Todos los campos son obligatorios"
)

var (
	ErrLoginRequired      = errors.New("login required")
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidDraft       = errors.New("activity draft has validation errors")
	ErrMissingActivityID  = errors.New("activity id is required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Outcome is what the user is told after an action.
// RedirectToLogin asks the page to send the user to the login page after a short delay.
type Outcome struct {
	OK              bool
	Message         string
	RedirectToLogin bool
}

// failureMessage picks the server's message, then a connectivity message for
// transport failures, then fallback.
func failureMessage(err error, fallback string) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	if api.IsTransport(err) {
		return MsgConnection
	}
	return fallback
}
