package contracts

import "consultation-service/internal/app/models"

type AccessControl interface {
	HasRole(role string) bool
	Authorize(actor *models.Actor, operation string) error
	AuthorizeAppointment(actor *models.Actor, operation string, appointment *models.Appointment) error
	AuthorizeSubject(actor *models.Actor, operation, subjectRole string, subjectID int64) error
}
