package rbac

import (
	_ "embed"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/constvars"
	"consultation-service/internal/pkg/exceptions"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"go.uber.org/zap"
)

//go:embed rbac_model.conf
var rbacModel string

//go:embed rbac_policy.csv
var rbacPolicy string

// claimableOperations let a doctor act on an appointment that has no doctor assigned yet.
var claimableOperations = map[string]bool{
	constvars.OperationAppointmentView:    true,
	constvars.OperationAppointmentConfirm: true,
}

type accessControl struct {
	Enforcer *casbin.Enforcer
	Log      *zap.Logger
}

func NewAccessControl(logger *zap.Logger) (contracts.AccessControl, error) {
	enforcer, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return &accessControl{
		Enforcer: enforcer,
		Log:      logger,
	}, nil
}

// NewEnforcer loads the embedded role model and policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m, stringadapter.NewAdapter(rbacPolicy))
}

func (ac *accessControl) HasRole(role string) bool {
	return ac.allowed(role, constvars.OperationAPIAccess)
}

func (ac *accessControl) Authorize(actor *models.Actor, operation string) error {
	if actor == nil {
		return exceptions.ErrActorMissing(nil)
	}
	if !ac.allowed(actor.Role, operation) {
		return exceptions.ErrForbidden(nil, operation, 0)
	}
	return nil
}

// AuthorizeAppointment checks the role policy, then requires a non-admin actor to be the
// appointment's patient or assigned doctor.
func (ac *accessControl) AuthorizeAppointment(actor *models.Actor, operation string, appointment *models.Appointment) error {
	if actor == nil {
		return exceptions.ErrActorMissing(nil)
	}
	if !ac.allowed(actor.Role, operation) {
		return exceptions.ErrForbidden(nil, operation, appointment.ID)
	}
	if actor.IsAdmin() || actor.IsPatientOf(appointment) || actor.IsDoctorOf(appointment) {
		return nil
	}
	if claimableOperations[operation] && actor.Role == constvars.RoleDoctor && appointment.DoctorID == nil {
		return nil
	}
	return exceptions.ErrForbidden(nil, operation, appointment.ID)
}

// AuthorizeSubject checks the role policy; an actor holding subjectRole may only act on itself.
func (ac *accessControl) AuthorizeSubject(actor *models.Actor, operation, subjectRole string, subjectID int64) error {
	if actor == nil {
		return exceptions.ErrActorMissing(nil)
	}
	if !ac.allowed(actor.Role, operation) {
		return exceptions.ErrResourceForbidden(nil, operation, subjectRole, subjectID)
	}
	if actor.Role == subjectRole && actor.ID != subjectID {
		return exceptions.ErrResourceForbidden(nil, operation, subjectRole, subjectID)
	}
	return nil
}

func (ac *accessControl) allowed(role, operation string) bool {
	ok, err := ac.Enforcer.Enforce(role, operation)
	if err != nil {
		ac.Log.Error("accessControl.allowed error enforcing policy",
			zap.String(constvars.LoggingActorRoleKey, role),
			zap.String(constvars.LoggingOperationKey, operation),
			zap.Error(err),
		)
		return false
	}
	return ok
}
