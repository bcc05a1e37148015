package appointments

import (
	"context"
	"database/sql"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/queries"

	"github.com/lib/pq"
)

type appointmentPostgresRepository struct {
	DB *sql.DB
}

func NewAppointmentPostgresRepository(db *sql.DB) contracts.AppointmentRepository {
	return &appointmentPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var (
		appointment     models.Appointment
		doctorID        sql.NullInt64
		authorizationID sql.NullString
		videoRoomURL    sql.NullString
	)
	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&doctorID,
		&appointment.ScheduledAt,
		&appointment.DurationMinutes,
		&appointment.Type,
		&appointment.Status,
		&appointment.IsEmergency,
		&appointment.PaymentStatus,
		&authorizationID,
		&appointment.PaymentAmount,
		&appointment.Notes,
		&videoRoomURL,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if doctorID.Valid {
		appointment.DoctorID = &doctorID.Int64
	}
	if authorizationID.Valid {
		appointment.PaymentAuthorizationID = &authorizationID.String
	}
	if videoRoomURL.Valid {
		appointment.VideoRoomURL = &videoRoomURL.String
	}
	return &appointment, nil
}

// conditionalUpdate runs a guarded UPDATE ... RETURNING and yields nil when the guard did not match.
func (repo *appointmentPostgresRepository) conditionalUpdate(ctx context.Context, query string, args ...interface{}) (*models.Appointment, error) {
	appointment, err := scanAppointment(repo.DB.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBUpdateData(err)
	}
	return appointment, nil
}

func (repo *appointmentPostgresRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := repo.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		appointments = append(appointments, *appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return appointments, nil
}

func (repo *appointmentPostgresRepository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	created, err := scanAppointment(repo.DB.QueryRowContext(ctx, queries.InsertAppointment,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.ScheduledAt,
		appointment.DurationMinutes,
		appointment.Type,
		appointment.Status,
		appointment.IsEmergency,
		appointment.PaymentStatus,
		appointment.PaymentAmount,
		appointment.Notes,
	))
	if err != nil {
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}
	return created, nil
}

func (repo *appointmentPostgresRepository) FindByID(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	appointment, err := scanAppointment(repo.DB.QueryRowContext(ctx, queries.GetAppointmentByID, appointmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return appointment, nil
}

func (repo *appointmentPostgresRepository) AssignDoctor(ctx context.Context, appointmentID, doctorID int64) (*models.Appointment, error) {
	return repo.conditionalUpdate(ctx, queries.AssignAppointmentDoctor, appointmentID, doctorID)
}

func (repo *appointmentPostgresRepository) MarkIncludedInPlan(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	return repo.conditionalUpdate(ctx, queries.MarkAppointmentIncludedInPlan, appointmentID)
}

func (repo *appointmentPostgresRepository) MarkAuthorized(ctx context.Context, appointmentID int64, authorizationID string, amount int64) (*models.Appointment, error) {
	return repo.conditionalUpdate(ctx, queries.MarkAppointmentAuthorized, appointmentID, authorizationID, amount)
}

func (repo *appointmentPostgresRepository) MarkPaymentCompleted(ctx context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error) {
	return repo.conditionalUpdate(ctx, queries.MarkAppointmentPaymentCompleted, appointmentID, authorizationID)
}

func (repo *appointmentPostgresRepository) MarkPaymentCancelled(ctx context.Context, appointmentID int64, authorizationID string) (*models.Appointment, error) {
	return repo.conditionalUpdate(ctx, queries.MarkAppointmentPaymentCancelled, appointmentID, authorizationID)
}

func (repo *appointmentPostgresRepository) TransitionStatus(ctx context.Context, appointmentID int64, from, to models.AppointmentStatus, allowedPayment []models.PaymentStatus) (*models.Appointment, error) {
	paymentStatuses := make([]string, 0, len(allowedPayment))
	for _, status := range allowedPayment {
		paymentStatuses = append(paymentStatuses, string(status))
	}
	return repo.conditionalUpdate(ctx, queries.TransitionAppointmentStatus, appointmentID, from, to, pq.Array(paymentStatuses))
}

func (repo *appointmentPostgresRepository) SetVideoRoomURL(ctx context.Context, appointmentID int64, url string) error {
	_, err := repo.DB.ExecContext(ctx, queries.SetAppointmentVideoRoom, appointmentID, url)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (repo *appointmentPostgresRepository) Touch(ctx context.Context, appointmentID int64) error {
	_, err := repo.DB.ExecContext(ctx, queries.TouchAppointment, appointmentID)
	if err != nil {
		return exceptions.ErrPostgresDBUpdateData(err)
	}
	return nil
}

func (repo *appointmentPostgresRepository) FindStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Appointment, error) {
	return repo.findMany(ctx, queries.ListStaleAppointments, cutoff, limit)
}

func (repo *appointmentPostgresRepository) FindActiveEmergencies(ctx context.Context) ([]models.Appointment, error) {
	return repo.findMany(ctx, queries.ListActiveEmergencyAppointments)
}
