package earnings

import (
	"context"
	"database/sql"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/queries"
)

type earningsPostgresRepository struct {
	DB *sql.DB
}

func NewEarningsPostgresRepository(db *sql.DB) contracts.EarningsRepository {
	return &earningsPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEarningsLine(row rowScanner) (*models.EarningsLine, error) {
	var line models.EarningsLine
	err := row.Scan(
		&line.ID,
		&line.DoctorID,
		&line.AppointmentID,
		&line.Amount,
		&line.Status,
		&line.IsEmergency,
		&line.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// CreateIfAbsent inserts the line unless the appointment already has one, in which case the
// existing line is returned.
func (repo *earningsPostgresRepository) CreateIfAbsent(ctx context.Context, line *models.EarningsLine) (*models.EarningsLine, error) {
	created, err := scanEarningsLine(repo.DB.QueryRowContext(ctx, queries.InsertEarningsLine,
		line.DoctorID,
		line.AppointmentID,
		line.Amount,
		line.Status,
		line.IsEmergency,
	))
	if err == nil {
		return created, nil
	}
	if err != sql.ErrNoRows {
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}

	existing, err := repo.FindByAppointmentID(ctx, line.AppointmentID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, exceptions.ErrPostgresDBInsertData(sql.ErrNoRows)
	}
	return existing, nil
}

func (repo *earningsPostgresRepository) FindByAppointmentID(ctx context.Context, appointmentID int64) (*models.EarningsLine, error) {
	line, err := scanEarningsLine(repo.DB.QueryRowContext(ctx, queries.GetEarningsLineByAppointmentID, appointmentID))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return line, nil
}

func (repo *earningsPostgresRepository) FindByDoctorAndRange(ctx context.Context, doctorID int64, from, to time.Time) ([]models.EarningsLine, error) {
	rows, err := repo.DB.QueryContext(ctx, queries.ListEarningsLinesByDoctorAndRange, doctorID, from, to)
	if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	defer rows.Close()

	lines := make([]models.EarningsLine, 0)
	for rows.Next() {
		line, err := scanEarningsLine(rows)
		if err != nil {
			return nil, exceptions.ErrPostgresDBFindData(err)
		}
		lines = append(lines, *line)
	}

	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return lines, nil
}
