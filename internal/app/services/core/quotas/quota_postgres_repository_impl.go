package quotas

import (
	"context"
	"database/sql"
	"time"

	"consultation-service/internal/app/contracts"
	"consultation-service/internal/app/models"
	"consultation-service/internal/pkg/exceptions"
	"consultation-service/internal/pkg/queries"
)

type quotaPostgresRepository struct {
	DB *sql.DB
}

func NewQuotaPostgresRepository(db *sql.DB) contracts.QuotaRepository {
	return &quotaPostgresRepository{
		DB: db,
	}
}

func (repo *quotaPostgresRepository) FindByPatientID(ctx context.Context, patientID int64) (*models.QuotaEntry, error) {
	var entry models.QuotaEntry
	err := repo.DB.QueryRowContext(ctx, queries.GetQuotaEntryByPatientID, patientID).Scan(
		&entry.PatientID,
		&entry.PlanName,
		&entry.Remaining,
		&entry.CycleStart,
		&entry.CycleEnd,
		&entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, exceptions.ErrPostgresDBFindData(err)
	}
	return &entry, nil
}

func (repo *quotaPostgresRepository) ExistsUsage(ctx context.Context, appointmentID int64) (bool, error) {
	var exists bool
	err := repo.DB.QueryRowContext(ctx, queries.ExistsQuotaUsage, appointmentID).Scan(&exists)
	if err != nil {
		return false, exceptions.ErrPostgresDBFindData(err)
	}
	return exists, nil
}

// ConsumeOnce records the usage marker and, when decrementCounter is set, takes one unit off the
// current cycle in the same transaction. It returns false if the appointment was already recorded.
func (repo *quotaPostgresRepository) ConsumeOnce(ctx context.Context, patientID, appointmentID int64, decrementCounter bool, now time.Time) (bool, error) {
	tx, err := repo.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, exceptions.ErrPostgresDBBeginTx(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, queries.InsertQuotaUsage, appointmentID, patientID)
	if err != nil {
		return false, exceptions.ErrPostgresDBInsertData(err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, exceptions.ErrPostgresDBInsertData(err)
	}
	if inserted == 0 {
		return false, nil
	}

	if decrementCounter {
		result, err = tx.ExecContext(ctx, queries.DecrementQuotaEntry, patientID, now)
		if err != nil {
			return false, exceptions.ErrPostgresDBUpdateData(err)
		}
		decremented, err := result.RowsAffected()
		if err != nil {
			return false, exceptions.ErrPostgresDBUpdateData(err)
		}
		if decremented == 0 {
			return false, exceptions.ErrQuotaExhausted(nil, patientID)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, exceptions.ErrPostgresDBCommitTx(err)
	}
	return true, nil
}

func (repo *quotaPostgresRepository) Upsert(ctx context.Context, entry *models.QuotaEntry) (*models.QuotaEntry, error) {
	var saved models.QuotaEntry
	err := repo.DB.QueryRowContext(ctx, queries.UpsertQuotaEntry,
		entry.PatientID,
		entry.PlanName,
		entry.Remaining,
		entry.CycleStart,
		entry.CycleEnd,
	).Scan(
		&saved.PatientID,
		&saved.PlanName,
		&saved.Remaining,
		&saved.CycleStart,
		&saved.CycleEnd,
		&saved.UpdatedAt,
	)
	if err != nil {
		return nil, exceptions.ErrPostgresDBInsertData(err)
	}
	return &saved, nil
}
