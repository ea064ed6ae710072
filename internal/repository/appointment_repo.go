package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medilink-backend/internal/models"
)

type AppointmentRepo struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{pool: pool}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = uuid.New()
	query := `INSERT INTO appointments (id, doctor_id, patient_id, scheduled_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.DoctorID, a.PatientID, a.ScheduledAt, a.Status, a.Notes,
	).Scan(&a.CreatedAt)
}

// ListForProfile returns upcoming appointments where the profile is either
// side of the booking, soonest first.
func (r *AppointmentRepo) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]*models.Appointment, error) {
	query := `SELECT a.id, a.doctor_id, a.patient_id, d.full_name, p.full_name,
			a.scheduled_at, a.status, a.notes, a.created_at
		FROM appointments a
		JOIN profiles d ON d.id = a.doctor_id
		JOIN profiles p ON p.id = a.patient_id
		WHERE (a.doctor_id = $1 OR a.patient_id = $1) AND a.status = 'scheduled'
		ORDER BY a.scheduled_at ASC`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a := &models.Appointment{}
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.DoctorName, &a.PatientName,
			&a.ScheduledAt, &a.Status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// Cancel marks an appointment cancelled if the caller is a participant.
// Returns the number of rows affected so callers can distinguish "not found
// or not yours" from success.
func (r *AppointmentRepo) Cancel(ctx context.Context, id, profileID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = 'cancelled'
		WHERE id = $1 AND (doctor_id = $2 OR patient_id = $2) AND status = 'scheduled'`,
		id, profileID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
