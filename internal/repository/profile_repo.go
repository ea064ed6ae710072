package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medilink-backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT id, user_id, full_name, email, specialty, role, created_at
		FROM profiles WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Specialty, &p.Role, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	query := `SELECT id, user_id, full_name, email, specialty, role, created_at
		FROM profiles WHERE user_id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Specialty, &p.Role, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListDoctors returns the public doctor directory ordered by name.
func (r *ProfileRepo) ListDoctors(ctx context.Context) ([]*models.Profile, error) {
	query := `SELECT id, user_id, full_name, email, specialty, role, created_at
		FROM profiles WHERE role = 'doctor' ORDER BY full_name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Specialty, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, p)
	}
	return doctors, rows.Err()
}

// ListDoctorsForPatient returns doctors with an active link to the patient.
func (r *ProfileRepo) ListDoctorsForPatient(ctx context.Context, patientID uuid.UUID) ([]*models.Profile, error) {
	query := `SELECT p.id, p.user_id, p.full_name, p.email, p.specialty, p.role, p.created_at
		FROM profiles p
		JOIN doctor_patients dp ON dp.doctor_id = p.id
		WHERE dp.patient_id = $1 AND dp.status = 'active'
		ORDER BY p.full_name ASC`

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Specialty, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		doctors = append(doctors, p)
	}
	return doctors, rows.Err()
}

// HasActiveLink reports whether the doctor currently treats the patient.
func (r *ProfileRepo) HasActiveLink(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM doctor_patients
			WHERE doctor_id = $1 AND patient_id = $2 AND status = 'active'
		)`, doctorID, patientID).Scan(&exists)
	return exists, err
}
