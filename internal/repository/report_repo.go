package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"medilink-backend/internal/models"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, rep *models.SymptomReport) error {
	rep.ID = uuid.New()
	historyJSON, err := json.Marshal(rep.ChatHistory)
	if err != nil {
		return err
	}

	query := `INSERT INTO symptom_reports (id, patient_id, report_content, chat_history, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		rep.ID, rep.PatientID, rep.ReportContent, historyJSON, rep.Status,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
}

func (r *ReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SymptomReport, error) {
	rep := &models.SymptomReport{}
	var historyJSON []byte

	query := `SELECT id, patient_id, report_content, chat_history, status, created_at, updated_at
		FROM symptom_reports WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.PatientID, &rep.ReportContent, &historyJSON, &rep.Status,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(historyJSON, &rep.ChatHistory); err != nil {
		return nil, err
	}
	return rep, nil
}

// ListByStatus is the doctor-side review queue, oldest first. Transcripts are
// omitted; GetByID loads the full report.
func (r *ReportRepo) ListByStatus(ctx context.Context, status string) ([]*models.SymptomReport, error) {
	query := `SELECT id, patient_id, report_content, status, created_at, updated_at
		FROM symptom_reports WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.SymptomReport
	for rows.Next() {
		rep := &models.SymptomReport{}
		if err := rows.Scan(&rep.ID, &rep.PatientID, &rep.ReportContent, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

func (r *ReportRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*models.SymptomReport, error) {
	query := `SELECT id, patient_id, report_content, status, created_at, updated_at
		FROM symptom_reports WHERE patient_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.SymptomReport
	for rows.Next() {
		rep := &models.SymptomReport{}
		if err := rows.Scan(&rep.ID, &rep.PatientID, &rep.ReportContent, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// UpdateStatus moves a report through the review flow. Content and transcript
// never change after creation.
func (r *ReportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE symptom_reports SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	return err
}
