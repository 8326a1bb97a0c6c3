// Package sqlite is the embedded applicant store used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-applicant-tracker/internal/domain"
)

type applicantRepo struct {
	db *sql.DB
}

// NewApplicantRepository creates a SQLite backed applicant repository
func NewApplicantRepository(db *sql.DB) domain.ApplicantRepository {
	return &applicantRepo{db: db}
}

const applicantColumns = `id, full_name, linkedin_url, expected_salary,
	resume_path, resume_name, resume_pages, notes, created_at`

func (r *applicantRepo) List(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants`
	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		// instr keeps % and _ in the search term literal
		query += ` WHERE instr(lower(full_name), lower(?)) > 0`
		args = append(args, search)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applicants query failed: %w", err)
	}
	defer rows.Close()

	applicants := []domain.Applicant{}
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan applicant failed: %w", err)
		}
		applicants = append(applicants, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachComments(ctx, applicants); err != nil {
		return nil, err
	}
	return applicants, nil
}

func (r *applicantRepo) GetByID(ctx context.Context, id string) (*domain.Applicant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = ?`, id)
	a, err := scanApplicant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	list := []domain.Applicant{*a}
	if err := r.attachComments(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *applicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	var resumePath, resumeName sql.NullString
	resumePages := 0
	if a.Resume != nil {
		resumePath = sql.NullString{String: a.Resume.Path, Valid: true}
		resumeName = sql.NullString{String: a.Resume.Name, Valid: true}
		resumePages = a.Resume.PageCount
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO applicants
		(id, full_name, linkedin_url, expected_salary, resume_path, resume_name, resume_pages, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FullName, a.LinkedInURL, a.ExpectedSalary,
		resumePath, resumeName, resumePages, a.Notes, a.CreatedAt.UnixNano(),
	)
	return err
}

func (r *applicantRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM applicants WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *applicantRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM applicants WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *applicantRepo) Clear(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM applicant_comments`); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM applicants`)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func (r *applicantRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO applicant_comments
		(id, applicant_id, reviewer, decision, note, display_timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ApplicantID, string(c.Reviewer), string(c.Decision), c.Note, c.Timestamp, c.CreatedAt.UnixNano(),
	)
	return err
}

func (r *applicantRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *applicantRepo) attachComments(ctx context.Context, applicants []domain.Applicant) error {
	if len(applicants) == 0 {
		return nil
	}

	index := make(map[string]int, len(applicants))
	args := make([]any, len(applicants))
	for i, a := range applicants {
		index[a.ID] = i
		args[i] = a.ID
		applicants[i].Comments = []domain.Comment{}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(applicants)), ",")

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, applicant_id, reviewer, decision, note, display_timestamp, created_at
		FROM applicant_comments
		WHERE applicant_id IN (`+placeholders+`)
		ORDER BY seq`, args...)
	if err != nil {
		return fmt.Errorf("comment query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Comment
		var reviewer, decision string
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.ApplicantID, &reviewer, &decision, &c.Note, &c.Timestamp, &createdAt); err != nil {
			return fmt.Errorf("scan comment failed: %w", err)
		}
		c.Reviewer = domain.Reviewer(reviewer)
		c.Decision = domain.Decision(decision)
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		if i, ok := index[c.ApplicantID]; ok {
			applicants[i].Comments = append(applicants[i].Comments, c)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplicant(row scanner) (*domain.Applicant, error) {
	var a domain.Applicant
	var resumePath, resumeName sql.NullString
	var resumePages int
	var createdAt int64

	err := row.Scan(
		&a.ID, &a.FullName, &a.LinkedInURL, &a.ExpectedSalary,
		&resumePath, &resumeName, &resumePages, &a.Notes, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = time.Unix(0, createdAt).UTC()
	if resumePath.Valid && resumePath.String != "" {
		a.Resume = &domain.Resume{Path: resumePath.String, Name: resumeName.String, PageCount: resumePages}
	}
	return &a, nil
}
