package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-applicant-tracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type applicantRepo struct {
	db *pgxpool.Pool
}

// NewApplicantRepository creates a Postgres backed applicant repository
func NewApplicantRepository(db *pgxpool.Pool) domain.ApplicantRepository {
	return &applicantRepo{db: db}
}

const applicantColumns = `id::text, full_name, linkedin_url, expected_salary,
	resume_path, resume_name, resume_pages, notes, created_at`

func (r *applicantRepo) List(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants`
	args := []interface{}{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += ` WHERE POSITION(LOWER($1) IN LOWER(full_name)) > 0`
		args = append(args, search)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, args...)
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
	row := r.db.QueryRow(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1::uuid`, id)
	a, err := scanApplicant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	var resumePath, resumeName *string
	resumePages := 0
	if a.Resume != nil {
		resumePath, resumeName = &a.Resume.Path, &a.Resume.Name
		resumePages = a.Resume.PageCount
	}

	query := `INSERT INTO applicants
		(id, full_name, linkedin_url, expected_salary, resume_path, resume_name, resume_pages, notes, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.FullName, a.LinkedInURL, a.ExpectedSalary,
		resumePath, resumeName, resumePages, a.Notes, a.CreatedAt,
	)
	return err
}

func (r *applicantRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM applicants WHERE id = $1::uuid`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *applicantRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM applicants WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *applicantRepo) Clear(ctx context.Context) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM applicant_comments`); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM applicants`)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *applicantRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	query := `INSERT INTO applicant_comments
		(id, applicant_id, reviewer, decision, note, display_timestamp, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.ApplicantID, string(c.Reviewer), string(c.Decision), c.Note, c.Timestamp, c.CreatedAt,
	)
	return err
}

func (r *applicantRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// attachComments loads the full comment history of every applicant in one query
func (r *applicantRepo) attachComments(ctx context.Context, applicants []domain.Applicant) error {
	if len(applicants) == 0 {
		return nil
	}

	ids := make([]string, len(applicants))
	index := make(map[string]int, len(applicants))
	for i, a := range applicants {
		ids[i] = a.ID
		index[a.ID] = i
		applicants[i].Comments = []domain.Comment{}
	}

	rows, err := r.db.Query(ctx, `
		SELECT id::text, applicant_id::text, reviewer, decision, note, display_timestamp, created_at
		FROM applicant_comments
		WHERE applicant_id = ANY($1::uuid[])
		ORDER BY seq`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("comment query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Comment
		var reviewer, decision string
		if err := rows.Scan(&c.ID, &c.ApplicantID, &reviewer, &decision, &c.Note, &c.Timestamp, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment failed: %w", err)
		}
		c.Reviewer = domain.Reviewer(reviewer)
		c.Decision = domain.Decision(decision)
		if i, ok := index[c.ApplicantID]; ok {
			applicants[i].Comments = append(applicants[i].Comments, c)
		}
	}
	return rows.Err()
}

func scanApplicant(row pgx.Row) (*domain.Applicant, error) {
	var a domain.Applicant
	var resumePath, resumeName *string
	var resumePages int

	err := row.Scan(
		&a.ID, &a.FullName, &a.LinkedInURL, &a.ExpectedSalary,
		&resumePath, &resumeName, &resumePages, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resumePath != nil && *resumePath != "" {
		a.Resume = &domain.Resume{Path: *resumePath, PageCount: resumePages}
		if resumeName != nil {
			a.Resume.Name = *resumeName
		}
	}
	return &a, nil
}
