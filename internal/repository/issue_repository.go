package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"citypulse/api/internal/models"
)

var ErrIssueNotFound = errors.New("issue not found")

type IssueRepository struct {
	pool *pgxpool.Pool
}

func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

func (r *IssueRepository) Create(ctx context.Context, issue models.Issue) error {
	const query = `
		INSERT INTO issues (
			id, category, description, location, priority, media_urls, reported_by,
			contact_name, contact_phone, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		issue.ID,
		issue.Category,
		issue.Description,
		issue.Location,
		issue.Priority,
		issue.MediaURLs,
		issue.ReportedBy,
		issue.ContactName,
		issue.ContactPhone,
		issue.Status,
	)
	return err
}

func (r *IssueRepository) GetByID(ctx context.Context, id string) (models.Issue, error) {
	const query = `
		SELECT id, category, description, location, priority, media_urls, reported_by,
		       contact_name, contact_phone, status, created_at, updated_at
		FROM issues WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *IssueRepository) ListByReporter(ctx context.Context, userID string) ([]models.Issue, error) {
	const query = `
		SELECT id, category, description, location, priority, media_urls, reported_by,
		       contact_name, contact_phone, status, created_at, updated_at
		FROM issues
		WHERE reported_by = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (r *IssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	const query = `
		UPDATE issues SET status = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepository) scanOne(row pgx.Row) (models.Issue, error) {
	var issue models.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.Category,
		&issue.Description,
		&issue.Location,
		&issue.Priority,
		&issue.MediaURLs,
		&issue.ReportedBy,
		&issue.ContactName,
		&issue.ContactPhone,
		&issue.Status,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Issue{}, ErrIssueNotFound
		}
		return models.Issue{}, err
	}
	return issue, nil
}
