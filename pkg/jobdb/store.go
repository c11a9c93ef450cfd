package jobdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrJobNotFound is returned when a job lookup finds no matching record.
var ErrJobNotFound = errors.New("automation job not found")

const jobColumns = `id, token_mint, job_type, trigger_type, status,
	fees_claimed, tokens_burned, lp_added, dividends_paid,
	claim_signature, burn_signature, lp_signature, dividends_signature,
	error_message, retry_count, created_at, updated_at, started_at, completed_at`

// Store provides database operations for automation jobs
type Store struct {
	db *sql.DB
}

// NewStore creates a new automation job store
func NewStore(connString string) (*Store, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreFromDB wraps an existing connection, mainly for tests.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateJob creates a new automation job record in pending state
func (s *Store) CreateJob(ctx context.Context, job *AutomationJob) error {
	query := `
		INSERT INTO automation_jobs (id, token_mint, job_type, trigger_type, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.TokenMint, job.JobType, job.TriggerType, JobStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to create automation job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID
func (s *Store) GetJob(ctx context.Context, id string) (*AutomationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM automation_jobs WHERE id = $1`
	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get automation job: %w", err)
	}
	return job, nil
}

// MarkRunning transitions a job from pending to running
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, started_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	return s.execOnJob(ctx, query, JobStatusRunning, id, JobStatusPending)
}

// MarkCompleted finalizes a successful job
func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`
	return s.execOnJob(ctx, query, JobStatusCompleted, id)
}

// MarkFailed finalizes a failed job with its error message and bumps the
// retry counter
func (s *Store) MarkFailed(ctx context.Context, id, errorMessage string) error {
	query := `
		UPDATE automation_jobs
		SET status = $1, error_message = $2, retry_count = retry_count + 1,
			completed_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`
	return s.execOnJob(ctx, query, JobStatusFailed, errorMessage, id)
}

// RecordStepResult stores the settled amount and signature for one cycle step
func (s *Store) RecordStepResult(ctx context.Context, id string, step JobType, amount uint64, signature string) error {
	var amountCol, sigCol string
	switch step {
	case JobTypeClaimFees:
		amountCol, sigCol = "fees_claimed", "claim_signature"
	case JobTypeBurn:
		amountCol, sigCol = "tokens_burned", "burn_signature"
	case JobTypeAddLp:
		amountCol, sigCol = "lp_added", "lp_signature"
	case JobTypePayDividends:
		amountCol, sigCol = "dividends_paid", "dividends_signature"
	default:
		return fmt.Errorf("job type %s has no step result", step)
	}

	query := fmt.Sprintf(`
		UPDATE automation_jobs
		SET %s = $1, %s = $2, updated_at = NOW()
		WHERE id = $3
	`, amountCol, sigCol)
	return s.execOnJob(ctx, query, int64(amount), signature, id)
}

// ListJobsByToken retrieves the most recent jobs for a token
func (s *Store) ListJobsByToken(ctx context.Context, mint string, limit int) ([]*AutomationJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM automation_jobs
		WHERE token_mint = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return s.queryJobs(ctx, query, mint, limit)
}

// ListRecentJobs retrieves the most recent jobs across all tokens
func (s *Store) ListRecentJobs(ctx context.Context, limit int) ([]*AutomationJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM automation_jobs
		ORDER BY created_at DESC
		LIMIT $1
	`
	return s.queryJobs(ctx, query, limit)
}

// CountActiveJobs counts pending or running jobs for a token
func (s *Store) CountActiveJobs(ctx context.Context, mint string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM automation_jobs
		WHERE token_mint = $1 AND status IN ($2, $3)
	`
	err := s.db.QueryRowContext(ctx, query, mint, JobStatusPending, JobStatusRunning).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active jobs: %w", err)
	}
	return count, nil
}

// DeleteCompletedBefore removes completed jobs older than the cutoff and
// returns how many rows went away. Failed rows are kept for their error
// message and retry count.
func (s *Store) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM automation_jobs
		WHERE status = $1 AND completed_at < $2
	`
	res, err := s.db.ExecContext(ctx, query, JobStatusCompleted, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows, nil
}

func (s *Store) execOnJob(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update automation job: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]*AutomationJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*AutomationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*AutomationJob, error) {
	job := &AutomationJob{}
	err := row.Scan(
		&job.ID, &job.TokenMint, &job.JobType, &job.TriggerType, &job.Status,
		&job.FeesClaimed, &job.TokensBurned, &job.LpAdded, &job.DividendsPaid,
		&job.ClaimSignature, &job.BurnSignature, &job.LpSignature, &job.DividendsSignature,
		&job.ErrorMessage, &job.RetryCount, &job.CreatedAt, &job.UpdatedAt,
		&job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}
