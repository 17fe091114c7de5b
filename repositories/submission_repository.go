package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/curious-broccoli/ufo-hackathon/models"
	"github.com/lib/pq"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrSubmissionGroupInvalid  = errors.New("submission group conflict or invalid")
	ErrSubmissionQuotaExceeded = errors.New("submission quota exceeded for group")
)

type SubmissionRepository interface {
	CountByGroup(ctx context.Context, groupID int) (int, error)
	// CreateWithinQuota inserts the submission only while the group has
	// fewer than maxPerGroup submissions, holding a row lock on the group
	// so that concurrent submissions cannot both slip under the limit. It
	// returns the submission count seen before the insert; on a full quota
	// the count comes with ErrSubmissionQuotaExceeded.
	CreateWithinQuota(ctx context.Context, submission *models.Submission, maxPerGroup int) (int, error)
	BestCCEByGroup(ctx context.Context, limit int) ([]models.BestCCERow, error)
	BestRightByGroup(ctx context.Context) ([]models.BestChoicesRow, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) CountByGroup(ctx context.Context, groupID int) (int, error) {
	return r.countByGroup(ctx, r.db, groupID)
}

func (r *postgresSubmissionRepository) countByGroup(ctx context.Context, exec SQLExecutor, groupID int) (int, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE group_id = $1`
	var count int
	if err := exec.QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresSubmissionRepository) CreateWithinQuota(ctx context.Context, submission *models.Submission, maxPerGroup int) (count int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Serializes submissions of the same group; the count stays accurate
	// until commit.
	var groupID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, submission.GroupID).Scan(&groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSubmissionGroupInvalid
		}
		return 0, err
	}

	count, err = r.countByGroup(ctx, tx, submission.GroupID)
	if err != nil {
		return 0, err
	}
	if count >= maxPerGroup {
		return count, ErrSubmissionQuotaExceeded
	}

	query := `
		INSERT INTO submissions (group_id, right_predictions, wrong_predictions, cce)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		submission.GroupID,
		submission.RightPredictions,
		submission.WrongPredictions,
		submission.CCE,
	).Scan(&submission.ID, &submission.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return count, ErrSubmissionGroupInvalid
		}
		return count, err
	}
	return count, nil
}

func (r *postgresSubmissionRepository) BestCCEByGroup(ctx context.Context, limit int) ([]models.BestCCERow, error) {
	query := `
		SELECT s.group_id, g.name, MIN(s.cce) AS min_cce
		FROM submissions s
		JOIN groups g ON g.id = s.group_id
		GROUP BY s.group_id, g.name
		ORDER BY min_cce ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.BestCCERow, 0)
	for rows.Next() {
		var row models.BestCCERow
		if err := rows.Scan(&row.GroupID, &row.GroupName, &row.MinCCE); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func (r *postgresSubmissionRepository) BestRightByGroup(ctx context.Context) ([]models.BestChoicesRow, error) {
	// No LIMIT here: the service cuts the result to whole tie-groups, which
	// may span more rows than the display limit.
	query := `
		SELECT s.group_id, g.name, MAX(s.right_predictions) AS max_right
		FROM submissions s
		JOIN groups g ON g.id = s.group_id
		GROUP BY s.group_id, g.name
		ORDER BY max_right DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.BestChoicesRow, 0)
	for rows.Next() {
		var row models.BestChoicesRow
		if err := rows.Scan(&row.GroupID, &row.GroupName, &row.MaxRight); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
