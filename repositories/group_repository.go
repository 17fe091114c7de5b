package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/curious-broccoli/ufo-hackathon/models"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupNameConflict   = errors.New("group name conflict")
	ErrGroupHasSubmissions = errors.New("group still referenced by submissions")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	// GetByName matches the stored name case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Group, error)
	// Delete fails with ErrGroupHasSubmissions while submissions reference
	// the group.
	Delete(ctx context.Context, id int) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (name)
		VALUES ($1)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, group.Name).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrGroupNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresGroupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE LOWER(name) = LOWER($1)`
	return r.scanGroup(r.db.QueryRowContext(ctx, query, name))
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM groups WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrGroupHasSubmissions
		}
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) scanGroup(row *sql.Row) (*models.Group, error) {
	var group models.Group
	err := row.Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}
