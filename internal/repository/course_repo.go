package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trail-backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

const courseColumns = `id, owner_id, title, description, course_type, module_count, config_json, content_json, created_at, last_accessed_at`

func (r *CourseRepo) Create(ctx context.Context, c *models.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	configBytes, err := json.Marshal(c.Config)
	if err != nil {
		return fmt.Errorf("marshal course config: %w", err)
	}
	contentBytes, err := json.Marshal(c.Content)
	if err != nil {
		return fmt.Errorf("marshal course content: %w", err)
	}

	query := `INSERT INTO courses (id, owner_id, title, description, course_type, module_count, config_json, content_json, created_at, last_accessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		c.ID, c.OwnerID, c.Title, c.Description, string(c.CourseType), c.ModuleCount,
		configBytes, contentBytes, c.CreatedAt, c.LastAccessedAt,
	)
	return err
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	c, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *CourseRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE owner_id = $1 ORDER BY last_accessed_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepo) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, "UPDATE courses SET last_accessed_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	var courseType string
	var configBytes, contentBytes []byte

	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Description, &courseType, &c.ModuleCount,
		&configBytes, &contentBytes, &c.CreatedAt, &c.LastAccessedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CourseType = models.CourseType(courseType)
	if err := json.Unmarshal(configBytes, &c.Config); err != nil {
		return nil, fmt.Errorf("decode course config: %w", err)
	}
	if err := json.Unmarshal(contentBytes, &c.Content); err != nil {
		return nil, fmt.Errorf("decode course content: %w", err)
	}
	return c, nil
}
