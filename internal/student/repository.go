// Package student provides the student domain model and repository.
package student

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Interests is a list of interest tags stored as a JSON column.
type Interests []string

// Value implements the driver.Valuer interface.
func (i Interests) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(interests) > %w", err)
	}
	return data, nil
}

// Scan implements the sql.Scanner interface.
func (i *Interests) Scan(src any) error {
	if src == nil {
		*i = nil
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected interests column type %T", src)
	}
	if err := json.Unmarshal(data, i); err != nil {
		return fmt.Errorf("json.Unmarshal(interests) > %w", err)
	}
	return nil
}

// Student represents an authenticated end user.
// Students are created lazily on first authenticated request and keyed by the
// identity provider's external id.
type Student struct {
	ID         string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"externalId"`
	Email      string    `db:"email" json:"email"`
	Name       string    `db:"name" json:"name"`
	Interests  Interests `db:"interests" json:"interests"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/student/mock_repository.go -package=mock_student

// Repository defines operations for managing students.
type Repository interface {
	FindByExternalID(ctx context.Context, externalID string) (*Student, error)
	Upsert(ctx context.Context, s *Student) error
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByExternalID returns the student with the given external id, or nil if not found.
func (r *DBRepository) FindByExternalID(ctx context.Context, externalID string) (*Student, error) {
	var s Student
	err := r.db.GetContext(ctx, &s, "SELECT * FROM students WHERE external_id = ?", externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(student) > %w", err)
	}
	return &s, nil
}

// Upsert creates the student if absent and refreshes email and name otherwise,
// keyed by external id. The struct is reloaded with the stored row so callers
// always see the internal id regardless of which branch ran.
func (r *DBRepository) Upsert(ctx context.Context, s *Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Name == "" {
		s.Name = "Student"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, external_id, email, name, interests)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE email = VALUES(email), name = VALUES(name)`,
		s.ID, s.ExternalID, s.Email, s.Name, s.Interests)
	if err != nil {
		return fmt.Errorf("db.ExecContext(upsert student) > %w", err)
	}

	var stored Student
	if err := r.db.GetContext(ctx, &stored, "SELECT * FROM students WHERE external_id = ?", s.ExternalID); err != nil {
		return fmt.Errorf("db.GetContext(student after upsert) > %w", err)
	}
	*s = stored
	return nil
}
