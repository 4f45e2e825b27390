// Package note provides the note domain model and owner-scoped repository.
package note

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Note represents a freeform text document owned by a student.
type Note struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/note/mock_repository.go -package=mock_note

// Repository defines operations for managing notes. Every query filters by the
// owning student id so a row belonging to another student behaves as missing.
type Repository interface {
	FindAllByStudent(ctx context.Context, studentID string) ([]Note, error)
	FindRecentByStudent(ctx context.Context, studentID string, limit int) ([]Note, error)
	Create(ctx context.Context, n *Note) error
	Update(ctx context.Context, id, studentID, title, content string) (int64, error)
	Delete(ctx context.Context, id, studentID string) (int64, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindAllByStudent returns all notes owned by the student, most recently updated first.
func (r *DBRepository) FindAllByStudent(ctx context.Context, studentID string) ([]Note, error) {
	notes := []Note{}
	if err := r.db.SelectContext(ctx, &notes,
		"SELECT * FROM notes WHERE student_id = ? ORDER BY updated_at DESC",
		studentID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(notes) > %w", err)
	}
	return notes, nil
}

// FindRecentByStudent returns up to limit notes owned by the student, most recently updated first.
func (r *DBRepository) FindRecentByStudent(ctx context.Context, studentID string, limit int) ([]Note, error) {
	notes := []Note{}
	if err := r.db.SelectContext(ctx, &notes,
		"SELECT * FROM notes WHERE student_id = ? ORDER BY updated_at DESC LIMIT ?",
		studentID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(recent notes) > %w", err)
	}
	return notes, nil
}

// Create inserts a note and reloads it so timestamps reflect the stored row.
func (r *DBRepository) Create(ctx context.Context, n *Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (id, student_id, title, content) VALUES (?, ?, ?, ?)",
		n.ID, n.StudentID, n.Title, n.Content); err != nil {
		return fmt.Errorf("db.ExecContext(insert note) > %w", err)
	}

	var stored Note
	if err := r.db.GetContext(ctx, &stored, "SELECT * FROM notes WHERE id = ?", n.ID); err != nil {
		return fmt.Errorf("db.GetContext(note after insert) > %w", err)
	}
	*n = stored
	return nil
}

// Update rewrites title and content of the note matching both id and owner.
// Returns the affected row count; zero means the note does not exist or
// belongs to another student.
func (r *DBRepository) Update(ctx context.Context, id, studentID, title, content string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, content = ? WHERE id = ? AND student_id = ?",
		title, content, id, studentID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(update note) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}

// Delete removes the note matching both id and owner and returns the affected row count.
func (r *DBRepository) Delete(ctx context.Context, id, studentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND student_id = ?",
		id, studentID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete note) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}
