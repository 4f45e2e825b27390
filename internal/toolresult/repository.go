// Package toolresult provides the saved AI tool result domain model and owner-scoped repository.
package toolresult

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DefaultCategory labels results saved without an explicit category.
const DefaultCategory = "General"

// ToolResult is a saved AI tool invocation: the input text the student gave a
// tool and the output the model produced.
type ToolResult struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	ToolName  string    `db:"tool_name" json:"toolName"`
	ToolID    string    `db:"tool_id" json:"toolId"`
	Category  string    `db:"category" json:"category"`
	Input     string    `db:"input" json:"input"`
	Output    string    `db:"output" json:"output"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/toolresult/mock_repository.go -package=mock_toolresult

// Repository defines operations for managing saved tool results.
type Repository interface {
	FindAllByStudent(ctx context.Context, studentID string) ([]ToolResult, error)
	FindByID(ctx context.Context, id, studentID string) (*ToolResult, error)
	Create(ctx context.Context, tr *ToolResult) error
	Rename(ctx context.Context, id, studentID, newName, category string) (int64, error)
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

// FindAllByStudent returns all saved results owned by the student, most recent first.
func (r *DBRepository) FindAllByStudent(ctx context.Context, studentID string) ([]ToolResult, error) {
	results := []ToolResult{}
	if err := r.db.SelectContext(ctx, &results,
		"SELECT * FROM saved_tool_results WHERE student_id = ? ORDER BY created_at DESC",
		studentID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(saved_tool_results) > %w", err)
	}
	return results, nil
}

// FindByID returns the saved result matching both id and owner, or nil if not found.
func (r *DBRepository) FindByID(ctx context.Context, id, studentID string) (*ToolResult, error) {
	results := []ToolResult{}
	if err := r.db.SelectContext(ctx, &results,
		"SELECT * FROM saved_tool_results WHERE id = ? AND student_id = ?",
		id, studentID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(saved_tool_result) > %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Create inserts a saved result and reloads it so the timestamp reflects the stored row.
func (r *DBRepository) Create(ctx context.Context, tr *ToolResult) error {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if tr.Category == "" {
		tr.Category = DefaultCategory
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO saved_tool_results (id, student_id, tool_name, tool_id, category, input, output) VALUES (?, ?, ?, ?, ?, ?, ?)",
		tr.ID, tr.StudentID, tr.ToolName, tr.ToolID, tr.Category, tr.Input, tr.Output); err != nil {
		return fmt.Errorf("db.ExecContext(insert saved_tool_result) > %w", err)
	}

	var stored ToolResult
	if err := r.db.GetContext(ctx, &stored, "SELECT * FROM saved_tool_results WHERE id = ?", tr.ID); err != nil {
		return fmt.Errorf("db.GetContext(saved_tool_result after insert) > %w", err)
	}
	*tr = stored
	return nil
}

// Rename applies a partial update of tool name and category to the result
// matching both id and owner. Empty fields are left untouched. Returns the
// affected row count; zero means not found or owned by another student.
func (r *DBRepository) Rename(ctx context.Context, id, studentID, newName, category string) (int64, error) {
	assignments := []string{}
	args := []any{}
	if newName != "" {
		assignments = append(assignments, "tool_name = ?")
		args = append(args, newName)
	}
	if category != "" {
		assignments = append(assignments, "category = ?")
		args = append(args, category)
	}
	if len(assignments) == 0 {
		return 0, nil
	}
	args = append(args, id, studentID)

	query := "UPDATE saved_tool_results SET " + strings.Join(assignments, ", ") + " WHERE id = ? AND student_id = ?"
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(rename saved_tool_result) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}

// Delete removes the saved result matching both id and owner and returns the affected row count.
func (r *DBRepository) Delete(ctx context.Context, id, studentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM saved_tool_results WHERE id = ? AND student_id = ?",
		id, studentID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete saved_tool_result) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}
