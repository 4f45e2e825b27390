// Package mastery provides the mastery bank domain model and owner-scoped repository.
package mastery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DefaultSubject labels cards saved without an explicit subject.
const DefaultSubject = "General"

// Flashcard is a question/answer pair a student has chosen to keep permanently.
type Flashcard struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	Question  string    `db:"question" json:"question"`
	Answer    string    `db:"answer" json:"answer"`
	Subject   string    `db:"subject" json:"subject"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

//go:generate mockgen -source=repository.go -destination=../mocks/mastery/mock_repository.go -package=mock_mastery

// Repository defines operations for managing mastered flashcards.
type Repository interface {
	FindAllByStudent(ctx context.Context, studentID string) ([]Flashcard, error)
	Create(ctx context.Context, card *Flashcard) error
	Delete(ctx context.Context, id, studentID string) (int64, error)
	DeleteAllByStudent(ctx context.Context, studentID string) (int64, error)
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindAllByStudent returns all cards owned by the student, most recent first.
func (r *DBRepository) FindAllByStudent(ctx context.Context, studentID string) ([]Flashcard, error) {
	cards := []Flashcard{}
	if err := r.db.SelectContext(ctx, &cards,
		"SELECT * FROM mastered_flashcards WHERE student_id = ? ORDER BY created_at DESC",
		studentID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(mastered_flashcards) > %w", err)
	}
	return cards, nil
}

// Create inserts a card and reloads it so the timestamp reflects the stored row.
func (r *DBRepository) Create(ctx context.Context, card *Flashcard) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	if card.Subject == "" {
		card.Subject = DefaultSubject
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO mastered_flashcards (id, student_id, question, answer, subject) VALUES (?, ?, ?, ?, ?)",
		card.ID, card.StudentID, card.Question, card.Answer, card.Subject); err != nil {
		return fmt.Errorf("db.ExecContext(insert mastered_flashcard) > %w", err)
	}

	var stored Flashcard
	if err := r.db.GetContext(ctx, &stored, "SELECT * FROM mastered_flashcards WHERE id = ?", card.ID); err != nil {
		return fmt.Errorf("db.GetContext(mastered_flashcard after insert) > %w", err)
	}
	*card = stored
	return nil
}

// Delete removes the card matching both id and owner and returns the affected row count.
func (r *DBRepository) Delete(ctx context.Context, id, studentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM mastered_flashcards WHERE id = ? AND student_id = ?",
		id, studentID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete mastered_flashcard) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}

// DeleteAllByStudent clears the student's bank and returns exactly how many rows were removed.
func (r *DBRepository) DeleteAllByStudent(ctx context.Context, studentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM mastered_flashcards WHERE student_id = ?",
		studentID)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete mastered_flashcards) > %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}
