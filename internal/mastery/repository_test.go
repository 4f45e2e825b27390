package mastery

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBRepository_FindAllByStudent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "mysql")
	repo := NewDBRepository(sqlxDB)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "question", "answer", "subject", "created_at",
	}).
		AddRow("card-2", "student-1", "What is 2+2?", "4", "Math", now.Add(time.Hour)).
		AddRow("card-1", "student-1", "Capital of France?", "Paris", "Geography", now)

	mock.ExpectQuery("SELECT \\* FROM mastered_flashcards WHERE student_id = \\? ORDER BY created_at DESC").
		WithArgs("student-1").
		WillReturnRows(rows)

	got, err := repo.FindAllByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "card-2", got[0].ID)
	assert.Equal(t, "Paris", got[1].Answer)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_Create(t *testing.T) {
	tests := []struct {
		name        string
		card        *Flashcard
		wantSubject string
	}{
		{
			name: "explicit subject",
			card: &Flashcard{
				StudentID: "student-1",
				Question:  "What is 2+2?",
				Answer:    "4",
				Subject:   "Math",
			},
			wantSubject: "Math",
		},
		{
			name: "missing subject defaults to General",
			card: &Flashcard{
				StudentID: "student-1",
				Question:  "What is 2+2?",
				Answer:    "4",
			},
			wantSubject: DefaultSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			sqlxDB := sqlx.NewDb(db, "mysql")
			repo := NewDBRepository(sqlxDB)
			now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

			mock.ExpectExec("INSERT INTO mastered_flashcards").
				WithArgs(sqlmock.AnyArg(), "student-1", "What is 2+2?", "4", tt.wantSubject).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectQuery("SELECT \\* FROM mastered_flashcards WHERE id = \\?").
				WithArgs(sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{
					"id", "student_id", "question", "answer", "subject", "created_at",
				}).AddRow("card-1", "student-1", "What is 2+2?", "4", tt.wantSubject, now))

			err = repo.Create(context.Background(), tt.card)
			require.NoError(t, err)
			assert.Equal(t, "card-1", tt.card.ID)
			assert.Equal(t, tt.wantSubject, tt.card.Subject)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		affected  int64
		wantCount int64
	}{
		{name: "owned row removed", affected: 1, wantCount: 1},
		{name: "row owned by another student", affected: 0, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			sqlxDB := sqlx.NewDb(db, "mysql")
			repo := NewDBRepository(sqlxDB)

			mock.ExpectExec("DELETE FROM mastered_flashcards WHERE id = \\? AND student_id = \\?").
				WithArgs("card-1", "student-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			count, err := repo.Delete(context.Background(), "card-1", "student-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRepository_DeleteAllByStudent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "mysql")
	repo := NewDBRepository(sqlxDB)

	mock.ExpectExec("DELETE FROM mastered_flashcards WHERE student_id = \\?").
		WithArgs("student-1").
		WillReturnResult(sqlmock.NewResult(0, 7))

	count, err := repo.DeleteAllByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
