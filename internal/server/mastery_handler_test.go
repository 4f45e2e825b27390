package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/eduflux/internal/mastery"
)

func TestHandler_GetMasteryBank(t *testing.T) {
	handler, mocks := newTestHandler(t)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expectResolveStudent(mocks, "student-1")
	mocks.cards.EXPECT().
		FindAllByStudent(gomock.Any(), "student-1").
		Return([]mastery.Flashcard{
			{ID: "card-1", StudentID: "student-1", Question: "Q", Answer: "A", Subject: "Math", CreatedAt: now},
		}, nil)

	recorder := httptest.NewRecorder()
	handler.GetMasteryBank(recorder, authedRequest(http.MethodGet, "/api/mastery/all", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	cards := decodeJSONBody[[]mastery.Flashcard](t, recorder)
	require.Len(t, cards, 1)
	assert.Equal(t, "Math", cards[0].Subject)
}

func TestHandler_ClearMasteryBank(t *testing.T) {
	handler, mocks := newTestHandler(t)

	expectResolveStudent(mocks, "student-1")
	mocks.cards.EXPECT().
		DeleteAllByStudent(gomock.Any(), "student-1").
		Return(int64(7), nil)

	recorder := httptest.NewRecorder()
	handler.ClearMasteryBank(recorder, authedRequest(http.MethodDelete, "/api/mastery/all", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeJSONBody[map[string]any](t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["count"])
}

func TestHandler_CreateMasteredCard(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(mocks handlerMocks)

		wantStatus int
		wantError  string
	}{
		{
			name: "created with subject",
			body: `{"q":"What is 2+2?","a":"4","subject":"Math"}`,
			setupMock: func(mocks handlerMocks) {
				expectResolveStudent(mocks, "student-1")
				mocks.cards.EXPECT().
					Create(gomock.Any(), &mastery.Flashcard{
						StudentID: "student-1",
						Question:  "What is 2+2?",
						Answer:    "4",
						Subject:   "Math",
					}).
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "subject defaulting left to the repository",
			body: `{"q":"What is 2+2?","a":"4"}`,
			setupMock: func(mocks handlerMocks) {
				expectResolveStudent(mocks, "student-1")
				mocks.cards.EXPECT().
					Create(gomock.Any(), &mastery.Flashcard{
						StudentID: "student-1",
						Question:  "What is 2+2?",
						Answer:    "4",
					}).
					Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing question",
			body:       `{"a":"4"}`,
			setupMock:  func(mocks handlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Question and answer are required",
		},
		{
			name:       "missing answer",
			body:       `{"q":"What is 2+2?"}`,
			setupMock:  func(mocks handlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Question and answer are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mocks := newTestHandler(t)
			tt.setupMock(mocks)

			recorder := httptest.NewRecorder()
			handler.CreateMasteredCard(recorder, authedRequest(http.MethodPost, "/api/mastery", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantError != "" {
				body := decodeJSONBody[map[string]string](t, recorder)
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}

func TestHandler_DeleteMasteredCard(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		setupMock func(mocks handlerMocks)

		wantStatus int
		wantError  string
	}{
		{
			name:   "deleted",
			target: "/api/mastery?id=card-1",
			setupMock: func(mocks handlerMocks) {
				expectResolveStudent(mocks, "student-1")
				mocks.cards.EXPECT().
					Delete(gomock.Any(), "card-1", "student-1").
					Return(int64(1), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing id",
			target:     "/api/mastery",
			setupMock:  func(mocks handlerMocks) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Card ID is required",
		},
		{
			name:   "foreign or missing card",
			target: "/api/mastery?id=card-1",
			setupMock: func(mocks handlerMocks) {
				expectResolveStudent(mocks, "student-1")
				mocks.cards.EXPECT().
					Delete(gomock.Any(), "card-1", "student-1").
					Return(int64(0), nil)
			},
			wantStatus: http.StatusNotFound,
			wantError:  "Card not found or unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mocks := newTestHandler(t)
			tt.setupMock(mocks)

			recorder := httptest.NewRecorder()
			handler.DeleteMasteredCard(recorder, authedRequest(http.MethodDelete, tt.target, nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantError != "" {
				body := decodeJSONBody[map[string]string](t, recorder)
				assert.Equal(t, tt.wantError, body["error"])
			}
		})
	}
}
