//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"tutorlink/internal/domain/review"
	"tutorlink/internal/domain/user"
	"tutorlink/internal/handler/api"
	resdto "tutorlink/internal/handler/dto/response"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"
	"tutorlink/tests/common/builder"
	"tutorlink/tests/common/httptest"
	"tutorlink/tests/common/testutil"
	commandsmock "tutorlink/tests/mock/commands"
	queriesmock "tutorlink/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReviewHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReviewCommands
	mockQueries  *queriesmock.MockReviewQueries
	student      shared.Actor
}

func (s *ReviewHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReviewCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReviewQueries(s.mockCtrl)
	s.student = shared.Actor{ID: uuid.New(), Role: user.RoleStudent.String()}

	h := api.NewReviewHandler(s.mockCommands, s.mockQueries)
	s.router.POST("/reviews", identity(s.student), h.Create)
	s.router.GET("/tutors/:id/reviews", h.ListByTutor)
}

func (s *ReviewHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerTestSuite))
}

func (s *ReviewHandlerTestSuite) TestCreate() {
	rb := builder.NewReviewBuilder().With(func(r *builder.ReviewBuilder) { r.StudentID = s.student.ID })
	reviewID := uuid.New()
	body := map[string]any{
		"booking_id": rb.BookingID.String(),
		"rating":     rb.Rating,
		"comment":    rb.Comment,
	}

	s.Run("success: 201 with the stored review", func() {
		s.mockCommands.EXPECT().CreateReview(gomock.Any(), s.student, commands.CreateReviewInput{
			BookingID: rb.BookingID,
			Rating:    rb.Rating,
			Comment:   rb.Comment,
		}).Return(reviewID, nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), reviewID).Return(rb.BuildView(reviewID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reviews", body, "")

		var response resdto.ReviewResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(reviewID, response.ID)
		s.Equal(int32(rb.Rating), response.Rating)
		s.Equal(rb.TutorID, response.TutorID)
	})

	s.Run("error: 400 on request validation", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
		}{
			{"rating below range", testutil.Field("rating", 0)},
			{"rating above range", testutil.Field("rating", 6)},
			{"missing booking", testutil.Field("booking_id", nil)},
			{"missing comment", testutil.Field("comment", nil)},
			{"comment too long", testutil.Field("comment", strings.Repeat("x", 1001))},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reviews", testutil.DtoMap(s.T(), body, tc.mutate), "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
			})
		}
	})

	s.Run("error: maps use case errors", func() {
		testCases := []struct {
			name   string
			err    error
			status int
			msg    string
		}{
			{"booking missing", queries.ErrBookingNotFound, http.StatusNotFound, "booking not found"},
			{"not completed", review.ErrBookingNotEligible, http.StatusConflict, "only completed sessions"},
			{"someone else's session", review.ErrNotSessionStudent, http.StatusForbidden, "only the student"},
			{"duplicate", review.ErrReviewAlreadyExists, http.StatusConflict, "already exists"},
			{"database", errors.New("timeout"), http.StatusInternalServerError, "Internal server error"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateReview(gomock.Any(), s.student, gomock.Any()).Return(uuid.Nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/reviews", body, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
			})
		}
	})
}

func (s *ReviewHandlerTestSuite) TestListByTutor() {
	tutorID := uuid.New()
	rb := builder.NewReviewBuilder()
	items := []*queries.ReviewListItem{rb.BuildListItem(uuid.New()), rb.WithRating(4).BuildListItem(uuid.New())}
	stats := &queries.TutorRatingStats{TutorID: tutorID, TotalReviews: 7, AverageRating: 4.5}
	url := "/tutors/" + tutorID.String() + "/reviews"

	s.Run("success: first page with next cursor and stats", func() {
		next := &queries.Cursor{After: "next-page"}
		s.mockQueries.EXPECT().ListByTutor(gomock.Any(), tutorID, (*queries.Cursor)(nil), 2).Return(items, next, nil).Times(1)
		s.mockQueries.EXPECT().GetTutorRatingStats(gomock.Any(), tutorID).Return(stats, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?limit=2", nil, "")

		var response resdto.TutorReviewsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Items, 2)
		s.Equal("next-page", response.NextCursor)
		s.Equal(int32(7), response.TotalReviews)
		s.InDelta(4.5, response.AverageRating, 0.001)
	})

	s.Run("success: cursor is passed through and the default limit applies", func() {
		s.mockQueries.EXPECT().ListByTutor(gomock.Any(), tutorID, &queries.Cursor{After: "abc"}, queries.DefaultListLimit).
			Return(items[:1], nil, nil).Times(1)
		s.mockQueries.EXPECT().GetTutorRatingStats(gomock.Any(), tutorID).Return(stats, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?after=abc", nil, "")

		var response resdto.TutorReviewsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response.NextCursor)
	})

	s.Run("error: invalid cursor is a 400", func() {
		s.mockQueries.EXPECT().ListByTutor(gomock.Any(), tutorID, gomock.Any(), gomock.Any()).
			Return(nil, nil, queries.ErrInvalidCursor).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?after=not-a-cursor", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid cursor")
	})

	s.Run("error: invalid tutor id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/tutors/xyz/reviews", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})
}
