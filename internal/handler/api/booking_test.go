//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"tutorlink/internal/domain/booking"
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
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	tutor        shared.Actor
	student      shared.Actor
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.tutor = shared.Actor{ID: uuid.New(), Role: shared.RoleTutor}
	s.student = shared.Actor{ID: uuid.New(), Role: shared.RoleStudent}

	h := api.NewBookingHandler(s.mockCommands, s.mockQueries)

	tutor := s.router.Group("", identity(s.tutor))
	tutor.POST("/availability", h.CreateAvailability)
	tutor.GET("/availability", h.ListAvailability)
	tutor.PATCH("/availability/:id", h.UpdateAvailability)
	tutor.PATCH("/availability/:id/cancel", h.CancelAsTutor)
	tutor.DELETE("/availability/:id", h.DeleteAvailability)
	tutor.POST("/sessions/:id/start", h.StartSession)
	tutor.POST("/sessions/:id/end", h.EndSession)

	student := s.router.Group("/student", identity(s.student))
	student.GET("/open", h.ListOpen)
	student.GET("/bookings", h.ListMine)
	student.GET("/bookings/:id", h.Get)
	student.POST("/bookings/:id", h.Claim)
	student.PATCH("/bookings/:id", h.UpdateAsStudent)
	student.PATCH("/bookings/:id/cancel", h.CancelAsStudent)

	s.router.GET("/anonymous/bookings/:id", h.Get)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

// identity stands in for RequireAuth.
func identity(a shared.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", a.ID)
		c.Set("user_role", user.Role(a.Role))
		c.Next()
	}
}

func (s *BookingHandlerTestSuite) TestCreateAvailability() {
	start := time.Date(2031, 5, 1, 15, 0, 0, 0, time.UTC)
	view := builder.NewBookingBuilder().WithTutor(s.tutor.ID).WithStart(start).BuildView()
	body := map[string]any{
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(time.Hour).Format(time.RFC3339),
		"notes":      "Bring past papers",
	}

	s.Run("success: 201 with the created booking", func() {
		s.mockCommands.EXPECT().CreateAvailability(gomock.Any(), s.tutor, commands.CreateAvailabilityInput{
			Start: start,
			End:   start.Add(time.Hour),
			Notes: "Bring past papers",
		}).Return(&commands.CreateAvailabilityResult{BookingID: view.ID}, nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.tutor, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/availability", body, "")

		var response resdto.CreateAvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(view.ID, response.Booking.ID)
		s.True(response.Booking.ScheduledStart.Equal(start))
		s.Equal("open", response.Booking.Status)
	})

	s.Run("success: recurrence interval defaults to 1", func() {
		occurrences := []uuid.UUID{uuid.New(), uuid.New()}
		recurring := testutil.DtoMap(s.T(), body, testutil.Field("recurrence", map[string]any{"frequency": "weekly", "count": 3}))
		s.mockCommands.EXPECT().CreateAvailability(gomock.Any(), s.tutor, gomock.Any()).
			DoAndReturn(func(_ any, _ shared.Actor, in commands.CreateAvailabilityInput) (*commands.CreateAvailabilityResult, error) {
				want := &commands.RecurrenceInput{Frequency: "weekly", Interval: 1, Count: 3}
				if diff := cmp.Diff(want, in.Recurrence); diff != "" {
					s.Failf("recurrence mismatch", "(-want +got):\n%s", diff)
				}
				return &commands.CreateAvailabilityResult{BookingID: view.ID, OccurrenceIDs: occurrences}, nil
			}).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.tutor, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/availability", recurring, "")

		var response resdto.CreateAvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(occurrences, response.OccurrenceIDs)
	})

	s.Run("error: 400 on malformed bodies", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
		}{
			{"missing start", testutil.Field("start_time", nil)},
			{"missing end", testutil.Field("end_time", nil)},
			{"unknown frequency", testutil.Field("recurrence", map[string]any{"frequency": "monthly", "count": 2})},
			{"zero count", testutil.Field("recurrence", map[string]any{"frequency": "daily", "count": 0})},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/availability", testutil.DtoMap(s.T(), body, tc.mutate), "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
			})
		}
	})

	s.Run("error: domain errors keep their status", func() {
		testCases := []struct {
			name   string
			err    error
			status int
		}{
			{"end before start", booking.ErrInvalidTimeSlot, http.StatusBadRequest},
			{"start in the past", booking.ErrStartInPast, http.StatusBadRequest},
			{"subject not taught", commands.ErrSubjectNotTaught, http.StatusBadRequest},
			{"database down", errors.New("connection refused"), http.StatusInternalServerError},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().CreateAvailability(gomock.Any(), s.tutor, gomock.Any()).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/availability", body, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, "")
			})
		}
	})
}

func (s *BookingHandlerTestSuite) TestListAvailability() {
	views := []*queries.BookingView{
		builder.NewBookingBuilder().WithTutor(s.tutor.ID).BuildView(),
		builder.NewBookingBuilder().WithTutor(s.tutor.ID).AsConfirmed().BuildView(),
	}

	s.Run("success: passes filters through", func() {
		from := time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC)
		s.mockQueries.EXPECT().ListForTutor(gomock.Any(), s.tutor.ID, gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, f queries.BookingFilter) ([]*queries.BookingView, error) {
				s.Equal([]string{"open", "confirmed"}, f.Statuses)
				s.Require().NotNil(f.From)
				s.True(f.From.Equal(from))
				s.Equal(10, f.Limit)
				return views, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/availability?status=open&status=confirmed&from=2031-05-01T00:00:00Z&limit=10", nil, "")

		var response []resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response, 2)
		s.Equal("confirmed", response[1].Status)
	})

	s.Run("error: 400 on a malformed subject id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/availability?subject_id=nope", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: unknown status filter is a validation error", func() {
		s.mockQueries.EXPECT().ListForTutor(gomock.Any(), s.tutor.ID, gomock.Any()).
			Return(nil, booking.ErrInvalidStatus).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/availability?status=archived", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "invalid booking status")
	})
}

func (s *BookingHandlerTestSuite) TestUpdateAvailability() {
	view := builder.NewBookingBuilder().WithTutor(s.tutor.ID).AsConfirmed().BuildView()
	url := "/availability/" + view.ID.String()

	s.Run("success: confirm a pending claim", func() {
		status := "confirmed"
		s.mockCommands.EXPECT().UpdateAvailability(gomock.Any(), s.tutor, view.ID, commands.UpdateAvailabilityInput{Status: &status}).
			Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.tutor, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "confirmed"}, "")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("confirmed", response.Status)
	})

	s.Run("error: unsupported status value", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "completed"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/availability/not-a-uuid", map[string]any{}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
	})

	s.Run("error: maps use case errors", func() {
		testCases := []struct {
			name   string
			err    error
			status int
		}{
			{"not found", queries.ErrBookingNotFound, http.StatusNotFound},
			{"not the tutor", commands.ErrNotBookingTutor, http.StatusForbidden},
			{"cancel through update", commands.ErrUseCancelRoute, http.StatusBadRequest},
			{"bad transition", booking.ErrInvalidTransition, http.StatusConflict},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().UpdateAvailability(gomock.Any(), s.tutor, view.ID, gomock.Any()).Return(tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"notes": "x"}, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, "")
			})
		}
	})
}

func (s *BookingHandlerTestSuite) TestCancelAndDelete() {
	view := builder.NewBookingBuilder().WithTutor(s.tutor.ID).AsConfirmed().BuildView()

	s.Run("success: tutor cancels with a reason", func() {
		s.mockCommands.EXPECT().CancelAsTutor(gomock.Any(), s.tutor, view.ID, "sick").Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.tutor, view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/availability/"+view.ID.String()+"/cancel", map[string]any{"reason": "sick"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: reason required", func() {
		s.mockCommands.EXPECT().CancelAsTutor(gomock.Any(), s.tutor, view.ID, "").Return(booking.ErrReasonRequired).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/availability/"+view.ID.String()+"/cancel", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "reason is required")
	})

	s.Run("success: delete answers with the id", func() {
		s.mockCommands.EXPECT().DeleteAvailability(gomock.Any(), s.tutor, view.ID).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/availability/"+view.ID.String(), nil, "")

		var response map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(view.ID.String(), response["id"])
	})

	s.Run("error: delete of a claimed booking conflicts", func() {
		s.mockCommands.EXPECT().DeleteAvailability(gomock.Any(), s.tutor, view.ID).Return(commands.ErrBookingClaimed).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/availability/"+view.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "cancel it instead")
	})
}

func (s *BookingHandlerTestSuite) TestStudentFlow() {
	open := builder.NewBookingBuilder().BuildView()
	claimed := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.ID = open.ID }).
		WithStudent(s.student.ID).WithStatus(booking.StatusPending).BuildView()

	s.Run("success: list open slots", func() {
		s.mockQueries.EXPECT().ListOpen(gomock.Any(), gomock.Any()).Return([]*queries.BookingView{open}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/student/open?tutor_id="+open.TutorID.String(), nil, "")

		var response []resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 1)
		s.Equal(open.ID, response[0].ID)
	})

	s.Run("success: claim with notes", func() {
		s.mockCommands.EXPECT().Claim(gomock.Any(), s.student, open.ID, "chapter 4").Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.student, open.ID).Return(claimed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/student/bookings/"+open.ID.String(), map[string]any{"notes": "chapter 4"}, "")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("pending", response.Status)
		s.Equal(&s.student.ID, response.StudentID)
	})

	s.Run("success: claim without a body", func() {
		s.mockCommands.EXPECT().Claim(gomock.Any(), s.student, open.ID, "").Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.student, open.ID).Return(claimed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/student/bookings/"+open.ID.String(), nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: losing the claim race is a conflict", func() {
		s.mockCommands.EXPECT().Claim(gomock.Any(), s.student, open.ID, "").Return(booking.ErrSlotUnavailable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/student/bookings/"+open.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "slot no longer available")
	})

	s.Run("success: update notes", func() {
		s.mockCommands.EXPECT().UpdateAsStudent(gomock.Any(), s.student, open.ID, "bring calculator").Return(nil).Times(1)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.student, open.ID).Return(claimed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/student/bookings/"+open.ID.String(), map[string]any{"notes": "bring calculator"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: late cancellation is forbidden", func() {
		s.mockCommands.EXPECT().CancelAsStudent(gomock.Any(), s.student, open.ID, "").Return(booking.ErrCancellationTooLate).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/student/bookings/"+open.ID.String()+"/cancel", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "cancellation window has closed")
	})

	s.Run("success: list own bookings", func() {
		s.mockQueries.EXPECT().ListForStudent(gomock.Any(), s.student.ID, gomock.Any()).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/student/bookings", nil, "")

		var response []resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response)
	})

	s.Run("error: hidden bookings look missing", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.student, open.ID).Return(nil, queries.ErrBookingNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/student/bookings/"+open.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "booking not found")
	})

	s.Run("error: 401 without identity", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/anonymous/bookings/"+open.ID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "")
	})
}

func (s *BookingHandlerTestSuite) TestSessions() {
	view := builder.NewBookingBuilder().WithTutor(s.tutor.ID).AsCompleted().BuildView()

	s.Run("success: start then end", func() {
		gomock.InOrder(
			s.mockCommands.EXPECT().StartSession(gomock.Any(), s.tutor, view.ID).Return(nil),
			s.mockCommands.EXPECT().EndSession(gomock.Any(), s.tutor, view.ID).Return(nil),
		)
		s.mockQueries.EXPECT().GetByID(gomock.Any(), s.tutor, view.ID).Return(view, nil).Times(2)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/sessions/"+view.ID.String()+"/start", nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)

		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/sessions/"+view.ID.String()+"/end", nil, "")
		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("completed", response.Status)
	})

	s.Run("error: ending a session that never started", func() {
		s.mockCommands.EXPECT().EndSession(gomock.Any(), s.tutor, view.ID).Return(booking.ErrSessionNotInProgress).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/sessions/"+view.ID.String()+"/end", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "session has not been started")
	})
}
