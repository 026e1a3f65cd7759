package api

import (
	"net/http"

	reqdto "tutorlink/internal/handler/dto/request"
	resdto "tutorlink/internal/handler/dto/response"
	"tutorlink/internal/handler/httperr"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"
	"tutorlink/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create availability
// @Description Publish an open slot, optionally repeated daily or weekly
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateAvailabilityRequest true "Availability"
// @Success 201 {object} api.Envelope{data=resdto.CreateAvailabilityResponse}
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/booking/availability [post]
func (h *BookingHandler) CreateAvailability(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req reqdto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorOrAbort(c, err)
		return
	}

	result, err := h.cmds.CreateAvailability(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	booking, ok := h.load(c, actor, result.BookingID)
	if !ok {
		return
	}
	respond(c, http.StatusCreated, "Availability created", resdto.CreateAvailabilityResponse{
		Booking:       booking,
		OccurrenceIDs: result.OccurrenceIDs,
	})
}

// @Summary List own availability
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param status query []string false "Statuses" collectionFormat(multi)
// @Param subject_id query string false "Subject"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param limit query int false "Limit"
// @Success 200 {object} api.Envelope{data=[]resdto.BookingResponse}
// @Router /api/booking/availability [get]
func (h *BookingHandler) ListAvailability(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	views, err := h.q.ListForTutor(c.Request.Context(), actor.ID, filter)
	h.list(c, views, err)
}

// @Summary Update availability
// @Description Edit, reschedule, confirm a pending claim (status=confirmed) or reject it (status=open)
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateAvailabilityRequest true "Changes"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/booking/availability/{id} [patch]
func (h *BookingHandler) UpdateAvailability(c *gin.Context) {
	var req reqdto.UpdateAvailabilityRequest
	h.mutate(c, &req, "Booking updated", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.UpdateAvailability(c.Request.Context(), actor, id, req.ToInput())
	})
}

// @Summary Cancel as tutor
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest true "Reason"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/booking/availability/{id}/cancel [patch]
func (h *BookingHandler) CancelAsTutor(c *gin.Context) {
	var req reqdto.CancelBookingRequest
	h.mutate(c, &req, "Booking cancelled", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.CancelAsTutor(c.Request.Context(), actor, id, req.Reason)
	})
}

// @Summary Delete availability
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} api.Envelope
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/booking/availability/{id} [delete]
func (h *BookingHandler) DeleteAvailability(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c, "id")
	if !ok {
		return
	}
	if err := h.cmds.DeleteAvailability(c.Request.Context(), actor, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking deleted", gin.H{"id": id})
}

// @Summary List open slots
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param tutor_id query string false "Tutor"
// @Param subject_id query string false "Subject"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param limit query int false "Limit"
// @Success 200 {object} api.Envelope{data=[]resdto.BookingResponse}
// @Router /api/booking/open [get]
func (h *BookingHandler) ListOpen(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	views, err := h.q.ListOpen(c.Request.Context(), filter)
	h.list(c, views, err)
}

// @Summary List own bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query []string false "Statuses" collectionFormat(multi)
// @Success 200 {object} api.Envelope{data=[]resdto.BookingResponse}
// @Router /api/booking/ [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	views, err := h.q.ListForStudent(c.Request.Context(), actor.ID, filter)
	h.list(c, views, err)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Failure 404 {object} httperr.Response
// @Router /api/booking/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c, "id")
	if !ok {
		return
	}
	booking, ok := h.load(c, actor, id)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Booking", booking)
}

// @Summary Claim an open slot
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ClaimBookingRequest false "Notes"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/booking/{id} [post]
func (h *BookingHandler) Claim(c *gin.Context) {
	var req reqdto.ClaimBookingRequest
	h.mutate(c, &req, "Booking claimed", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.Claim(c.Request.Context(), actor, id, req.Notes)
	})
}

// @Summary Update own booking notes
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingRequest true "Notes"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Router /api/booking/{id} [patch]
func (h *BookingHandler) UpdateAsStudent(c *gin.Context) {
	var req reqdto.UpdateBookingRequest
	h.mutate(c, &req, "Booking updated", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.UpdateAsStudent(c.Request.Context(), actor, id, req.Notes)
	})
}

// @Summary Cancel as student
// @Description Allowed until the cancellation window before the start
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.CancelBookingRequest false "Reason"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Failure 400 {object} httperr.Response
// @Router /api/booking/{id}/cancel [patch]
func (h *BookingHandler) CancelAsStudent(c *gin.Context) {
	var req reqdto.CancelBookingRequest
	h.mutate(c, &req, "Booking cancelled", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.CancelAsStudent(c.Request.Context(), actor, id, req.Reason)
	})
}

// @Summary Start session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Router /api/sessions/{id}/start [post]
func (h *BookingHandler) StartSession(c *gin.Context) {
	h.mutate(c, nil, "Session started", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.StartSession(c.Request.Context(), actor, id)
	})
}

// @Summary End session
// @Description Ends the session and completes the booking
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} api.Envelope{data=resdto.BookingResponse}
// @Router /api/sessions/{id}/end [post]
func (h *BookingHandler) EndSession(c *gin.Context) {
	h.mutate(c, nil, "Session ended", func(actor shared.Actor, id uuid.UUID) error {
		return h.cmds.EndSession(c.Request.Context(), actor, id)
	})
}

// mutate binds an optional JSON body into req, runs fn and answers with the
// fresh booking.
func (h *BookingHandler) mutate(c *gin.Context, req any, message string, fn func(actor shared.Actor, id uuid.UUID) error) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c, "id")
	if !ok {
		return
	}
	if req != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			bindErrorOrAbort(c, err)
			return
		}
	}

	if err := fn(actor, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	booking, ok := h.load(c, actor, id)
	if !ok {
		return
	}
	respond(c, http.StatusOK, message, booking)
}

func (h *BookingHandler) load(c *gin.Context, actor shared.Actor, id uuid.UUID) (*resdto.BookingResponse, bool) {
	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Abort(c, err)
		return nil, false
	}
	out, err := resdto.FromBookingView(view)
	if err != nil {
		httperr.Abort(c, err)
		return nil, false
	}
	return out, true
}

func (h *BookingHandler) list(c *gin.Context, views []*queries.BookingView, err error) {
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	out, err := resdto.FromBookingViews(views)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookings", out)
}

func bindFilter(c *gin.Context) (queries.BookingFilter, bool) {
	var q reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindErrorOrAbort(c, err)
		return queries.BookingFilter{}, false
	}
	return q.ToFilter(), true
}
