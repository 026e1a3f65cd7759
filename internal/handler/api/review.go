package api

import (
	"net/http"
	"strconv"

	reqdto "tutorlink/internal/handler/dto/request"
	resdto "tutorlink/internal/handler/dto/response"
	"tutorlink/internal/handler/httperr"
	"tutorlink/internal/usecase/commands"
	"tutorlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	cmds commands.ReviewCommands
	q    queries.ReviewQueries
}

func NewReviewHandler(cmds commands.ReviewCommands, q queries.ReviewQueries) *ReviewHandler {
	return &ReviewHandler{cmds: cmds, q: q}
}

// @Summary Create review
// @Description Review the tutor of a completed booking
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReviewRequest true "Create review request"
// @Success 201 {object} api.Envelope{data=resdto.ReviewResponse}
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var req reqdto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErrorOrAbort(c, err)
		return
	}
	id, err := h.cmds.CreateReview(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	out, err := resdto.FromReviewView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review created", out)
}

// @Summary List tutor reviews
// @Description Reviews of a tutor, newest first, with keyset pagination and rating stats
// @Tags reviews
// @Produce json
// @Param id path string true "Tutor ID"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} api.Envelope{data=resdto.TutorReviewsResponse}
// @Failure 400 {object} httperr.Response
// @Router /api/tutors/{id}/reviews [get]
func (h *ReviewHandler) ListByTutor(c *gin.Context) {
	tutorID, ok := idParamOrAbort(c, "id")
	if !ok {
		return
	}
	limit := queries.DefaultListLimit
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	var cursor *queries.Cursor
	if after := c.Query("after"); after != "" {
		cursor = &queries.Cursor{After: after}
	}

	ctx := c.Request.Context()
	items, next, err := h.q.ListByTutor(ctx, tutorID, cursor, limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	stats, err := h.q.GetTutorRatingStats(ctx, tutorID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	out, err := resdto.FromTutorReviews(items, next, stats)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	respond(c, http.StatusOK, "Reviews", out)
}
