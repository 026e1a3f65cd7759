package review

import "tutorlink/internal/pkg/errs"

var (
	ErrInvalidRating       = errs.Kinded(errs.ErrValidation, "rating must be between 1 and 5")
	ErrEmptyComment        = errs.Kinded(errs.ErrValidation, "comment cannot be empty")
	ErrCommentTooLong      = errs.Kinded(errs.ErrValidation, "comment exceeds maximum length")
	ErrBookingNotEligible  = errs.Kinded(errs.ErrConflict, "only completed sessions can be reviewed")
	ErrNotSessionStudent   = errs.Kinded(errs.ErrForbidden, "only the student of the session can review it")
	ErrReviewAlreadyExists = errs.Kinded(errs.ErrConflict, "review already exists for this booking")
)
