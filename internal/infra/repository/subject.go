package repository

import (
	"context"

	"tutorlink/internal/infra"
	"tutorlink/internal/infra/db"

	"github.com/google/uuid"
)

type SubjectRepository struct {
	db db.DBTX
}

func NewSubjectRepository(dbtx db.DBTX) *SubjectRepository {
	return &SubjectRepository{db: dbtx}
}

func (r *SubjectRepository) TutorTeaches(ctx context.Context, tutorID, subjectID uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tutor_subjects WHERE tutor_id = $1 AND subject_id = $2
		)`, tutorID, subjectID).Scan(&ok)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check tutor subject", err)
	}
	return ok, nil
}
