//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tutorlink/internal/pkg/password"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the plain password of every user created here.
const DefaultPassword = "password123"

// Subjects seeded by SeedReferenceData.
const (
	SubjectMath    = "Mathematics"
	SubjectPhysics = "Physics"
)

var (
	hashOnce    sync.Once
	defaultHash string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := password.Hash(DefaultPassword)
		if err == nil {
			defaultHash = h
		}
	})
	require.NotEmpty(t, defaultHash, "failed to hash default password")
	return defaultHash
}

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		ON CONFLICT (email) DO NOTHING`,
		userID, email, passwordHash(t), role, strings.ToUpper(role[:1])+role[1:], "Test")
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		require.NoError(t, db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID))
	}

	return userID
}

func SubjectID(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.QueryRow(context.Background(), "SELECT id FROM subjects WHERE name = $1", name).Scan(&id)
	require.NoError(t, err, "subject %q not seeded", name)
	return id
}

func AssignSubject(t *testing.T, db DBLike, tutorID, subjectID uuid.UUID) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		"INSERT INTO tutor_subjects (tutor_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		tutorID, subjectID)
	require.NoError(t, err)
}

// InsertOpenBooking writes an unclaimed slot directly, bypassing the API.
func InsertOpenBooking(t *testing.T, db DBLike, tutorID uuid.UUID, start time.Time, d time.Duration) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (id, tutor_id, scheduled_start, scheduled_end, status)
		VALUES ($1, $2, $3, $4, 'open')`,
		id, tutorID, start, start.Add(d))
	require.NoError(t, err)
	return id
}

// BookingStatus reads the stored status and student of a booking.
func BookingStatus(t *testing.T, db DBLike, id uuid.UUID) (string, *uuid.UUID) {
	t.Helper()
	var (
		status    string
		studentID *uuid.UUID
	)
	err := db.QueryRow(context.Background(),
		"SELECT status, student_id FROM bookings WHERE id = $1", id).Scan(&status, &studentID)
	require.NoError(t, err)
	return status, studentID
}

// InsertCompletedBooking writes a finished session between tutor and student.
func InsertCompletedBooking(t *testing.T, db DBLike, tutorID, studentID uuid.UUID, start time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	end := start.Add(time.Hour)
	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (id, tutor_id, student_id, scheduled_start, scheduled_end, status, actual_start, actual_end)
		VALUES ($1, $2, $3, $4, $5, 'completed', $4, $5)`,
		id, tutorID, studentID, start, end)
	require.NoError(t, err)
	return id
}

// InsertReview stores a review with an explicit creation time.
func InsertReview(t *testing.T, db DBLike, bookingID, studentID, tutorID uuid.UUID, rating int, comment string, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(context.Background(), `
		INSERT INTO reviews (id, booking_id, student_id, tutor_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		id, bookingID, studentID, tutorID, rating, comment, createdAt)
	require.NoError(t, err)
	return id
}

// SeedReferenceData inserts the subjects every test can rely on.
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO subjects (name) VALUES ($1), ($2)
		ON CONFLICT (name) DO NOTHING`, SubjectMath, SubjectPhysics)
	return err
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates all tables and reseeds reference data.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('atlas_schema_revisions')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
