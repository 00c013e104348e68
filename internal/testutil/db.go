package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/outplay/internal/database"
)

// OpenTestDB opens a migrated SQLite database in a per-test temp dir.
// A file is used instead of :memory: so every pooled connection sees the
// same data.
func OpenTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "outplay.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// InsertChild adds a child row and returns its id.
func InsertChild(t *testing.T, db *database.DB, firstName string, totalPoints int) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		db.Rebind(`INSERT INTO children (first_name, total_points) VALUES (?, ?) RETURNING child_id`),
		firstName, totalPoints,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert child: %v", err)
	}
	return id
}

// InsertActivity adds a catalog row with nullable fields passed as pointers.
func InsertActivity(t *testing.T, db *database.DB, name string, description, category *string, duration, difficulty *int) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		db.Rebind(`INSERT INTO activities (name, description, category, default_duration_minutes, difficulty_level)
		VALUES (?, ?, ?, ?, ?) RETURNING activity_id`),
		name, description, category, duration, difficulty,
	).Scan(&id)
	if err != nil {
		t.Fatalf("insert activity: %v", err)
	}
	return id
}

// InsertCompletion adds a completion at a fixed time without touching the
// child's total.
func InsertCompletion(t *testing.T, db *database.DB, childID int64, minutes int, at time.Time) {
	t.Helper()

	_, err := db.Exec(
		db.Rebind(`INSERT INTO completed_activities (child_id, duration_minutes, points_earned, verification_method, completed_at)
		VALUES (?, ?, 0, 'honor', ?)`),
		childID, minutes, at.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		t.Fatalf("insert completion: %v", err)
	}
}

// CountCompletions returns the number of completion rows for a child.
func CountCompletions(t *testing.T, db *database.DB, childID int64) int {
	t.Helper()

	var n int
	if err := db.QueryRow(db.Rebind(`SELECT COUNT(*) FROM completed_activities WHERE child_id = ?`), childID).Scan(&n); err != nil {
		t.Fatalf("count completions: %v", err)
	}
	return n
}

// TotalPoints reads a child's stored total directly.
func TotalPoints(t *testing.T, db *database.DB, childID int64) int {
	t.Helper()

	var n int
	if err := db.QueryRow(db.Rebind(`SELECT total_points FROM children WHERE child_id = ?`), childID).Scan(&n); err != nil {
		t.Fatalf("read total points: %v", err)
	}
	return n
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
