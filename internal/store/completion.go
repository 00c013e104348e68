package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/outplay/internal/database"
	"github.com/dukerupert/outplay/internal/model"
)

var (
	ErrChildNotFound    = errors.New("child not found")
	ErrActivityNotFound = errors.New("activity not found")
)

type CompletionStore struct {
	db *database.DB
}

func NewCompletionStore(db *database.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.Completion, error) {
	var c model.Completion
	var goalID sql.NullInt64

	err := scanner.Scan(
		&c.ID, &goalID, &c.ChildID, &c.DurationMinutes, &c.PointsEarned,
		&c.VerificationMethod, &c.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if goalID.Valid {
		c.GoalID = &goalID.Int64
	}
	return &c, nil
}

const completionCols = `completion_id, goal_id, child_id, duration_minutes, points_earned, verification_method, completed_at`

// RecordParams describes one finished activity. Values are expected to be
// validated by the caller.
type RecordParams struct {
	ChildID         int64
	ActivityID      int64
	DurationMinutes int
	PointsEarned    int
}

// Recorded is the outcome of a successful Record.
type Recorded struct {
	Completion model.Completion
	Child      model.Child
}

// Record stores a completion and adds its points to the child's total in a
// single transaction. The child is checked before the activity; either
// missing yields ErrChildNotFound or ErrActivityNotFound with nothing
// written. The activity id is checked but not stored on the completion row.
func (s *CompletionStore) Record(ctx context.Context, p RecordParams) (*Recorded, error) {
	var out Recorded

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, s.db.Rebind(`SELECT child_id FROM children WHERE child_id = ?`), p.ChildID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrChildNotFound
		}
		if err != nil {
			return fmt.Errorf("check child: %w", err)
		}

		err = tx.QueryRowContext(ctx, s.db.Rebind(`SELECT activity_id FROM activities WHERE activity_id = ?`), p.ActivityID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrActivityNotFound
		}
		if err != nil {
			return fmt.Errorf("check activity: %w", err)
		}

		var completionID int64
		err = tx.QueryRowContext(ctx, s.db.Rebind(
			`INSERT INTO completed_activities (goal_id, child_id, duration_minutes, points_earned, verification_method)
			VALUES (NULL, ?, ?, ?, ?) RETURNING completion_id`),
			p.ChildID, p.DurationMinutes, p.PointsEarned, model.VerificationHonor,
		).Scan(&completionID)
		if err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}

		row := tx.QueryRowContext(ctx, s.db.Rebind(`SELECT `+completionCols+` FROM completed_activities WHERE completion_id = ?`), completionID)
		c, err := scanCompletion(row)
		if err != nil {
			return fmt.Errorf("get completion: %w", err)
		}
		out.Completion = *c

		// Relative update so concurrent recorders never lose points.
		row = tx.QueryRowContext(ctx, s.db.Rebind(
			`UPDATE children SET total_points = total_points + ? WHERE child_id = ? RETURNING `+childCols),
			p.PointsEarned, p.ChildID,
		)
		child, err := scanChild(row)
		if err != nil {
			return fmt.Errorf("add points: %w", err)
		}
		out.Child = *child
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByChild returns a child's completions, newest first.
func (s *CompletionStore) ListByChild(ctx context.Context, childID int64, limit int) ([]model.Completion, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT `+completionCols+` FROM completed_activities WHERE child_id = ?
		ORDER BY completed_at DESC, completion_id DESC LIMIT ?`),
		childID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completions = append(completions, *c)
	}
	return completions, rows.Err()
}

const dayKey = "2006-01-02"

// Summary totals a child's minutes for today and the current week (starting
// Monday), counts all completions and measures the streak of consecutive
// days with at least one completion. Days are calendar days in now's
// location. A streak with nothing recorded today yet still counts if it
// reaches yesterday.
func (s *CompletionStore) Summary(ctx context.Context, childID int64, now time.Time) (*model.ChildSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT completed_at, duration_minutes FROM completed_activities WHERE child_id = ?`),
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("summarize completions: %w", err)
	}
	defer rows.Close()

	loc := now.Location()
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	tomorrow := today.AddDate(0, 0, 1)

	sum := model.ChildSummary{ChildID: childID}
	days := make(map[string]bool)
	for rows.Next() {
		var (
			at      time.Time
			minutes int
		)
		if err := rows.Scan(&at, &minutes); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		at = at.In(loc)

		sum.Completions++
		days[at.Format(dayKey)] = true
		if at.Before(tomorrow) {
			if !at.Before(today) {
				sum.MinutesToday += minutes
			}
			if !at.Before(weekStart) {
				sum.MinutesThisWeek += minutes
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}

	day := today
	if !days[day.Format(dayKey)] {
		day = day.AddDate(0, 0, -1)
	}
	for days[day.Format(dayKey)] {
		sum.StreakDays++
		day = day.AddDate(0, 0, -1)
	}

	return &sum, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
