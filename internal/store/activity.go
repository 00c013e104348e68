package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/outplay/internal/database"
	"github.com/dukerupert/outplay/internal/model"
)

type ActivityStore struct {
	db *database.DB
}

func NewActivityStore(db *database.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func scanActivity(scanner interface{ Scan(...any) error }) (*model.Activity, error) {
	var a model.Activity
	var description, category sql.NullString
	var duration, difficulty sql.NullInt64

	err := scanner.Scan(&a.ID, &a.Name, &description, &category, &duration, &difficulty)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		a.Description = &description.String
	}
	if category.Valid {
		a.Category = &category.String
	}
	if duration.Valid {
		d := int(duration.Int64)
		a.DefaultDurationMinutes = &d
	}
	if difficulty.Valid {
		l := int(difficulty.Int64)
		a.DifficultyLevel = &l
	}
	return &a, nil
}

const activityCols = `activity_id, name, description, category, default_duration_minutes, difficulty_level`

// List returns the catalog ordered by id. A non-empty category restricts the
// result to that category, compared case-insensitively.
func (s *ActivityStore) List(ctx context.Context, category string) ([]model.Activity, error) {
	query := `SELECT ` + activityCols + ` FROM activities`
	var args []any
	if category != "" {
		query += ` WHERE LOWER(category) = LOWER(?)`
		args = append(args, category)
	}
	query += ` ORDER BY activity_id ASC`

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (s *ActivityStore) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+activityCols+` FROM activities WHERE activity_id = ?`), id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}
