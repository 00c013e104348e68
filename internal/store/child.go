package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/outplay/internal/database"
	"github.com/dukerupert/outplay/internal/model"
)

// ChildStore reads children. Point totals are written only by
// CompletionStore.Record.
type ChildStore struct {
	db *database.DB
}

func NewChildStore(db *database.DB) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	if err := scanner.Scan(&c.ID, &c.FirstName, &c.TotalPoints); err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `child_id, first_name, total_points`

func (s *ChildStore) GetByID(ctx context.Context, id int64) (*model.Child, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+childCols+` FROM children WHERE child_id = ?`), id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

// List returns all children, highest total first.
func (s *ChildStore) List(ctx context.Context) ([]model.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+childCols+` FROM children ORDER BY total_points DESC, first_name ASC, child_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}
