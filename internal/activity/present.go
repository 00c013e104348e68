package activity

import (
	"strings"

	"github.com/dukerupert/outplay/internal/model"
)

const (
	DefaultDurationMinutes = 20
	DefaultPoints          = 20
	PointsPerDifficulty    = 10
)

// AllCategories is the catalog filter value that disables filtering.
const AllCategories = "All"

// Present derives the display values for a catalog row. A missing duration
// falls back to DefaultDurationMinutes; a missing difficulty falls back to
// DefaultPoints, otherwise points are difficulty × PointsPerDifficulty.
func Present(a model.Activity) model.ActivityView {
	duration := DefaultDurationMinutes
	if a.DefaultDurationMinutes != nil {
		duration = *a.DefaultDurationMinutes
	}

	points := DefaultPoints
	if a.DifficultyLevel != nil {
		points = *a.DifficultyLevel * PointsPerDifficulty
	}

	return model.ActivityView{
		ID:              a.ID,
		Name:            a.Name,
		Description:     a.Description,
		Category:        a.Category,
		DurationMinutes: duration,
		Points:          points,
	}
}

// PresentAll applies Present to each row, preserving order.
func PresentAll(activities []model.Activity) []model.ActivityView {
	views := make([]model.ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, Present(a))
	}
	return views
}

// NormalizeCategory trims a category filter and maps "All" (any case) to "".
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		return ""
	}
	return category
}
