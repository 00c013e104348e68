package model

// Activity is a catalog row as stored. Nullable columns are pointers.
type Activity struct {
	ID                     int64
	Name                   string
	Description            *string
	Category               *string
	DefaultDurationMinutes *int
	DifficultyLevel        *int
}

// ActivityView is the display-ready form served to clients.
type ActivityView struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	DurationMinutes int     `json:"duration_minutes"`
	Points          int     `json:"points"`
}
