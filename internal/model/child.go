package model

type Child struct {
	ID          int64  `json:"child_id"`
	FirstName   string `json:"first_name"`
	TotalPoints int    `json:"total_points"`
}
