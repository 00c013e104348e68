package model

import "time"

// VerificationHonor marks a self-reported, unverified completion.
const VerificationHonor = "honor"

type Completion struct {
	ID                 int64     `json:"completion_id"`
	GoalID             *int64    `json:"goal_id"`
	ChildID            int64     `json:"child_id"`
	DurationMinutes    int       `json:"duration_minutes"`
	PointsEarned       int       `json:"points_earned"`
	VerificationMethod string    `json:"verification_method"`
	CompletedAt        time.Time `json:"completed_at"`
}
