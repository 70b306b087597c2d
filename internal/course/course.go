package course

import "time"

// Assignment statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Course is one training assignment as the assigned user sees it: the course
// joined with their own progress row.
type Course struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Progress  int       `json:"progress"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
