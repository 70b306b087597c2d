package evaluation

import (
	"encoding/json"
	"time"
)

// Workflow statuses. Transitions only move forward: pending, in_progress,
// completed. Completion is terminal.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// ValidStatus reports whether the status is one of the workflow states.
func ValidStatus(status string) bool {
	_, ok := statusRank[status]
	return ok
}

// CanTransition allows staying in place or moving forward, never back.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

// Evaluation is the workflow view: the evaluations row joined with the
// display names of both parties and the optional cycle/template labels.
type Evaluation struct {
	ID            int64           `json:"id"`
	CycleID       *int64          `json:"cycle_id,omitempty"`
	TemplateID    *int64          `json:"template_id,omitempty"`
	EvaluatorID   int64           `json:"evaluator_id"`
	EvaluateeID   int64           `json:"evaluatee_id"`
	EvaluatorName string          `json:"evaluator_name,omitempty"`
	EvaluateeName string          `json:"evaluatee_name,omitempty"`
	CycleName     *string         `json:"cycle_name,omitempty"`
	TemplateName  *string         `json:"template_name,omitempty"`
	Responses     json.RawMessage `json:"responses"`
	Score         *float64        `json:"score,omitempty"`
	Comments      string          `json:"comments"`
	Status        string          `json:"status"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Objective     string          `json:"objective,omitempty"`
	SubmittedAt   *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (e *Evaluation) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// Result is the evaluatee-facing view of a completed evaluation.
type Result struct {
	ID          int64           `json:"id"`
	Cycle       *string         `json:"cycle,omitempty"`
	Template    *string         `json:"template,omitempty"`
	Score       *float64        `json:"score,omitempty"`
	Comments    string          `json:"comments"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	Responses   json.RawMessage `json:"responses"`
}

// Evidence is a file attached to an evaluation. FileData never leaves the
// server except through the download endpoint.
type Evidence struct {
	ID           int64     `json:"id"`
	EvaluationID int64     `json:"evaluation_id"`
	FileName     string    `json:"file_name"`
	StorageName  string    `json:"storage_name"`
	FileData     []byte    `json:"-"`
	UploadedBy   int64     `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
