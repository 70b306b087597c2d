package evaluation

import (
	"encoding/json"
	"time"
)

type CreateEvaluationDTO struct {
	CycleID     *int64          `json:"cycle_id"`
	TemplateID  *int64          `json:"template_id"`
	EvaluateeID int64           `json:"evaluatee_id"`
	Responses   json.RawMessage `json:"responses"`
	Score       *float64        `json:"score"`
	Comments    string          `json:"comments"`
	DueDate     *time.Time      `json:"due_date"`
	Objective   string          `json:"objective"`
}

// UpdateEvaluationDTO carries only the fields being changed. A nil Responses
// keeps the stored answers.
type UpdateEvaluationDTO struct {
	Responses json.RawMessage `json:"responses"`
	Score     *float64        `json:"score"`
	Comments  *string         `json:"comments"`
	Status    *string         `json:"status"`
}

type SaveProgressDTO struct {
	Responses json.RawMessage `json:"responses"`
	Status    string          `json:"status"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

func (d CreateEvaluationDTO) Validate() error {
	if d.EvaluateeID == 0 {
		return ValidationError{Msg: "evaluatee_id is required"}
	}
	if len(d.Responses) > 0 && !json.Valid(d.Responses) {
		return ValidationError{Msg: "responses must be valid JSON"}
	}
	return nil
}

func (d UpdateEvaluationDTO) Validate() error {
	if len(d.Responses) > 0 && !json.Valid(d.Responses) {
		return ValidationError{Msg: "responses must be valid JSON"}
	}
	if d.Status != nil && !ValidStatus(*d.Status) {
		return ValidationError{Msg: "unknown status"}
	}
	return nil
}

func (d SaveProgressDTO) Validate() error {
	if len(d.Responses) > 0 && !json.Valid(d.Responses) {
		return ValidationError{Msg: "responses must be valid JSON"}
	}
	return nil
}
