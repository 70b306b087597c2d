package course

// UpdateProgressDTO overwrites the caller's progress row, both fields at
// once.
type UpdateProgressDTO struct {
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (v ValidationError) IsValidation() bool { return true }

func (d UpdateProgressDTO) Validate() error {
	if d.Progress < 0 || d.Progress > 100 {
		return ValidationError{Msg: "progress must be between 0 and 100"}
	}
	if !ValidStatus(d.Status) {
		return ValidationError{Msg: "status must be pending, in_progress or completed"}
	}
	return nil
}
