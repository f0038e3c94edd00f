package statement

// Statement is one generated statement-of-purpose draft. Drafts are kept so
// staff can revisit what was produced for a student.
type Statement struct {
	ID          string `json:"id"`
	StudentName string `json:"student_name"`
	Course      string `json:"course"`
	University  string `json:"university"`
	Country     string `json:"country"`
	Content     string `json:"content"`
	GeneratedBy string `json:"generated_by"`
	Timestamp   int64  `json:"timestamp"`
}

// GenerateRequest carries the inputs to a draft. Only the student name and
// course are mandatory; university and country fall back to generic phrasing.
type GenerateRequest struct {
	StudentName string `json:"student_name" validate:"required"`
	Course      string `json:"course" validate:"required"`
	University  string `json:"university"`
	Country     string `json:"country"`
	Background  string `json:"background"`
}
