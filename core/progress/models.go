package progress

// The six stages, in canonical order. The order is advisory: SetStage does
// not enforce monotonic progression so staff can correct a record, but
// corrections should carry a note.
const (
	StageDocumentCollection   = "Document Collection"
	StageApplicationReview    = "Application Review"
	StageUniversitySubmission = "University Submission"
	StageOfferReceived        = "Offer Received"
	StageVisaProcessing       = "Visa Processing"
	StageCompleted            = "Completed"
)

var Stages = []string{
	StageDocumentCollection,
	StageApplicationReview,
	StageUniversitySubmission,
	StageOfferReceived,
	StageVisaProcessing,
	StageCompleted,
}

// StageIndex returns the position of a stage in the canonical order, or -1.
func StageIndex(stage string) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return -1
}

type HistoryEntry struct {
	Stage     string `json:"stage"`
	Timestamp int64  `json:"timestamp"`
	Completed bool   `json:"completed"`
	Note      string `json:"note,omitempty"` // reason for corrections
}

// Progress is one record per student: the current stage plus the append-only
// history of every stage it was ever set to.
type Progress struct {
	StudentID    string         `json:"student_id"`
	CurrentStage string         `json:"current_stage"`
	History      []HistoryEntry `json:"history"`
}
