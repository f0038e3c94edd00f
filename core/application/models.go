package application

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aredu/arcportal/core"
)

// Application statuses. The historical data-model vocabulary and the
// operational set used by staff are reconciled into this single closed enum;
// the graph is flat, any status is reachable from any other.
const (
	StatusPending     = "Pending"
	StatusInReview    = "In Review"
	StatusInterview   = "Interview"
	StatusOffer       = "Offer"
	StatusSubmitted   = "Submitted"
	StatusAccepted    = "Accepted"
	StatusRejected    = "Rejected"
	StatusMissingDocs = "Missing Docs"
)

var AllStatuses = []string{
	StatusPending, StatusInReview, StatusInterview, StatusOffer,
	StatusSubmitted, StatusAccepted, StatusRejected, StatusMissingDocs,
}

// Embedded document review statuses.
const (
	DocPending  = "Pending"
	DocVerified = "Verified"
	DocRejected = "Rejected"
)

// Document types accepted on an application.
const (
	DocTypePersonalStatement = "Personal Statement"
	DocTypeCV                = "CV"
	DocTypeGapLetter         = "Gap Supporting Letter"
	DocTypeReferenceLetter   = "Reference Letter"
	DocTypeAcademicCerts     = "Academic Certificates"
	DocTypePredictedGrades   = "Predicted Grades"
	DocTypePassport          = "Passport"
	DocTypeOther             = "Other"
)

// ApplicationDocument is embedded within an Application and carries its own
// review status, independent of the parent's lifecycle.
type ApplicationDocument struct {
	ID         string `json:"id"`
	Name       string `json:"name"` // original filename
	Type       string `json:"type"`
	CustomName string `json:"custom_name,omitempty"` // if type is Other
	URL        string `json:"url"`
	UploadedAt int64  `json:"uploaded_at"`
	Status     string `json:"status"`
}

// Addendum is an append-only note attached to an application after
// submission.
type Addendum struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	FileURL    string `json:"file_url,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	CreatedBy  string `json:"created_by"`
	AuthorName string `json:"author_name"`
}

type CancellationRequest struct {
	Reason      string `json:"reason"`
	RequestedAt int64  `json:"requested_at"`
	Approved    bool   `json:"approved"`
	ReviewedBy  string `json:"reviewed_by,omitempty"`
	ReviewedAt  int64  `json:"reviewed_at,omitempty"`
}

type Application struct {
	ID                   string                `json:"id"`
	StudentID            string                `json:"student_id"`
	ApplicationNumber    string                `json:"application_number"`
	FullName             string                `json:"full_name"`
	PassportNumber       string                `json:"passport_number,omitempty"`
	TargetCourses        []string              `json:"target_courses"`       // up to 3
	TargetUniversities   []string              `json:"target_universities"`  // up to 3
	Countries            []string              `json:"countries"`            // up to 3
	BudgetPerYear        string                `json:"budget_per_year"`
	HighestQualification string                `json:"highest_qualification"`
	Documents            []ApplicationDocument `json:"documents"`
	Status               string                `json:"status"`
	PercentageCompleted  int                   `json:"percentage_completed"`
	CreatedAt            int64                 `json:"created_at"`
	LastUpdated          int64                 `json:"last_updated"`
	Addendums            []Addendum            `json:"addendums,omitempty"`
	CancellationRequest  *CancellationRequest  `json:"cancellation_request,omitempty"`
}

// NewApplication contains the submission payload. Each preference array
// needs at least one entry and holds at most 3.
type NewApplication struct {
	FullName             string   `json:"full_name" validate:"required"`
	PassportNumber       string   `json:"passport_number"`
	TargetCourses        []string `json:"target_courses" validate:"required,min=1,max=3,dive,required"`
	TargetUniversities   []string `json:"target_universities" validate:"required,min=1,max=3,dive,required"`
	Countries            []string `json:"countries" validate:"required,min=1,max=3,dive,required"`
	BudgetPerYear        string   `json:"budget_per_year"`
	HighestQualification string   `json:"highest_qualification"`
}

func (na *NewApplication) Validate() error {
	na.FullName = core.CleanString(na.FullName)
	na.TargetCourses = cleanAll(na.TargetCourses)
	na.TargetUniversities = cleanAll(na.TargetUniversities)
	na.Countries = cleanAll(na.Countries)
	return core.Validate.Struct(na)
}

func cleanAll(vals []string) []string {
	out := vals[:0]
	for _, v := range vals {
		if v = core.CleanString(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// NewAddendum is the payload for appending a note; text or a file reference
// must be present.
type NewAddendum struct {
	Text     string `json:"text"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
}

var randFunc = rand.Intn // mockable

// GenerateNumber builds the human-readable application number,
// ARC-<year>-<month>-<4 random digits>. Uniqueness is not guaranteed; the
// collision probability is accepted as negligible for a human reference.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("ARC-%d-%02d-%d", now.Year(), int(now.Month()), 1000+randFunc(9000))
}

// CompletionPercentage derives the filled-field ratio over the 7 tracked
// fields, rounded to the nearest whole percent.
func CompletionPercentage(app Application) int {
	var filled int
	if app.FullName != "" {
		filled++
	}
	if app.BudgetPerYear != "" {
		filled++
	}
	if app.HighestQualification != "" {
		filled++
	}
	if len(app.TargetCourses) > 0 {
		filled++
	}
	if len(app.TargetUniversities) > 0 {
		filled++
	}
	if len(app.Countries) > 0 {
		filled++
	}
	if len(app.Documents) > 0 {
		filled++
	}
	return int(math.Round(float64(filled) / 7 * 100))
}
