package workflow

import (
	"encoding/json"
	"errors"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/store"
)

// Stage is the furthest step reached in the current resource chain.
type Stage int

const (
	Unauthenticated Stage = iota
	Authenticated
	SurveyChosen
	BuildingCreated
	WindAdded
	AnalysisRan
	ReportGenerated
)

func (s Stage) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case SurveyChosen:
		return "survey-chosen"
	case BuildingCreated:
		return "building-created"
	case WindAdded:
		return "wind-added"
	case AnalysisRan:
		return "analysis-ran"
	case ReportGenerated:
		return "report-generated"
	default:
		return "unknown"
	}
}

// Section is a screen of the client. Everything except SectionAuth needs a session.
type Section string

const (
	SectionAuth     Section = "auth"
	SectionSurvey   Section = "survey"
	SectionBuilding Section = "building"
	SectionWind     Section = "wind"
	SectionAnalysis Section = "analysis"
	SectionReports  Section = "reports"
)

// Sections lists every section in navigation order.
var Sections = []Section{SectionAuth, SectionSurvey, SectionBuilding, SectionWind, SectionAnalysis, SectionReports}

// Report is the most recently fetched analysis.
type Report struct {
	Kind    report.Kind
	Data    json.RawMessage
	Display report.Display
}

// State is the controller's view of the client. Snapshot copies it.
type State struct {
	Stage      Stage
	Section    Section
	Session    store.Session
	Pointer    store.WorkflowPointer
	Surveys    []api.Survey
	Building   *api.BuildingInput
	LastReport *Report
}

// Authenticated reports whether a usable session is held.
func (s State) Authenticated() bool {
	return s.Session.Valid()
}

func (s State) clone() State {
	out := s
	if s.Session.User != nil {
		u := *s.Session.User
		out.Session.User = &u
	}
	if s.Surveys != nil {
		out.Surveys = append([]api.Survey(nil), s.Surveys...)
	}
	if s.Building != nil {
		b := *s.Building
		out.Building = &b
	}
	if s.LastReport != nil {
		r := *s.LastReport
		r.Data = append(json.RawMessage(nil), s.LastReport.Data...)
		out.LastReport = &r
	}
	return out
}

// derive computes the stage implied by the persisted session and pointers.
func derive(sess store.Session, p store.WorkflowPointer) Stage {
	switch {
	case !sess.Valid():
		return Unauthenticated
	case p.BuildingID != "":
		return BuildingCreated
	case p.SurveyID != "":
		return SurveyChosen
	default:
		return Authenticated
	}
}

// Guard failures.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNoSurvey         = errors.New("no survey selected")
	ErrNoBuilding       = errors.New("no building selected")
	ErrBusy             = errors.New("request already in progress")
	// ErrSessionReset marks an outcome that arrived after logout or restore.
	ErrSessionReset = errors.New("session reset while request was in flight")
)

// User-facing guard messages.
const (
	MsgLoginFirst    = "Please login first"
	MsgSelectSurvey  = "Please select a land survey first"
	MsgCreateBuild   = "Please create a building input first"
	MsgNoBuilding    = "No building selected"
	MsgBusy          = "Request already in progress"
	MsgSurveyMissing = "Selected land survey no longer exists. Please select a land survey first"
)

// PreconditionError is a failed stage guard. It wraps one of the sentinel
// errors so callers can match with errors.Is.
type PreconditionError struct {
	Reason  error
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

func (e *PreconditionError) Unwrap() error { return e.Reason }

func precondition(reason error, msg string) error {
	return &PreconditionError{Reason: reason, Message: msg}
}

// Result is what every action returns. Err is set for guard, validation and
// busy rejections, none of which touch the network. Outcome is set whenever
// a request was made.
type Result struct {
	Outcome      api.Outcome
	Err          error
	Notification *notify.Notification
	// PrefillEmail is set after a successful registration.
	PrefillEmail string
	Section      Section
}

// OK reports whether the action completed successfully.
func (r Result) OK() bool {
	return r.Err == nil && r.Outcome.OK
}
