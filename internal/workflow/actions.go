package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/forms"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/store"
)

func advance(cur, to Stage) Stage {
	if to > cur {
		return to
	}
	return cur
}

// LoadSurveys refreshes the cached survey list.
func (c *Controller) LoadSurveys(ctx context.Context) Result {
	return c.run(ctx, c.surveyList(ActionLoadSurveys, false))
}

// RefreshSurveyOptions refreshes the survey list for the building form's
// picker. It never notifies, not even on failure.
func (c *Controller) RefreshSurveyOptions(ctx context.Context) Result {
	return c.run(ctx, c.surveyList(ActionSurveyOptions, true))
}

func (c *Controller) surveyList(action Action, quiet bool) step {
	return step{
		action:   action,
		quiet:    quiet,
		guard:    requireAuth,
		fallback: "Failed to load surveys",
		call: func(ctx context.Context, _ State) (api.Outcome, error) {
			return c.gw.ListSurveys(ctx), nil
		},
		apply: func(_ context.Context, o api.Outcome) (note, error) {
			var surveys []api.Survey
			if o.HasData() {
				var err error
				if surveys, err = api.Decode[[]api.Survey](o); err != nil {
					return note{}, err
				}
			}
			c.state.Surveys = surveys
			if len(surveys) == 0 {
				return note{}, nil
			}
			return note{notify.Success, "Surveys loaded successfully"}, nil
		},
	}
}

// CreateSurvey creates a land survey and selects it.
func (c *Controller) CreateSurvey(ctx context.Context, in api.SurveyInput) Result {
	return c.run(ctx, step{
		action:   ActionCreateSurvey,
		guard:    requireAuth,
		fallback: "Failed to create survey",
		call: func(ctx context.Context, _ State) (api.Outcome, error) {
			if err := forms.Validate(in, forms.MsgRequired); err != nil {
				return api.Outcome{}, err
			}
			return c.gw.CreateSurvey(ctx, in), nil
		},
		apply: func(ctx context.Context, o api.Outcome) (note, error) {
			sv, err := api.Decode[api.Survey](o)
			if err != nil {
				return note{}, err
			}
			if sv.ID == "" {
				return note{}, fmt.Errorf("%w: survey without id", api.ErrMalformed)
			}
			if err := c.store.SetSurveyID(ctx, sv.ID); err != nil {
				return note{}, fmt.Errorf("save survey id: %w", err)
			}
			c.state.Pointer.SurveyID = sv.ID
			c.state.Surveys = append(c.state.Surveys, sv)
			c.state.Stage = SurveyChosen
			return note{notify.Success, "Land survey created successfully"}, nil
		},
	})
}

// SelectSurvey makes id the active survey. No request is made.
func (c *Controller) SelectSurvey(ctx context.Context, id string) Result {
	return c.run(ctx, step{
		action: ActionSelectSurvey,
		guard: func(st State) error {
			if err := requireAuth(st); err != nil {
				return err
			}
			if id == "" {
				return precondition(ErrNoSurvey, MsgSelectSurvey)
			}
			return nil
		},
		call: func(context.Context, State) (api.Outcome, error) {
			return api.Success(nil, ""), nil
		},
		apply: func(ctx context.Context, _ api.Outcome) (note, error) {
			if err := c.store.SetSurveyID(ctx, id); err != nil {
				return note{}, fmt.Errorf("save survey id: %w", err)
			}
			c.state.Pointer.SurveyID = id
			c.state.Stage = SurveyChosen
			return note{notify.Info, "Land survey selected"}, nil
		},
	})
}

// surveyFor resolves the survey a building is created against: the
// explicit choice wins over the persisted pointer.
func surveyFor(explicit string, st State) (string, error) {
	if err := requireAuth(st); err != nil {
		return "", err
	}
	if explicit != "" {
		return explicit, nil
	}
	if st.Pointer.SurveyID != "" {
		return st.Pointer.SurveyID, nil
	}
	return "", precondition(ErrNoSurvey, MsgSelectSurvey)
}

// CreateBuilding creates a building input. req.LandSurveyID, when set, is
// an explicit survey choice; otherwise the selected survey is used.
func (c *Controller) CreateBuilding(ctx context.Context, req api.BuildingRequest) Result {
	explicit := req.LandSurveyID
	return c.run(ctx, step{
		action: ActionCreateBuilding,
		guard: func(st State) error {
			_, err := surveyFor(explicit, st)
			return err
		},
		fallback: "Failed to create building input",
		call: func(ctx context.Context, st State) (api.Outcome, error) {
			req.LandSurveyID, _ = surveyFor(explicit, st)
			if err := forms.Validate(req, forms.MsgRequired); err != nil {
				return api.Outcome{}, err
			}
			if c.verify && explicit == "" {
				if o, err := c.verifySurvey(ctx, st, req.LandSurveyID); err != nil || !o.OK {
					return o, err
				}
			}
			return c.gw.CreateBuilding(ctx, req), nil
		},
		apply: func(ctx context.Context, o api.Outcome) (note, error) {
			b, err := api.Decode[api.BuildingInput](o)
			if err != nil {
				return note{}, err
			}
			if b.ID == "" {
				return note{}, fmt.Errorf("%w: building without id", api.ErrMalformed)
			}
			ptr := store.WorkflowPointer{SurveyID: req.LandSurveyID, BuildingID: b.ID}
			if err := c.store.SetPointer(ctx, ptr); err != nil {
				return note{}, fmt.Errorf("save building id: %w", err)
			}
			if b.LandSurveyID == "" {
				b.BuildingRequest = req
			}
			c.state.Pointer = ptr
			c.state.Building = &b
			c.state.Stage = BuildingCreated
			return note{notify.Success, "Building input created successfully"}, nil
		},
	})
}

// verifySurvey confirms that id is a known survey, listing surveys when the
// cache does not have it.
func (c *Controller) verifySurvey(ctx context.Context, st State, id string) (api.Outcome, error) {
	for _, sv := range st.Surveys {
		if sv.ID == id {
			return api.Success(nil, ""), nil
		}
	}
	o := c.gw.ListSurveys(ctx)
	if !o.OK {
		return o, nil
	}
	surveys, err := api.Decode[[]api.Survey](o)
	if err != nil {
		return api.TransportFailure(err), nil
	}
	for _, sv := range surveys {
		if sv.ID == id {
			return o, nil
		}
	}
	c.log.Warn().Str("survey_id", id).Msg("persisted survey not found")
	return api.Outcome{}, precondition(ErrNoSurvey, MsgSurveyMissing)
}

// AddWind records wind data for the active building.
func (c *Controller) AddWind(ctx context.Context, req api.WindRequest) Result {
	return c.run(ctx, step{
		action:   ActionAddWind,
		guard:    requireBuilding(MsgCreateBuild),
		fallback: "Failed to add wind data",
		call: func(ctx context.Context, st State) (api.Outcome, error) {
			req.BuildingInputID = st.Pointer.BuildingID
			if err := forms.Validate(req, forms.MsgRequired); err != nil {
				return api.Outcome{}, err
			}
			return c.gw.AddWind(ctx, req), nil
		},
		apply: func(context.Context, api.Outcome) (note, error) {
			c.state.Stage = advance(c.state.Stage, WindAdded)
			return note{notify.Success, "Wind data added successfully"}, nil
		},
	})
}

type analysis struct {
	action   Action
	kind     report.Kind
	fetch    func(ctx context.Context, buildingID string) api.Outcome
	stage    Stage
	progress string
	success  string
}

func (c *Controller) analyze(ctx context.Context, a analysis) Result {
	return c.run(ctx, step{
		action:   a.action,
		guard:    requireBuilding(MsgCreateBuild),
		fallback: "Analysis failed",
		call: func(ctx context.Context, st State) (api.Outcome, error) {
			c.push(step{action: a.action}, notify.Info, a.progress)
			return a.fetch(ctx, st.Pointer.BuildingID), nil
		},
		apply: func(_ context.Context, o api.Outcome) (note, error) {
			if err := c.keepReport(a.kind, o.Data); err != nil {
				return note{}, err
			}
			c.state.Stage = advance(c.state.Stage, a.stage)
			return note{notify.Success, a.success}, nil
		},
	})
}

// RunDisaster triggers the disaster analysis for the active building.
func (c *Controller) RunDisaster(ctx context.Context) Result {
	return c.analyze(ctx, analysis{ActionRunDisaster, report.KindDisaster, c.gw.RunDisaster, AnalysisRan, "Running disaster analysis...", "Disaster analysis completed"})
}

// RunVastu triggers the Vastu analysis for the active building.
func (c *Controller) RunVastu(ctx context.Context) Result {
	return c.analyze(ctx, analysis{ActionRunVastu, report.KindVastu, c.gw.RunVastu, AnalysisRan, "Running Vastu analysis...", "Vastu analysis completed"})
}

// GenerateReport triggers the composite report for the active building.
func (c *Controller) GenerateReport(ctx context.Context) Result {
	return c.analyze(ctx, analysis{ActionGenerateReport, report.KindFinal, c.gw.GenerateReport, ReportGenerated, "Generating final report...", "Final report generated successfully"})
}

const (
	msgRunAnalysis    = "Report not found. Run analysis first."
	msgGenerateReport = "Report not found. Generate report first."
)

func (c *Controller) view(ctx context.Context, action Action, kind report.Kind, fetch func(context.Context, string) api.Outcome, missing string) Result {
	return c.run(ctx, step{
		action: action,
		guard:  requireBuilding(MsgNoBuilding),
		failure: func(api.Outcome) note {
			return note{notify.Warning, missing}
		},
		call: func(ctx context.Context, st State) (api.Outcome, error) {
			return fetch(ctx, st.Pointer.BuildingID), nil
		},
		apply: func(_ context.Context, o api.Outcome) (note, error) {
			return note{}, c.keepReport(kind, o.Data)
		},
	})
}

// ViewDisasterReport fetches the stored disaster report.
func (c *Controller) ViewDisasterReport(ctx context.Context) Result {
	return c.view(ctx, ActionViewDisaster, report.KindDisaster, c.gw.DisasterReport, msgRunAnalysis)
}

// ViewVastuReport fetches the stored Vastu report.
func (c *Controller) ViewVastuReport(ctx context.Context) Result {
	return c.view(ctx, ActionViewVastu, report.KindVastu, c.gw.VastuReport, msgRunAnalysis)
}

// ViewFinalReport fetches the stored composite report.
func (c *Controller) ViewFinalReport(ctx context.Context) Result {
	return c.view(ctx, ActionViewFinal, report.KindFinal, c.gw.FinalReport, msgGenerateReport)
}

// keepReport renders data into the last-report slot. Called under the lock.
func (c *Controller) keepReport(kind report.Kind, data json.RawMessage) error {
	if o := api.Success(data, ""); !o.HasData() {
		return fmt.Errorf("%w: empty %s report", api.ErrMalformed, kind)
	}
	d, err := report.Render(kind, data, c.render)
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrMalformed, err)
	}
	c.state.LastReport = &Report{Kind: kind, Data: append(json.RawMessage(nil), data...), Display: d}
	return nil
}

// precheck runs guard against the current state, notifying on failure.
func (c *Controller) precheck(action Action, guard func(State) error) (Result, bool) {
	if err := guard(c.Snapshot()); err != nil {
		return c.reject(step{action: action}, err), false
	}
	return Result{}, true
}

// SubmitSurvey parses a survey form and creates the survey. Guards run
// before the form is parsed.
func (c *Controller) SubmitSurvey(ctx context.Context, v forms.Values) Result {
	if res, ok := c.precheck(ActionCreateSurvey, requireAuth); !ok {
		return res
	}
	in, err := forms.Survey(v)
	if err != nil {
		return c.reject(step{action: ActionCreateSurvey}, err)
	}
	return c.CreateSurvey(ctx, in)
}

// SubmitBuilding parses a building form and creates the building.
func (c *Controller) SubmitBuilding(ctx context.Context, v forms.Values) Result {
	guard := func(st State) error {
		_, err := surveyFor(v.Get(forms.FieldLandSurveyID), st)
		return err
	}
	if res, ok := c.precheck(ActionCreateBuilding, guard); !ok {
		return res
	}
	req, err := forms.Building(v)
	if err != nil {
		return c.reject(step{action: ActionCreateBuilding}, err)
	}
	return c.CreateBuilding(ctx, req)
}

// SubmitWind parses a wind form and records it for the active building.
func (c *Controller) SubmitWind(ctx context.Context, v forms.Values) Result {
	if res, ok := c.precheck(ActionAddWind, requireBuilding(MsgCreateBuild)); !ok {
		return res
	}
	req, err := forms.Wind(c.Snapshot().Pointer.BuildingID, v)
	if err != nil {
		return c.reject(step{action: ActionAddWind}, err)
	}
	return c.AddWind(ctx, req)
}
