// Package tui is the terminal front end. It owns no workflow state: every
// user action is forwarded to the workflow controller as a command and the
// view is redrawn from the controller's snapshot and the notification queue.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/siteassess/internal/forms"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/workflow"
)

type authTab int

const (
	tabLogin authTab = iota
	tabRegister
)

// Options tune the program.
type Options struct {
	// TickInterval drives toast expiry. Zero disables the ticker.
	TickInterval time.Duration
	Now          func() time.Time
}

// App is the bubbletea model.
type App struct {
	ctx   context.Context
	ctrl  *workflow.Controller
	notes *notify.Channel
	keys  keyMap
	opts  Options

	state   workflow.State
	tab     authTab
	login   *form
	signup  *form
	survey  *form
	build   *form
	wind    *form
	cursor  int // survey list cursor
	pick    int // building survey picker, -1 uses the selected survey
	scroll  int // report viewer offset
	pending map[workflow.Action]bool
	width   int
	height  int
}

func New(ctx context.Context, ctrl *workflow.Controller, notes *notify.Channel, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &App{
		ctx:     ctx,
		ctrl:    ctrl,
		notes:   notes,
		keys:    newKeyMap(),
		opts:    opts,
		state:   ctrl.Snapshot(),
		login:   loginForm(),
		signup:  registerForm(),
		survey:  surveyForm(),
		build:   buildingForm(),
		wind:    windForm(),
		pick:    -1,
		pending: map[workflow.Action]bool{},
	}
}

// messages
type (
	resultMsg struct {
		action workflow.Action
		res    workflow.Result
	}
	tickMsg time.Time
)

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.do(workflow.ActionRestore, a.ctrl.Restore), a.tick())
}

func (a *App) tick() tea.Cmd {
	if a.opts.TickInterval <= 0 {
		return nil
	}
	return tea.Tick(a.opts.TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// do runs an action off the UI loop.
func (a *App) do(action workflow.Action, fn func(context.Context) workflow.Result) tea.Cmd {
	a.pending[action] = true
	ctx := a.ctx
	return func() tea.Msg {
		return resultMsg{action: action, res: fn(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case tickMsg:
		a.notes.Prune(time.Time(m))
		return a, a.tick()
	case resultMsg:
		return a, a.handleResult(m)
	case tea.KeyMsg:
		return a, a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleResult(m resultMsg) tea.Cmd {
	delete(a.pending, m.action)
	a.state = a.ctrl.Snapshot()
	res := m.res

	switch m.action {
	case workflow.ActionRestore:
		if a.state.Authenticated() {
			return a.do(workflow.ActionLoadSurveys, a.ctrl.LoadSurveys)
		}
	case workflow.ActionRegister:
		if res.OK() {
			a.signup.reset()
			a.tab = tabLogin
			a.login.reset()
			a.login.set(forms.FieldEmail, res.PrefillEmail)
			a.login.focusOn(forms.FieldPassword)
		}
	case workflow.ActionLogin:
		if res.OK() {
			a.login.reset()
			return a.do(workflow.ActionLoadSurveys, a.ctrl.LoadSurveys)
		}
	case workflow.ActionCreateSurvey:
		if res.OK() {
			a.survey.reset()
			a.cursor = len(a.state.Surveys) - 1
		}
	case workflow.ActionCreateBuilding:
		if res.OK() {
			a.build.reset()
			a.pick = -1
		}
	case workflow.ActionAddWind:
		if res.OK() {
			a.wind.reset()
		}
	case workflow.ActionRunDisaster, workflow.ActionRunVastu, workflow.ActionGenerateReport,
		workflow.ActionViewDisaster, workflow.ActionViewVastu, workflow.ActionViewFinal:
		if res.OK() {
			a.scroll = 0
			return a.goTo(workflow.SectionReports)
		}
	case workflow.ActionLogout:
		if res.Err == nil {
			for _, f := range []*form{a.login, a.signup, a.survey, a.build, a.wind} {
				f.reset()
			}
			a.tab, a.cursor, a.pick, a.scroll = tabLogin, 0, -1, 0
		}
	}
	return nil
}

// goTo switches section through the controller's navigation guard and
// starts whatever the new section needs loaded.
func (a *App) goTo(sec workflow.Section) tea.Cmd {
	res := a.ctrl.Section(sec)
	a.state = a.ctrl.Snapshot()
	if res.Err != nil {
		return nil
	}
	switch sec {
	case workflow.SectionSurvey:
		return a.do(workflow.ActionLoadSurveys, a.ctrl.LoadSurveys)
	case workflow.SectionBuilding:
		return a.do(workflow.ActionSurveyOptions, a.ctrl.RefreshSurveyOptions)
	}
	return nil
}

func (a *App) activeForm() *form {
	switch a.state.Section {
	case workflow.SectionAuth:
		if a.state.Authenticated() {
			return nil
		}
		if a.tab == tabRegister {
			return a.signup
		}
		return a.login
	case workflow.SectionSurvey:
		return a.survey
	case workflow.SectionBuilding:
		return a.build
	case workflow.SectionWind:
		return a.wind
	}
	return nil
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	k := a.keys
	switch {
	case key.Matches(m, k.Quit):
		return tea.Quit
	case key.Matches(m, k.Logout):
		return a.do(workflow.ActionLogout, a.ctrl.Logout)
	}
	for i, b := range k.Sections {
		if key.Matches(m, b) {
			return a.goTo(workflow.Sections[i])
		}
	}

	if f := a.activeForm(); f != nil {
		switch {
		case key.Matches(m, k.NextField):
			f.move(1)
			return nil
		case key.Matches(m, k.PrevField):
			f.move(-1)
			return nil
		case key.Matches(m, k.Submit):
			return a.submit(f)
		case key.Matches(m, k.AuthTab) && a.state.Section == workflow.SectionAuth:
			a.tab = 1 - a.tab
			return nil
		case key.Matches(m, k.UpDown):
			a.moveCursor(m.String())
			return nil
		case key.Matches(m, k.Select) && a.state.Section == workflow.SectionSurvey:
			return a.selectSurvey()
		}
		return f.update(m)
	}

	switch a.state.Section {
	case workflow.SectionAnalysis:
		switch {
		case key.Matches(m, k.Disaster):
			return a.do(workflow.ActionRunDisaster, a.ctrl.RunDisaster)
		case key.Matches(m, k.Vastu):
			return a.do(workflow.ActionRunVastu, a.ctrl.RunVastu)
		case key.Matches(m, k.Generate):
			return a.do(workflow.ActionGenerateReport, a.ctrl.GenerateReport)
		}
	case workflow.SectionReports:
		switch {
		case key.Matches(m, k.ViewReport[0]):
			return a.do(workflow.ActionViewDisaster, a.ctrl.ViewDisasterReport)
		case key.Matches(m, k.ViewReport[1]):
			return a.do(workflow.ActionViewVastu, a.ctrl.ViewVastuReport)
		case key.Matches(m, k.ViewReport[2]):
			return a.do(workflow.ActionViewFinal, a.ctrl.ViewFinalReport)
		case key.Matches(m, k.UpDown):
			if m.String() == "up" && a.scroll > 0 {
				a.scroll--
			} else if m.String() == "down" {
				a.scroll++
			}
		}
	}
	return nil
}

func (a *App) moveCursor(dir string) {
	n := len(a.state.Surveys)
	if n == 0 {
		return
	}
	switch a.state.Section {
	case workflow.SectionSurvey:
		if dir == "up" && a.cursor > 0 {
			a.cursor--
		} else if dir == "down" && a.cursor < n-1 {
			a.cursor++
		}
	case workflow.SectionBuilding:
		if dir == "up" && a.pick > -1 {
			a.pick--
		} else if dir == "down" && a.pick < n-1 {
			a.pick++
		}
	}
}

func (a *App) selectSurvey() tea.Cmd {
	if a.cursor < 0 || a.cursor >= len(a.state.Surveys) {
		return nil
	}
	id := a.state.Surveys[a.cursor].ID
	return a.do(workflow.ActionSelectSurvey, func(ctx context.Context) workflow.Result {
		return a.ctrl.SelectSurvey(ctx, id)
	})
}

func (a *App) submit(f *form) tea.Cmd {
	v := f.values()
	switch f {
	case a.login:
		return a.do(workflow.ActionLogin, func(ctx context.Context) workflow.Result {
			return a.ctrl.SubmitLogin(ctx, v)
		})
	case a.signup:
		return a.do(workflow.ActionRegister, func(ctx context.Context) workflow.Result {
			return a.ctrl.SubmitRegister(ctx, v)
		})
	case a.survey:
		return a.do(workflow.ActionCreateSurvey, func(ctx context.Context) workflow.Result {
			return a.ctrl.SubmitSurvey(ctx, v)
		})
	case a.build:
		if a.pick >= 0 && a.pick < len(a.state.Surveys) {
			v[forms.FieldLandSurveyID] = a.state.Surveys[a.pick].ID
		}
		return a.do(workflow.ActionCreateBuilding, func(ctx context.Context) workflow.Result {
			return a.ctrl.SubmitBuilding(ctx, v)
		})
	case a.wind:
		return a.do(workflow.ActionAddWind, func(ctx context.Context) workflow.Result {
			return a.ctrl.SubmitWind(ctx, v)
		})
	}
	return nil
}
