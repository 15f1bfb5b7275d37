// Package workflow owns the client state and guards every remote action.
//
// A Controller is the only writer of the session store. Each action checks
// its stage guard, issues at most one request through the gateway, and on
// success persists and applies the change. Failures of any kind leave the
// state untouched and are reported through the notifier; they never escape
// an action as a panic or a returned error.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/forms"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/store"
)

// Gateway is the remote service as seen by the controller. *api.Client implements it.
type Gateway interface {
	SetAuthToken(token string)
	Register(ctx context.Context, req api.RegisterRequest) api.Outcome
	Login(ctx context.Context, req api.LoginRequest) api.Outcome
	ListSurveys(ctx context.Context) api.Outcome
	CreateSurvey(ctx context.Context, in api.SurveyInput) api.Outcome
	CreateBuilding(ctx context.Context, in api.BuildingRequest) api.Outcome
	AddWind(ctx context.Context, in api.WindRequest) api.Outcome
	RunDisaster(ctx context.Context, buildingID string) api.Outcome
	DisasterReport(ctx context.Context, buildingID string) api.Outcome
	RunVastu(ctx context.Context, buildingID string) api.Outcome
	VastuReport(ctx context.Context, buildingID string) api.Outcome
	GenerateReport(ctx context.Context, buildingID string) api.Outcome
	FinalReport(ctx context.Context, buildingID string) api.Outcome
}

// SessionStore is the persistence the controller writes through. *store.Store implements it.
type SessionStore interface {
	Load(ctx context.Context) (store.Session, error)
	Save(ctx context.Context, sess store.Session) error
	Clear(ctx context.Context) error
	Pointer(ctx context.Context) (store.WorkflowPointer, error)
	SetSurveyID(ctx context.Context, id string) error
	SetBuildingID(ctx context.Context, id string) error
	SetPointer(ctx context.Context, p store.WorkflowPointer) error
}

// Action names an operation for the in-flight guard.
type Action string

const (
	ActionRestore        Action = "restore"
	ActionRegister       Action = "register"
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionLoadSurveys    Action = "load-surveys"
	ActionSurveyOptions  Action = "survey-options"
	ActionCreateSurvey   Action = "create-survey"
	ActionSelectSurvey   Action = "select-survey"
	ActionCreateBuilding Action = "create-building"
	ActionAddWind        Action = "add-wind"
	ActionRunDisaster    Action = "run-disaster"
	ActionRunVastu       Action = "run-vastu"
	ActionGenerateReport Action = "generate-report"
	ActionViewDisaster   Action = "view-disaster"
	ActionViewVastu      Action = "view-vastu"
	ActionViewFinal      Action = "view-final"
	ActionSection        Action = "section"
)

// Controller is the single owner of State.
type Controller struct {
	gw     Gateway
	store  SessionStore
	notes  notify.Notifier
	log    zerolog.Logger
	now    func() time.Time
	render report.Options
	verify bool

	mu       sync.Mutex
	state    State
	inflight map[Action]bool
	// gen counts session resets; outcomes from an older generation are dropped.
	gen uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the transition logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRenderOptions sets how fetched reports are rendered.
func WithRenderOptions(o report.Options) Option {
	return func(c *Controller) { c.render = o }
}

// WithSurveyVerification makes building creation confirm that a persisted
// survey id still exists before it is used.
func WithSurveyVerification(on bool) Option {
	return func(c *Controller) { c.verify = on }
}

// New creates a controller. Call Restore before the first action.
func New(gw Gateway, st SessionStore, notes notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		store:    st,
		notes:    notes,
		log:      zerolog.Nop(),
		now:      time.Now,
		render:   report.DefaultOptions(),
		inflight: map[Action]bool{},
		state:    State{Section: SectionAuth},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// note is the feedback an applied step wants shown; empty msg shows nothing.
type note struct {
	sev notify.Severity
	msg string
}

// step describes one remote action.
type step struct {
	action Action
	guard  func(State) error
	// call issues the request. A non-nil error rejects the action without
	// counting as a remote failure.
	call func(ctx context.Context, st State) (api.Outcome, error)
	// apply runs under the lock after a successful outcome. It must persist
	// before mutating c.state so a failed write leaves state untouched.
	apply func(ctx context.Context, o api.Outcome) (note, error)
	// fallback is shown for domain failures without a message.
	fallback string
	// failure overrides the domain failure notification.
	failure func(o api.Outcome) note
	// quiet suppresses every notification.
	quiet bool
}

func (c *Controller) run(ctx context.Context, s step) Result {
	c.mu.Lock()
	st := c.state.clone()
	if s.guard != nil {
		if err := s.guard(st); err != nil {
			c.mu.Unlock()
			return c.reject(s, err)
		}
	}
	if c.inflight[s.action] {
		c.mu.Unlock()
		return c.reject(s, ErrBusy)
	}
	c.inflight[s.action] = true
	gen := c.gen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, s.action)
		c.mu.Unlock()
	}()

	o, err := s.call(ctx, st)
	if err != nil {
		return c.reject(s, err)
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Info().Str("action", string(s.action)).Msg("discarded after session reset")
		return Result{Outcome: o, Err: ErrSessionReset}
	}
	if !o.OK {
		c.mu.Unlock()
		return c.failed(s, o)
	}
	from := c.state.Stage
	n, err := s.apply(ctx, o)
	to := c.state.Stage
	c.mu.Unlock()
	if err != nil {
		c.log.Error().Err(err).Str("action", string(s.action)).Msg("apply outcome")
		failed := o
		failed.OK = false
		if errors.Is(err, api.ErrMalformed) {
			failed.Kind = api.KindTransport
			failed.Err = err
			return Result{Outcome: failed, Notification: c.push(s, notify.Error, "Network error: "+err.Error())}
		}
		return Result{Outcome: failed, Err: err, Notification: c.push(s, notify.Error, err.Error())}
	}
	if from != to {
		c.log.Info().Str("action", string(s.action)).Stringer("from", from).Stringer("to", to).Msg("stage")
	}
	res := Result{Outcome: o}
	if n.msg != "" {
		res.Notification = c.push(s, n.sev, n.msg)
	}
	return res
}

func (c *Controller) reject(s step, err error) Result {
	sev, msg := notify.Error, err.Error()
	var pe *PreconditionError
	var ve *forms.ValidationError
	switch {
	case errors.Is(err, ErrBusy):
		sev, msg = notify.Warning, MsgBusy
	case errors.As(err, &pe):
		msg = pe.Message
	case errors.As(err, &ve):
		msg = ve.Message
	}
	c.log.Debug().Str("action", string(s.action)).Err(err).Msg("rejected")
	return Result{Err: err, Notification: c.push(s, sev, msg)}
}

func (c *Controller) failed(s step, o api.Outcome) Result {
	c.log.Warn().Str("action", string(s.action)).Stringer("kind", o.Kind).Str("message", o.Message).Msg("action failed")
	if o.Kind == api.KindTransport {
		return Result{Outcome: o, Notification: c.push(s, notify.Error, "Network error: "+o.Message)}
	}
	n := note{sev: notify.Error, msg: o.Message}
	if s.failure != nil {
		n = s.failure(o)
	}
	if n.msg == "" {
		n.msg = s.fallback
	}
	return Result{Outcome: o, Notification: c.push(s, n.sev, n.msg)}
}

func (c *Controller) push(s step, sev notify.Severity, msg string) *notify.Notification {
	if s.quiet || c.notes == nil || msg == "" {
		return nil
	}
	n := c.notes.Push(sev, msg)
	return &n
}

func requireAuth(st State) error {
	if !st.Authenticated() {
		return precondition(ErrNotAuthenticated, MsgLoginFirst)
	}
	return nil
}

func requireBuilding(msg string) func(State) error {
	return func(st State) error {
		if err := requireAuth(st); err != nil {
			return err
		}
		if st.Pointer.BuildingID == "" {
			return precondition(ErrNoBuilding, msg)
		}
		return nil
	}
}

// Restore loads the persisted session and pointers. An expired JWT is
// treated like a logout.
func (c *Controller) Restore(ctx context.Context) Result {
	sess, err := c.store.Load(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("load session: %w", err)}
	}
	ptr, err := c.store.Pointer(ctx)
	if err != nil {
		return Result{Err: fmt.Errorf("load workflow pointer: %w", err)}
	}

	var res Result
	if sess.Valid() && tokenExpired(sess.AccessToken, c.now()) {
		if err := c.store.Clear(ctx); err != nil {
			return Result{Err: fmt.Errorf("clear expired session: %w", err)}
		}
		sess, ptr = store.Session{}, store.WorkflowPointer{}
		res.Notification = c.push(step{action: ActionRestore}, notify.Info, "Session expired. Please login again.")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = State{
		Stage:   derive(sess, ptr),
		Section: SectionAuth,
		Session: sess,
		Pointer: ptr,
	}
	if sess.Valid() {
		c.state.Section = SectionSurvey
	}
	c.gw.SetAuthToken(sess.AccessToken)
	c.log.Info().Stringer("stage", c.state.Stage).Msg("restored")
	res.Section = c.state.Section
	return res
}

// Section switches the visible section. Only SectionAuth is open to
// anonymous users.
func (c *Controller) Section(sec Section) Result {
	s := step{action: ActionSection}
	c.mu.Lock()
	defer c.mu.Unlock()
	if sec != SectionAuth && !c.state.Authenticated() {
		err := precondition(ErrNotAuthenticated, MsgLoginFirst)
		return Result{Err: err, Notification: c.push(s, notify.Error, MsgLoginFirst), Section: c.state.Section}
	}
	c.state.Section = sec
	return Result{Section: sec}
}

// Register creates an account. On success the caller should show the login
// form with Result.PrefillEmail filled in.
func (c *Controller) Register(ctx context.Context, req api.RegisterRequest) Result {
	s := step{
		action:   ActionRegister,
		fallback: "Registration failed",
		call: func(ctx context.Context, _ State) (api.Outcome, error) {
			if err := forms.Validate(req, forms.MsgFillAll); err != nil {
				return api.Outcome{}, err
			}
			return c.gw.Register(ctx, req), nil
		},
		apply: func(context.Context, api.Outcome) (note, error) {
			return note{notify.Success, "Registration successful! Please login."}, nil
		},
	}
	res := c.run(ctx, s)
	if res.OK() {
		res.PrefillEmail = req.Email
		res.Section = SectionAuth
	}
	return res
}

// Login authenticates and persists the session. Survey and building
// pointers are left as they are.
func (c *Controller) Login(ctx context.Context, req api.LoginRequest) Result {
	s := step{
		action:   ActionLogin,
		fallback: "Login failed",
		call: func(ctx context.Context, _ State) (api.Outcome, error) {
			if err := forms.Validate(req, forms.MsgCredentials); err != nil {
				return api.Outcome{}, err
			}
			o := c.gw.Login(ctx, req)
			if o.OK {
				tokens, err := api.Decode[api.AuthTokens](o)
				if err != nil || tokens.Token == "" {
					// success without a token is a failed login
					o.OK, o.Kind, o.Message = false, api.KindDomain, ""
				}
			}
			return o, nil
		},
		apply: func(ctx context.Context, o api.Outcome) (note, error) {
			tokens, err := api.Decode[api.AuthTokens](o)
			if err != nil {
				return note{}, err
			}
			user := tokens.User
			if user == nil {
				user = &api.User{Email: req.Email, Name: req.Email}
			}
			sess := store.Session{AccessToken: tokens.Token, RefreshToken: tokens.RefreshToken, User: user}
			if err := c.store.Save(ctx, sess); err != nil {
				return note{}, fmt.Errorf("save session: %w", err)
			}
			c.gw.SetAuthToken(sess.AccessToken)
			c.state.Session = sess
			c.state.Stage = derive(sess, c.state.Pointer)
			c.state.Section = SectionSurvey
			name := user.Name
			if name == "" {
				name = user.Email
			}
			return note{notify.Success, "Welcome back, " + name + "!"}, nil
		},
	}
	res := c.run(ctx, s)
	if res.OK() {
		res.Section = SectionSurvey
	}
	return res
}

// Logout clears the store and resets the state from any stage.
func (c *Controller) Logout(ctx context.Context) Result {
	s := step{action: ActionLogout}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		err = fmt.Errorf("clear session: %w", err)
		return Result{Err: err, Notification: c.push(s, notify.Error, err.Error())}
	}
	c.gw.SetAuthToken("")
	c.gen++
	from := c.state.Stage
	c.state = State{Stage: Unauthenticated, Section: SectionAuth}
	c.log.Info().Stringer("from", from).Stringer("to", Unauthenticated).Msg("logout")
	return Result{
		Outcome:      api.Success(nil, ""),
		Notification: c.push(s, notify.Info, "Logged out successfully"),
		Section:      SectionAuth,
	}
}

// SubmitRegister parses a registration form and registers.
func (c *Controller) SubmitRegister(ctx context.Context, v forms.Values) Result {
	req, err := forms.Register(v)
	if err != nil {
		return c.reject(step{action: ActionRegister}, err)
	}
	return c.Register(ctx, req)
}

// SubmitLogin parses a login form and logs in.
func (c *Controller) SubmitLogin(ctx context.Context, v forms.Values) Result {
	req, err := forms.Login(v)
	if err != nil {
		return c.reject(step{action: ActionLogin}, err)
	}
	return c.Login(ctx, req)
}
