package workflow

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/forms"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/report"
	"github.com/jask/siteassess/internal/store"
)

func TestGuardedActionsBeforeLogin(t *testing.T) {
	h := newHarness(t)
	before := h.ctrl.Snapshot()
	require.Equal(t, Unauthenticated, before.Stage)

	actions := map[string]func() Result{
		"load surveys":    func() Result { return h.ctrl.LoadSurveys(h.ctx) },
		"create survey":   func() Result { return h.ctrl.CreateSurvey(h.ctx, validSurvey()) },
		"select survey":   func() Result { return h.ctrl.SelectSurvey(h.ctx, "s1") },
		"create building": func() Result { return h.ctrl.CreateBuilding(h.ctx, validBuilding()) },
		"explicit survey": func() Result {
			b := validBuilding()
			b.LandSurveyID = "s1"
			return h.ctrl.CreateBuilding(h.ctx, b)
		},
		"add wind":        func() Result { return h.ctrl.AddWind(h.ctx, validWind()) },
		"run disaster":    func() Result { return h.ctrl.RunDisaster(h.ctx) },
		"run vastu":       func() Result { return h.ctrl.RunVastu(h.ctx) },
		"generate report": func() Result { return h.ctrl.GenerateReport(h.ctx) },
		"view disaster":   func() Result { return h.ctrl.ViewDisasterReport(h.ctx) },
		"view vastu":      func() Result { return h.ctrl.ViewVastuReport(h.ctx) },
		"view final":      func() Result { return h.ctrl.ViewFinalReport(h.ctx) },
		"submit survey":   func() Result { return h.ctrl.SubmitSurvey(h.ctx, forms.Values{}) },
		"submit building": func() Result { return h.ctrl.SubmitBuilding(h.ctx, forms.Values{}) },
		"submit wind":     func() Result { return h.ctrl.SubmitWind(h.ctx, forms.Values{}) },
		"section":         func() Result { return h.ctrl.Section(SectionBuilding) },
	}
	for name, act := range actions {
		res := act()
		require.True(t, errors.Is(res.Err, ErrNotAuthenticated), name)
		notes := h.drain()
		require.Len(t, notes, 1, name)
		require.Equal(t, notify.Error, notes[0].Severity, name)
		require.Equal(t, MsgLoginFirst, notes[0].Message, name)
		require.Equal(t, before, h.ctrl.Snapshot(), name)
	}

	res := h.ctrl.RefreshSurveyOptions(h.ctx)
	require.True(t, errors.Is(res.Err, ErrNotAuthenticated))
	require.Empty(t, h.drain())

	require.Zero(t, h.svc.totalCalls())
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	before := h.ctrl.Snapshot()

	cases := []struct {
		body string
		msg  string
	}{
		{`{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
		{`{"success":false}`, "Login failed"},
		{`{"success":true,"message":"ok","data":{"user":{"id":"u1","name":"A"}}}`, "Login failed"},
		{`{"status":"error","message":"Account locked"}`, "Account locked"},
	}
	for _, tc := range cases {
		h.svc.on(http.MethodPost, "/auth/login", http.StatusOK, tc.body)
		res := h.ctrl.Login(h.ctx, api.LoginRequest{Email: "a@x.com", Password: "p"})
		require.False(t, res.OK(), tc.body)
		require.Equal(t, before, h.ctrl.Snapshot(), tc.body)

		sess, err := h.store.Load(h.ctx)
		require.NoError(t, err)
		require.False(t, sess.Valid())

		notes := h.drain()
		require.Len(t, notes, 1)
		require.Equal(t, tc.msg, notes[0].Message, tc.body)
	}
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	h.svc.on(http.MethodPost, "/auth/register", http.StatusCreated, registerOK)
	h.svc.on(http.MethodPost, "/auth/login", http.StatusOK, loginOK)

	res := h.ctrl.Register(h.ctx, api.RegisterRequest{Email: "a@x.com", Password: "p", Name: "A", Role: "owner"})
	require.True(t, res.OK())
	require.Equal(t, "a@x.com", res.PrefillEmail)
	require.Equal(t, SectionAuth, res.Section)
	require.Equal(t, "Registration successful! Please login.", res.Notification.Message)
	require.Equal(t, Unauthenticated, h.ctrl.Snapshot().Stage)
	require.JSONEq(t, `{"email":"a@x.com","password":"p","name":"A","role":"owner"}`, h.svc.body(http.MethodPost, "/auth/register"))

	res = h.ctrl.Login(h.ctx, api.LoginRequest{Email: res.PrefillEmail, Password: "p"})
	require.True(t, res.OK())
	require.Equal(t, SectionSurvey, res.Section)
	require.Equal(t, notify.Success, res.Notification.Severity)
	require.Equal(t, "Welcome back, A!", res.Notification.Message)

	st := h.ctrl.Snapshot()
	require.Equal(t, Authenticated, st.Stage)
	require.Equal(t, store.WorkflowPointer{}, st.Pointer)
	require.Equal(t, "A", st.Session.User.Name)

	require.Empty(t, h.svc.authHeader(http.MethodPost, "/auth/register"))
	require.Empty(t, h.svc.authHeader(http.MethodPost, "/auth/login"))

	h.svc.on(http.MethodGet, "/land-surveys", http.StatusOK, `{"status":"success","data":[]}`)
	require.True(t, h.ctrl.LoadSurveys(h.ctx).OK())
	require.Equal(t, "Bearer tok-1", h.svc.authHeader(http.MethodGet, "/land-surveys"))

	sess, err := h.store.Load(h.ctx)
	require.NoError(t, err)
	require.Equal(t, st.Session, sess)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	res := h.ctrl.Register(h.ctx, api.RegisterRequest{Email: "a@x.com"})
	var verr *forms.ValidationError
	require.True(t, errors.As(res.Err, &verr))
	require.Equal(t, forms.MsgFillAll, res.Notification.Message)

	res = h.ctrl.SubmitLogin(h.ctx, forms.Values{forms.FieldEmail: "a@x.com"})
	require.Error(t, res.Err)
	require.Equal(t, forms.MsgCredentials, res.Notification.Message)
	require.Zero(t, h.svc.totalCalls())
}

func TestLogoutFromAnyStage(t *testing.T) {
	h := newHarness(t)

	res := h.ctrl.Logout(h.ctx)
	require.NoError(t, res.Err)
	require.Equal(t, "Logged out successfully", res.Notification.Message)
	require.Equal(t, notify.Info, res.Notification.Severity)
	h.drain()

	h.building(t)
	h.svc.on(http.MethodPost, "/analysis/report/b1", http.StatusOK, finalOK)
	require.True(t, h.ctrl.GenerateReport(h.ctx).OK())
	st := h.ctrl.Snapshot()
	require.Equal(t, ReportGenerated, st.Stage)
	require.NotNil(t, st.LastReport)
	require.NotEmpty(t, st.Surveys)

	res = h.ctrl.Logout(h.ctx)
	require.NoError(t, res.Err)
	require.Equal(t, SectionAuth, res.Section)
	require.Equal(t, State{Stage: Unauthenticated, Section: SectionAuth}, h.ctrl.Snapshot())

	sess, err := h.store.Load(h.ctx)
	require.NoError(t, err)
	require.False(t, sess.Valid())
	ptr, err := h.store.Pointer(h.ctx)
	require.NoError(t, err)
	require.Equal(t, store.WorkflowPointer{}, ptr)

	again := h.controller()
	require.NoError(t, again.Restore(h.ctx).Err)
	require.Equal(t, Unauthenticated, again.Snapshot().Stage)

	calls := h.svc.totalCalls()
	h.drain()
	again.RunDisaster(h.ctx)
	require.Equal(t, calls, h.svc.totalCalls())
}

func TestRestoreResumesStage(t *testing.T) {
	h := newHarness(t)
	h.building(t)

	again := h.controller()
	res := again.Restore(h.ctx)
	require.NoError(t, res.Err)
	require.Equal(t, SectionSurvey, res.Section)
	st := again.Snapshot()
	require.Equal(t, BuildingCreated, st.Stage)
	require.Equal(t, store.WorkflowPointer{SurveyID: "s1", BuildingID: "b1"}, st.Pointer)

	h.svc.on(http.MethodPost, "/wind", http.StatusCreated, windOK)
	require.True(t, again.AddWind(h.ctx, validWind()).OK())
	require.Equal(t, "Bearer tok-1", h.svc.authHeader(http.MethodPost, "/wind"))
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func TestRestoreExpiredToken(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	user := &api.User{ID: "u1", Name: "A"}

	require.NoError(t, h.store.Save(h.ctx, store.Session{AccessToken: signed(t, now.Add(time.Hour)), User: user}))
	live := h.controller(WithClock(func() time.Time { return now }))
	require.NoError(t, live.Restore(h.ctx).Err)
	require.Equal(t, Authenticated, live.Snapshot().Stage)

	require.NoError(t, h.store.Save(h.ctx, store.Session{AccessToken: signed(t, now.Add(-time.Minute)), User: user}))
	require.NoError(t, h.store.SetSurveyID(h.ctx, "s1"))
	h.drain()
	expired := h.controller(WithClock(func() time.Time { return now }))
	res := expired.Restore(h.ctx)
	require.NoError(t, res.Err)
	require.Equal(t, Unauthenticated, expired.Snapshot().Stage)
	require.Equal(t, "Session expired. Please login again.", res.Notification.Message)
	ptr, err := h.store.Pointer(h.ctx)
	require.NoError(t, err)
	require.Empty(t, ptr.SurveyID)

	require.False(t, tokenExpired("opaque-token", now))
}

func TestSectionNavigation(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Section(SectionAuth).Err)

	h.login(t)
	for _, sec := range Sections {
		res := h.ctrl.Section(sec)
		require.NoError(t, res.Err)
		require.Equal(t, sec, h.ctrl.Snapshot().Section)
	}
	require.Empty(t, h.drain())
}

func TestTransportFailure(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	before := h.ctrl.Snapshot()
	h.svc.srv.Close()

	res := h.ctrl.CreateSurvey(h.ctx, validSurvey())
	require.False(t, res.OK())
	require.Equal(t, api.KindTransport, res.Outcome.Kind)
	require.True(t, strings.HasPrefix(res.Notification.Message, "Network error: "))
	require.Equal(t, before, h.ctrl.Snapshot())
	id, err := h.store.SurveyID(h.ctx)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestMalformedSuccessPayload(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	before := h.ctrl.Snapshot()

	h.svc.on(http.MethodPost, "/land-surveys", http.StatusCreated, `{"status":"success","data":"nope"}`)
	res := h.ctrl.CreateSurvey(h.ctx, validSurvey())
	require.False(t, res.OK())
	require.Equal(t, api.KindTransport, res.Outcome.Kind)
	require.Contains(t, res.Notification.Message, "Network error: malformed response")
	require.Equal(t, before, h.ctrl.Snapshot())
}

func TestInFlightGuard(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.svc.on(http.MethodPost, "/land-surveys", http.StatusCreated, surveyOK)
	h.svc.hook(http.MethodPost, "/land-surveys", func() {
		once.Do(func() { close(entered) })
		<-release
	})

	first := make(chan Result, 1)
	go func() { first <- h.ctrl.CreateSurvey(context.Background(), validSurvey()) }()
	<-entered

	res := h.ctrl.CreateSurvey(h.ctx, validSurvey())
	require.True(t, errors.Is(res.Err, ErrBusy))
	require.Equal(t, notify.Warning, res.Notification.Severity)
	require.Equal(t, MsgBusy, res.Notification.Message)

	close(release)
	require.True(t, (<-first).OK())
	require.Equal(t, 1, h.svc.count(http.MethodPost, "/land-surveys"))

	require.True(t, h.ctrl.CreateSurvey(h.ctx, validSurvey()).OK())
	require.Equal(t, 2, h.svc.count(http.MethodPost, "/land-surveys"))
}

func TestNotificationsDoNotAlterFlow(t *testing.T) {
	h := newHarness(t)
	h.svc.on(http.MethodPost, "/auth/login", http.StatusOK, loginOK)

	quiet := h.controller()
	require.NoError(t, quiet.Restore(h.ctx).Err)
	noisy := New(api.New(h.svc.baseURL), h.store, notify.New(notify.WithCapacity(1)))
	require.NoError(t, noisy.Restore(h.ctx).Err)

	a := quiet.Login(h.ctx, api.LoginRequest{Email: "a@x.com", Password: "p"})
	b := noisy.Login(h.ctx, api.LoginRequest{Email: "a@x.com", Password: "p"})
	require.Equal(t, a.OK(), b.OK())
	require.Equal(t, quiet.Snapshot().Stage, noisy.Snapshot().Stage)

	silent := New(api.New(h.svc.baseURL), h.store, nil, WithRenderOptions(report.DefaultOptions()))
	require.NoError(t, silent.Restore(h.ctx).Err)
	res := silent.Logout(h.ctx)
	require.NoError(t, res.Err)
	require.Nil(t, res.Notification)
}

// blockOn holds the next request to method path until the returned release is called.
func blockOn(h *harness, method, path string) (entered <-chan struct{}, release func()) {
	in := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	h.svc.hook(method, path, func() {
		once.Do(func() { close(in) })
		<-gate
	})
	return in, func() { close(gate) }
}

func TestLogoutDiscardsInFlightBuilding(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.svc.on(http.MethodPost, "/land-surveys", http.StatusCreated, surveyOK)
	require.True(t, h.ctrl.CreateSurvey(h.ctx, validSurvey()).OK())
	h.svc.on(http.MethodPost, "/building-inputs", http.StatusCreated, buildingOK)
	entered, release := blockOn(h, http.MethodPost, "/building-inputs")

	done := make(chan Result, 1)
	go func() { done <- h.ctrl.CreateBuilding(context.Background(), validBuilding()) }()
	<-entered
	require.NoError(t, h.ctrl.Logout(h.ctx).Err)
	h.drain()
	release()

	res := <-done
	require.False(t, res.OK())
	require.True(t, errors.Is(res.Err, ErrSessionReset))
	require.Nil(t, res.Notification)
	require.Empty(t, h.drain())
	require.Equal(t, State{Stage: Unauthenticated, Section: SectionAuth}, h.ctrl.Snapshot())
	ptr, err := h.store.Pointer(h.ctx)
	require.NoError(t, err)
	require.Equal(t, store.WorkflowPointer{}, ptr)
}

func TestLogoutDiscardsInFlightLogin(t *testing.T) {
	h := newHarness(t)
	h.svc.on(http.MethodPost, "/auth/login", http.StatusOK, loginOK)
	entered, release := blockOn(h, http.MethodPost, "/auth/login")

	done := make(chan Result, 1)
	go func() {
		done <- h.ctrl.Login(context.Background(), api.LoginRequest{Email: "a@x.com", Password: "p"})
	}()
	<-entered
	require.NoError(t, h.ctrl.Logout(h.ctx).Err)
	h.drain()
	release()

	res := <-done
	require.True(t, errors.Is(res.Err, ErrSessionReset))
	require.Empty(t, h.drain())
	require.False(t, h.ctrl.Snapshot().Authenticated())
	sess, err := h.store.Load(h.ctx)
	require.NoError(t, err)
	require.False(t, sess.Valid())

	// the next action runs under the new session as usual
	h.svc.hook(http.MethodPost, "/auth/login", nil)
	require.True(t, h.ctrl.Login(h.ctx, api.LoginRequest{Email: "a@x.com", Password: "p"}).OK())
}
