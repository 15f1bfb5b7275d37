package workflow

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/siteassess/internal/api"
	"github.com/jask/siteassess/internal/database"
	"github.com/jask/siteassess/internal/notify"
	"github.com/jask/siteassess/internal/secrets"
	"github.com/jask/siteassess/internal/store"
)

type reply struct {
	status int
	body   string
}

// fakeService answers canned envelopes and records every request.
type fakeService struct {
	mu      sync.Mutex
	routes  map[string]reply
	hooks   map[string]func()
	calls   map[string]int
	auth    map[string]string
	bodies  map[string]string
	total   int
	srv     *httptest.Server
	baseURL string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		routes: map[string]reply{},
		hooks:  map[string]func(){},
		calls:  map[string]int{},
		auth:   map[string]string{},
		bodies: map[string]string{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	f.baseURL = f.srv.URL + "/api/v1"
	return f
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path[len("/api/v1"):]
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.total++
	f.calls[key]++
	f.auth[key] = r.Header.Get("Authorization")
	f.bodies[key] = string(body)
	rep, ok := f.routes[key]
	hook := f.hooks[key]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		rep = reply{http.StatusNotFound, `{"status":"error","message":"Not found"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rep.status)
	_, _ = io.WriteString(w, rep.body)
}

func (f *fakeService) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = reply{status, body}
}

func (f *fakeService) hook(method, path string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[method+" "+path] = fn
}

func (f *fakeService) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

func (f *fakeService) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *fakeService) authHeader(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[method+" "+path]
}

func (f *fakeService) body(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

type harness struct {
	svc   *fakeService
	ctrl  *Controller
	store *store.Store
	notes *notify.Channel
	ctx   context.Context
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	svc := newFakeService(t)
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "siteassess.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := store.New(db, secrets.NewSealer("test"))
	h := &harness{svc: svc, store: st, notes: notify.New(), ctx: context.Background()}
	h.ctrl = h.controller(opts...)
	res := h.ctrl.Restore(h.ctx)
	require.NoError(t, res.Err)
	return h
}

// controller builds a fresh controller over the same store and service,
// as a process restart would.
func (h *harness) controller(opts ...Option) *Controller {
	client := api.New(h.svc.baseURL, api.WithTimeout(2*time.Second))
	return New(client, h.store, h.notes, opts...)
}

func (h *harness) drain() []notify.Notification {
	return h.notes.Drain()
}

const (
	loginOK      = `{"success":true,"data":{"token":"tok-1","refreshToken":"ref-1","user":{"id":"u1","name":"A","role":"owner"}}}`
	registerOK   = `{"success":true,"message":"User registered"}`
	surveyOK     = `{"status":"success","data":{"id":"s1","latitude":12.9,"longitude":77.5,"plotArea":500,"soilType":"clay","seismicZone":"III","floodRisk":"low"}}`
	buildingOK   = `{"status":"success","data":{"id":"b1","landSurveyId":"s1","buildingType":"residential","totalFloors":3}}`
	windOK       = `{"status":"success","data":{"id":"w1"}}`
	disasterOK   = `{"status":"success","data":{"deadLoad":1200,"totalLoad":2400,"earthquakeSafetyScore":82,"createdAt":"2026-03-04T10:00:00Z"}}`
	finalOK      = `{"status":"success","data":{"overallSafetyScore":75,"reportStatus":"completed","generatedAt":"2026-03-04T10:00:00Z"}}`
	notFoundBody = `{"status":"error","message":"Report not found"}`
)

func validSurvey() api.SurveyInput {
	return api.SurveyInput{
		Latitude: 12.9, Longitude: 77.5, PlotArea: 500,
		SoilType: "clay", WaterTableDepth: 8, SeismicZone: "III", FloodRisk: "low",
	}
}

func validBuilding() api.BuildingRequest {
	return api.BuildingRequest{
		BuildingType: "residential", TotalFloors: 3, FloorHeight: 3, TotalHeight: 9,
		BuiltUpArea: 200, Orientation: "north", StructuralSystem: "rcc-frame",
	}
}

func validWind() api.WindRequest {
	return api.WindRequest{WindDirection: 270, AverageWindSpeed: 12, PeakGustSpeed: 30, TerrainRoughness: "urban"}
}

// login drives a successful login and clears the resulting notification.
func (h *harness) login(t *testing.T) {
	t.Helper()
	h.svc.on(http.MethodPost, "/auth/login", http.StatusOK, loginOK)
	res := h.ctrl.Login(h.ctx, api.LoginRequest{Email: "a@x.com", Password: "p"})
	require.True(t, res.OK(), "login: %+v", res)
	h.drain()
}

// building logs in and creates a survey and a building.
func (h *harness) building(t *testing.T) {
	t.Helper()
	h.login(t)
	h.svc.on(http.MethodPost, "/land-surveys", http.StatusCreated, surveyOK)
	h.svc.on(http.MethodPost, "/building-inputs", http.StatusCreated, buildingOK)
	require.True(t, h.ctrl.CreateSurvey(h.ctx, validSurvey()).OK())
	require.True(t, h.ctrl.CreateBuilding(h.ctx, validBuilding()).OK())
	h.drain()
}
