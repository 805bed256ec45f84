package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spektr-org/winedash/charts"
	"github.com/spektr-org/winedash/dataset"
	"github.com/spektr-org/winedash/layout"
	"github.com/spektr-org/winedash/reactive"
	"github.com/spektr-org/winedash/widgets"
)

func newTestServer(t *testing.T) (*Server, *reactive.Store) {
	t.Helper()
	ds, err := dataset.Load()
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	dash, err := NewDashboard(ds, layout.DefaultProfile())
	if err != nil {
		t.Fatalf("NewDashboard: %v", err)
	}
	store := dash.NewStore(time.Minute)
	return New(dash, store, nil), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) reactive.State {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rec.Code, rec.Body)
	}
	var st reactive.State
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func postEvents(t *testing.T, h http.Handler, id, body string) (int, eventsResponse) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/events", body)
	var resp eventsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

// ============================================================================
// WIRING
// ============================================================================

func TestNewDashboardBindings(t *testing.T) {
	srv, _ := newTestServer(t)
	g := srv.dash.Graph

	want := map[string][]string{
		layout.HistogramTarget: {widgets.HistColumn},
		layout.ScatterTarget:   {widgets.XAxis, widgets.YAxis},
		layout.BarTarget:       {widgets.AvgDrop},
	}
	for target, inputs := range want {
		if !g.IsChart(target) {
			t.Errorf("%s should be a chart target", target)
		}
		for _, in := range inputs {
			found := false
			for _, sub := range g.Subscribers(in) {
				if sub == target {
					found = true
				}
			}
			if !found {
				t.Errorf("%s should subscribe to %s", target, in)
			}
		}
	}
	if !g.IsChart(layout.PieTarget) {
		t.Error("pie chart should be bound")
	}
	if !g.IsToggle(layout.ModalTarget) {
		t.Error("modal should be a toggle")
	}
	if !g.IsTrigger(widgets.OpenButton) || !g.IsTrigger(widgets.CloseButton) {
		t.Error("open and close should trigger the modal")
	}
}

func TestDefaultSpecs(t *testing.T) {
	srv, _ := newTestServer(t)
	specs, err := srv.dash.DefaultSpecs()
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 4 {
		t.Fatalf("got %d specs, want 4", len(specs))
	}
	if specs[layout.PieTarget].Total() != 178 {
		t.Errorf("pie total = %v, want 178", specs[layout.PieTarget].Total())
	}
	if specs[layout.HistogramTarget].XAxis != "alcohol" {
		t.Errorf("default histogram column = %q", specs[layout.HistogramTarget].XAxis)
	}
}

// ============================================================================
// PAGE & SESSIONS
// ============================================================================

func TestPageCreatesSession(t *testing.T) {
	srv, store := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{layout.DefaultTitle, `id="histogram"`, `id="modal"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if store.Len() != 1 {
		t.Errorf("sessions = %d, want 1", store.Len())
	}
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv.Handler(), http.MethodGet, "/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/layout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), widgets.HistColumn) {
		t.Error("layout should list the histogram dropdown")
	}
}

func TestSessionState(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)

	if st.Selection[widgets.XAxis] != "alcohol" || st.Selection[widgets.YAxis] != "malic_acid" {
		t.Errorf("defaults = %v", st.Selection)
	}
	if st.Toggles[layout.ModalTarget] {
		t.Error("modal should start closed")
	}

	rec := do(t, h, http.MethodGet, "/api/sessions/"+st.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("state: status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/sessions/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing session: status %d, want 404", rec.Code)
	}
}

// ============================================================================
// EVENTS
// ============================================================================

func TestEventsRecomputeOnlySubscribers(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)

	code, resp := postEvents(t, h, st.ID, `{"events":[{"input":"hist_column","value":"ash"}]}`)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if len(resp.Updates) != 1 || resp.Updates[0].Target != layout.HistogramTarget {
		t.Fatalf("updates = %+v", resp.Updates)
	}
	if got, want := resp.Updates[0].Version, st.Versions[layout.HistogramTarget]+1; got != want {
		t.Errorf("version = %d, want %d", got, want)
	}

	rec := do(t, h, http.MethodGet, "/api/sessions/"+st.ID+"/charts/histogram/spec", "")
	var spec charts.ChartSpec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatal(err)
	}
	if spec.Kind != charts.KindHistogram || spec.XAxis != "ash" {
		t.Errorf("spec = %s / %s", spec.Kind, spec.XAxis)
	}
}

func TestEventsInvalidValueKeepsChart(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)

	code, resp := postEvents(t, h, st.ID, `{"events":[{"input":"avg_drop","value":"colour"}]}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", code)
	}
	if len(resp.Updates) != 1 || resp.Updates[0].Error == "" {
		t.Fatalf("updates = %+v", resp.Updates)
	}
	if resp.Updates[0].Version != st.Versions[layout.BarTarget] {
		t.Error("version should not advance on failure")
	}

	sess, err := store.Lookup(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if v := sess.Value(widgets.AvgDrop); v != st.Selection[widgets.AvgDrop] {
		t.Errorf("selection = %q, want unchanged %q", v, st.Selection[widgets.AvgDrop])
	}
}

func TestEventsBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"events":`},
		{"unknown field", `{"evts":[]}`},
		{"unknown input", `{"events":[{"input":"z_axis","value":"ash"}]}`},
		{"value and clicks", `{"events":[{"input":"x_axis","value":"ash","clicks":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := postEvents(t, h, st.ID, tt.body); code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", code)
			}
		})
	}

	if code, _ := postEvents(t, h, "missing", `{"events":[]}`); code != http.StatusNotFound {
		t.Errorf("missing session: status %d, want 404", code)
	}
}

func TestModalToggle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)

	steps := []struct {
		body     string
		updates  int
		wantOpen bool
	}{
		{`{"events":[{"input":"open","clicks":1}]}`, 1, true},
		{`{"events":[{"input":"open","clicks":1}]}`, 0, true},
		{`{"events":[{"input":"close","clicks":1}]}`, 1, false},
		{`{"events":[{"input":"open","clicks":2},{"input":"close","clicks":2}]}`, 1, true},
	}
	for i, step := range steps {
		code, resp := postEvents(t, h, st.ID, step.body)
		if code != http.StatusOK {
			t.Fatalf("step %d: status %d", i, code)
		}
		if len(resp.Updates) != step.updates {
			t.Fatalf("step %d: %d updates, want %d", i, len(resp.Updates), step.updates)
		}
		if step.updates == 1 {
			u := resp.Updates[0]
			if u.Target != layout.ModalTarget || u.Open == nil || *u.Open != step.wantOpen {
				t.Errorf("step %d: update = %+v", i, u)
			}
		}
	}
}

// ============================================================================
// CHARTS
// ============================================================================

func TestChartFormats(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	st := createSession(t, h)
	base := "/api/sessions/" + st.ID + "/charts/"

	tests := []struct {
		target, format string
		status         int
		contentType    string
	}{
		{layout.HistogramTarget, "", http.StatusOK, "image/svg+xml"},
		{layout.ScatterTarget, "svg", http.StatusOK, "image/svg+xml"},
		{layout.BarTarget, "png", http.StatusOK, "image/png"},
		{layout.PieTarget, "csv", http.StatusOK, "text/csv; charset=utf-8"},
		{layout.PieTarget, "gif", http.StatusBadRequest, "application/json"},
		{"heatmap", "svg", http.StatusNotFound, "application/json"},
		{layout.ModalTarget, "svg", http.StatusNotFound, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.target+"/"+tt.format, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, base+tt.target+"?format="+tt.format, "")
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("content type %q, want %q", ct, tt.contentType)
			}
		})
	}

	rec := do(t, h, http.MethodGet, base+layout.PieTarget+"?format=csv", "")
	if !strings.HasPrefix(rec.Body.String(), "label,") {
		t.Errorf("csv body = %q", rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, base+layout.BarTarget+"?format=png", "")
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("png body lacks signature")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	var body struct {
		Status string `json:"status"`
		Rows   int    `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Rows != 178 {
		t.Errorf("health = %+v", body)
	}
}

// ============================================================================
// LIFECYCLE
// ============================================================================

func TestServeShutsDownOnCancel(t *testing.T) {
	srv, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
