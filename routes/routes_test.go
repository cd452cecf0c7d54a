package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/breadMSA/Calories/models"
	"github.com/breadMSA/Calories/services"

	"github.com/gin-gonic/gin"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: make(map[string][]byte)} }

func (m *memStore) Get(_ context.Context, key string, out any) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return services.ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

func (m *memStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(newMemStore())
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRecordsAbsentDateIsZeroRecord(t *testing.T) {
	r := testRouter()

	w := do(t, r, http.MethodGet, "/api/records?date=2025-03-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an unlogged date", w.Code)
	}
	var rec models.DayRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("body not a DayRecord: %v", err)
	}
	if rec.Date != "2025-03-01" || len(rec.Entries) != 0 || rec.Totals != (models.TargetSet{}) {
		t.Errorf("got %+v, want zero-valued record", rec)
	}
}

func TestGetRecordsRequiresDate(t *testing.T) {
	r := testRouter()
	if w := do(t, r, http.MethodGet, "/api/records", ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without date", w.Code)
	}
}

func TestRecordsLifecycle(t *testing.T) {
	r := testRouter()

	entry := `{"id":"e1","date":"2025-03-01","time":"12:30","name":"便當","calories":650,"protein":45,"sodium":800,"water":0,"source":"manual"}`
	w := do(t, r, http.MethodPost, "/api/records", entry)
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d: %s", w.Code, w.Body.String())
	}
	var rec models.DayRecord
	json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.Totals.Calories != 650 {
		t.Errorf("totals = %+v", rec.Totals)
	}

	// PUT replaces by id
	updated := `{"id":"e1","date":"2025-03-01","time":"12:30","name":"便當","calories":700,"protein":45,"sodium":800,"water":0,"source":"manual"}`
	w = do(t, r, http.MethodPut, "/api/records", updated)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.Totals.Calories != 700 || len(rec.Entries) != 1 {
		t.Errorf("after PUT: %+v", rec)
	}

	// DELETE with an unknown id is a 200 no-op
	w = do(t, r, http.MethodDelete, "/api/records?date=2025-03-01&id=nope", "")
	if w.Code != http.StatusOK {
		t.Fatalf("no-op DELETE status = %d, want 200", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &rec)
	if len(rec.Entries) != 1 || rec.Totals.Calories != 700 {
		t.Errorf("no-op DELETE changed the record: %+v", rec)
	}

	w = do(t, r, http.MethodDelete, "/api/records?date=2025-03-01&id=e1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &rec)
	if len(rec.Entries) != 0 || rec.Totals != (models.TargetSet{}) {
		t.Errorf("after DELETE: %+v", rec)
	}
}

func TestRecordsErrorMapping(t *testing.T) {
	r := testRouter()

	// missing id -> 400
	if w := do(t, r, http.MethodPost, "/api/records", `{"date":"2025-03-01","name":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("POST without id: status = %d, want 400", w.Code)
	}
	// PUT into a day that was never stored -> 404
	if w := do(t, r, http.MethodPut, "/api/records", `{"id":"e1","date":"2025-03-01","name":"x"}`); w.Code != http.StatusNotFound {
		t.Errorf("PUT into missing record: status = %d, want 404", w.Code)
	}
	// DELETE from a day that was never stored -> 404
	if w := do(t, r, http.MethodDelete, "/api/records?date=2025-03-01&id=e1", ""); w.Code != http.StatusNotFound {
		t.Errorf("DELETE from missing record: status = %d, want 404", w.Code)
	}
	// unsupported method -> 405
	if w := do(t, r, http.MethodPatch, "/api/records", `{}`); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH: status = %d, want 405", w.Code)
	}
}

func TestUserProfileEndpoints(t *testing.T) {
	r := testRouter()

	if w := do(t, r, http.MethodGet, "/api/user", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET before onboarding: status = %d, want 404", w.Code)
	}

	// missing targets -> 400
	if w := do(t, r, http.MethodPost, "/api/user", `{"height":170,"weight":65,"age":25,"gender":"male"}`); w.Code != http.StatusBadRequest {
		t.Errorf("POST without targets: status = %d, want 400", w.Code)
	}

	profile := `{"height":170,"weight":65,"age":25,"gender":"male","targets":{"calories":2461,"protein":91,"sodium":2300,"water":1950}}`
	w := do(t, r, http.MethodPost, "/api/user", profile)
	if w.Code != http.StatusOK {
		t.Fatalf("POST status = %d: %s", w.Code, w.Body.String())
	}
	var saved models.UserProfile
	json.Unmarshal(w.Body.Bytes(), &saved)
	if saved.UpdatedAt == "" {
		t.Error("updatedAt must be server-stamped")
	}

	w = do(t, r, http.MethodGet, "/api/user", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	var got models.UserProfile
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Targets.Calories != 2461 || got.Gender != "male" {
		t.Errorf("got %+v", got)
	}
}

func TestRecommendedTargetsEndpoint(t *testing.T) {
	r := testRouter()

	w := do(t, r, http.MethodGet, "/api/targets/recommended?weight=65&height=170&age=25&gender=male", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Targets models.TargetSet `json:"targets"`
		BMI     float64          `json:"bmi"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Targets.Calories != 2461 || resp.Targets.Protein != 91 {
		t.Errorf("targets = %+v", resp.Targets)
	}
	if resp.BMI < 22 || resp.BMI > 23 {
		t.Errorf("bmi = %v", resp.BMI)
	}

	if w := do(t, r, http.MethodGet, "/api/targets/recommended?weight=65", ""); w.Code != http.StatusBadRequest {
		t.Errorf("incomplete query: status = %d, want 400", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	r := testRouter()

	profile := `{"height":170,"weight":65,"age":25,"gender":"male","targets":{"calories":2000,"protein":100,"sodium":2300,"water":2000}}`
	if w := do(t, r, http.MethodPost, "/api/user", profile); w.Code != http.StatusOK {
		t.Fatalf("profile setup failed: %d", w.Code)
	}
	entry := `{"id":"e1","date":"2025-03-05","time":"12:30","name":"便當","calories":1800,"protein":90,"sodium":700,"water":500}`
	if w := do(t, r, http.MethodPost, "/api/records", entry); w.Code != http.StatusOK {
		t.Fatalf("entry setup failed: %d", w.Code)
	}

	w := do(t, r, http.MethodGet, "/api/summary?granularity=week&date=2025-03-05", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Granularity string               `json:"granularity"`
		Week        services.WeekSummary `json:"week"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Week.Start != "2025-03-02" || len(resp.Week.Days) != 7 {
		t.Errorf("week = %+v", resp.Week)
	}

	if w := do(t, r, http.MethodGet, "/api/summary?granularity=decade", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad granularity: status = %d, want 400", w.Code)
	}
}

func TestSummaryWithoutProfile(t *testing.T) {
	r := testRouter()
	if w := do(t, r, http.MethodGet, "/api/summary?granularity=day&date=2025-03-05", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before onboarding", w.Code)
	}
}
