package stubserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStub(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv := NewServer(Config{Username: "user", Password: "pass", Seed: 1})
	return srv, srv.Handler()
}

func TestData_RequiresBasicAuth(t *testing.T) {
	_, h := newTestStub(t)

	req := httptest.NewRequest(http.MethodGet, DataPath, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, DataPath, nil)
	req.SetBasicAuth("user", "wrong")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestData_ServesWireShape(t *testing.T) {
	srv, h := newTestStub(t)

	req := httptest.NewRequest(http.MethodGet, DataPath, nil)
	req.SetBasicAuth("user", "pass")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		UserLastActivity map[string][]any `json:"user2lastactivity"`
		Now              int64            `json:"now"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := len(body.UserLastActivity); got != len(defaultUsers) {
		t.Fatalf("users = %d, want %d", got, len(defaultUsers))
	}
	for name, entry := range body.UserLastActivity {
		if len(entry) != 2 {
			t.Fatalf("%s: entry has %d elements, want 2", name, len(entry))
		}
		if _, ok := entry[0].(float64); !ok {
			t.Errorf("%s: timestamp %T, want number", name, entry[0])
		}
		if _, ok := entry[1].(string); !ok {
			t.Errorf("%s: stream %T, want string", name, entry[1])
		}
	}
	if body.Now == 0 {
		t.Error("now = 0, want server time")
	}
	if srv.Requests() != 1 {
		t.Errorf("requests = %d, want 1", srv.Requests())
	}
}

func TestData_FailNextServedInOrder(t *testing.T) {
	srv, h := newTestStub(t)
	srv.FailNext(
		Failure{Status: http.StatusServiceUnavailable},
		Failure{Status: http.StatusInternalServerError, Body: "boom"},
	)

	wantCodes := []int{http.StatusServiceUnavailable, http.StatusInternalServerError, http.StatusOK}
	for i, want := range wantCodes {
		req := httptest.NewRequest(http.MethodGet, DataPath, nil)
		req.SetBasicAuth("user", "pass")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("request %d status = %d, want %d", i, w.Code, want)
		}
		if i == 1 && w.Body.String() != "boom" {
			t.Errorf("request %d body = %q, want boom", i, w.Body.String())
		}
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(42, []string{"x", "y", "z"}, []string{"s1", "s2"})
	b := NewGenerator(42, []string{"x", "y", "z"}, []string{"s1", "s2"})

	for name, act := range a.last {
		if b.last[name].Stream != act.Stream {
			t.Fatalf("%s: stream %q vs %q for the same seed", name, act.Stream, b.last[name].Stream)
		}
	}
}
