package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"poiseuille/types"
)

func TestObserveSolve(t *testing.T) {
	r := NewRegistry()
	r.ObserveSolve(types.MethodNewton, types.StateSolved, 5, 1e-12, time.Millisecond)
	r.ObserveSolve(types.MethodNewton, types.StateDiverged, 100, 1e-2, time.Millisecond)
	r.ObserveSolve(types.MethodDirect, types.StateSolved, 1, 0, time.Microsecond)

	if got := testutil.ToFloat64(r.SolvesTotal.WithLabelValues("newton", "solved")); got != 1 {
		t.Errorf("newton solved = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SolvesTotal.WithLabelValues("newton", "diverged")); got != 1 {
		t.Errorf("newton diverged = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.Residual.WithLabelValues("newton")); got != 1e-2 {
		t.Errorf("newton residual = %v, want 1e-2", got)
	}
	if n := testutil.CollectAndCount(r.Iterations); n != 2 {
		t.Errorf("iteration series = %d, want 2", n)
	}
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.BatchSize.Set(3)
	r.ObserveSolve(types.MethodDirect, types.StateSolved, 1, 0, time.Microsecond)
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	for _, name := range []string{"poiseuille_batch_size 3", "poiseuille_solves_total", "poiseuille_solve_duration_seconds"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("输出缺少 %q", name)
		}
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveSolve(types.MethodDirect, types.StateSolved, 1, 0, time.Microsecond)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `poiseuille_solves_total{method="direct",state="solved"} 1`) {
		t.Error("缺少求解计数")
	}
}
