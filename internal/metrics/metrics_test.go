package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

func TestRecordHTTPRequest_CountsByRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/v1/user/{user_id}", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("GET", "/v1/user/{user_id}", 200, 20*time.Millisecond)
	c.RecordHTTPRequest("GET", "/v1/user/{user_id}", 403, 5*time.Millisecond)

	metrics := gatherFamily(t, reg, "dda_http_requests_total")
	if len(metrics) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(metrics))
	}
	for _, m := range metrics {
		if labelValue(m, "route") != "/v1/user/{user_id}" {
			t.Errorf("route label = %q", labelValue(m, "route"))
		}
		want := 1.0
		if labelValue(m, "status_code") == "200" {
			want = 2
		}
		if got := m.GetCounter().GetValue(); got != want {
			t.Errorf("status %s count = %v, want %v", labelValue(m, "status_code"), got, want)
		}
	}

	latency := gatherFamily(t, reg, "dda_http_request_duration_seconds")
	if got := latency[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("latency sample count = %d, want 3", got)
	}
}

func TestRecordLogin_CountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(LoginSucceeded)
	c.RecordLogin(LoginInvalidToken)
	c.RecordLogin(LoginSucceeded)

	for _, m := range gatherFamily(t, reg, "dda_logins_total") {
		want := 1.0
		if labelValue(m, "outcome") == LoginSucceeded {
			want = 2
		}
		if got := m.GetCounter().GetValue(); got != want {
			t.Errorf("outcome %s = %v, want %v", labelValue(m, "outcome"), got, want)
		}
	}
}

func TestSessionCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionIssued()
	c.RecordSessionIssued()
	c.RecordSessionExpired()
	c.RecordSessionsSwept(7)

	tests := []struct {
		name string
		want float64
	}{
		{"dda_sessions_issued_total", 2},
		{"dda_sessions_expired_total", 1},
		{"dda_sessions_swept_total", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := gatherFamily(t, reg, tt.name)
			if got := m[0].GetCounter().GetValue(); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
