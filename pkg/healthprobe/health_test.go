package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthAlwaysOK(t *testing.T) {
	checker := New(ComponentWallet, ComponentFullnode)

	recorder := httptest.NewRecorder()
	checker.Health()(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}

func TestReadyRequiresAllComponents(t *testing.T) {
	checker := New(ComponentWallet, ComponentFullnode, ComponentTracker)

	probe := func() (int, HealthResponse) {
		recorder := httptest.NewRecorder()
		checker.Ready()(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

		var resp HealthResponse
		_ = json.Unmarshal(recorder.Body.Bytes(), &resp)

		return recorder.Code, resp
	}

	code, resp := probe()
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before components ready, got %d", code)
	}

	if resp.Components[ComponentWallet] {
		t.Error("wallet should not be ready yet")
	}

	checker.SetReady(ComponentWallet, true)
	checker.SetReady(ComponentFullnode, true)

	code, _ = probe()
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with tracker not ready, got %d", code)
	}

	checker.SetReady(ComponentTracker, true)

	code, resp = probe()
	if code != http.StatusOK {
		t.Errorf("expected 200 with all components ready, got %d", code)
	}

	if resp.Status != "ready" {
		t.Errorf("expected status 'ready', got %q", resp.Status)
	}
}
