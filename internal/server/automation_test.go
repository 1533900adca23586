package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	testhelpers "github.com/chsxf/vgtunes-dashboard/internal/testing"
)

func newTestServer(t *testing.T, helper *testhelpers.FakeHelper) *httptest.Server {
	t.Helper()

	db := testhelpers.OpenTestDB(t)
	logger := log.New(io.Discard)
	env := &automation.Env{
		DB:    db,
		Store: automation.NewMemoryStore(),
		Helpers: func(platform platforms.Platform) (platforms.Helper, error) {
			return helper, nil
		},
		Config: shared.DefaultConfig(),
		Logger: logger,
	}
	registry := automation.NewRegistry(env, true)
	executor := automation.NewExecutor(registry, env.Store, logger)

	router := NewBasicRouter()
	router.Handler(NewAutomationHandler(registry, executor, logger))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postForm(t *testing.T, srv *httptest.Server, path string, form url.Values) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, body
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, body
}

func TestAutomationAPI(t *testing.T) {
	debugKey := automation.ActionKey("debug_action")

	t.Run("lists actions with options", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, body := getJSON(t, srv, "/automation/actions")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		actions, ok := body["actions"].([]any)
		if !ok || len(actions) == 0 {
			t.Fatalf("expected a non-empty actions array, got %v", body["actions"])
		}
		first := actions[0].(map[string]any)
		for _, field := range []string{"key", "display_name", "cooldown_ms", "options"} {
			if _, present := first[field]; !present {
				t.Errorf("action entry missing %q: %v", field, first)
			}
		}
	})

	t.Run("step protocol", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, body := postForm(t, srv, "/automation/execute", url.Values{
			"action": {debugKey},
			"test":   {"hello"},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
		}
		if body["action"] != "Debug Action" {
			t.Errorf("unexpected execute response %v", body)
		}

		resp, step := getJSON(t, srv, "/automation/step")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		for _, field := range []string{"total", "current", "status", "logs"} {
			if _, present := step[field]; !present {
				t.Errorf("step payload missing %q: %v", field, step)
			}
		}
		if step["status"] != "cp" {
			t.Errorf("expected completion, got %v", step["status"])
		}
		logs := step["logs"].([]any)
		entry := logs[0].([]any)
		if len(entry) != 2 || entry[1] != "l" {
			t.Errorf("expected [message, level] log pairs, got %v", entry)
		}

		// The job is gone once complete.
		resp, _ = getJSON(t, srv, "/automation/step")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 after completion, got %d", resp.StatusCode)
		}
	})

	t.Run("execute with unknown key", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, _ := postForm(t, srv, "/automation/execute", url.Values{"action": {"deadbeef"}})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("execute with invalid options", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, _ := postForm(t, srv, "/automation/execute", url.Values{
			"action": {automation.ActionKey("bandcamp_database_updater")},
			"limit":  {"-1"},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("step without a configured action", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, _ := getJSON(t, srv, "/automation/step")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("teardown is always safe", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, body := postForm(t, srv, "/automation/teardown", url.Values{})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if body["ok"] != true {
			t.Errorf("unexpected teardown response %v", body)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		srv := newTestServer(t, &testhelpers.FakeHelper{})

		resp, err := http.Get(srv.URL + "/automation/execute")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})
}
