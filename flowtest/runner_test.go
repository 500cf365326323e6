package flowtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunner(baseURL string) *Runner {
	return NewRunner(Config{BaseURL: baseURL, Timeout: 5 * time.Second}, testLogger())
}

// userAPI is the API under test: create returns a fixed id, fetch
// returns fetchID so tests can make the two responses agree or not.
func userAPI(fetchID float64) http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/users", func(c *gin.Context) {
		var payload map[string]any
		_ = c.ShouldBindJSON(&payload)
		c.JSON(http.StatusCreated, gin.H{"id": 42, "email": payload["email"]})
	})
	r.GET("/api/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": fetchID, "email": "a@b.com"})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/text", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/api/slow", func(c *gin.Context) {
		time.Sleep(300 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/broken", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	return r
}

func lifecycleFlow() *Flow {
	return &Flow{
		Name: "user lifecycle",
		Steps: []Step{
			{
				Name:   "create user",
				Method: "POST",
				URL:    "/api/users",
				Body:   map[string]any{"email": "a@b.com"},
				Expect: &ExpectationSpec{
					Status: 201,
					Body:   map[string]any{"email": "a@b.com"},
				},
				Extract: map[string]string{"user_id": "id"},
			},
			{
				Name: "fetch user",
				URL:  "/api/users/{{user_id}}",
				Expect: &ExpectationSpec{
					Status: 200,
					Body:   map[string]any{"id": "{{user_id}}"},
				},
			},
		},
	}
}

func TestRunFlow_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	result := testRunner(srv.URL).RunFlow(context.Background(), lifecycleFlow())

	if result.Status != StatusPassed {
		t.Fatalf("status = %s, want passed; steps: %+v", result.Status, result.Steps)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(result.Steps))
	}
	if result.RunID == "" {
		t.Error("RunID must be set")
	}

	create := result.Steps[0]
	if create.Verdict != VerdictPassed || create.StatusCode != 201 {
		t.Errorf("create step = %+v", create)
	}
	if create.Extracted["user_id"] != float64(42) {
		t.Errorf("extracted user_id = %v, want 42", create.Extracted["user_id"])
	}

	fetch := result.Steps[1]
	if fetch.Request.URL != srv.URL+"/api/users/42" {
		t.Errorf("fetch URL = %q, want resolved /api/users/42", fetch.Request.URL)
	}
	if fetch.Verdict != VerdictPassed {
		t.Errorf("fetch step = %+v", fetch)
	}
}

func TestRunFlow_BodyMismatchOnSecondStep(t *testing.T) {
	srv := httptest.NewServer(userAPI(43))
	defer srv.Close()

	result := testRunner(srv.URL).RunFlow(context.Background(), lifecycleFlow())

	if result.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(result.Steps))
	}
	fetch := result.Steps[1]
	if fetch.Verdict != VerdictFailed || len(fetch.Mismatches) != 1 {
		t.Errorf("fetch step = %+v", fetch)
	}
}

func TestRunFlow_TransportErrorAborts(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	url := srv.URL
	srv.Close()

	result := testRunner(url).RunFlow(context.Background(), lifecycleFlow())

	if result.Status != StatusAborted {
		t.Fatalf("status = %s, want aborted", result.Status)
	}
	// Step 2 depends on step 1's extraction and must never run.
	if len(result.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want exactly 1", len(result.Steps))
	}
	failed := result.Steps[0]
	if failed.Verdict != VerdictFailed || failed.Failure == nil {
		t.Fatalf("step = %+v", failed)
	}
	if failed.Failure.Type != ErrorTypeTransport {
		t.Errorf("failure type = %s, want transport", failed.Failure.Type)
	}
}

func TestRunFlow_AssertionMismatchContinues(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	flow := &Flow{
		Name: "diagnostics",
		Steps: []Step{
			{URL: "/api/broken", Expect: &ExpectationSpec{Status: 200}},
			{URL: "/api/health", Expect: &ExpectationSpec{Status: 200}},
		},
	}

	result := testRunner(srv.URL).RunFlow(context.Background(), flow)

	if result.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want both steps attempted", len(result.Steps))
	}
	if result.Steps[0].Verdict != VerdictFailed {
		t.Errorf("step 0 = %+v", result.Steps[0])
	}
	if result.Steps[1].Verdict != VerdictPassed {
		t.Errorf("step 1 = %+v", result.Steps[1])
	}
}

func TestRunFlow_ZeroStepsPassesVacuously(t *testing.T) {
	result := testRunner("http://localhost:1").RunFlow(context.Background(), &Flow{Name: "empty"})

	if result.Status != StatusPassed {
		t.Errorf("status = %s, want passed", result.Status)
	}
	if len(result.Steps) != 0 {
		t.Errorf("len(Steps) = %d, want 0", len(result.Steps))
	}
}

func TestRunFlow_ConditionSkipsStep(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	flow := &Flow{
		Name: "conditional",
		Steps: []Step{
			{
				Name: "guarded",
				If:   `defined("user_id")`,
				URL:  "/api/users/{{user_id}}",
			},
			{URL: "/api/health", Expect: &ExpectationSpec{Status: 200}},
		},
	}

	result := testRunner(srv.URL).RunFlow(context.Background(), flow)

	if result.Status != StatusPassed {
		t.Fatalf("status = %s, want passed (skips are not failures)", result.Status)
	}
	if result.Steps[0].Verdict != VerdictSkipped {
		t.Errorf("step 0 = %+v, want skipped", result.Steps[0])
	}
	if result.Steps[1].Verdict != VerdictPassed {
		t.Errorf("step 1 = %+v", result.Steps[1])
	}
}

func TestRunFlow_VariablesSeedTemplates(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	flow := &Flow{
		Name:      "seeded",
		Variables: map[string]any{"uid": 42},
		Steps: []Step{
			{
				// base_url is bound automatically, like any other variable.
				URL:    "{{base_url}}/api/users/{{uid}}",
				Expect: &ExpectationSpec{Status: 200},
			},
		},
	}

	result := testRunner(srv.URL).RunFlow(context.Background(), flow)

	if result.Status != StatusPassed {
		t.Fatalf("status = %s, steps %+v", result.Status, result.Steps)
	}
	if result.Steps[0].Request.URL != srv.URL+"/api/users/42" {
		t.Errorf("resolved URL = %q", result.Steps[0].Request.URL)
	}
}

func TestRunFlow_NonJSONBodyExtractionNote(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	flow := &Flow{
		Name: "text",
		Steps: []Step{
			{
				URL:     "/api/text",
				Expect:  &ExpectationSpec{Status: 200},
				Extract: map[string]string{"id": "id"},
			},
		},
	}

	result := testRunner(srv.URL).RunFlow(context.Background(), flow)

	// Extraction failure is a note, not a step failure.
	if result.Status != StatusPassed {
		t.Fatalf("status = %s, want passed", result.Status)
	}
	step := result.Steps[0]
	if len(step.Notes) != 1 {
		t.Errorf("notes = %v, want one extraction note", step.Notes)
	}
	if step.Body != "pong" {
		t.Errorf("body = %v, want opaque text", step.Body)
	}
}

func TestRunFlow_StepTimeout(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	flow := &Flow{
		Name: "slow",
		Steps: []Step{
			{URL: "/api/slow", Timeout: 0.05, Expect: &ExpectationSpec{Status: 200}},
			{URL: "/api/health"},
		},
	}

	result := testRunner(srv.URL).RunFlow(context.Background(), flow)

	if result.Status != StatusAborted {
		t.Fatalf("status = %s, want aborted", result.Status)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(result.Steps))
	}
	fe := result.Steps[0].Failure
	if fe == nil || fe.Type != ErrorTypeTimeout {
		t.Errorf("failure = %+v, want timeout", fe)
	}
}

func TestRunFlow_CancellationAborts(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := testRunner(srv.URL).RunFlow(ctx, lifecycleFlow())

	if result.Status != StatusAborted {
		t.Errorf("status = %s, want aborted", result.Status)
	}
	if len(result.Steps) != 0 {
		t.Errorf("len(Steps) = %d, want 0 (canceled before the first step)", len(result.Steps))
	}
}

func TestRunStep_DirectMode(t *testing.T) {
	srv := httptest.NewServer(userAPI(42))
	defer srv.Close()

	step := Step{
		Method:  "GET",
		URL:     "/api/users/7",
		Expect:  &ExpectationSpec{Status: 200},
		Extract: map[string]string{"user_id": "id"},
	}

	result := testRunner(srv.URL).RunStep(context.Background(), step)

	if result.Status != StatusPassed {
		t.Fatalf("status = %s, steps %+v", result.Status, result.Steps)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("len(Steps) = %d, want degenerate one-step flow", len(result.Steps))
	}
	if result.Flow != "GET /api/users/7" {
		t.Errorf("flow name = %q", result.Flow)
	}
	if result.Steps[0].Extracted["user_id"] != float64(42) {
		t.Errorf("extracted = %v", result.Steps[0].Extracted)
	}
}

func TestRunFlow_StepBaseURLOverride(t *testing.T) {
	primary := httptest.NewServer(userAPI(42))
	defer primary.Close()
	secondary := httptest.NewServer(userAPI(42))
	defer secondary.Close()

	flow := &Flow{
		Name: "override",
		Steps: []Step{
			{URL: "/api/health", Expect: &ExpectationSpec{Status: 200}},
			{URL: "/api/health", BaseURL: secondary.URL, Expect: &ExpectationSpec{Status: 200}},
		},
	}

	result := testRunner(primary.URL).RunFlow(context.Background(), flow)

	if result.Status != StatusPassed {
		t.Fatalf("status = %s", result.Status)
	}
	if got := result.Steps[1].Request.URL; got != secondary.URL+"/api/health" {
		t.Errorf("step 1 URL = %q, want secondary base", got)
	}
}
