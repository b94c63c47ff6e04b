package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(":0", t.TempDir())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func postJob(t *testing.T, s *Server, config JobConfig) Job {
	t.Helper()

	body, _ := json.Marshal(config)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()

	s.handleCreateJob(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var job Job
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return job
}

func waitForState(t *testing.T, s *Server, jobID string, want JobState) Job {
	t.Helper()

	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			job, _ := s.jobManager.GetJob(jobID)
			t.Fatalf("Job never reached %s, stuck at %+v", want, job)
		case <-time.After(20 * time.Millisecond):
			job, ok := s.jobManager.GetJob(jobID)
			if !ok {
				t.Fatal("Job disappeared")
			}
			if job.State == want {
				return job
			}
			if job.State == StateFailed && want != StateFailed {
				t.Fatalf("Job failed: %s", job.Error)
			}
		}
	}
}

func TestServer_RunJobEndToEnd(t *testing.T) {
	s := newTestServer(t)

	job := postJob(t, s, JobConfig{
		Algorithm: "vqe",
		Preset:    "two-level",
		Optimizer: "nelder-mead",
		Layers:    1,
		Seed:      42,
	})

	done := waitForState(t, s, job.ID, StateCompleted)

	if len(done.Pairs) != 1 {
		t.Fatalf("Expected 1 eigenpair, got %d", len(done.Pairs))
	}
	if done.Pairs[0].Value > 0.1 {
		t.Errorf("Two-level ground value = %v, want near 0", done.Pairs[0].Value)
	}
	if done.EndTime == nil {
		t.Error("EndTime should be set")
	}

	// The finished run must be persisted.
	runs, err := s.store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != job.ID {
		t.Errorf("Run not persisted: %v", runs)
	}
}

func TestServer_CreateJobValidation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte("{invalid")))
	w := httptest.NewRecorder()
	s.handleCreateJob(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Invalid JSON should yield 400, got %d", w.Code)
	}

	body, _ := json.Marshal(JobConfig{Algorithm: "annealing"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w = httptest.NewRecorder()
	s.handleCreateJob(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Unknown algorithm should yield 400, got %d", w.Code)
	}
}

func TestServer_GetJob(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nonexistent", nil)
	w := httptest.NewRecorder()
	s.handleJobsWithID(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Missing job should yield 404, got %d", w.Code)
	}

	job := s.jobManager.CreateJob(JobConfig{Algorithm: "vqe", Preset: "two-level", Optimizer: "mayfly"})

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+job.ID, nil)
	w = httptest.NewRecorder()
	s.handleJobsWithID(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status["id"] != job.ID || status["state"] != string(StatePending) {
		t.Errorf("Wrong status payload: %v", status)
	}
}

func TestServer_CancelUnknownJob(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/nonexistent", nil)
	w := httptest.NewRecorder()
	s.handleJobsWithID(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Cancelling a missing job should yield 404, got %d", w.Code)
	}
}

func TestServer_ListRunsEmpty(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	s.handleListRuns(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
