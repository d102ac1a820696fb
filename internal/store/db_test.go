package store

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// setupTestStore creates an in-memory store with schema applied.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) failed: %v", err)
	}
	if err := s.CreateSchema(); err != nil {
		s.Close()
		t.Fatalf("CreateSchema failed: %v", err)
	}
	return s
}

func TestListSessions_NoSchema_ReturnsErrNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	// Do NOT call CreateSchema, simulating an uninitialized database.
	_, err = s.ListSessions()
	if err == nil {
		t.Fatal("ListSessions() should return an error on uninitialized DB")
	}
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ListSessions() error = %v; want errors.Is(err, ErrNotInitialized)", err)
	}
}

func TestErrNotInitialized_ErrorMessage(t *testing.T) {
	msg := ErrNotInitialized.Error()
	if msg == "" {
		t.Error("ErrNotInitialized.Error() should not be empty")
	}
	if !strings.Contains(msg, "pooltrack track") {
		t.Errorf("ErrNotInitialized message %q should mention 'pooltrack track'", msg)
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	if err := s.CreateSchema(); err != nil {
		t.Errorf("second CreateSchema failed: %v", err)
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	started := time.Now().UTC()
	id, err := s.CreateSession(started, 30, 20, 1<<20, "overnight run")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero session id")
	}

	sess, err := s.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !sess.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, started)
	}
	if sess.EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil for in-progress session", sess.EndedAt)
	}
	if sess.IntervalSeconds != 30 || sess.PlannedSamples != 20 {
		t.Errorf("interval/planned = %d/%d, want 30/20", sess.IntervalSeconds, sess.PlannedSamples)
	}
	if sess.ThresholdBytes != 1<<20 {
		t.Errorf("ThresholdBytes = %d, want %d", sess.ThresholdBytes, 1<<20)
	}
	if sess.Note != "overnight run" {
		t.Errorf("Note = %q, want %q", sess.Note, "overnight run")
	}
}

func TestFinishSession(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	started := time.Now().UTC()
	id, err := s.CreateSession(started, 30, 20, 1<<20, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	ended := started.Add(10 * time.Minute)
	if err := s.FinishSession(id, ended, 14); err != nil {
		t.Fatalf("FinishSession failed: %v", err)
	}

	sess, err := s.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.EndedAt == nil || !sess.EndedAt.Equal(ended) {
		t.Errorf("EndedAt = %v, want %v", sess.EndedAt, ended)
	}
	if sess.CompletedSamples != 14 {
		t.Errorf("CompletedSamples = %d, want 14", sess.CompletedSamples)
	}
}

func TestFinishSession_UnknownID(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	if err := s.FinishSession(999, time.Now(), 1); err == nil {
		t.Error("expected error finishing unknown session")
	}
}

func TestLatestSessionID(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	if _, err := s.LatestSessionID(); err == nil {
		t.Error("expected error with no sessions recorded")
	}

	now := time.Now().UTC()
	if _, err := s.CreateSession(now, 30, 10, 1<<20, ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	second, err := s.CreateSession(now.Add(time.Hour), 60, 5, 1<<20, "")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	latest, err := s.LatestSessionID()
	if err != nil {
		t.Fatalf("LatestSessionID failed: %v", err)
	}
	if latest != second {
		t.Errorf("LatestSessionID = %d, want %d", latest, second)
	}
}

func TestListSessions_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if _, err := s.CreateSession(now.Add(time.Duration(i)*time.Hour), 30, 10, 1<<20, ""); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].ID >= sessions[i-1].ID {
			t.Errorf("sessions not ordered newest first: %d before %d", sessions[i-1].ID, sessions[i].ID)
		}
	}
}
