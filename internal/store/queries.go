package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pooltrack/pooltrack/internal/pooltag"
	"github.com/pooltrack/pooltrack/internal/session"
)

// Timestamps are stored as RFC3339Nano strings, always in UTC: snapshots
// of one sweep share an exact timestamp and LoadSeries relies on that
// equality to reconstruct sweep boundaries. A single offset also keeps the
// text column's lexicographic order chronological, which LoadSeries sorts
// on; a wall-clock offset change mid-session (DST) must not reorder rows.
const timeLayout = time.RFC3339Nano

// Session operations

// CreateSession inserts a new session row and returns its ID.
func (s *Store) CreateSession(startedAt time.Time, intervalSeconds, plannedSamples int, thresholdBytes uint64, note string) (int64, error) {
	query := `
		INSERT INTO sessions (started_at, interval_seconds, planned_samples, threshold_bytes, note)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query,
		startedAt.UTC().Format(timeLayout),
		intervalSeconds,
		plannedSamples,
		int64(thresholdBytes),
		note,
	)
	if err != nil {
		return 0, wrapQueryError("failed to create session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return id, nil
}

// FinishSession records a session's end time and completed sweep count.
func (s *Store) FinishSession(id int64, endedAt time.Time, completedSamples int) error {
	query := `UPDATE sessions SET ended_at = ?, completed_samples = ? WHERE id = ?`
	res, err := s.db.Exec(query, endedAt.UTC().Format(timeLayout), completedSamples, id)
	if err != nil {
		return wrapQueryError("failed to finish session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check finish result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %d not found", id)
	}
	return nil
}

// GetSession retrieves one session by ID.
func (s *Store) GetSession(id int64) (*Session, error) {
	query := `
		SELECT id, started_at, ended_at, interval_seconds, planned_samples,
		       completed_samples, threshold_bytes, note
		FROM sessions
		WHERE id = ?
	`
	sess, err := scanSession(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %d not found", id)
	}
	if err != nil {
		return nil, wrapQueryError(fmt.Sprintf("failed to get session %d", id), err)
	}
	return sess, nil
}

// LatestSessionID returns the most recently started session's ID.
func (s *Store) LatestSessionID() (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM sessions ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no recorded sessions")
	}
	if err != nil {
		return 0, wrapQueryError("failed to find latest session", err)
	}
	return id, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions() ([]*Session, error) {
	query := `
		SELECT id, started_at, ended_at, interval_seconds, planned_samples,
		       completed_samples, threshold_bytes, note
		FROM sessions
		ORDER BY id DESC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapQueryError("failed to list sessions", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var startedAt string
	var endedAt sql.NullString
	var threshold int64

	err := row.Scan(
		&sess.ID,
		&startedAt,
		&endedAt,
		&sess.IntervalSeconds,
		&sess.PlannedSamples,
		&sess.CompletedSamples,
		&threshold,
		&sess.Note,
	)
	if err != nil {
		return nil, err
	}

	sess.ThresholdBytes = uint64(threshold)
	sess.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if endedAt.Valid {
		t, err := time.Parse(timeLayout, endedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		sess.EndedAt = &t
	}
	return &sess, nil
}

// Snapshot operations

// SweepWriter adapts a session row into a session.Sink that persists each
// sweep's retained snapshots.
type SweepWriter struct {
	store     *Store
	sessionID int64
}

var _ session.Sink = (*SweepWriter)(nil)

// SweepWriter returns a Sink persisting sweeps under the given session.
func (s *Store) SweepWriter(sessionID int64) *SweepWriter {
	return &SweepWriter{store: s, sessionID: sessionID}
}

// RecordSweep implements session.Sink.
func (w *SweepWriter) RecordSweep(at time.Time, tags map[pooltag.Tag]pooltag.Counters) error {
	return w.store.InsertSweep(w.sessionID, at, tags)
}

// InsertSweep stores one sweep's snapshots in a single transaction.
func (s *Store) InsertSweep(sessionID int64, at time.Time, tags map[pooltag.Tag]pooltag.Counters) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO snapshots
		(session_id, tag, captured_at, paged_bytes, nonpaged_bytes, paged_outstanding, nonpaged_outstanding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return wrapQueryError("failed to prepare snapshot insert", err)
	}
	defer stmt.Close()

	capturedAt := at.UTC().Format(timeLayout)
	for tag, c := range tags {
		_, err := stmt.Exec(
			sessionID,
			tag[:],
			capturedAt,
			int64(c.PagedBytes),
			int64(c.NonpagedBytes),
			c.PagedOutstanding,
			c.NonpagedOutstanding,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for tag %s: %w", tag.Display(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sweep: %w", err)
	}
	return nil
}

// LoadSeries rebuilds a session's in-memory result from stored snapshots.
// Series come back ordered by capture time; the result's end time is the
// latest capture, so the analyzer can tell live series from resolved ones.
func (s *Store) LoadSeries(sessionID int64) (*session.Result, error) {
	query := `
		SELECT tag, captured_at, paged_bytes, nonpaged_bytes, paged_outstanding, nonpaged_outstanding
		FROM snapshots
		WHERE session_id = ?
		ORDER BY captured_at, id
	`
	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, wrapQueryError("failed to load snapshots", err)
	}
	defer rows.Close()

	res := &session.Result{Series: make(map[pooltag.Tag][]session.Snapshot)}
	sweepTimes := make(map[time.Time]bool)

	for rows.Next() {
		var tagBytes []byte
		var capturedAt string
		var paged, nonpaged, pagedOut, nonpagedOut int64

		if err := rows.Scan(&tagBytes, &capturedAt, &paged, &nonpaged, &pagedOut, &nonpagedOut); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		at, err := time.Parse(timeLayout, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse captured_at: %w", err)
		}
		// Normalize to UTC so identical sweep timestamps compare equal as
		// map keys regardless of the offset they were stored with.
		at = at.UTC()

		var tag pooltag.Tag
		copy(tag[:], tagBytes)

		res.Series[tag] = append(res.Series[tag], session.Snapshot{
			Counters: pooltag.Counters{
				PagedBytes:          uint64(paged),
				NonpagedBytes:       uint64(nonpaged),
				PagedOutstanding:    pagedOut,
				NonpagedOutstanding: nonpagedOut,
			},
			CapturedAt: at,
		})

		if !sweepTimes[at] {
			sweepTimes[at] = true
			if res.Started.IsZero() || at.Before(res.Started) {
				res.Started = at
			}
			if at.After(res.Ended) {
				res.Ended = at
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	res.Sweeps = len(sweepTimes)
	return res, nil
}
