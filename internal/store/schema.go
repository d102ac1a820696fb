package store

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP,
    interval_seconds INTEGER NOT NULL,
    planned_samples INTEGER NOT NULL,
    completed_samples INTEGER NOT NULL DEFAULT 0,
    threshold_bytes INTEGER NOT NULL,
    note TEXT
);

CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL,
    tag BLOB NOT NULL,
    captured_at TIMESTAMP NOT NULL,
    paged_bytes INTEGER NOT NULL,
    nonpaged_bytes INTEGER NOT NULL,
    paged_outstanding INTEGER NOT NULL,
    nonpaged_outstanding INTEGER NOT NULL,
    FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_session_tag ON snapshots(session_id, tag);
`
