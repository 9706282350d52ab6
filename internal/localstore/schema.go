package localstore

// schema is adapted from the teacher's internal/storage/sqlite/schema.go:
// a single declarative multi-statement string of CREATE TABLE IF NOT EXISTS
// blocks plus CREATE INDEX IF NOT EXISTS statements, applied once at Open.
const schema = `
CREATE TABLE IF NOT EXISTS workflow_snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    workflow_id TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    operation   TEXT NOT NULL,
    content     TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_workflow_snapshots_workflow_id
    ON workflow_snapshots(workflow_id);
CREATE INDEX IF NOT EXISTS idx_workflow_snapshots_created_at
    ON workflow_snapshots(workflow_id, created_at);
`
