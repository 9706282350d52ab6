package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// BackupDir is the directory name under the CLI's home (spec §4.6
// "~/.n8n-cli/backups/").
const BackupDir = "backups"

// Backuper writes pre-mutation workflow snapshots (spec §4.6
// "Backup-before-mutation"). Locking against concurrent CLI invocations
// touching the same directory is grounded on the teacher's cmd/bd/sync.go
// use of gofrs/flock around its own single-writer state directory.
type Backuper struct {
	dir    string
	strict bool
}

// NewBackuper creates dir (mode 0700) if it does not exist and returns a
// Backuper rooted there. strict controls whether a backup failure aborts
// the caller's mutation (spec §4.6: "a backup failure surfaces a warning
// but does not abort the mutation unless the user opted into strict mode").
func NewBackuper(homeDir string, strict bool) (*Backuper, error) {
	dir := filepath.Join(homeDir, BackupDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("lifecycle: create backup dir: %w", err)
	}
	return &Backuper{dir: dir, strict: strict}, nil
}

// now is overridden in tests to keep snapshot filenames deterministic.
var now = time.Now

// Backup persists workflow (already-marshaled JSON) to
// {dir}/{operation}-{workflowId}-{timestamp}.json with owner-only
// permissions (spec §4.6). It acquires a directory-level lock so that two
// concurrent CLI invocations backing up the same workflow do not interleave
// writes. On failure, it returns an error only when strict mode is set;
// otherwise it returns a non-nil warning string and a nil error.
func (b *Backuper) Backup(ctx context.Context, operation, workflowID string, workflow []byte) (warning string, err error) {
	lockPath := filepath.Join(b.dir, ".backup.lock")
	lock := flock.New(lockPath)
	locked, lerr := lock.TryLockContext(ctx, 50*time.Millisecond)
	if lerr != nil || !locked {
		return b.fail(lerr, "acquire backup lock")
	}
	defer func() { _ = lock.Unlock() }()

	name := fmt.Sprintf("%s-%s-%d.json", operation, workflowID, now().UnixNano())
	path := filepath.Join(b.dir, name)

	var pretty map[string]any
	if err := json.Unmarshal(workflow, &pretty); err == nil {
		if formatted, ferr := json.MarshalIndent(pretty, "", "  "); ferr == nil {
			workflow = formatted
		}
	}

	if err := os.WriteFile(path, workflow, 0o600); err != nil {
		return b.fail(err, fmt.Sprintf("write backup %s", path))
	}
	return "", nil
}

func (b *Backuper) fail(cause error, what string) (string, error) {
	msg := fmt.Sprintf("lifecycle: backup: %s", what)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	if b.strict {
		return "", fmt.Errorf("%s", msg)
	}
	return "warning: " + msg, nil
}
