package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/patentlake/pkg/errors"
)

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "patent.db")
}

func TestWithSession_CreatesFileAndParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "patent.db")

	err := WithSession(path, func(s *Session) error {
		_, err := s.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY)")
		return err
	})
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestWithSession_CommitsOnSuccess(t *testing.T) {
	path := testDBPath(t)

	require.NoError(t, WithSession(path, func(s *Session) error {
		if _, err := s.Exec("CREATE TABLE t (v TEXT)"); err != nil {
			return err
		}
		_, err := s.Exec("INSERT INTO t (v) VALUES (?)", "hello")
		return err
	}))

	var count int
	require.NoError(t, WithSession(path, func(s *Session) error {
		return s.QueryRow("SELECT COUNT(*) FROM t").Scan(&count)
	}))
	assert.Equal(t, 1, count)
}

func TestWithSession_RollsBackOnError(t *testing.T) {
	path := testDBPath(t)
	require.NoError(t, WithSession(path, func(s *Session) error {
		_, err := s.Exec("CREATE TABLE t (v TEXT)")
		return err
	}))

	boom := errors.New("boom")
	err := WithSession(path, func(s *Session) error {
		if _, execErr := s.Exec("INSERT INTO t (v) VALUES ('lost')"); execErr != nil {
			return execErr
		}
		return boom
	})
	// The original error must come back unchanged.
	assert.Same(t, boom, err)

	var count int
	require.NoError(t, WithSession(path, func(s *Session) error {
		return s.QueryRow("SELECT COUNT(*) FROM t").Scan(&count)
	}))
	assert.Zero(t, count)
}

func TestWithSession_ForeignKeysEnforced(t *testing.T) {
	path := testDBPath(t)
	require.NoError(t, WithSession(path, func(s *Session) error {
		if _, err := s.Exec("CREATE TABLE parents (id TEXT PRIMARY KEY)"); err != nil {
			return err
		}
		_, err := s.Exec(`CREATE TABLE children (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES parents (id) ON DELETE CASCADE
		)`)
		return err
	}))

	err := WithSession(path, func(s *Session) error {
		_, execErr := s.Exec("INSERT INTO children (parent_id) VALUES ('missing')")
		return execErr
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

func TestWithSession_CascadeDelete(t *testing.T) {
	path := testDBPath(t)
	require.NoError(t, WithSession(path, func(s *Session) error {
		if _, err := s.Exec("CREATE TABLE parents (id TEXT PRIMARY KEY)"); err != nil {
			return err
		}
		if _, err := s.Exec(`CREATE TABLE children (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id TEXT NOT NULL,
			FOREIGN KEY (parent_id) REFERENCES parents (id) ON DELETE CASCADE
		)`); err != nil {
			return err
		}
		if _, err := s.Exec("INSERT INTO parents (id) VALUES ('p1')"); err != nil {
			return err
		}
		_, err := s.Exec("INSERT INTO children (parent_id) VALUES ('p1')")
		return err
	}))

	require.NoError(t, WithSession(path, func(s *Session) error {
		_, err := s.Exec("DELETE FROM parents WHERE id = 'p1'")
		return err
	}))

	var count int
	require.NoError(t, WithSession(path, func(s *Session) error {
		return s.QueryRow("SELECT COUNT(*) FROM children").Scan(&count)
	}))
	assert.Zero(t, count)
}

func TestWithSession_OpenFailure(t *testing.T) {
	// A directory path is not a usable database file.
	dir := t.TempDir()
	err := WithSession(dir, func(s *Session) error {
		_, execErr := s.Exec("CREATE TABLE t (id INTEGER)")
		return execErr
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeStorageOpenFailed) ||
		apperrors.IsCode(err, apperrors.CodeStorageTxFailed))
}

func TestWithReadOnlySession_DiscardsWrites(t *testing.T) {
	path := testDBPath(t)
	require.NoError(t, WithSession(path, func(s *Session) error {
		_, err := s.Exec("CREATE TABLE t (v TEXT)")
		return err
	}))

	require.NoError(t, WithReadOnlySession(path, func(s *Session) error {
		_, err := s.Exec("INSERT INTO t (v) VALUES ('discarded')")
		return err
	}))

	var count int
	require.NoError(t, WithSession(path, func(s *Session) error {
		return s.QueryRow("SELECT COUNT(*) FROM t").Scan(&count)
	}))
	assert.Zero(t, count)
}
