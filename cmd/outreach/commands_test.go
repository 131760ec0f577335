package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `
candidates:
  - name: Alice
    email: alice@example.com
    role: Frontend Developer
    match: 88
  - name: Bob
    email: bob@example.com
    role: Backend Developer
    match: 92
  - name: Carl
    email: carl@example.com
    role: Data Scientist
    match: 60
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func fixture(t *testing.T) (roster, db string) {
	t.Helper()
	dir := t.TempDir()
	roster = filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(roster, []byte(testRoster), 0o600))
	return roster, filepath.Join(dir, "status.db")
}

func TestStatusListsQualifyingCandidates(t *testing.T) {
	roster, db := fixture(t)

	store, err := repository.NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Bob":"sent"}`))
	require.NoError(t, store.Close())

	out, err := run(t, "status", "--roster", roster, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Alice")
	assert.Regexp(t, `Bob\s+Backend Developer\s+92%\s+sent`, out)
	assert.NotContains(t, out, "Carl")
}

func TestResetClearsStatus(t *testing.T) {
	roster, db := fixture(t)

	store, err := repository.NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "mailStatus", `{"Alice":"sent"}`))
	require.NoError(t, store.Close())

	_, err = run(t, "reset", "--roster", roster, "--db", db)
	require.NoError(t, err)

	out, err := run(t, "status", "--roster", roster, "--db", db)
	require.NoError(t, err)
	assert.NotContains(t, out, " sent")
}

func TestSendAllWithoutConfirmationSendsNothing(t *testing.T) {
	roster, db := fixture(t)

	out, err := run(t, "send-all", "--roster", roster, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 pending")
	assert.Contains(t, out, "--yes")
}

func TestSendUnknownCandidate(t *testing.T) {
	roster, db := fixture(t)

	_, err := run(t, "send", "Carl", "--roster", roster, "--db", db)
	assert.ErrorContains(t, err, "not a qualifying candidate")
}

func TestExportWritesWorkbook(t *testing.T) {
	roster, db := fixture(t)
	output := filepath.Join(t.TempDir(), "report")

	out, err := run(t, "export", "--roster", roster, "--db", db, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "report.xlsx")
	assert.FileExists(t, output+".xlsx")
}

func TestCommandsNeedRoster(t *testing.T) {
	_, db := fixture(t)
	_, err := run(t, "status", "--roster", "", "--db", db)
	assert.ErrorContains(t, err, "no roster")
}
