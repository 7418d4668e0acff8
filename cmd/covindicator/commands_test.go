package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
branches:
  - {id: 1, first_line: 10, last_line: 14}
  - {id: 2, first_line: 20, last_line: 22}
methods:
  - {class: com.example.Util, method: hash, instructions: 8}
`

const testTraces = `
tests:
  - name: both
    covered_true: [1]
    no_execution: {1: 4}
    branchless_methods: {com.example.Util.hash: 5}
  - name: light
    covered_false: [2]
    no_execution: {2: 2}
  - name: unknown
    covered_true: [77]
    no_execution: {77: 9}
`

const testConfig = `
log:
  level: error
  output: stderr
`

func writeFiles(t *testing.T) (cfg, cat, traces string) {
	t.Helper()
	dir := t.TempDir()
	cfg = filepath.Join(dir, "config.yaml")
	cat = filepath.Join(dir, "catalog.yaml")
	traces = filepath.Join(dir, "traces.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0o644))
	require.NoError(t, os.WriteFile(cat, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(traces, []byte(testTraces), 0o644))
	return cfg, cat, traces
}

func TestScoreCommand(t *testing.T) {
	cfg, cat, traces := writeFiles(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"score", "--config", cfg, "--catalog", cat, "--traces", traces, "--workers", "2"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "both\t60\nlight\t0\nunknown\t0\n", out.String())
}

func TestIndexCommand(t *testing.T) {
	cfg, cat, _ := writeFiles(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"index", "--config", cfg, "--catalog", cat})
	require.NoError(t, cmd.Execute())

	want := "branches\t2\nmethods\t1\nbranch 1\t5\nbranch 2\t3\nmethod com.example.Util.hash\t8\n"
	assert.Equal(t, want, out.String())
}

func TestScoreCommand_RequiresTraces(t *testing.T) {
	_, cat, _ := writeFiles(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"score", "--catalog", cat})
	assert.Error(t, cmd.Execute())
}
