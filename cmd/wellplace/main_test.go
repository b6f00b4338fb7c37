package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

const techNoWells = `
grid 1 1
rowheight 10
nwell 2 1 1 50 1
pwell 2 1 1 50 1
type INV 20 10
pin INV a 5 5
pin INV z 15 5
type BUF 30 10
`

const designSmall = `
region 0 0 300 100
block u1 INV 10 10
block u2 INV 200 40
block u3 BUF 100 80
net 1 u1:z u2:a
net 1 u2:z u3
`

// TestRunTetrisFlow drives the binary end to end on a well-less design: the
// driver must fall back to the Tetris legalizer and exit 0.
func TestRunTetrisFlow(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"tech.txt":   techNoWells,
		"design.txt": designSmall,
	})
	out := filepath.Join(dir, "result")
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-lef", filepath.Join(dir, "tech.txt"),
		"-def", filepath.Join(dir, "design.txt"),
		"-o", out,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "tetris legalization")
	require.Contains(t, stdout.String(), "final HPWL")

	data, err := os.ReadFile(out + ".place")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for _, ln := range lines {
		require.Len(t, strings.Fields(ln), 5)
	}
}

const techWells = `
grid 1 1
rowheight 10
nwell 2 1 1 50 1
pwell 2 1 1 50 1
type INV 20 10
type TAP 4 10
type CAP 2 10
tap TAP
endcap CAP CAP
`

const cellWells = `
well INV 4 6
well TAP 4 6
well CAP 4 6
`

const designWells = `
region 0 0 300 100
block u1 INV 10 10
block u2 INV 60 10
block u3 INV 120 40
block u4 INV 180 40
net 1 u1 u2
net 1 u3 u4
`

// TestRunWellFlow drives the well-aware path end to end.
func TestRunWellFlow(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"tech.txt":   techWells,
		"cell.txt":   cellWells,
		"design.txt": designWells,
	})
	out := filepath.Join(dir, "result")
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-lef", filepath.Join(dir, "tech.txt"),
		"-cell", filepath.Join(dir, "cell.txt"),
		"-def", filepath.Join(dir, "design.txt"),
		"-o", out,
		"-wlgmode", "scavenge",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Contains(t, stdout.String(), "well legalization")

	data, err := os.ReadFile(out + ".place")
	require.NoError(t, err)
	// taps and end caps were appended beyond the four instances
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Greater(t, len(lines), 4)
}

// TestRunUsageErrors exercises the exit-1 paths.
func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 1, run(nil, &stdout, &stderr), "missing -lef/-def")
	require.Equal(t, 1, run([]string{"-lef", "a", "-def", "b", "-d", "2"}, &stdout, &stderr), "bad density")
	require.Equal(t, 1, run([]string{"-lef", "a", "-def", "b", "-wlgmode", "bogus"}, &stdout, &stderr))
	require.Equal(t, 1, run([]string{"-lef", "/nonexistent", "-def", "/nonexistent"}, &stdout, &stderr))
}

// TestRunNoGlobalNoLegal skips both phases and still writes a result.
func TestRunNoGlobalNoLegal(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"tech.txt":   techNoWells,
		"design.txt": designSmall,
	})
	out := filepath.Join(dir, "result")
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"-lef", filepath.Join(dir, "tech.txt"),
		"-def", filepath.Join(dir, "design.txt"),
		"-o", out,
		"-noglobal", "-nolegal",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	_, err := os.Stat(out + ".place")
	require.NoError(t, err)
}
