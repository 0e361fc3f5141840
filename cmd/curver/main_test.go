package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/being-motion/spline"
)

type testEnv struct {
	t      *testing.T
	dir    string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := "content:\n  dir: " + filepath.Join(dir, "content") + "\n  backend: files\nlog:\n  level: warn\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return &testEnv{t: t, dir: dir, config: path}
}

// run executes curver with args and returns its standard output.
func (env *testEnv) run(stdin string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", env.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (env *testEnv) mustRun(stdin string, args ...string) string {
	env.t.Helper()
	out, err := env.run(stdin, args...)
	require.NoError(env.t, err, "curver %s", strings.Join(args, " "))
	return out
}

func TestCreateListRemove(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "Untitled\n", env.mustRun("", "new"))
	assert.Equal(t, "Untitled 1\n", env.mustRun("", "new"))
	assert.Equal(t, "Untitled copy\n", env.mustRun("", "cp", "Untitled"))

	out := env.mustRun("", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, "Untitled copy")

	env.mustRun("", "mv", "Untitled 1", "wave")
	_, err := env.run("", "mv", "wave", "Untitled")
	assert.Error(t, err)

	env.mustRun("", "rm", "wave", "Untitled copy")
	out = env.mustRun("", "list")
	assert.NotContains(t, out, "wave")
	assert.Contains(t, out, "Untitled")

	_, err = env.run("", "rm", "missing")
	assert.Error(t, err)
}

func TestFitAndShow(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("time,value\n0,0\n1,1\n2,2\n", "fit", "-", "line")
	assert.Equal(t, "fitted 3 samples with 2 knots\n", out)

	var curve spline.BPoly
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("", "show", "line")), &curve))
	assert.Equal(t, []float64{0, 2}, curve.Knots())

	out = env.mustRun("", "show", "line", "-n", "3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		fields := strings.Fields(line)
		require.Len(t, fields, 2)
		y, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		assert.InDelta(t, float64(i), y, 1e-9)
	}
}

func TestFitInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("0,0\n1,x\n", "fit", "-", "broken")
	assert.Error(t, err)
	_, err = env.run("0,0\n", "fit", "-", "short")
	assert.Error(t, err)
}

func TestReadSamples(t *testing.T) {
	samples, err := readSamples(strings.NewReader("# recorded\nt, y\n0, 1\n0.5, 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []spline.Point{spline.Pt(0, 1), spline.Pt(0.5, 2)}, samples)

	_, err = readSamples(strings.NewReader("0,1,2\n"))
	assert.Error(t, err)
}

func TestDrag(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("", "new")

	out := env.mustRun("", "drag", "Untitled", "--knot", "1", "--dy", "1")
	assert.Equal(t, "knot 1 at (1, 1)\n", out)

	// Knots keep their distance to the neighbour.
	out = env.mustRun("", "drag", "Untitled", "--knot", "1", "--dx", "-5")
	assert.Equal(t, "knot 1 at (0.1, 1)\n", out)

	out = env.mustRun("", "drag", "Untitled", "--segment", "0", "--cp", "2", "--dy", "0.5")
	assert.Contains(t, out, "control point 2 of segment 0")

	_, err := env.run("", "drag", "Untitled", "--knot", "7", "--dy", "1")
	assert.Error(t, err)
}

func TestDragOnImage(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("", "new")

	// On an 800x400 image the flat motion's last knot is drawn near (713, 200).
	out := env.mustRun("", "drag", "Untitled", "--at", "713,200", "--dy", "1")
	assert.Equal(t, "knot 1 at (1, 1)\n", out)

	out = env.mustRun("", "drag", "Untitled", "--knot", "1", "--pixels", "--dx", "-2000")
	assert.Equal(t, "knot 1 at (0.1, 1)\n", out)

	_, err := env.run("", "drag", "Untitled", "--at", "5,5", "--dy", "1")
	assert.Error(t, err)
	_, err = env.run("", "drag", "Untitled", "--at", "left", "--dy", "1")
	assert.Error(t, err)
}

func TestKnotEdits(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("0,0\n1,1\n2,2\n", "fit", "-", "line")

	assert.Equal(t, "3 knots\n", env.mustRun("", "insert-knot", "line", "1"))
	assert.Equal(t, "2 knots\n", env.mustRun("", "rm-knot", "line", "1"))

	_, err := env.run("", "rm-knot", "line", "1")
	assert.Error(t, err)
	_, err = env.run("", "insert-knot", "line", "soon")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("", "new")

	path := filepath.Join(env.dir, "out.png")
	env.mustRun("", "render", "Untitled", path, "--width", "200", "--height", "100")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	out := env.mustRun("", "render", "Untitled", "-", "--width", "120", "--height", "80")
	_, err = png.Decode(strings.NewReader(out))
	assert.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.config, []byte("content:\n  backend: tape\n"), 0o644))
	_, err := env.run("", "list")
	assert.Error(t, err)
}
