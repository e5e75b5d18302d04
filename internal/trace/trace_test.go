package trace_test

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/graxinc/growbuf"
	"github.com/graxinc/growbuf/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestParse(t *testing.T) {
	s, err := trace.Parse([]byte(`
min_capacity: 2
max_capacity: 4
ops:
  - insert: 1
  - remove: 1
  - remove_at: 0
  - at: 3
  - trim: true
`))
	require.NoError(t, err)
	assert.Equal(t, 2, s.MinCapacity)
	assert.Equal(t, 4, s.MaxCapacity)
	require.Len(t, s.Ops, 5)
	assert.Equal(t, 1, *s.Ops[0].Insert)
	assert.Equal(t, 1, *s.Ops[1].Remove)
	assert.Equal(t, 0, *s.Ops[2].RemoveAt)
	assert.Equal(t, 3, *s.Ops[3].At)
	assert.True(t, s.Ops[4].Trim)
}

func TestParse_empty(t *testing.T) {
	s, err := trace.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, s.Ops)
}

func TestParse_invalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "ops:\n  - push: 1\n",
		"two ops":       "ops:\n  - insert: 1\n    remove: 1\n",
		"no op":         "ops:\n  - trim: false\n",
		"negative min":  "min_capacity: -1\n",
		"max below min": "min_capacity: 4\nmax_capacity: 2\n",
		"not yaml":      "ops: [\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := trace.Parse([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ops:\n  - insert: 7\n"), 0o600))

	s, err := trace.Load(path)
	require.NoError(t, err)
	require.Len(t, s.Ops, 1)

	_, err = trace.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	s, err := trace.Parse([]byte(`
ops:
  - insert: 1
  - insert: 2
  - insert: 3
  - remove: 2
  - at: 2
  - remove_at: 0
  - trim: true
`))
	require.NoError(t, err)

	steps, err := trace.Run(s, discard)
	require.NoError(t, err)
	require.Len(t, steps, 7)

	assert.Equal(t, []int{1, 2, 3}, steps[2].Values)
	assert.Equal(t, 10, steps[2].Capacity)

	assert.Equal(t, []int{1, 3}, steps[3].Values)
	assert.Equal(t, 2, steps[3].Size)

	assert.ErrorIs(t, steps[4].Err, growbuf.ErrOutOfRange)

	assert.Equal(t, []int{3}, steps[5].Values)
	assert.NoError(t, steps[6].Err)
	assert.Equal(t, 10, steps[6].Capacity)
}

func TestRun_exhausted(t *testing.T) {
	s, err := trace.Parse([]byte(`
max_capacity: 1
ops:
  - insert: 1
  - insert: 2
`))
	require.NoError(t, err)

	steps, err := trace.Run(s, discard)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.ErrorIs(t, steps[1].Err, growbuf.ErrExhausted)
	assert.Equal(t, []int{1}, steps[1].Values)
}

func TestPolicy(t *testing.T) {
	steps, err := trace.Run(trace.Policy(41), discard)
	require.NoError(t, err)
	require.Len(t, steps, 41+40+1)

	var caps []int
	for _, st := range steps[:41] {
		if len(caps) == 0 || caps[len(caps)-1] != st.Capacity {
			caps = append(caps, st.Capacity)
		}
	}
	assert.Equal(t, []int{10, 20, 40, 80}, caps)

	last := steps[len(steps)-1]
	assert.Equal(t, "trim", last.Op)
	assert.Equal(t, []int{40}, last.Values)
	assert.Equal(t, 1, last.Capacity)
}

func TestRun_removeMissed(t *testing.T) {
	s, err := trace.Parse([]byte(`
ops:
  - insert: 1
  - remove: 5
  - remove: 1
`))
	require.NoError(t, err)

	steps, err := trace.Run(s, discard)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.True(t, steps[1].Missed)
	assert.Equal(t, []int{1}, steps[1].Values)
	assert.False(t, steps[2].Missed)
	assert.Empty(t, steps[2].Values)
	assert.False(t, steps[0].Missed)

	var buf bytes.Buffer
	require.NoError(t, trace.Write(&buf, steps))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "   2 remove         5  size=1 cap=10 [1]  not found", lines[1])
	assert.NotContains(t, lines[2], "not found")
}

func TestWrite(t *testing.T) {
	steps := []trace.Step{
		{N: 1, Op: "insert", Arg: 5, Size: 1, Capacity: 10, Values: []int{5}},
		{N: 2, Op: "at", Arg: 3, Size: 1, Capacity: 10, Values: []int{5}, Err: growbuf.ErrOutOfRange},
		{N: 3, Op: "trim", Size: 1, Capacity: 10, Values: []int{5}},
	}

	var buf bytes.Buffer
	require.NoError(t, trace.Write(&buf, steps))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "   1 insert         5  size=1 cap=10 [5]", lines[0])
	assert.Contains(t, lines[1], "err=index out of range")
	assert.Equal(t, "   3 trim              size=1 cap=10 [5]", lines[2])
}
