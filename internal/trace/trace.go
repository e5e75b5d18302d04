// Package trace replays scripted operations against a growbuf.Buffer and
// records the buffer state after each one.
package trace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/graxinc/growbuf"
	"gopkg.in/yaml.v3"
)

// Script is the YAML form of a replay.
type Script struct {
	MinCapacity int  `yaml:"min_capacity,omitempty"`
	MaxCapacity int  `yaml:"max_capacity,omitempty"`
	Ops         []Op `yaml:"ops"`
}

// Op sets exactly one of its fields.
type Op struct {
	Insert   *int `yaml:"insert,omitempty"`
	Remove   *int `yaml:"remove,omitempty"`
	RemoveAt *int `yaml:"remove_at,omitempty"`
	At       *int `yaml:"at,omitempty"`
	Trim     bool `yaml:"trim,omitempty"`
}

type Step struct {
	N        int
	Op       string
	Arg      int
	Size     int
	Capacity int
	Values   []int
	Err      error
	Missed   bool // remove found no equal element.
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script, rejecting unknown keys and ops that don't name
// exactly one operation.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.MinCapacity < 0 || s.MaxCapacity < 0 {
		return nil, errors.New("capacities must be >= 0")
	}
	if s.MaxCapacity > 0 && s.MaxCapacity < s.MinCapacity {
		return nil, errors.New("max_capacity below min_capacity")
	}
	for i, op := range s.Ops {
		if _, _, err := op.kind(); err != nil {
			return nil, fmt.Errorf("op %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// Policy inserts n values, removes all but the last and trims, showing the
// capacities the growth and trim rules produce.
func Policy(n int) *Script {
	var s Script
	for i := range n {
		s.Ops = append(s.Ops, Op{Insert: ptr(i)})
	}
	for i := range n - 1 {
		s.Ops = append(s.Ops, Op{Remove: ptr(i)})
	}
	s.Ops = append(s.Ops, Op{Trim: true})
	return &s
}

// Run replays s on a Buffer[int]. Errors returned by the buffer are recorded
// in the step, not returned.
func Run(s *Script, log *slog.Logger) ([]Step, error) {
	b, err := growbuf.NewWithOptions[int](growbuf.Options{
		MinCapacity: s.MinCapacity,
		MaxCapacity: s.MaxCapacity,
	})
	if err != nil {
		return nil, err
	}
	defer b.Release()

	steps := make([]Step, 0, len(s.Ops))
	for i, op := range s.Ops {
		name, arg, err := op.kind()
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i+1, err)
		}

		missed, err := apply(b, name, arg)
		st := Step{
			N:        i + 1,
			Op:       name,
			Arg:      arg,
			Size:     b.Size(),
			Capacity: b.Capacity(),
			Values:   b.Values(),
			Err:      err,
			Missed:   missed,
		}
		steps = append(steps, st)

		log.Debug("applied op", "n", st.N, "op", name, "arg", arg, "size", st.Size, "capacity", st.Capacity, "missed", missed, "err", err)
	}
	return steps, nil
}

func Write(w io.Writer, steps []Step) error {
	for _, st := range steps {
		var b strings.Builder
		fmt.Fprintf(&b, "%4d %-9s", st.N, st.Op)
		if st.Op == "trim" {
			fmt.Fprintf(&b, " %6s", "")
		} else {
			fmt.Fprintf(&b, " %6d", st.Arg)
		}
		fmt.Fprintf(&b, "  size=%d cap=%d %v", st.Size, st.Capacity, st.Values)
		if st.Missed {
			b.WriteString("  not found")
		}
		if st.Err != nil {
			fmt.Fprintf(&b, "  err=%v", st.Err)
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// The bool reports a remove that matched nothing.
func apply(b *growbuf.Buffer[int], name string, arg int) (bool, error) {
	switch name {
	case "insert":
		return false, b.Insert(arg)
	case "remove":
		return !b.Remove(arg), nil
	case "remove_at":
		_, err := b.RemoveAt(arg)
		return false, err
	case "at":
		_, err := b.At(arg)
		return false, err
	case "trim":
		return false, b.TrimExcess()
	}
	panic("unknown op " + name)
}

func (o Op) kind() (string, int, error) {
	var (
		name string
		arg  int
		n    int
	)
	set := func(nm string, v *int) {
		if v == nil {
			return
		}
		name, arg = nm, *v
		n++
	}
	set("insert", o.Insert)
	set("remove", o.Remove)
	set("remove_at", o.RemoveAt)
	set("at", o.At)
	if o.Trim {
		name = "trim"
		n++
	}

	switch n {
	case 0:
		return "", 0, errors.New("no operation")
	case 1:
		return name, arg, nil
	}
	return "", 0, errors.New("more than one operation")
}

func ptr[T any](v T) *T {
	return &v
}
