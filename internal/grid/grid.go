// Package grid enumerates the sample tasks of a run.
package grid

import (
	"errors"
	"fmt"

	"github.com/leandrodaf/midisampler/internal/pitch"
	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// ErrInvalidRange is returned for note, velocity or parameter values outside 0-127.
var ErrInvalidRange = errors.New("invalid range")

// Kind tells note tasks from parameter-row tasks.
type Kind int

const (
	// KindNote is one note/velocity of a preset; Task.ID is the preset number.
	KindNote Kind = iota
	// KindRow is one parameter row of a sweep; Task.ID is the row id.
	KindRow
)

func (k Kind) String() string {
	if k == KindRow {
		return "row"
	}
	return "preset"
}

// NoteSpec is a note and the velocity it is struck with.
type NoteSpec struct {
	Note     uint8
	Velocity uint8
}

// ParameterSetting is a control change applied before the note is triggered.
type ParameterSetting struct {
	Control uint8
	Value   uint8
}

// Row is one snapshot of synth parameters in a sweep.
type Row struct {
	ID       int
	Settings []ParameterSetting
}

// Task is one artifact to capture. Tasks are built once and never modified.
type Task struct {
	Kind     Kind
	ID       int
	Note     NoteSpec
	NoteName string
	Settings []ParameterSetting
	Filename string
}

// Namer derives the artifact filename of a task.
type Namer func(Task) string

// EnumerateNotes returns every (note, velocity) pair with velocity as the
// outer loop and note as the inner loop. Both note bounds are inclusive.
func EnumerateNotes(lo, hi int, velocities []int) ([]NoteSpec, error) {
	if lo < 0 || hi > contracts.MaxDataValue || lo > hi {
		return nil, fmt.Errorf("%w: notes %d-%d", ErrInvalidRange, lo, hi)
	}
	if len(velocities) == 0 {
		return nil, fmt.Errorf("%w: no velocities", ErrInvalidRange)
	}

	notes := make([]NoteSpec, 0, (hi-lo+1)*len(velocities))
	for _, v := range velocities {
		if v < 0 || v > contracts.MaxDataValue {
			return nil, fmt.Errorf("%w: velocity %d", ErrInvalidRange, v)
		}
		for n := lo; n <= hi; n++ {
			notes = append(notes, NoteSpec{Note: uint8(n), Velocity: uint8(v)})
		}
	}
	return notes, nil
}

// NoteTasks builds the tasks for one preset in the order notes are given.
func NoteTasks(preset int, notes []NoteSpec, name Namer) []Task {
	tasks := make([]Task, len(notes))
	for i, n := range notes {
		t := Task{
			Kind:     KindNote,
			ID:       preset,
			Note:     n,
			NoteName: pitch.Name(n.Note),
		}
		t.Filename = name(t)
		tasks[i] = t
	}
	return tasks
}

// RowTasks builds one task per parameter row, all played at the same note.
func RowTasks(rows []Row, note NoteSpec, name Namer) ([]Task, error) {
	if note.Note > contracts.MaxDataValue || note.Velocity > contracts.MaxDataValue {
		return nil, fmt.Errorf("%w: note %d velocity %d", ErrInvalidRange, note.Note, note.Velocity)
	}

	tasks := make([]Task, len(rows))
	for i, r := range rows {
		settings := make([]ParameterSetting, len(r.Settings))
		for j, s := range r.Settings {
			if s.Control > contracts.MaxDataValue || s.Value > contracts.MaxDataValue {
				return nil, fmt.Errorf("%w: row %d control %d value %d", ErrInvalidRange, r.ID, s.Control, s.Value)
			}
			settings[j] = s
		}
		t := Task{
			Kind:     KindRow,
			ID:       r.ID,
			Note:     note,
			NoteName: pitch.Name(note.Note),
			Settings: settings,
		}
		t.Filename = name(t)
		tasks[i] = t
	}
	return tasks, nil
}
