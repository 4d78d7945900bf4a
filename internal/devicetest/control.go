// Package devicetest provides in-memory control and capture devices for tests.
package devicetest

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/midisampler/sdk/contracts"
)

// EventKind identifies a recorded control message.
type EventKind string

// Recorded message kinds.
const (
	NoteOn        EventKind = "note_on"        // Data1 note, Data2 velocity.
	NoteOff       EventKind = "note_off"       // Data1 note.
	ProgramChange EventKind = "program_change" // Data1 program.
	ControlChange EventKind = "control_change" // Data1 control, Data2 value.
)

// Event is one control message as received by Control.
type Event struct {
	Kind  EventKind
	Data1 uint8 // Note, program or control number.
	Data2 uint8 // Velocity or control value.
}

// Control records every message it is sent.
type Control struct {
	mu     sync.Mutex
	events []Event

	Devices   []contracts.DeviceInfo
	SelectErr error // Returned by SelectDevice.
	SendErr   error // Wrapped in ErrControlChannel and returned by every send.
	Selected  string
	Stopped   bool

	// OnEvent, when set, runs after each message is recorded.
	OnEvent func(Event)
}

func (c *Control) record(e Event) error {
	c.mu.Lock()
	c.events = append(c.events, e)
	hook := c.OnEvent
	c.mu.Unlock()

	if hook != nil {
		hook(e)
	}
	if c.SendErr != nil {
		return fmt.Errorf("%w: %v", contracts.ErrControlChannel, c.SendErr)
	}
	return nil
}

// ListDevices returns Devices.
func (c *Control) ListDevices() ([]contracts.DeviceInfo, error) {
	return c.Devices, nil
}

// SelectDevice remembers name, or fails with SelectErr.
func (c *Control) SelectDevice(name string) error {
	if c.SelectErr != nil {
		return c.SelectErr
	}
	c.Selected = name
	return nil
}

// NoteOn records a NoteOn event.
func (c *Control) NoteOn(note, velocity uint8) error {
	return c.record(Event{NoteOn, note, velocity})
}

// NoteOff records a NoteOff event.
func (c *Control) NoteOff(note uint8) error {
	return c.record(Event{NoteOff, note, 0})
}

// ProgramChange records a ProgramChange event.
func (c *Control) ProgramChange(program uint8) error {
	return c.record(Event{ProgramChange, program, 0})
}

// ControlChange records a ControlChange event.
func (c *Control) ControlChange(control, value uint8) error {
	return c.record(Event{ControlChange, control, value})
}

// Stop marks the channel as stopped.
func (c *Control) Stop() error {
	c.Stopped = true
	return nil
}

// Events returns a copy of everything received so far.
func (c *Control) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Reset forgets recorded events.
func (c *Control) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// Sounding returns the notes that received a Note On with no later Note Off.
func (c *Control) Sounding() []uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()

	on := map[uint8]bool{}
	var order []uint8
	for _, e := range c.events {
		switch e.Kind {
		case NoteOn:
			if !on[e.Data1] {
				order = append(order, e.Data1)
			}
			on[e.Data1] = true
		case NoteOff:
			on[e.Data1] = false
		}
	}
	var out []uint8
	for _, n := range order {
		if on[n] {
			out = append(out, n)
		}
	}
	return out
}

// LastNoteOn returns the most recent Note On, if any.
func (c *Control) LastNoteOn() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Kind == NoteOn {
			return c.events[i], true
		}
	}
	return Event{}, false
}

// Count returns how many events of kind were received.
func (c *Control) Count(kind EventKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
