// Package pitch names MIDI note numbers.
package pitch

import (
	"fmt"
	"strings"
)

// Pitch classes as written on sample labels: sharps for C#, F# and G#,
// flats for Eb and Bb.
var classes = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}

// Name returns the scientific pitch name of a MIDI note, with middle C (60) as C4.
func Name(note uint8) string {
	return fmt.Sprintf("%s%d", classes[note%12], int(note)/12-1)
}

// Token turns a pitch name into a tag-safe token, spelling out sharps.
func Token(name string) string {
	return strings.ReplaceAll(name, "#", "Sharp")
}
