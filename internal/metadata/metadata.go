// Package metadata derives artifact filenames and Freesound bulk-description
// rows from sample tasks. Everything here is a pure function of the
// instrument description and the task.
package metadata

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/midisampler/internal/grid"
	"github.com/leandrodaf/midisampler/internal/pitch"
	"github.com/leandrodaf/midisampler/internal/wavfile"
)

// Instrument describes the synthesizer being sampled.
type Instrument struct {
	Name         string // Short name used in filenames, e.g. "Slim Phatty".
	Manufacturer string
	Summary      string // First line of every description; may contain HTML.
	Tags         string // Space separated tags shared by every sample.
	License      string
}

// SlimPhatty is the reference instrument.
var SlimPhatty = Instrument{
	Name:         "Slim Phatty",
	Manufacturer: "Moog",
	Summary: `Single note sampled from a Moog Slim Phatty analogue synthesizer. ` +
		`<a href="https://www.moogmusic.com/products/slim-phatty/">Slim Phatty</a> ` +
		`is a 2-voice analogue synthesizer designed by Moog Music.`,
	Tags:    "multisample single-note synthesizer analogue Moog Slim Phatty",
	License: "Creative Commons 0",
}

// Software is written to the INFO chunk of every artifact.
const Software = "midisampler"

// Row is one line of the bulk-description export.
type Row struct {
	AudioFilename string
	Name          string
	Tags          string
	Geotag        string
	Description   string
	License       string
	PackName      string
	IsExplicit    string
}

// Header is the fixed column header of the export.
var Header = []string{"audio_filename", "name", "tags", "geotag", "description", "license", "pack_name", "is_explicit"}

// Record returns the row's fields in Header order.
func (r Row) Record() []string {
	return []string{r.AudioFilename, r.Name, r.Tags, r.Geotag, r.Description, r.License, r.PackName, r.IsExplicit}
}

// Generator builds names and descriptions for one instrument.
type Generator struct {
	Instrument Instrument
}

// New returns a Generator for inst.
func New(inst Instrument) *Generator {
	return &Generator{Instrument: inst}
}

// Filename returns the artifact filename of t. Numbers are zero padded to
// three digits so files sort in grid order.
func (g *Generator) Filename(t grid.Task) string {
	if t.Kind == grid.KindRow {
		return fmt.Sprintf("%s row %03d.wav", g.Instrument.Name, t.ID)
	}
	return fmt.Sprintf("%s preset %03d - %03d (%s) - %03d.wav",
		g.Instrument.Name, t.ID, t.Note.Note, t.NoteName, t.Note.Velocity)
}

// Row returns the export row of t.
func (g *Generator) Row(t grid.Task) Row {
	inst := g.Instrument
	filename := t.Filename
	if filename == "" {
		filename = g.Filename(t)
	}

	tags := fmt.Sprintf("%s %s midi-note-%d midi-velocity-%d",
		inst.Tags, pitch.Token(t.NoteName), t.Note.Note, t.Note.Velocity)
	if t.Kind == grid.KindRow {
		tags += fmt.Sprintf(" parameter-row-%d", t.ID)
	}

	return Row{
		AudioFilename: filename,
		Name:          fmt.Sprintf("%s %s - %s (%d) - vel %d", inst.Name, label(t), t.NoteName, t.Note.Note, t.Note.Velocity),
		Tags:          strings.TrimSpace(tags),
		Description:   g.description(t),
		License:       inst.License,
		PackName:      g.PackName(t.Kind, t.ID),
		IsExplicit:    "0",
	}
}

// PackName groups every sample of a preset, or every row of a sweep.
func (g *Generator) PackName(kind grid.Kind, id int) string {
	if kind == grid.KindRow {
		return g.Instrument.Name + " parameter sweep"
	}
	return fmt.Sprintf("%s preset #%d", g.Instrument.Name, id)
}

// ExportFilename names the description file written for a preset or sweep.
func (g *Generator) ExportFilename(kind grid.Kind, id int) string {
	return g.PackName(kind, id) + " descriptions.csv"
}

// Info returns the tags embedded in the artifact itself.
func (g *Generator) Info(t grid.Task) wavfile.Info {
	row := g.Row(t)
	return wavfile.Info{
		Title:    row.Name,
		Artist:   strings.TrimSpace(g.Instrument.Manufacturer + " " + g.Instrument.Name),
		Keywords: strings.Join(strings.Fields(row.Tags), "; "),
		Comments: fmt.Sprintf("MIDI note %d, velocity %d", t.Note.Note, t.Note.Velocity),
		Genre:    "Sample",
		Software: Software,
	}
}

func label(t grid.Task) string {
	if t.Kind == grid.KindRow {
		return fmt.Sprintf("row #%d", t.ID)
	}
	return fmt.Sprintf("preset #%d", t.ID)
}

func (g *Generator) description(t grid.Task) string {
	inst := g.Instrument
	var b strings.Builder
	if inst.Summary != "" {
		b.WriteString(inst.Summary)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Synthesizer: %s\n", strings.TrimSpace(inst.Manufacturer+" "+inst.Name))
	if t.Kind == grid.KindRow {
		fmt.Fprintf(&b, "Parameter row #: %d\n", t.ID)
		settings := make([]string, len(t.Settings))
		for i, s := range t.Settings {
			settings[i] = fmt.Sprintf("CC%d=%d", s.Control, s.Value)
		}
		fmt.Fprintf(&b, "Control changes: %s\n", strings.Join(settings, " "))
	} else {
		fmt.Fprintf(&b, "Factory preset #: %d\n", t.ID)
	}
	fmt.Fprintf(&b, "Note: %s\nMidi note: %d\nMidi velocity: %d\n", t.NoteName, t.Note.Note, t.Note.Velocity)
	return b.String()
}
