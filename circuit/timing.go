//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/gcmpc/channel"
	"github.com/markkurossi/tabulate"
)

var sizeUnits = []string{"B", "kB", "MB", "GB", "TB"}

// FileSize specifies a size in bytes.
type FileSize uint64

func (s FileSize) String() string {
	v := uint64(s)
	var unit int
	for v >= 1000 && unit+1 < len(sizeUnits) {
		v /= 1000
		unit++
	}
	return fmt.Sprintf("%d%s", v, sizeUnits[unit])
}

// Timing profiles the phases of a protocol run. Each phase records
// its duration and the traffic of the tracked channels during the
// phase.
type Timing struct {
	Start  time.Time
	Phases []*Phase
	tracks []*channel.Track
	sent   uint64
	rcvd   uint64
}

// Phase contains the time and traffic of one protocol phase.
type Phase struct {
	Label string
	Start time.Time
	End   time.Time
	Sent  uint64
	Rcvd  uint64
	Steps []Step
}

// Step is a named sub-duration of a phase.
type Step struct {
	Label    string
	Duration time.Duration
}

// NewTiming creates a new Timing measuring the argument channels.
func NewTiming(tracks ...*channel.Track) *Timing {
	return &Timing{
		Start:  time.Now(),
		tracks: tracks,
	}
}

// AddTracks adds channels to the traffic measurement. Their traffic
// so far is accounted to the next phase.
func (t *Timing) AddTracks(tracks ...*channel.Track) {
	t.tracks = append(t.tracks, tracks...)
}

func (t *Timing) traffic() (sent, rcvd uint64) {
	for _, tr := range t.tracks {
		sent += tr.NBitsWritten() / 8
		rcvd += tr.NBitsRead() / 8
	}
	return
}

// Phase ends the current phase and labels it.
func (t *Timing) Phase(label string) *Phase {
	start := t.Start
	if len(t.Phases) > 0 {
		start = t.Phases[len(t.Phases)-1].End
	}
	sent, rcvd := t.traffic()
	phase := &Phase{
		Label: label,
		Start: start,
		End:   time.Now(),
		Sent:  sent - min(sent, t.sent),
		Rcvd:  rcvd - min(rcvd, t.rcvd),
	}
	t.sent = sent
	t.rcvd = rcvd
	t.Phases = append(t.Phases, phase)
	return phase
}

// Step adds a named step to the phase.
func (p *Phase) Step(label string, d time.Duration) *Phase {
	p.Steps = append(p.Steps, Step{
		Label:    label,
		Duration: d,
	})
	return p
}

// Duration returns the phase duration.
func (p *Phase) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

func percent(a, b time.Duration) string {
	if b == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(a)/float64(b)*100)
}

// Print prints the profiling report to out.
func (t *Timing) Print(out io.Writer) {
	if len(t.Phases) == 0 {
		return
	}
	total := t.Phases[len(t.Phases)-1].End.Sub(t.Start)

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Phase").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Sent").SetAlign(tabulate.MR)
	tab.Header("Rcvd").SetAlign(tabulate.MR)

	var sent, rcvd uint64
	for _, phase := range t.Phases {
		d := phase.Duration()

		row := tab.Row()
		row.Column(phase.Label)
		row.Column(d.String())
		row.Column(percent(d, total))
		row.Column(FileSize(phase.Sent).String())
		row.Column(FileSize(phase.Rcvd).String())

		for idx, step := range phase.Steps {
			prefix := "├╴"
			if idx+1 == len(phase.Steps) {
				prefix = "╰╴"
			}
			row := tab.Row()
			row.Column(prefix + step.Label).SetFormat(tabulate.FmtItalic)
			row.Column(step.Duration.String()).SetFormat(tabulate.FmtItalic)
			row.Column(percent(step.Duration, d)).
				SetFormat(tabulate.FmtItalic)
		}
		sent += phase.Sent
		rcvd += phase.Rcvd
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent).String()).SetFormat(tabulate.FmtBold)
	row.Column(FileSize(rcvd).String()).SetFormat(tabulate.FmtBold)

	tab.Print(out)
}
