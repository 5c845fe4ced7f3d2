//
// track.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package channel

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

var (
	_ Stream = &Track{}
)

// Track implements a stream that counts the number of bits read and
// written.
type Track struct {
	s            Stream
	nbitsRead    uint64
	nbitsWritten uint64
}

// NewTrack creates a tracking stream around the argument stream.
func NewTrack(s Stream) *Track {
	return &Track{
		s: s,
	}
}

// Read implements io.Reader.
func (t *Track) Read(data []byte) (int, error) {
	n, err := t.s.Read(data)
	t.nbitsRead += uint64(n) * 8
	return n, err
}

// Write implements io.Writer.
func (t *Track) Write(data []byte) (int, error) {
	n, err := t.s.Write(data)
	t.nbitsWritten += uint64(n) * 8
	return n, err
}

// Flush implements Stream.Flush.
func (t *Track) Flush() error {
	return t.s.Flush()
}

// Clear clears the read and write counters.
func (t *Track) Clear() {
	t.nbitsRead = 0
	t.nbitsWritten = 0
}

// NBitsRead returns the number of bits read.
func (t *Track) NBitsRead() uint64 {
	return t.nbitsRead
}

// NBitsWritten returns the number of bits written.
func (t *Track) NBitsWritten() uint64 {
	return t.nbitsWritten
}

// KilobitsRead returns the number of kilobits read.
func (t *Track) KilobitsRead() float64 {
	return float64(t.nbitsRead) / 1000
}

// KilobitsWritten returns the number of kilobits written.
func (t *Track) KilobitsWritten() float64 {
	return float64(t.nbitsWritten) / 1000
}

// TotalKilobits returns the total number of kilobits read and
// written.
func (t *Track) TotalKilobits() float64 {
	return t.KilobitsRead() + t.KilobitsWritten()
}

// KilobytesRead returns the number of kilobytes read.
func (t *Track) KilobytesRead() float64 {
	return t.KilobitsRead() / 8
}

// KilobytesWritten returns the number of kilobytes written.
func (t *Track) KilobytesWritten() float64 {
	return t.KilobitsWritten() / 8
}

// TotalKilobytes returns the total number of kilobytes read and
// written.
func (t *Track) TotalKilobytes() float64 {
	return t.KilobytesRead() + t.KilobytesWritten()
}

// Report prints the bandwidth report of the named tracking streams.
func Report(out io.Writer, names []string, tracks []*Track) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Channel").SetAlign(tabulate.ML)
	tab.Header("Read kB").SetAlign(tabulate.MR)
	tab.Header("Written kB").SetAlign(tabulate.MR)
	tab.Header("Total kB").SetAlign(tabulate.MR)

	var read, written float64
	for idx, t := range tracks {
		row := tab.Row()
		row.Column(names[idx])
		row.Column(fmt.Sprintf("%.2f", t.KilobytesRead()))
		row.Column(fmt.Sprintf("%.2f", t.KilobytesWritten()))
		row.Column(fmt.Sprintf("%.2f", t.TotalKilobytes()))

		read += t.KilobytesRead()
		written += t.KilobytesWritten()
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%.2f", read)).SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%.2f", written)).SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%.2f", read+written)).SetFormat(tabulate.FmtBold)

	tab.Print(out)
}
