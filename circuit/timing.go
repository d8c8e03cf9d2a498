//
// Copyright (c) 2020 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/tabulate"
)

// Timing records the duration of a sequence of named phases, in
// order, so the Orchestrator can report how long each phase of a
// computation (connect, key exchange, share distribution, gate
// evaluation, output gossip) took.
type Timing struct {
	Start   time.Time
	Samples []*Sample
}

// NewTiming starts a new timing sequence at the current time.
func NewTiming() *Timing {
	return &Timing{
		Start: time.Now(),
	}
}

// Sample records a new phase ending now, starting where the previous
// sample (or Start, for the first) left off.
func (t *Timing) Sample(label string, cols []string) *Sample {
	start := t.Start
	if len(t.Samples) > 0 {
		start = t.Samples[len(t.Samples)-1].End
	}
	sample := &Sample{
		Label: label,
		Start: start,
		End:   time.Now(),
		Cols:  cols,
	}
	t.Samples = append(t.Samples, sample)
	return sample
}

// Print renders the recorded phases as a table of label, duration,
// percentage of total, and any extra columns the caller attached.
func (t *Timing) Print() {
	if len(t.Samples) == 0 {
		return
	}

	tab := tabulate.New(tabulate.Github)
	tab.Header("Phase").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	total := t.Samples[len(t.Samples)-1].End.Sub(t.Start)
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)

		duration := sample.End.Sub(sample.Start)
		row.Column(duration.String())
		row.Column(fmt.Sprintf("%.2f%%", float64(duration)/float64(total)*100))

		for _, col := range sample.Cols {
			row.Column(col)
		}
	}
	row := tab.Row()
	row.Column("Total")
	row.Column(total.String())
	row.Column("100.00%")

	tab.Print(os.Stdout)
}

// Sample is a single recorded phase.
type Sample struct {
	Label   string
	Start   time.Time
	End     time.Time
	Cols    []string
	Samples []*Sample
}
