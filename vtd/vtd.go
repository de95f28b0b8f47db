/*Package vtd presents the products of a sweep: the voltage transfer
diagram (output vs input) and the time series of both channels, as CSV,
printed triples, or rendered charts.
*/
package vtd

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lightwell/godwf/sweep"
)

// Recording is a sweep result prepared for presentation.
type Recording struct {
	// Samples is the ordered (time, input, output) sequence.
	Samples []sweep.Sample

	// Total is the wall time the sweep took.
	Total time.Duration
}

// FromResult converts a sweep result into a Recording.
func FromResult(r sweep.Result) Recording {
	return Recording{Samples: r.Samples, Total: r.Total}
}

// EncodeCSV writes the recording to a CSV in streaming fashion, one row
// per sample: time, input, output.
func (r Recording) EncodeCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	row := []string{"time", "input", "output"}
	if err := cw.Write(row); err != nil {
		return err
	}
	for _, s := range r.Samples {
		row[0] = strconv.FormatFloat(s.Elapsed, 'G', -1, 64)
		row[1] = strconv.FormatFloat(s.Input, 'G', -1, 64)
		row[2] = strconv.FormatFloat(s.Output, 'G', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// Fprint writes the raw triples to w, one per line.
func (r Recording) Fprint(w io.Writer) error {
	for _, s := range r.Samples {
		_, err := fmt.Fprintf(w, "(%G, %G, %G)\n", s.Elapsed, s.Input, s.Output)
		if err != nil {
			return err
		}
	}
	return nil
}
