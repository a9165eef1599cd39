// Package report renders a finished search: the optimum blend and the
// convergence trace. It is a pure sink; nothing here feeds back into the
// search.
package report

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/crucible-opt/crucible/internal/composition"
	"github.com/crucible-opt/crucible/internal/optimization"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Reporter formats optimization results onto a writer.
type Reporter struct {
	w io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Write renders the optimum and the best-so-far trace.
func (r *Reporter) Write(result *optimization.Result) error {
	bl, err := composition.FromVector(result.Best.Params)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "best blend        a=%.3f  b=%.3f  c=%.3f\n", bl.A, bl.B, bl.Derived())
	fmt.Fprintf(&b, "predicted score   %.4f\n", result.Best.Score())
	fmt.Fprintf(&b, "feasible          %v\n", bl.Feasible())
	fmt.Fprintf(&b, "evaluations       %d\n", result.Evaluations)

	if len(result.Trace) > 0 {
		fmt.Fprintf(&b, "convergence       %s\n", sparkline(result.Trace))
		fmt.Fprintf(&b, "trace             first=%.4f  mean=%.4f  final=%.4f\n",
			result.Trace[0], stat.Mean(result.Trace, nil), result.Trace[len(result.Trace)-1])
	}

	_, err = io.WriteString(r.w, b.String())
	return err
}

// WriteTrace renders only the per-evaluation best-so-far values, one per
// line, for downstream plotting.
func (r *Reporter) WriteTrace(result *optimization.Result) error {
	var b strings.Builder
	for i, v := range result.Trace {
		fmt.Fprintf(&b, "%d\t%.6f\n", i+1, v)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// sparkline maps the trace onto block glyphs. A flat trace renders as the
// lowest glyph.
func sparkline(trace []float64) string {
	lo := floats.Min(trace)
	hi := floats.Max(trace)
	span := hi - lo

	var b strings.Builder
	for _, v := range trace {
		level := 0
		if span > 0 {
			level = int((v - lo) / span * float64(len(sparkLevels)-1))
		}
		b.WriteRune(sparkLevels[level])
	}
	return b.String()
}
