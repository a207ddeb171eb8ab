package window

import (
	"math"

	"github.com/tremor-rt/tremor/value"
)

// ddSketch is a simplified DD-sketch (Masson, Rim & Lee): values are
// bucketed by log-relative-error, giving quantile estimates with a
// bounded relative error of `alpha` regardless of magnitude.
type ddSketch struct {
	alpha   float64
	gamma   float64
	buckets map[int]int64
	count   int64
}

func newDDSketch() Aggregator {
	const alpha = 0.01
	return &ddSketch{
		alpha:   alpha,
		gamma:   (1 + alpha) / (1 - alpha),
		buckets: make(map[int]int64),
	}
}

func (d *ddSketch) bucketOf(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(math.Log(v) / math.Log(d.gamma)))
}

func (d *ddSketch) Accumulate(v value.Value) error {
	f, ok := numeric(v)
	if !ok {
		return errNotNumeric("stats::dds", v)
	}
	d.buckets[d.bucketOf(f)]++
	d.count++
	return nil
}

func (d *ddSketch) Merge(o Aggregator) {
	other := o.(*ddSketch)
	for k, v := range other.buckets {
		d.buckets[k] += v
	}
	d.count += other.count
}

// Emit reports the estimated median as a single float; other
// quantiles are not exposed.
func (d *ddSketch) Emit() value.Value {
	return value.Float(d.quantile(0.5))
}

func (d *ddSketch) quantile(q float64) float64 {
	if d.count == 0 {
		return 0
	}
	target := int64(math.Ceil(q * float64(d.count)))
	keys := sortedIntKeys(d.buckets)
	var seen int64
	for _, k := range keys {
		seen += d.buckets[k]
		if seen >= target {
			return 2 * math.Pow(d.gamma, float64(k)) / (d.gamma + 1)
		}
	}
	return 0
}

func (d *ddSketch) Clone() Aggregator {
	out := &ddSketch{alpha: d.alpha, gamma: d.gamma, count: d.count, buckets: make(map[int]int64, len(d.buckets))}
	for k, v := range d.buckets {
		out.buckets[k] = v
	}
	return out
}

// hdrHistogram is a simplified fixed-precision histogram: values are
// rounded to `sigFigs` digits after the decimal point before being
// bucketed, a fixed absolute precision rather than the relative-error
// bound of a real HDR histogram. Emit reports only the number of
// accumulated values.
type hdrHistogram struct {
	sigFigs int
	buckets map[int64]int64
	count   int64
}

func newHDRHistogram() Aggregator {
	return &hdrHistogram{sigFigs: 3, buckets: make(map[int64]int64)}
}

func (h *hdrHistogram) bucketOf(v float64) int64 {
	scale := math.Pow(10, float64(h.sigFigs))
	return int64(math.Round(v * scale))
}

func (h *hdrHistogram) Accumulate(v value.Value) error {
	f, ok := numeric(v)
	if !ok {
		return errNotNumeric("stats::hdr", v)
	}
	h.buckets[h.bucketOf(f)]++
	h.count++
	return nil
}

func (h *hdrHistogram) Merge(o Aggregator) {
	other := o.(*hdrHistogram)
	for k, v := range other.buckets {
		h.buckets[k] += v
	}
	h.count += other.count
}

func (h *hdrHistogram) Emit() value.Value {
	return value.Int(h.count)
}

func (h *hdrHistogram) Clone() Aggregator {
	out := &hdrHistogram{sigFigs: h.sigFigs, count: h.count, buckets: make(map[int64]int64, len(h.buckets))}
	for k, v := range h.buckets {
		out.buckets[k] = v
	}
	return out
}

func sortedIntKeys(m map[int]int64) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func errNotNumeric(name string, v value.Value) error {
	return &nonNumericErr{name: name, kind: v.Kind()}
}

type nonNumericErr struct {
	name string
	kind string
}

func (e *nonNumericErr) Error() string {
	return e.name + " expects numeric events, got " + e.kind
}
