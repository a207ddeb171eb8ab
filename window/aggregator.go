// Package window implements tumbling windows, tilt-frame cascades, and
// the streaming aggregator library invoked through `aggr::stats::*`
// and `aggr::win::*` calls inside a windowed select (spec.md §4.E).
package window

import (
	"fmt"
	"math"

	"github.com/tremor-rt/tremor/value"
)

// Aggregator is the (init, accumulate, merge, emit) quadruple every
// streaming aggregator implements. Merge is required so tilt-frame
// cascades can fold a finer window's final state into the next,
// coarser window without replaying raw events.
type Aggregator interface {
	Accumulate(v value.Value) error
	Merge(other Aggregator)
	Emit() value.Value
	Clone() Aggregator
}

// Factory builds a fresh, zeroed Aggregator instance for one
// `aggr::module::name(...)` call site.
type Factory func() Aggregator

var factories = map[string]Factory{
	"stats::count":             func() Aggregator { return &countAgg{} },
	"stats::sum":               func() Aggregator { return &sumAgg{} },
	"stats::min":               func() Aggregator { return &minMaxAgg{isMax: false} },
	"stats::max":               func() Aggregator { return &minMaxAgg{isMax: true} },
	"stats::mean":              func() Aggregator { return &meanVarAgg{kind: "mean"} },
	"stats::var":               func() Aggregator { return &meanVarAgg{kind: "var"} },
	"stats::stdev":             func() Aggregator { return &meanVarAgg{kind: "stdev"} },
	"win::collect_flattened":   func() Aggregator { return &collectAgg{} },
	"stats::dds":               func() Aggregator { return newDDSketch() },
	"stats::hdr":               func() Aggregator { return newHDRHistogram() },
}

// newAggregator builds the aggregator registered for "module::name",
// as used by an `aggr::module::name(...)` call in a select's field
// list.
func newAggregator(module, name string) (Aggregator, error) {
	fn, ok := factories[module+"::"+name]
	if !ok {
		return nil, fmt.Errorf("no aggregator registered for aggr::%s::%s", module, name)
	}
	return fn(), nil
}

func numeric(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x), true
	case value.Float:
		return float64(x), true
	}
	return 0, false
}

// countAgg implements aggr::stats::count.
type countAgg struct{ n int64 }

func (a *countAgg) Accumulate(value.Value) error  { a.n++; return nil }
func (a *countAgg) Merge(o Aggregator)             { a.n += o.(*countAgg).n }
func (a *countAgg) Emit() value.Value              { return value.Int(a.n) }
func (a *countAgg) Clone() Aggregator               { c := *a; return &c }

// sumAgg implements aggr::stats::sum, staying an Int when every
// accumulated value was an Int (data model invariant iv).
type sumAgg struct {
	sum      float64
	allInt   bool
	anySeen  bool
}

func (a *sumAgg) Accumulate(v value.Value) error {
	f, ok := numeric(v)
	if !ok {
		return fmt.Errorf("stats::sum expects numeric events, got %s", v.Kind())
	}
	if !a.anySeen {
		a.allInt = true
		a.anySeen = true
	}
	if _, isInt := v.(value.Int); !isInt {
		a.allInt = false
	}
	a.sum += f
	return nil
}

func (a *sumAgg) Merge(o Aggregator) {
	other := o.(*sumAgg)
	a.sum += other.sum
	if !a.anySeen {
		a.allInt = other.allInt
	} else if other.anySeen {
		a.allInt = a.allInt && other.allInt
	}
	a.anySeen = a.anySeen || other.anySeen
}

func (a *sumAgg) Emit() value.Value {
	if a.allInt {
		return value.Int(int64(a.sum))
	}
	return value.Float(a.sum)
}

func (a *sumAgg) Clone() Aggregator { c := *a; return &c }

// minMaxAgg implements aggr::stats::min/max.
type minMaxAgg struct {
	isMax bool
	val   float64
	set   bool
}

func (a *minMaxAgg) Accumulate(v value.Value) error {
	f, ok := numeric(v)
	if !ok {
		return fmt.Errorf("stats::min/max expects numeric events, got %s", v.Kind())
	}
	if !a.set || (a.isMax && f > a.val) || (!a.isMax && f < a.val) {
		a.val = f
		a.set = true
	}
	return nil
}

func (a *minMaxAgg) Merge(o Aggregator) {
	other := o.(*minMaxAgg)
	if !other.set {
		return
	}
	if !a.set || (a.isMax && other.val > a.val) || (!a.isMax && other.val < a.val) {
		a.val = other.val
		a.set = true
	}
}

func (a *minMaxAgg) Emit() value.Value {
	if !a.set {
		return value.Null{}
	}
	return value.Float(a.val)
}

func (a *minMaxAgg) Clone() Aggregator { c := *a; return &c }

// meanVarAgg implements mean/var/stdev via Welford's online algorithm;
// Emit reports the mean, the sample variance or the standard deviation
// according to "kind", which each factory entry sets at construction.
type meanVarAgg struct {
	n    int64
	mean float64
	m2   float64
	kind string // "mean", "var", or "stdev"; set by the factory
}

func (a *meanVarAgg) Accumulate(v value.Value) error {
	f, ok := numeric(v)
	if !ok {
		return fmt.Errorf("stats::mean/var/stdev expects numeric events, got %s", v.Kind())
	}
	a.n++
	delta := f - a.mean
	a.mean += delta / float64(a.n)
	delta2 := f - a.mean
	a.m2 += delta * delta2
	return nil
}

func (a *meanVarAgg) Merge(o Aggregator) {
	other := o.(*meanVarAgg)
	if other.n == 0 {
		return
	}
	if a.n == 0 {
		*a = *other
		return
	}
	n := a.n + other.n
	delta := other.mean - a.mean
	mean := a.mean + delta*float64(other.n)/float64(n)
	m2 := a.m2 + other.m2 + delta*delta*float64(a.n)*float64(other.n)/float64(n)
	a.n, a.mean, a.m2 = n, mean, m2
}

func (a *meanVarAgg) variance() float64 {
	if a.n < 2 {
		return 0
	}
	return a.m2 / float64(a.n-1)
}

func (a *meanVarAgg) Emit() value.Value {
	switch a.kind {
	case "var":
		return value.Float(a.variance())
	case "stdev":
		return value.Float(math.Sqrt(a.variance()))
	default:
		return value.Float(a.mean)
	}
}

func (a *meanVarAgg) Clone() Aggregator { c := *a; return &c }

// collectAgg implements aggr::win::collect_flattened: gather every
// accumulated value into a single flat array across a window's
// lifetime, flattening one level of nested arrays as it goes.
type collectAgg struct{ items []value.Value }

func (a *collectAgg) Accumulate(v value.Value) error {
	if arr, ok := v.(*value.Array); ok {
		a.items = append(a.items, arr.Items...)
	} else {
		a.items = append(a.items, v)
	}
	return nil
}

func (a *collectAgg) Merge(o Aggregator) {
	a.items = append(a.items, o.(*collectAgg).items...)
}

func (a *collectAgg) Emit() value.Value {
	return &value.Array{Items: append([]value.Value{}, a.items...)}
}

func (a *collectAgg) Clone() Aggregator {
	return &collectAgg{items: append([]value.Value{}, a.items...)}
}
