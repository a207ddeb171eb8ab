package window

import (
	"strconv"

	"github.com/tremor-rt/tremor/value"
)

// Config parameterises one tumbling window (spec.md §4.E): SizeN > 0
// for a count-based window, IntervalNs > 0 for a time-based window;
// if both are set, SizeN decides and IntervalNs is ignored (the
// compiler does not reject that combination). MaxGroups bounds
// concurrent groups with FIFO eviction. EmitEmpty is recorded from
// the window definition but nothing in this package reads it: Window
// has no clock-tick entry point, so a window only fires when a value
// is ingested or merged into it, and an interval with no events never
// emits.
type Config struct {
	Name       string
	SizeN      int64
	IntervalNs int64
	MaxGroups  int
	EmitEmpty  bool
}

// Window is one stage of a (possibly single-stage) tilt-frame
// cascade. It owns per-group aggregator state and decides, on every
// ingested value, whether that group's window has just closed.
type Window struct {
	cfg    Config
	groups map[string]*group
	order  []string // FIFO of group keys, oldest first, for max_groups eviction
}

type group struct {
	key      value.Value
	count    int64
	startNs  int64
	aggs     []Aggregator
}

// New builds an empty Window from cfg.
func New(cfg Config) *Window {
	return &Window{cfg: cfg, groups: make(map[string]*group)}
}

// AggSpec names the aggregator behind one `aggr::module::name(...)`
// call.
type AggSpec struct {
	Module string
	Name   string
}

// buildAggs builds one fresh Aggregator per requested aggregation call.
func buildAggs(specs []AggSpec) ([]Aggregator, error) {
	out := make([]Aggregator, len(specs))
	for i, s := range specs {
		a, err := newAggregator(s.Module, s.Name)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

// groupFor returns the group for keyHash, creating it (and evicting
// the oldest group if MaxGroups is now exceeded) if necessary.
func (w *Window) groupFor(keyHash string, keyVal value.Value, nowNs int64, specs []AggSpec) (*group, error) {
	if g, ok := w.groups[keyHash]; ok {
		return g, nil
	}
	aggs, err := buildAggs(specs)
	if err != nil {
		return nil, err
	}
	g := &group{key: keyVal, startNs: nowNs, aggs: aggs}
	w.groups[keyHash] = g
	w.order = append(w.order, keyHash)
	if w.cfg.MaxGroups > 0 && len(w.order) > w.cfg.MaxGroups {
		evict := w.order[0]
		w.order = w.order[1:]
		delete(w.groups, evict) // FIFO eviction silently discards pending state (Open Question ii)
	}
	return g, nil
}

func (w *Window) reset(keyHash string, nowNs int64, specs []AggSpec) error {
	g := w.groups[keyHash]
	aggs, err := buildAggs(specs)
	if err != nil {
		return err
	}
	g.aggs = aggs
	g.count = 0
	g.startNs = nowNs
	return nil
}

// shouldFire reports whether g's window has reached its emission
// threshold given the configured size/interval policy.
func (w *Window) shouldFire(g *group, nowNs int64) bool {
	if w.cfg.SizeN > 0 {
		return g.count >= w.cfg.SizeN
	}
	if w.cfg.IntervalNs > 0 {
		return nowNs-g.startNs >= w.cfg.IntervalNs
	}
	return false
}

// Emission is a fired group's group-key and final aggregator values,
// ready either to feed the next tilt-frame stage or to be projected
// by the enclosing select.
type Emission struct {
	Key  value.Value
	Aggs []Aggregator
}

// Ingest accumulates eventFields (one value per AggSpec, in order)
// into keyVal's group and reports whether the window fired. Firing
// resets the group's aggregator state for the next period.
func (w *Window) Ingest(keyVal value.Value, eventFields []value.Value, specs []AggSpec, nowNs int64) (bool, Emission, error) {
	keyHash := groupHashKey(keyVal)
	g, err := w.groupFor(keyHash, keyVal, nowNs, specs)
	if err != nil {
		return false, Emission{}, err
	}
	for i, v := range eventFields {
		if i >= len(g.aggs) {
			break
		}
		if err := g.aggs[i].Accumulate(v); err != nil {
			return false, Emission{}, err
		}
	}
	g.count++
	if !w.shouldFire(g, nowNs) {
		return false, Emission{}, nil
	}
	out := Emission{Key: g.key, Aggs: cloneAggs(g.aggs)}
	if err := w.reset(keyHash, nowNs, specs); err != nil {
		return false, Emission{}, err
	}
	return true, out, nil
}

// MergeEmission folds a finer window's fired state into this (next,
// coarser) stage of a tilt-frame cascade, counting as one event
// toward this window's own size/interval threshold.
func (w *Window) MergeEmission(em Emission, specs []AggSpec, nowNs int64) (bool, Emission, error) {
	keyHash := groupHashKey(em.Key)
	g, err := w.groupFor(keyHash, em.Key, nowNs, specs)
	if err != nil {
		return false, Emission{}, err
	}
	for i, a := range em.Aggs {
		if i >= len(g.aggs) {
			break
		}
		g.aggs[i].Merge(a)
	}
	g.count++
	if !w.shouldFire(g, nowNs) {
		return false, Emission{}, nil
	}
	out := Emission{Key: g.key, Aggs: cloneAggs(g.aggs)}
	if err := w.reset(keyHash, nowNs, specs); err != nil {
		return false, Emission{}, err
	}
	return true, out, nil
}

func cloneAggs(in []Aggregator) []Aggregator {
	out := make([]Aggregator, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

func groupHashKey(v value.Value) string {
	return strconv.FormatUint(value.Hash(v), 16)
}

// Cascade chains Windows left to right: events feed stage 0; a firing
// at stage k merges into stage k+1 and resets stage k; the cascade's
// overall Ingest only returns a result when the outermost (last)
// stage fires (spec.md §4.E tilt frames).
type Cascade struct {
	Stages []*Window
	Specs  []AggSpec
}

// NewCascade builds a tilt-frame cascade from cfgs, outermost last.
func NewCascade(cfgs []Config, specs []AggSpec) *Cascade {
	stages := make([]*Window, len(cfgs))
	for i, c := range cfgs {
		stages[i] = New(c)
	}
	return &Cascade{Stages: stages, Specs: specs}
}

// Ingest pushes one event's (groupKey, per-aggregator field values)
// through the full cascade. fired is true only when the outermost
// stage emits.
func (c *Cascade) Ingest(keyVal value.Value, eventFields []value.Value, nowNs int64) (bool, Emission, error) {
	fired, em, err := c.Stages[0].Ingest(keyVal, eventFields, c.Specs, nowNs)
	if err != nil || !fired {
		return false, Emission{}, err
	}
	for i := 1; i < len(c.Stages); i++ {
		fired, em, err = c.Stages[i].MergeEmission(em, c.Specs, nowNs)
		if err != nil || !fired {
			return false, Emission{}, err
		}
	}
	return true, em, nil
}
