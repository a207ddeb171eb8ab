// Package pipeline drives a compiled query.Graph: for every input
// event it works through a FIFO queue of deliveries, breadth-first
// from the `in` port (Graph.Order is not consulted), routing
// emissions along edges and faulted events to each operator's `err`
// port (spec.md §4.G).
package pipeline

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/eval"
	"github.com/tremor-rt/tremor/internal/telemetry"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
	"github.com/tremor-rt/tremor/window"
)

// Out is one event the pipeline delivered to a named output port
// (conventionally "out" or "err", but a graph may route to any
// unconsumed port name).
type Out struct {
	Port  string
	Event value.Value
	Meta  value.Value
}

// Pipeline is one instantiated, runnable operator graph.
type Pipeline struct {
	Graph   *query.Graph
	Fns     map[string]*ast.FnDef
	Reg     *stdlib.Registry
	Metrics *telemetry.Metrics
	Log     *logrus.Logger

	// RecursionLimit overrides the evaluator's default tail-recursion
	// depth limit (spec.md §4.C); zero means use eval's default.
	RecursionLimit int

	states   map[string]*eval.Envelope
	cascades map[string]*window.Cascade
}

// New builds a Pipeline ready to process events. fns is the pool of
// user-defined functions visible to every embedded script operator
// (tremor-script has no cross-module privacy at the pipeline level).
func New(g *query.Graph, fns map[string]*ast.FnDef, reg *stdlib.Registry, metrics *telemetry.Metrics, log *logrus.Logger) (*Pipeline, error) {
	p := &Pipeline{
		Graph: g, Fns: fns, Reg: reg, Metrics: metrics, Log: log,
		states:   map[string]*eval.Envelope{},
		cascades: map[string]*window.Cascade{},
	}
	for _, n := range g.Nodes {
		args := value.NewRecord()
		for k, v := range n.With {
			args.Set(k, v)
		}
		p.states[n.Name] = &eval.Envelope{State: value.Null{}, Meta: value.Null{}, Args: args}
		if n.Kind == query.KindSelect && len(n.Select.Windows) > 0 {
			cfgs := make([]window.Config, len(n.Select.Windows))
			for i, c := range n.Select.Windows {
				cfgs[i] = *c
			}
			specs := make([]window.AggSpec, len(n.Select.AggCalls))
			for i, ac := range n.Select.AggCalls {
				specs[i] = ac.Spec
			}
			p.cascades[n.Name] = window.NewCascade(cfgs, specs)
		}
	}
	return p, nil
}

type routed struct {
	port  string
	event value.Value
	meta  value.Value
}

// Run delivers one event on the pipeline's reserved "in" port and
// returns every event that reached an unconsumed output port (by
// convention "out" and "err", but a graph may name its own sinks).
func (p *Pipeline) Run(event, meta value.Value, nowNs int64) []Out {
	queue := []struct {
		to   ast.PortRef
		from string
		ev   value.Value
		meta value.Value
	}{}
	for _, e := range p.Graph.Edges {
		if e.From.Name == "in" {
			queue = append(queue, struct {
				to   ast.PortRef
				from string
				ev   value.Value
				meta value.Value
			}{to: e.To, from: "in", ev: event, meta: meta})
		}
	}

	var outs []Out
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		node, ok := p.Graph.ByName[item.to.Name]
		if !ok {
			// Reserved boundary port (out/err/anything unconsumed).
			outs = append(outs, Out{Port: item.to.Name, Event: item.ev, Meta: item.meta})
			continue
		}
		results, err := p.runNode(node, item.ev, item.meta, nowNs)
		if err != nil {
			p.routeError(node.Name, err, &queue)
			continue
		}
		for _, r := range results {
			p.fanOut(node.Name, r, &queue)
		}
	}
	return outs
}

func (p *Pipeline) fanOut(nodeName string, r routed, queue *[]struct {
	to   ast.PortRef
	from string
	ev   value.Value
	meta value.Value
}) {
	if p.Metrics != nil {
		p.Metrics.EventsTotal.WithLabelValues(nodeName, r.port).Inc()
	}
	delivered := false
	for _, e := range p.Graph.Edges {
		if e.From.Name != nodeName {
			continue
		}
		if e.From.Port != "" && e.From.Port != r.port {
			continue
		}
		*queue = append(*queue, struct {
			to   ast.PortRef
			from string
			ev   value.Value
			meta value.Value
		}{to: e.To, from: nodeName, ev: r.event, meta: r.meta})
		delivered = true
	}
	if !delivered && p.Metrics != nil {
		p.Metrics.EventsTotal.WithLabelValues(nodeName, r.port+":unconsumed").Inc()
	}
}

func (p *Pipeline) routeError(nodeName string, cause error, queue *[]struct {
	to   ast.PortRef
	from string
	ev   value.Value
	meta value.Value
}) {
	if p.Metrics != nil {
		p.Metrics.ErrorsTotal.WithLabelValues(nodeName).Inc()
	}
	payload := value.NewRecord()
	payload.Set("error", value.Str(cause.Error()))
	payload.Set("source", value.Str(nodeName))

	delivered := false
	for _, e := range p.Graph.Edges {
		if e.From.Name == nodeName && e.From.Port == "err" {
			*queue = append(*queue, struct {
				to   ast.PortRef
				from string
				ev   value.Value
				meta value.Value
			}{to: e.To, from: nodeName, ev: payload, meta: value.Null{}})
			delivered = true
		}
	}
	if !delivered && p.Log != nil {
		p.Log.WithField("operator", nodeName).WithError(cause).Error("unconsumed error event dropped")
	}
}

func (p *Pipeline) runNode(n *query.Node, event, meta value.Value, nowNs int64) ([]routed, error) {
	span := telemetry.StartSpan(n.Name, nil)
	defer span.Finish()
	defer p.observe(n.Name)()

	switch n.Kind {
	case query.KindStream:
		return []routed{{port: "out", event: event, meta: meta}}, nil
	case query.KindScript:
		return p.runScript(n, event, meta)
	case query.KindSelect:
		return p.runSelect(n, event, meta, nowNs)
	case query.KindOperator:
		// No concrete built-in operator kinds beyond select/script/query
		// are named by spec.md §4.F; an otherwise-undefined `operator`
		// instance is pass-through.
		return []routed{{port: "out", event: event, meta: meta}}, nil
	}
	return nil, fmt.Errorf("unknown operator kind for `%s`", n.Name)
}

func (p *Pipeline) observe(name string) func() {
	if p.Metrics == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(p.Metrics.ProcessSeconds.WithLabelValues(name))
	return func() { timer.ObserveDuration() }
}

func (p *Pipeline) runScript(n *query.Node, event, meta value.Value) ([]routed, error) {
	env := p.states[n.Name]
	env.Event = event
	env.Meta = meta
	ctx := eval.NewContextWithLimit(n.ScriptBody.Fns, p.Reg, p.RecursionLimit)
	for name, fn := range p.Fns {
		ctx.Fns[name] = fn
	}
	res, err := eval.Run(n.ScriptBody, env, ctx)
	if err != nil {
		return nil, err
	}
	p.states[n.Name] = res.Envelope
	out := make([]routed, 0, len(res.Emissions))
	for _, em := range res.Emissions {
		out = append(out, routed{port: em.Port, event: em.Value, meta: res.Envelope.Meta})
	}
	return out, nil
}
