// Package metrics exposes calculator activity in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Calculator names used as the "calculator" label
const (
	CalculatorSDI     = "sdi"
	CalculatorScaling = "scaling"
)

// Outcome values used as the "outcome" label
const (
	OutcomeSuccess = "success"
)

type calcKey struct {
	calculator string
	outcome    string
}

// Registry counts calculations and reports live gauges on each scrape
type Registry struct {
	mu           sync.Mutex
	calculations map[calcKey]uint64
	commands     map[string]uint64
	gauges       map[string]gauge
}

type gauge struct {
	help string
	read func() float64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		calculations: make(map[calcKey]uint64),
		commands:     make(map[string]uint64),
		gauges:       make(map[string]gauge),
	}
}

// ObserveCalculation counts one calculation attempt. outcome is
// OutcomeSuccess or the validation error kind.
func (r *Registry) ObserveCalculation(calculator, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculations[calcKey{calculator, outcome}]++
}

// ObserveStopwatchCommand counts one stopwatch command by source
// ("http" or "mqtt").
func (r *Registry) ObserveStopwatchCommand(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[source]++
}

// RegisterGauge adds a gauge sampled on every scrape
func (r *Registry) RegisterGauge(name, help string, read func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges[name] = gauge{help: help, read: read}
}

// Families returns a snapshot of all metric families sorted by name
func (r *Registry) Families() []*dto.MetricFamily {
	r.mu.Lock()
	calcs := make(map[calcKey]uint64, len(r.calculations))
	for k, v := range r.calculations {
		calcs[k] = v
	}
	commands := make(map[string]uint64, len(r.commands))
	for k, v := range r.commands {
		commands[k] = v
	}
	gauges := make(map[string]gauge, len(r.gauges))
	for k, v := range r.gauges {
		gauges[k] = v
	}
	r.mu.Unlock()

	families := []*dto.MetricFamily{
		calculationFamily(calcs),
		commandFamily(commands),
	}
	for name, g := range gauges {
		families = append(families, &dto.MetricFamily{
			Name: strPtr(name),
			Help: strPtr(g.help),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Gauge: &dto.Gauge{Value: floatPtr(g.read())},
			}},
		})
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	return families
}

func calculationFamily(calcs map[calcKey]uint64) *dto.MetricFamily {
	keys := make([]calcKey, 0, len(calcs))
	for k := range calcs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].calculator != keys[j].calculator {
			return keys[i].calculator < keys[j].calculator
		}
		return keys[i].outcome < keys[j].outcome
	})

	mf := &dto.MetricFamily{
		Name: strPtr("aquasmart_calculations_total"),
		Help: strPtr("Calculation attempts by calculator and outcome."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: strPtr("calculator"), Value: strPtr(k.calculator)},
				{Name: strPtr("outcome"), Value: strPtr(k.outcome)},
			},
			Counter: &dto.Counter{Value: floatPtr(float64(calcs[k]))},
		})
	}
	return mf
}

func commandFamily(commands map[string]uint64) *dto.MetricFamily {
	sources := make([]string, 0, len(commands))
	for s := range commands {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	mf := &dto.MetricFamily{
		Name: strPtr("aquasmart_stopwatch_commands_total"),
		Help: strPtr("Stopwatch commands by source."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, s := range sources {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: strPtr("source"), Value: strPtr(s)}},
			Counter: &dto.Counter{Value: floatPtr(float64(commands[s]))},
		})
	}
	return mf
}

// WriteText renders all families in the Prometheus text format
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Families() {
		// Families without samples are skipped by scrapers anyway
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the registry over HTTP
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		if err := r.WriteText(w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
