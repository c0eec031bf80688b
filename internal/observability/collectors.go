package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

type kind string

const (
	kindCounter   kind = "counter"
	kindGauge     kind = "gauge"
	kindHistogram kind = "histogram"
)

var defaultBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// family is one named metric with any number of labeled series.
type family struct {
	name    string
	help    string
	kind    kind
	labels  []string
	buckets []float64

	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	value  float64
	counts []uint64
	sum    float64
	total  uint64
}

func newFamily(k kind, name, help string, labels ...string) *family {
	return &family{name: name, help: help, kind: k, labels: labels, series: map[string]*series{}}
}

func newHistogram(name, help string, buckets []float64, labels ...string) *family {
	f := newFamily(kindHistogram, name, help, labels...)
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	f.buckets = buckets
	return f
}

func (f *family) get(values []string) *series {
	key := formatLabels(f.labels, values)
	s, ok := f.series[key]
	if !ok {
		s = &series{}
		if f.kind == kindHistogram {
			s.counts = make([]uint64, len(f.buckets))
		}
		f.series[key] = s
	}
	return s
}

// add is used by counters and gauges. Counters ignore negative deltas.
func (f *family) add(v float64, values ...string) {
	if f == nil || (f.kind == kindCounter && v < 0) {
		return
	}
	f.mu.Lock()
	f.get(values).value += v
	f.mu.Unlock()
}

func (f *family) set(v float64, values ...string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	f.get(values).value = v
	f.mu.Unlock()
}

func (f *family) observe(v float64, values ...string) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(values)
	s.sum += v
	s.total++
	for i, b := range f.buckets {
		if v <= b {
			s.counts[i]++
		}
	}
}

func (f *family) value(values ...string) float64 {
	if f == nil {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.series[formatLabels(f.labels, values)]; ok {
		return s.value
	}
	return 0
}

// writeTo renders the family in the Prometheus text format with series
// sorted by label string.
func (f *family) writeTo(w io.Writer) error {
	if f == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.series))
	for k := range f.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := f.series[k]
		if f.kind != kindHistogram {
			if _, err := fmt.Fprintf(w, "%s%s %g\n", f.name, k, s.value); err != nil {
				return err
			}
			continue
		}
		for i, b := range f.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", f.name, appendLabel(k, "le", fmt.Sprintf("%g", b)), s.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %g\n%s_count%s %d\n",
			f.name, appendLabel(k, "le", "+Inf"), s.total,
			f.name, k, s.sum,
			f.name, k, s.total,
		); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, len(names))
	for i, name := range names {
		v := "unknown"
		if i < len(values) && strings.TrimSpace(values[i]) != "" {
			v = values[i]
		}
		parts[i] = name + `="` + escapeLabel(v) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func appendLabel(labels, name, value string) string {
	pair := name + `="` + escapeLabel(value) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string {
	return labelEscaper.Replace(v)
}
