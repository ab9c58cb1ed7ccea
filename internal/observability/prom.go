package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Prometheus text exposition (format 0.0.4) for the handful of series this
// service exports.

type collector interface {
	writeTo(w io.Writer) error
}

func writeAll(w io.Writer, cs ...collector) error {
	for _, c := range cs {
		if c == nil {
			continue
		}
		if err := c.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// family is a counter or gauge keyed by label values. A family without label
// names holds a single series.
type family struct {
	name   string
	help   string
	kind   string
	labels []string

	mu     sync.Mutex
	series map[string]float64
}

func newCounter(name, help string, labels []string) *family {
	return &family{name: name, help: help, kind: "counter", labels: labels, series: map[string]float64{}}
}

func newGauge(name, help string, labels []string) *family {
	return &family{name: name, help: help, kind: "gauge", labels: labels, series: map[string]float64{}}
}

// Add increments the series. Counters ignore negative deltas.
func (f *family) Add(delta float64, values ...string) {
	if f == nil || (f.kind == "counter" && delta < 0) {
		return
	}
	key := labelString(f.labels, values)
	f.mu.Lock()
	f.series[key] += delta
	f.mu.Unlock()
}

func (f *family) Set(v float64, values ...string) {
	if f == nil || f.kind != "gauge" {
		return
	}
	key := labelString(f.labels, values)
	f.mu.Lock()
	f.series[key] = v
	f.mu.Unlock()
}

func (f *family) value(values ...string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.series[labelString(f.labels, values)]
}

func (f *family) writeTo(w io.Writer) error {
	if err := writeHeader(w, f.name, f.help, f.kind); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.labels) == 0 {
		_, err := fmt.Fprintf(w, "%s %f\n", f.name, f.series[""])
		return err
	}
	for _, k := range sortedKeys(f.series) {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", f.name, k, f.series[k]); err != nil {
			return err
		}
	}
	return nil
}

type histogramFamily struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.Mutex
	series map[string]*histogramSeries
}

type histogramSeries struct {
	// cumulative counts per upper bound, same length as buckets
	le    []uint64
	sum   float64
	count uint64
}

func newHistogram(name, help string, labels []string, buckets []float64) *histogramFamily {
	if len(buckets) == 0 {
		buckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	}
	bs := append([]float64(nil), buckets...)
	sort.Float64s(bs)
	return &histogramFamily{name: name, help: help, labels: labels, buckets: bs, series: map[string]*histogramSeries{}}
}

func (h *histogramFamily) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[key]
	if s == nil {
		s = &histogramSeries{le: make([]uint64, len(h.buckets))}
		h.series[key] = s
	}
	s.sum += v
	s.count++
	// buckets are sorted, so every bound from the first match up counts v
	for i := sort.SearchFloat64s(h.buckets, v); i < len(h.buckets); i++ {
		s.le[i]++
	}
}

func (h *histogramFamily) writeTo(w io.Writer) error {
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range sortedKeys(h.series) {
		s := h.series[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, strconv.FormatFloat(b, 'g', -1, 64)), s.le[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n%s_sum%s %f\n%s_count%s %d\n",
			h.name, withLe(k, "+Inf"), s.count,
			h.name, k, s.sum,
			h.name, k, s.count,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, name, help, kind string) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// labelString renders {a="x",b="y"}. Missing values render as "unknown".
func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, len(names))
	for i, n := range names {
		v := "unknown"
		if i < len(values) {
			v = values[i]
		}
		pairs[i] = n + `="` + labelEscaper.Replace(v) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func withLe(labels, le string) string {
	pair := `le="` + labelEscaper.Replace(le) + `"`
	if labels == "" {
		return "{" + pair + "}"
	}
	return strings.TrimSuffix(labels, "}") + "," + pair + "}"
}
