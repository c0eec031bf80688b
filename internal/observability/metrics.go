package observability

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Metrics holds the process-wide collectors. A nil *Metrics is valid and
// records nothing, so callers never need to check whether metrics are on.
type Metrics struct {
	apiRequests *family
	apiLatency  *family
	apiInflight *family

	imports      *family
	importRows   *family
	importChunks *family

	shardFetches *family
	shardRecords *family
	cacheLookups *family
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("METRICS_ENABLED"))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Current returns the instance installed by Init, or nil.
func Current() *Metrics {
	return instance
}

// Init installs the process-wide collectors when METRICS_ENABLED is set.
func Init() *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
	})
	return instance
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: newFamily(kindCounter, "curriculum_api_requests_total", "API requests by method, route and status.", "method", "route", "status"),
		apiLatency:  newHistogram("curriculum_api_request_seconds", "API request latency.", nil, "method", "route"),
		apiInflight: newFamily(kindGauge, "curriculum_api_inflight_requests", "API requests currently being served."),

		imports:      newFamily(kindCounter, "curriculum_imports_total", "Import runs by file type and result.", "file_type", "result"),
		importRows:   newFamily(kindCounter, "curriculum_import_rows_total", "Imported data rows by file type and outcome.", "file_type", "outcome"),
		importChunks: newFamily(kindCounter, "curriculum_import_chunks_total", "Bulk insert chunks by status.", "status"),

		shardFetches: newFamily(kindCounter, "curriculum_shard_fetches_total", "Shard fetches by shard and status.", "shard", "status"),
		shardRecords: newFamily(kindGauge, "curriculum_shard_records", "Records held for each shard after the last fetch.", "shard"),
		cacheLookups: newFamily(kindCounter, "curriculum_shard_cache_lookups_total", "Dataset cache lookups by result.", "result"),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.add(delta)
}

// ObserveImport records one import run. result is "ok", "malformed" or
// "persistence_failure".
func (m *Metrics) ObserveImport(fileType, result string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.imports.add(1, fileType, result)
	m.importRows.add(float64(accepted), fileType, "accepted")
	m.importRows.add(float64(rejected), fileType, "rejected")
}

func (m *Metrics) ObserveChunk(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.importChunks.add(1, status)
}

func (m *Metrics) ObserveShardFetch(shard string, records int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.shardFetches.add(1, shard, status)
	m.shardRecords.set(float64(records), shard)
}

// ObserveCacheLookup records "hit", "snapshot" or "fetch".
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.add(1, result)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, f := range []*family{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.imports, m.importRows, m.importChunks,
		m.shardFetches, m.shardRecords, m.cacheLookups,
	} {
		if err := f.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}
