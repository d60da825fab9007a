package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "typeref_ingest_seconds",
		Help:    "Time spent ingesting and rewriting a source file.",
		Buckets: prometheus.DefBuckets,
	})

	FilesIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeref_files_ingested_total",
		Help: "Total number of source files processed by the pre-parse pass.",
	})

	ImportRefsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeref_import_refs_total",
		Help: "Total number of import type references encountered, by outcome.",
	}, []string{"outcome"})

	CommentsRewrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeref_comments_rewritten_total",
		Help: "Total number of comments changed by the per-comment pass.",
	})

	FileInfoCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "typeref_fileinfo_cache_lookups_total",
		Help: "File info cache lookups, by result (hit or miss).",
	}, []string{"result"})

	ModulesIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typeref_modules_indexed_total",
		Help: "Number of distinct module identifiers in the typedef index.",
	})

	TypedefsIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "typeref_typedefs_indexed_total",
		Help: "Number of typedef names registered across all modules.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "typeref_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "typeref_run_seconds",
		Help:    "Time spent on a full rewrite run, by phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
)

// Import ref outcomes for ImportRefsTotal.
const (
	OutcomeQualified   = "qualified"
	OutcomeUnqualified = "unqualified"
	OutcomePassthrough = "passthrough"
)
