package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonymchat_store_reads_total",
		Help: "File reads per collection.",
	}, []string{"kind"})
	storeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonymchat_store_writes_total",
		Help: "Whole-file rewrites per collection.",
	}, []string{"kind"})
	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonymchat_store_errors_total",
		Help: "Store I/O and marshal failures per collection and operation.",
	}, []string{"kind", "op"})
	storeParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anonymchat_store_parse_failures_total",
		Help: "Corrupt collection files read as empty.",
	}, []string{"kind"})
)
