package grc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	risksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grc_risks_created_total",
		Help: "Risks created.",
	})
	auditEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_audit_entries_total",
		Help: "Audit log entries written, by entity type and action.",
	}, []string{"entity_type", "action"})
	integrationTests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_integration_tests_total",
		Help: "Integration connection tests, by result.",
	}, []string{"result"})
	integrationSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_integration_syncs_total",
		Help: "Integration sync attempts, by result.",
	}, []string{"result"})
	syncRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grc_integration_sync_records",
		Help:    "Records processed per integration sync.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})
)
