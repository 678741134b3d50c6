package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	importsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetdesk_imports_total",
		Help: "Total number of rosters finalized into audit sessions",
	})
	verificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetdesk_verifications_total",
		Help: "Total number of verification submissions accepted",
	})
	verificationConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetdesk_verification_conflicts_total",
		Help: "Total number of submissions rejected because another auditor won the race",
	})
	directoryRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetdesk_directory_retries_total",
		Help: "Total number of retried directory service requests",
	})
	directoryFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assetdesk_directory_failures_total",
		Help: "Total number of directory service requests that exhausted all retries",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		importsTotal,
		verificationsTotal,
		verificationConflictsTotal,
		directoryRetriesTotal,
		directoryFailuresTotal,
	)
}

// IncImport increments the finalized imports counter.
func IncImport() { importsTotal.Inc() }

// IncVerification increments the accepted submissions counter.
func IncVerification() { verificationsTotal.Inc() }

// IncVerificationConflict increments the losing-writer counter.
func IncVerificationConflict() { verificationConflictsTotal.Inc() }

// IncDirectoryRetry increments the retried requests counter.
func IncDirectoryRetry() { directoryRetriesTotal.Inc() }

// IncDirectoryFailure increments the exhausted-retries counter.
func IncDirectoryFailure() { directoryFailuresTotal.Inc() }
