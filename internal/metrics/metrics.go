// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus instrumentation exported on
// the admin endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served HTTP requests by method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yada_http_requests_total",
		Help: "Total number of HTTP requests by method and status code",
	}, []string{"method", "status"})

	// HTTPRequestDuration tracks request handling time end to end,
	// including media body transfer.
	HTTPRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yada_http_request_duration_seconds",
		Help:    "HTTP request handling time including body transfer",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	// SSDPMessagesTotal counts SSDP traffic by message type and direction.
	SSDPMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yada_ssdp_messages_total",
		Help: "Total number of SSDP messages by type and direction",
	}, []string{"type", "direction"})

	// BrowseActionsTotal counts ContentDirectory control actions by outcome.
	BrowseActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yada_cds_actions_total",
		Help: "Total number of ContentDirectory actions by result",
	}, []string{"result"})

	// ScanItemsTotal counts media items discovered by share scans.
	ScanItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yada_scan_items_total",
		Help: "Total number of media items added by share scans",
	})

	// ScanDuration tracks full share scan time.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yada_scan_duration_seconds",
		Help:    "Time taken by a full share scan",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
	})
)

// IncHTTPRequest records one served request.
func IncHTTPRequest(method string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// IncSSDPMessage records one SSDP message.
func IncSSDPMessage(msgType, direction string) {
	SSDPMessagesTotal.WithLabelValues(msgType, direction).Inc()
}

// IncBrowseAction records one ContentDirectory action outcome.
func IncBrowseAction(result string) {
	BrowseActionsTotal.WithLabelValues(result).Inc()
}

// ObserveScan records a completed share scan.
func ObserveScan(items int, duration time.Duration) {
	ScanItemsTotal.Add(float64(items))
	ScanDuration.Observe(duration.Seconds())
}
