package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK          = "ok"
	resultFailed      = "failed"
	resultUnavailable = "unavailable"
	resultFallback    = "fallback"
)

var (
	metricUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophbucket",
		Name:      "uploads_total",
		Help:      "Upload orchestrations by outcome.",
	}, []string{"result"})
	metricUploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gophbucket",
		Name:      "upload_bytes_total",
		Help:      "Bytes written to presigned upload slots.",
	})
	metricTokenRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophbucket",
		Name:      "token_refresh_total",
		Help:      "Access token refresh attempts by outcome.",
	}, []string{"result"})
	metricDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gophbucket",
		Name:      "downloads_total",
		Help:      "Downloads by outcome.",
	}, []string{"result"})
)

func recordUpload(result string, bytes int64) {
	metricUploads.WithLabelValues(result).Inc()
	if bytes > 0 {
		metricUploadBytes.Add(float64(bytes))
	}
}

func recordRefresh(result string) {
	metricTokenRefresh.WithLabelValues(result).Inc()
}

func recordDownload(result string) {
	metricDownloads.WithLabelValues(result).Inc()
}
