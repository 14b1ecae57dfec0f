package httpapi

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelink_api_requests_total",
		Help: "API requests by method and status code.",
	}, []string{"method", "code"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carelink_uploads_total",
		Help: "File uploads by result.",
	}, []string{"result"})

	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carelink_upload_bytes_total",
		Help: "Bytes of successfully uploaded files.",
	})
)

// observeRequest counts one response; code 0 means the transport failed.
func observeRequest(method string, code int) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	requestsTotal.WithLabelValues(method, label).Inc()
}

func observeUpload(size int64, err error) {
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return
	}
	uploadsTotal.WithLabelValues("ok").Inc()
	uploadBytesTotal.Add(float64(size))
}
