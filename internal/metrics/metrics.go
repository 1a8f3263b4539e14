package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SuccessfulRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "successful_request",
			Help: "Total number of successful (2xx) HTTP requests",
		},
		[]string{"path"},
	)

	BadRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsuccessful_request",
			Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
		},
		[]string{"path", "status"},
	)

	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "successful_message",
			Help: "Total number of successfully sent chat messages",
		},
		[]string{"conversation_type"},
	)

	NotificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatched",
			Help: "Total number of notifications persisted and pushed",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(SuccessfulRequests)
	prometheus.MustRegister(BadRequests)
	prometheus.MustRegister(MessagesSent)
	prometheus.MustRegister(NotificationsDispatched)
}

// Middleware counts requests per route path by status class.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		if status < 400 {
			SuccessfulRequests.WithLabelValues(path).Inc()
		} else {
			BadRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
		}
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
