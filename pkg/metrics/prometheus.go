package metrics

// HTTP middleware derived from github.com/zsais/go-gin-prometheus, trimmed to
// an injectable registerer and route-template url labels.

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

const defaultMetricPath = "/metrics"

// Prometheus holds the HTTP request collectors.
type Prometheus struct {
	reqCnt       *prometheus.CounterVec
	reqDur       *prometheus.HistogramVec
	reqSz, resSz *prometheus.SummaryVec

	MetricsPath string
	gatherer    prometheus.Gatherer
	logger      *zap.SugaredLogger
}

type NewPrometheusOptions struct {
	Subsystem   string
	MetricsPath string
	Registerer  prometheus.Registerer
	Gatherer    prometheus.Gatherer
	Logger      *zap.SugaredLogger
}

// NewPrometheus generates the HTTP metric set. A nil Registerer uses the
// default prometheus registry.
func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsPath: options.MetricsPath,
		gatherer:    options.Gatherer,
		logger:      options.Logger,
	}
	if p.MetricsPath == "" {
		p.MetricsPath = defaultMetricPath
	}
	if p.logger == nil {
		p.logger = zap.NewNop().Sugar()
	}
	reg := options.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if p.gatherer == nil {
		p.gatherer = prometheus.DefaultGatherer
	}

	for _, def := range []*Metric{reqCnt, reqDur, resSz, reqSz} {
		c, err := register(reg, NewMetric(def, options.Subsystem))
		if err != nil {
			p.logger.Errorw("metric_register_failed", "metric", def.Name, "err", err)
		}
		switch def {
		case reqCnt:
			p.reqCnt = c.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = c.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = c.(*prometheus.SummaryVec)
		case reqSz:
			p.reqSz = c.(*prometheus.SummaryVec)
		}
	}
	return p
}

// Handler exposes the gathered metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSize := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := MillisecondsSince(start)
		respSize := float64(c.Writer.Size())

		// route template keeps label cardinality bounded for /viewer/:viewer_id
		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		p.reqSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(reqSize))
		p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(respSize)
	}
}

func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}
	s += len(r.Method)
	s += len(r.Proto)
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	s += len(r.Host)
	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}
