package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	ledgerOpDurationHistogram    *prometheus.HistogramVec
	httpRequestDurationHistogram *prometheus.HistogramVec
	queueSendErrorCounter        prometheus.Counter
	maturityCheckerDuration      *prometheus.HistogramVec
	maturedStakesGauge           prometheus.Gauge
	totalStakedGauge             prometheus.Gauge
	custodyBalanceGauge          prometheus.Gauge
	dbLatency                    *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	ledgerOpDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_op_duration_seconds",
			Help:    "Histogram of stake ledger operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"op", "status"},
	)

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming HTTP request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "path", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	maturityCheckerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maturity_checker_duration_seconds",
			Help:    "Histogram of maturity checker run durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"status"},
	)

	maturedStakesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "matured_stakes_count",
			Help: "Number of matured stakes found on the last checker run",
		},
	)

	totalStakedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "total_staked_units",
			Help: "Sum of all staked amounts in the smallest denomination",
		},
	)

	custodyBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "custody_balance_units",
			Help: "Asset balance held by the custody address",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		ledgerOpDurationHistogram,
		httpRequestDurationHistogram,
		queueSendErrorCounter,
		maturityCheckerDuration,
		maturedStakesGauge,
		totalStakedGauge,
		custodyBalanceGauge,
		dbLatency,
	)
}

func RecordLedgerOpDuration(d time.Duration, op string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	ledgerOpDurationHistogram.WithLabelValues(op, status.String()).Observe(d.Seconds())
}

func RecordHttpRequestDuration(d time.Duration, method, path string, statusCode int) {
	httpRequestDurationHistogram.
		WithLabelValues(method, path, strconv.Itoa(statusCode)).
		Observe(d.Seconds())
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}

func RecordMaturityCheckerDuration(d time.Duration, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	maturityCheckerDuration.WithLabelValues(status.String()).Observe(d.Seconds())
}

func RecordMaturedStakesCount(count int) {
	maturedStakesGauge.Set(float64(count))
}

func RecordTotalStaked(units float64) {
	totalStakedGauge.Set(units)
}

func RecordCustodyBalance(units float64) {
	custodyBalanceGauge.Set(units)
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}
