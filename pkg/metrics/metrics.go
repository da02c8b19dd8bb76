package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spencer-p/celesun/pkg/engine"
)

const subsystem = "celesun"

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: subsystem,
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0, 16.0, 32.0},
		},
		[]string{"verb", "path", "code"},
	)

	tickLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "tick_latency",
			Subsystem: subsystem,
			Help:      "Time to render one tick in seconds.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	recomputes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "solar_day_recomputes_total",
			Subsystem: subsystem,
			Help:      "Number of times the solar day was rebuilt.",
		},
	)

	degradedDays = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "degraded_days_total",
			Subsystem: subsystem,
			Help:      "Solar days built from fallback sun times.",
		},
	)

	zoneFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "zone_fallbacks_total",
			Subsystem: subsystem,
			Help:      "Solar days built in UTC because the configured zone was unknown.",
		},
	)

	daylight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "daylight_seconds",
			Subsystem: subsystem,
			Help:      "Length of the current solar day's daylight.",
		},
	)

	remaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:      "next_event_seconds",
			Subsystem: subsystem,
			Help:      "Time left until the next sunrise or sunset.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		tickLatency,
		recomputes,
		degradedDays,
		zoneFallbacks,
		daylight,
		remaining,
	)
}

// ObserveTick records one engine tick. Day level counters only move on the
// tick that rebuilt the day.
func ObserveTick(m engine.RenderModel, took time.Duration) {
	tickLatency.Observe(took.Seconds())
	remaining.Set(m.Next.Remaining.Seconds())
	if !m.Diagnostics.Recomputed {
		return
	}
	recomputes.Inc()
	daylight.Set(m.Sunset.Sub(m.Sunrise).Seconds())
	if m.Diagnostics.Degraded {
		degradedDays.Inc()
	}
	if m.Diagnostics.ZoneFallback {
		zoneFallbacks.Inc()
	}
}

func ObserveRequestLatency(verb, path, code string, latency float64) {
	requestLatency.With(prometheus.Labels{
		"code": code,
		"verb": verb,
		"path": path,
	}).Observe(latency)
}

// statusRecorder remembers the status code a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.code == 0 {
		s.code = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) status() string {
	if s.code == 0 {
		// Unset, will be set to 200 by stdlib.
		return "200"
	}
	return strconv.Itoa(s.code)
}

func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		verb := r.Method
		path := ""
		if r.URL != nil {
			path = r.URL.Path
		}
		rec := &statusRecorder{ResponseWriter: w}

		// Defer metric observing. Any panics in next are reported as 500 errors
		// and then re-thrown.
		defer func() {
			if err := recover(); err != nil {
				ObserveRequestLatency(verb, path, "500", time.Since(t).Seconds())
				panic(err)
			}
			ObserveRequestLatency(verb, path, rec.status(), time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
