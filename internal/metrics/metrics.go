package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ActiveRuns prometheus.Gauge

	RunsStarted  prometheus.Counter
	RunsFinished prometheus.Counter

	EventsEmitted prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	StopPoints   prometheus.Gauge
	MovingPoints prometheus.Gauge
	StayClusters prometheus.Gauge

	ClassifyDuration prometheus.Histogram
	PublishDuration  prometheus.Histogram

	AnimationSeconds prometheus.Gauge
	StopDistance     prometheus.Gauge // meters
	StopDuration     prometheus.Gauge // seconds
}

func NewCollector(animationSecs int, stopDistanceM float64, stopDuration time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_active_runs",
			Help: "Number of live playback runs (0 or 1).",
		}),
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_runs_started_total",
			Help: "Total playback runs started.",
		}),
		RunsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_runs_finished_total",
			Help: "Total playback runs finished or cancelled.",
		}),
		EventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_events_emitted_total",
			Help: "Total render events emitted to sinks.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		StopPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_stop_points",
			Help: "Points classified as stopped in the loaded trip.",
		}),
		MovingPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_moving_points",
			Help: "Points classified as moving in the loaded trip.",
		}),
		StayClusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_stay_clusters",
			Help: "Stay clusters detected in the loaded trip.",
		}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_classify_duration_seconds",
			Help:    "Duration of the stop-detection pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		AnimationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_animation_seconds",
			Help: "Configured total animation duration in seconds.",
		}),
		StopDistance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_stop_distance_meters",
			Help: "Configured stay-point distance threshold in meters.",
		}),
		StopDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_stop_duration_seconds",
			Help: "Configured stay-point minimum duration in seconds.",
		}),
	}

	// Register
	reg.MustRegister(
		c.ActiveRuns, c.RunsStarted, c.RunsFinished, c.EventsEmitted,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.StopPoints, c.MovingPoints, c.StayClusters,
		c.ClassifyDuration, c.PublishDuration,
		c.AnimationSeconds, c.StopDistance, c.StopDuration,
	)

	c.AnimationSeconds.Set(float64(animationSecs))
	c.StopDistance.Set(stopDistanceM)
	c.StopDuration.Set(stopDuration.Seconds())

	return c
}

// RunStarted, RunFinished, EventEmitted and SetActiveRuns satisfy
// playback.RunMetrics. The active-run gauge is driven by the manager's
// own count rather than inferred here.
func (c *Collector) RunStarted() { c.RunsStarted.Inc() }

func (c *Collector) RunFinished() { c.RunsFinished.Inc() }

func (c *Collector) EventEmitted() { c.EventsEmitted.Inc() }

func (c *Collector) SetActiveRuns(n int) { c.ActiveRuns.Set(float64(n)) }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
