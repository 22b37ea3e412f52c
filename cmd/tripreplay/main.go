package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"trip-replay/internal/config"
	"trip-replay/internal/detect"
	"trip-replay/internal/ingest"
	"trip-replay/internal/metrics"
	"trip-replay/internal/playback"
	"trip-replay/internal/publisher"
	"trip-replay/internal/render"
	"trip-replay/internal/store"
	"trip-replay/internal/trip"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Metrics setup
	var mcol *metrics.Collector
	if cfg.MetricsAddr != "" {
		mcol = metrics.NewCollector(cfg.AnimationSecs, cfg.StopDistanceM, cfg.StopDuration)
		srv := mcol.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Ingest and validate the trip log
	records, err := ingest.ReadFile(cfg.TripFile)
	if err != nil {
		log.Fatalf("read trip log: %v", err)
	}
	loaded, err := trip.Load(records)
	if err != nil {
		log.Fatalf("load trip: %v", err)
	}
	log.Printf("loaded trip %q: %d points (%s to %s)", cfg.TripName, loaded.Len(),
		loaded.Start().Format(time.RFC3339), loaded.End().Format(time.RFC3339))

	// One-time classification pass, before any playback run starts
	det := detect.Detector{DistanceThreshold: cfg.StopDistanceM, MinDuration: cfg.StopDuration}
	classifyStart := time.Now()
	classified, clusters, err := det.Classify(loaded.Full())
	if err != nil {
		log.Fatalf("classify trip: %v", err)
	}
	loaded.Replace(classified)
	if mcol != nil {
		mcol.ClassifyDuration.Observe(time.Since(classifyStart).Seconds())
		moving := loaded.Moving()
		mcol.StopPoints.Set(float64(loaded.Len() - len(moving)))
		mcol.MovingPoints.Set(float64(len(moving)))
		mcol.StayClusters.Set(float64(len(clusters)))
	}
	log.Printf("classified trip: %d stay clusters, %d moving points", len(clusters), len(loaded.Moving()))

	// Optional persistence of the classified trip
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := store.Ping(ctx, db); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("db schema error: %v", err)
		}
		id, err := store.SaveTrip(ctx, db, cfg.TripName, loaded.Full(), clusters)
		if err != nil {
			log.Fatalf("db save error: %v", err)
		}
		log.Printf("persisted trip %q as id %d", cfg.TripName, id)
	}

	// Event sinks: NATS for external frontends, trail driver locally
	pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.TripName, cfg.LogNATSSubjects, wrapPublisherMetrics(mcol))
	if err != nil {
		log.Fatalf("nats error: %v", err)
	}
	defer pub.Close()
	sink := playback.MultiSink(pub, render.NewTrailDriver(&render.LogRenderer{}))

	// Pick the view and run the playback
	points := loaded.Full()
	if !cfg.IncludeStops {
		points = loaded.Moving()
	}
	if len(points) == 0 {
		log.Fatalf("nothing to play: all %d points are stops", loaded.Len())
	}

	mgr := playback.NewManager(runMetrics(mcol))
	handle, err := mgr.Play(ctx, points, cfg.AnimationSecs, sink)
	if err != nil {
		log.Fatalf("playback error: %v", err)
	}

	select {
	case <-handle.Done():
		log.Printf("playback complete")
	case <-ctx.Done():
		log.Printf("interrupted, cancelling playback")
	}
	mgr.Stop()
	log.Println("shutdown complete")
}

// runMetrics keeps the typed-nil pitfall out of the Manager, which checks
// its metrics interface against nil.
func runMetrics(c *metrics.Collector) playback.RunMetrics {
	if c == nil {
		return nil
	}
	return c
}

// wrapPublisherMetrics adapts our Collector to the PublisherMetrics interface.
func wrapPublisherMetrics(c *metrics.Collector) publisher.PublisherMetrics {
	if c == nil {
		return nil
	}
	return &pubMetrics{c: c}
}

type pubMetrics struct{ c *metrics.Collector }

func (p *pubMetrics) NATSPublishedInc()              { p.c.NATSPublished.Inc() }
func (p *pubMetrics) NATSPublishErrInc()             { p.c.NATSPublishErrs.Inc() }
func (p *pubMetrics) PublishObserve(d time.Duration) { p.c.PublishDuration.Observe(d.Seconds()) }
func (p *pubMetrics) NATSSetConnected(b bool) {
	if b {
		p.c.NATSConnected.Set(1)
	} else {
		p.c.NATSConnected.Set(0)
	}
}
