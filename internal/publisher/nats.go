package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"trip-replay/internal/playback"
)

// PublisherMetrics decouples the publisher from the metrics collector.
type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// NATSPublisher publishes render events as JSON on a "<prefix>.<trip>"
// subject for map frontends to consume. It implements playback.EventSink.
type NATSPublisher struct {
	nc          *nats.Conn
	subject     string
	logSubjects bool
	metrics     PublisherMetrics
}

func NewNATSPublisher(url, subjectPrefix, tripName string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trip-replay"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	subject := fmt.Sprintf("%s.%s", subjectToken(subjectPrefix), subjectToken(tripName))
	return &NATSPublisher{nc: nc, subject: subject, logSubjects: logSubjects, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// EventMessage is the wire form of one playback step.
type EventMessage struct {
	Timestamp time.Time `json:"timestamp"`
	playback.Event
}

// Emit implements playback.EventSink.
func (p *NATSPublisher) Emit(ev playback.Event) error {
	b, err := json.Marshal(EventMessage{Timestamp: time.Now(), Event: ev})
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s index=%d", p.subject, ev.Index)
	}
	start := time.Now()
	err = p.nc.Publish(p.subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
