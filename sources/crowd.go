package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/example/floodroute/backend/observation"
)

// CrowdSourceConfig configures the Kafka consumer backing the crowd-report
// feed. The upstream social-scraping/SMS-gateway classifier publishes
// already-scored reports to this topic; CrowdSource is a pure transport
// adapter from Kafka records to Observations.
type CrowdSourceConfig struct {
	Brokers []string
	Topic   string
}

// CrowdSource drains crowd reports buffered since the previous cycle from
// a background Kafka consumer. Unlike the HTTP-polled sources, this one
// never blocks on a network round trip during Collect: the consumer
// goroutine runs continuously and Collect only drains its local buffer.
type CrowdSource struct {
	consumer sarama.Consumer
	buffer   chan []byte
	done     chan struct{}
	once     sync.Once
	enabled  bool

	parseErrors int
}

// NewCrowdSource dials the Kafka brokers and starts a background consumer
// for every partition of the configured topic.
func NewCrowdSource(cfg CrowdSourceConfig) (*CrowdSource, error) {
	config := sarama.NewConfig()
	config.Consumer.Return.Errors = false

	consumer, err := sarama.NewConsumer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("crowd source: connect to kafka: %w", err)
	}

	partitions, err := consumer.Partitions(cfg.Topic)
	if err != nil {
		consumer.Close()
		return nil, fmt.Errorf("crowd source: list partitions for %s: %w", cfg.Topic, err)
	}

	s := &CrowdSource{
		consumer: consumer,
		buffer:   make(chan []byte, 4096),
		done:     make(chan struct{}),
		enabled:  true,
	}

	for _, p := range partitions {
		pc, err := consumer.ConsumePartition(cfg.Topic, p, sarama.OffsetNewest)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("crowd source: consume partition %d: %w", p, err)
		}
		go s.drain(pc)
	}

	return s, nil
}

func (s *CrowdSource) drain(pc sarama.PartitionConsumer) {
	defer pc.Close()
	for {
		select {
		case msg, ok := <-pc.Messages():
			if !ok {
				return
			}
			select {
			case s.buffer <- msg.Value:
			default:
				// Buffer full: drop the oldest pending report rather than
				// block the consumer goroutine.
				select {
				case <-s.buffer:
				default:
				}
				s.buffer <- msg.Value
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the background consumer. Safe to call more than once.
func (s *CrowdSource) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.consumer.Close()
}

func (s *CrowdSource) Name() string      { return "crowd" }
func (s *CrowdSource) Enabled() bool     { return s.enabled }
func (s *CrowdSource) SetEnabled(v bool) { s.enabled = v }

// Collect drains whatever crowd reports have buffered since the last
// cycle, parsing each as it comes off the channel. It never retries: a
// malformed record is counted as a parse error and skipped, per the
// Source contract's non-fatal parse-failure policy.
func (s *CrowdSource) Collect(ctx context.Context) ([]observation.Observation, Stats, error) {
	stats := Stats{Name: s.Name()}
	if !s.enabled {
		return nil, stats, nil
	}
	started := time.Now()

	var out []observation.Observation
	for {
		select {
		case raw := <-s.buffer:
			obs, err := observation.ParseCrowdJSON(raw, time.Now())
			if err != nil {
				s.parseErrors++
				stats.ParseErrors++
				continue
			}
			out = append(out, obs)
		case <-ctx.Done():
			stats.ObservationsSent = len(out)
			stats.Duration = time.Since(started)
			return out, stats, nil
		default:
			stats.ObservationsSent = len(out)
			stats.Duration = time.Since(started)
			return out, stats, nil
		}
	}
}
