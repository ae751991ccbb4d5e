// Outcome Tail - follows validation outcome topics and prints each record
// as the report line it stands for.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"event-schema-validator/internal/config"
	"event-schema-validator/internal/models"
	"event-schema-validator/internal/observability/logging"
)

// render formats a record for the terminal. Failed records print their
// report line; valid ones print a short confirmation.
func render(rec models.OutcomeRecord) string {
	prefix := rec.RunID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	if rec.Failed() && rec.Line != "" {
		return fmt.Sprintf("[%s] %s", prefix, rec.Line)
	}
	return fmt.Sprintf("[%s] %d. '%s' is valid against '%s.schema'", prefix, rec.Seq, rec.Filename, rec.EventName)
}

func consumeKafka(ctx context.Context, out chan<- models.OutcomeRecord, brokers []string, topic string, since time.Duration) {
	// Partition reader without a consumer group so several tails can run side by side.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Could not seek, reading from the start")
	}

	log.Info().Str("topic", topic).Dur("since", since).Msg("Consuming outcome topic")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("topic", topic).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		var rec models.OutcomeRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			log.Error().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Skipping undecodable record")
			continue
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}

func printRecords(ctx context.Context, w io.Writer, in <-chan models.OutcomeRecord, failedOnly bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-in:
			if !ok {
				return
			}
			if failedOnly && !rec.Failed() {
				continue
			}
			fmt.Fprintln(w, render(rec))
		}
	}
}

func main() {
	cfg := config.Load()

	brokers := flag.String("brokers", strings.Join(cfg.Kafka.Brokers, ","), "Kafka brokers (comma-separated)")
	topicValid := flag.String("topic-valid", cfg.Kafka.TopicValid, "Valid outcome topic")
	topicInvalid := flag.String("topic-invalid", cfg.Kafka.TopicInvalid, "Invalid outcome topic")
	since := flag.Duration("since", time.Hour, "How far back to start reading")
	failedOnly := flag.Bool("failed-only", false, "Only print failed events")
	flag.Parse()

	logging.Init(logging.Config{
		Level:  cfg.Observability.LogLevel,
		Format: "console",
	})

	if *brokers == "" {
		*brokers = "localhost:9092"
	}
	brokerList := strings.Split(*brokers, ",")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records := make(chan models.OutcomeRecord, 100)
	go consumeKafka(ctx, records, brokerList, *topicInvalid, *since)
	if !*failedOnly {
		go consumeKafka(ctx, records, brokerList, *topicValid, *since)
	}

	printRecords(ctx, os.Stdout, records, *failedOnly)
}
