// Package kafka ships audit events to per-category Kafka topics while a
// local store keeps serving reads.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "refurb/pkg/platform/audit"
)

// Producer is the slice of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store writes each event to Kafka first, then to the local store.
type Store struct {
	producer    Producer
	topicPrefix string
	local       audit.Store
}

func NewStore(producer Producer, topicPrefix string, local audit.Store) (*Store, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if local == nil {
		return nil, fmt.Errorf("local audit store is required")
	}
	if topicPrefix == "" {
		topicPrefix = "refurb.audit"
	}
	return &Store{producer: producer, topicPrefix: topicPrefix, local: local}, nil
}

// TopicFor returns the topic an event category is written to.
func (s *Store) TopicFor(category audit.EventCategory) string {
	return s.topicPrefix + "." + string(category)
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	rec := &kgo.Record{
		Topic:     s.TopicFor(event.Category),
		Key:       []byte(string(event.SubjectType) + ":" + event.SubjectID),
		Value:     payload,
		Timestamp: event.Timestamp,
	}
	if err := s.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return s.local.Append(ctx, event)
}

func (s *Store) ListBySubject(ctx context.Context, subjectType audit.SubjectType, subjectID string) ([]audit.Event, error) {
	return s.local.ListBySubject(ctx, subjectType, subjectID)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.local.ListRecent(ctx, limit)
}

// NewClient dials brokers for producing audit records.
func NewClient(brokers []string) (*kgo.Client, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka audit sink requires at least one broker")
	}
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
}

// EnsureTopics creates the per-category topics when missing.
func EnsureTopics(ctx context.Context, client *kgo.Client, topicPrefix string, partitions int32, replicationFactor int16) error {
	if topicPrefix == "" {
		topicPrefix = "refurb.audit"
	}
	topics := []string{
		topicPrefix + "." + string(audit.CategoryModeration),
		topicPrefix + "." + string(audit.CategoryFinancial),
		topicPrefix + "." + string(audit.CategoryAccess),
	}
	adm := kadm.NewClient(client)
	resps, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topics...)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, r := range resps.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
