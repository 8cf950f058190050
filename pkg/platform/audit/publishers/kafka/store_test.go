package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "refurb/pkg/platform/audit"
	"refurb/pkg/platform/audit/store/memory"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)

	t.Run("routes by category and keeps local copy", func(t *testing.T) {
		producer := &fakeProducer{}
		local := memory.NewInMemoryStore()
		store, err := NewStore(producer, "", local)
		require.NoError(t, err)

		event := audit.New(audit.EventPaymentCompleted, audit.SubjectPayment, "pay-1")
		event.Timestamp = ts
		require.NoError(t, store.Append(ctx, event))

		require.Len(t, producer.records, 1)
		rec := producer.records[0]
		assert.Equal(t, "refurb.audit.financial", rec.Topic)
		assert.Equal(t, "payment:pay-1", string(rec.Key))
		assert.Equal(t, ts, rec.Timestamp)

		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, string(audit.EventPaymentCompleted), decoded.Action)

		events, err := store.ListBySubject(ctx, audit.SubjectPayment, "pay-1")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("produce failure skips local write", func(t *testing.T) {
		producer := &fakeProducer{err: errors.New("broker unavailable")}
		local := memory.NewInMemoryStore()
		store, err := NewStore(producer, "ops", local)
		require.NoError(t, err)

		err = store.Append(ctx, audit.New(audit.EventStaffCreated, audit.SubjectStaff, "s1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker unavailable")

		events, err := local.ListBySubject(ctx, audit.SubjectStaff, "s1")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("requires collaborators", func(t *testing.T) {
		_, err := NewStore(nil, "", memory.NewInMemoryStore())
		require.Error(t, err)
		_, err = NewStore(&fakeProducer{}, "", nil)
		require.Error(t, err)
	})
}
