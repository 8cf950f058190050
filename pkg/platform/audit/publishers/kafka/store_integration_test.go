//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "refurb/pkg/platform/audit"
	"refurb/pkg/platform/audit/store/memory"
	"refurb/pkg/testutil/containers"
)

func TestStore_RoundTripAgainstBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaBroker(ctx, t)

	client, err := NewClient([]string{broker})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, EnsureTopics(ctx, client, "it.audit", 1, 1))
	require.NoError(t, EnsureTopics(ctx, client, "it.audit", 1, 1), "second call tolerates existing topics")

	store, err := NewStore(client, "it.audit", memory.NewInMemoryStore())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, audit.New(audit.EventProductApproved, audit.SubjectProduct, "p1")))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("it.audit.moderation"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	var keys []string
	fetches.EachRecord(func(r *kgo.Record) { keys = append(keys, string(r.Key)) })
	require.Contains(t, keys, "product:p1")
}
