package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "refurb/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.New(audit.EventProductApproved, audit.SubjectProduct, "p1")))
	require.NoError(t, store.Append(ctx, audit.New(audit.EventStaffCreated, audit.SubjectStaff, "p1")))
	require.NoError(t, store.Append(ctx, audit.New(audit.EventProductDeleted, audit.SubjectProduct, "p1")))

	t.Run("subject lookup keeps order and type", func(t *testing.T) {
		events, err := store.ListBySubject(ctx, audit.SubjectProduct, "p1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventProductApproved), events[0].Action)
		assert.Equal(t, string(audit.EventProductDeleted), events[1].Action)
	})

	t.Run("recent is newest first and bounded", func(t *testing.T) {
		events, err := store.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventProductDeleted), events[0].Action)
		assert.Equal(t, string(audit.EventStaffCreated), events[1].Action)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		store.Clear()
		events, err := store.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
