package storage

import (
	"context"
	"testing"
	"time"

	"workflowx/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDialogStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDialogStore(model.DialogConfig{TTL: 15 * time.Minute})

	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	dc := map[string]any{"flow": "send_email", "waiting_for": "sender_name"}
	require.NoError(t, s.Save(ctx, "s1", dc))

	got, err = s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, dc, got)

	require.NoError(t, s.Save(ctx, "s1", nil))
	got, err = s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryDialogStoreExpiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	s := NewMemoryDialogStore(model.DialogConfig{TTL: 15 * time.Minute})
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Save(ctx, "s1", map[string]any{"flow": "send_email"}))

	// a read inside the window refreshes it
	clock = clock.Add(10 * time.Minute)
	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	clock = clock.Add(10 * time.Minute)
	got, err = s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	clock = clock.Add(16 * time.Minute)
	got, err = s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryDialogStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDialogStore(model.DialogConfig{TTL: time.Minute})

	require.NoError(t, s.Save(ctx, "a", map[string]any{"flow": "send_email"}))
	require.NoError(t, s.Save(ctx, "b", map[string]any{"flow": "send_email"}))
	require.NoError(t, s.Delete(ctx, "a"))

	got, _ := s.Load(ctx, "a")
	assert.Nil(t, got)
	got, _ = s.Load(ctx, "b")
	assert.NotNil(t, got)
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), model.RedisConfig{})
	assert.Error(t, err)
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ DialogStore = (*RedisDialogStore)(nil)
	var _ DialogStore = (*MemoryDialogStore)(nil)
}
