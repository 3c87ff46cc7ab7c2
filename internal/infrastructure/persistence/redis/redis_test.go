package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/internal/domain/shared"
	"github.com/alem-hub/mentorship-hub/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheFromClient(client), mr
}

type countingSlots struct {
	availability.Repository
	lists int
}

func (c *countingSlots) ListByMentor(ctx context.Context, mentorID string) ([]*availability.Slot, error) {
	c.lists++
	return c.Repository.ListByMentor(ctx, mentorID)
}

func newSlot(t *testing.T, id string, day int, start, end string) *availability.Slot {
	t.Helper()
	s, err := availability.NewSlot(availability.NewSlotParams{
		ID:        id,
		MentorID:  "m1",
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Meeting:   shared.Meeting{Location: shared.LocationOnline, Type: shared.MeetingVideo},
		Now:       time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return s
}

func TestCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	type payload struct{ Name string }
	require.NoError(t, cache.Set(ctx, "k", payload{Name: "x"}, time.Minute))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, "x", got.Name)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)

	assert.ErrorIs(t, cache.Set(ctx, "", got, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, cache.Set(ctx, "k", got, -time.Second), ErrCacheInvalidTTL)
}

func TestCache_Delete(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, SlotsKey("a"), 1, 0))
	require.NoError(t, cache.Set(ctx, SlotsKey("b"), 2, 0))
	require.NoError(t, cache.Set(ctx, LockKey("c"), 3, 0))

	require.NoError(t, cache.Delete(ctx, SlotsKey("a"), SlotsKey("b")))
	require.NoError(t, cache.Delete(ctx))

	assert.False(t, mr.Exists(SlotsKey("a")))
	assert.False(t, mr.Exists(SlotsKey("b")))
	assert.True(t, mr.Exists(LockKey("c")))
}

func TestSlotCache_ReadThroughAndInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	backing := &countingSlots{Repository: memory.NewStore().Slots()}
	slots := NewSlotCache(backing, cache, time.Minute, logger.Nop())

	require.NoError(t, slots.Create(ctx, newSlot(t, "s1", 2, "14:00", "16:00")))

	tuesday, err := slots.FindByMentorAndDay(ctx, "m1", time.Tuesday)
	require.NoError(t, err)
	require.Len(t, tuesday, 1)
	assert.Equal(t, "14:00", tuesday[0].StartTime)
	assert.Equal(t, shared.MeetingVideo, tuesday[0].Meeting.Type)

	_, err = slots.FindByMentorAndDay(ctx, "m1", time.Tuesday)
	require.NoError(t, err)
	wednesday, err := slots.FindByMentorAndDay(ctx, "m1", time.Wednesday)
	require.NoError(t, err)
	assert.Empty(t, wednesday)
	assert.Equal(t, 1, backing.lists, "later reads are served from redis")

	require.NoError(t, slots.Create(ctx, newSlot(t, "s2", 3, "09:00", "10:00")))
	wednesday, err = slots.FindByMentorAndDay(ctx, "m1", time.Wednesday)
	require.NoError(t, err)
	assert.Len(t, wednesday, 1)
	assert.Equal(t, 2, backing.lists)

	require.NoError(t, slots.Delete(ctx, "s1"))
	tuesday, err = slots.FindByMentorAndDay(ctx, "m1", time.Tuesday)
	require.NoError(t, err)
	assert.Empty(t, tuesday)

	assert.ErrorIs(t, slots.Delete(ctx, "s1"), availability.ErrSlotNotFound)
}

func TestSlotCache_FallsBackWhenRedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	backing := &countingSlots{Repository: memory.NewStore().Slots()}
	slots := NewSlotCache(backing, cache, time.Minute, logger.Nop())
	require.NoError(t, slots.Create(ctx, newSlot(t, "s1", 2, "14:00", "16:00")))

	mr.Close()

	got, err := slots.FindByMentorAndDay(ctx, "m1", time.Tuesday)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLocker(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	locker := NewLocker(cache)

	first, err := locker.Acquire(ctx, "reminder-sweep", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "reminder-sweep", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, first.Extend(ctx, 2*time.Minute))
	assert.Greater(t, mr.TTL(LockKey("reminder-sweep")), time.Minute)

	require.NoError(t, first.Release(ctx))
	second, err := locker.Acquire(ctx, "reminder-sweep", time.Minute)
	require.NoError(t, err)

	t.Run("stale holder cannot release", func(t *testing.T) {
		require.NoError(t, first.Release(ctx))
		assert.True(t, mr.Exists(LockKey("reminder-sweep")))
		assert.ErrorIs(t, first.Extend(ctx, time.Minute), ErrLockHeld)
	})

	t.Run("expires", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		_, err := locker.Acquire(ctx, "reminder-sweep", time.Minute)
		assert.NoError(t, err)
		assert.ErrorIs(t, second.Extend(ctx, time.Minute), ErrLockHeld)
	})
}
