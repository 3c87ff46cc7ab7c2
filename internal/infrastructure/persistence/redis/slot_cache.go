package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/mentorship-hub/internal/domain/availability"
	"github.com/alem-hub/mentorship-hub/pkg/logger"
)

// SlotCache is a read-through cache over an availability.Repository.
// A mentor's whole week is cached under one key, so day lookups are served
// from the same entry and writes invalidate a single key.
//
// Redis failures never fail a read: the cache logs and falls back to the
// wrapped repository.
type SlotCache struct {
	next  availability.Repository
	cache *Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewSlotCache wraps next. A non-positive ttl means TTLSlotCache.
func NewSlotCache(next availability.Repository, cache *Cache, ttl time.Duration, log *logger.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = TTLSlotCache
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SlotCache{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With(logger.Component("slot_cache")),
	}
}

var _ availability.Repository = (*SlotCache)(nil)

// Create stores the slot and drops the mentor's cached week.
func (c *SlotCache) Create(ctx context.Context, slot *availability.Slot) error {
	if err := c.next.Create(ctx, slot); err != nil {
		return err
	}
	c.invalidate(ctx, slot.MentorID)
	return nil
}

// GetByID is not cached.
func (c *SlotCache) GetByID(ctx context.Context, id string) (*availability.Slot, error) {
	return c.next.GetByID(ctx, id)
}

// Delete removes the slot and drops the owner's cached week.
func (c *SlotCache) Delete(ctx context.Context, id string) error {
	slot, err := c.next.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, slot.MentorID)
	return nil
}

// FindByMentorAndDay filters the cached week by day.
func (c *SlotCache) FindByMentorAndDay(ctx context.Context, mentorID string, day time.Weekday) ([]*availability.Slot, error) {
	week, err := c.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	var out []*availability.Slot
	for _, s := range week {
		if s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListByMentor returns the cached week, loading it on a miss.
func (c *SlotCache) ListByMentor(ctx context.Context, mentorID string) ([]*availability.Slot, error) {
	key := SlotsKey(mentorID)

	var cached []*availability.Slot
	err := c.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		c.log.Warn("slot cache read failed", logger.MentorID(mentorID), logger.Err(err))
	}

	week, err := c.next.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if week == nil {
		week = []*availability.Slot{}
	}

	if err := c.cache.Set(ctx, key, week, c.ttl); err != nil {
		c.log.Warn("slot cache write failed", logger.MentorID(mentorID), logger.Err(err))
	}
	return week, nil
}

func (c *SlotCache) invalidate(ctx context.Context, mentorID string) {
	if err := c.cache.Delete(ctx, SlotsKey(mentorID)); err != nil {
		c.log.Warn("slot cache invalidation failed", logger.MentorID(mentorID), logger.Err(err))
	}
}
