package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// SlotCache stores rendered free-slot lists in one redis hash per
// (barbershop, staff, date). Fields are slot durations in minutes, so a
// single DEL drops every duration for that day.
//
// Every invalidation also bumps a per-staff generation. Set only writes
// when the generation still matches the one read before the slots were
// computed, so a list computed before a booking committed is never stored
// after that booking's invalidation.
type SlotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSlotCache(rdb *redis.Client, ttl time.Duration) *SlotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SlotCache{rdb: rdb, ttl: ttl}
}

func slotKey(barbershopID, staffID uint, date string) string {
	return fmt.Sprintf("availability:%d:%d:%s", barbershopID, staffID, date)
}

func generationKey(barbershopID, staffID uint) string {
	return fmt.Sprintf("availability:gen:%d:%d", barbershopID, staffID)
}

// generationTTL outlives any computation; an expired counter restarts at 0.
const generationTTL = 7 * 24 * time.Hour

func durationField(slot time.Duration) string {
	return strconv.Itoa(int(slot / time.Minute))
}

// Get returns ok=false on a miss.
func (c *SlotCache) Get(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	date string,
	slot time.Duration,
) ([]string, bool, error) {

	raw, err := c.rdb.HGet(ctx, slotKey(barbershopID, staffID, date), durationField(slot)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached slots: %w", err)
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("decode cached slots: %w", err)
	}
	return slots, true, nil
}

// Generation returns the staff member's current invalidation counter.
func (c *SlotCache) Generation(ctx context.Context, barbershopID, staffID uint) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(barbershopID, staffID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get slot generation: %w", err)
	}
	return gen, nil
}

// Set stores slots computed under generation gen. It is a no-op when an
// invalidation happened since gen was read.
func (c *SlotCache) Set(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	date string,
	slot time.Duration,
	gen int64,
	slots []string,
) error {

	raw, err := json.Marshal(slots)
	if err != nil {
		return err
	}

	key := slotKey(barbershopID, staffID, date)
	genKey := generationKey(barbershopID, staffID)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, durationField(slot), raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)

	if err == redis.TxFailedErr {
		return nil
	}
	if err != nil {
		return fmt.Errorf("set cached slots: %w", err)
	}
	return nil
}

// Invalidate drops the cached lists of the given dates.
func (c *SlotCache) Invalidate(
	ctx context.Context,
	barbershopID uint,
	staffID uint,
	dates ...string,
) error {

	if len(dates) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, slotKey(barbershopID, staffID, d))
	}

	genKey := generationKey(barbershopID, staffID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, generationTTL)
	pipe.Del(ctx, keys...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate cached slots: %w", err)
	}
	return nil
}

// InvalidateStaff drops every cached day of a staff member, used when the
// weekly schedule changes.
func (c *SlotCache) InvalidateStaff(ctx context.Context, barbershopID, staffID uint) error {
	pattern := fmt.Sprintf("availability:%d:%d:*", barbershopID, staffID)

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached slots: %w", err)
	}

	genKey := generationKey(barbershopID, staffID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, generationTTL)
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate staff slots: %w", err)
	}
	return nil
}

func (c *SlotCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
