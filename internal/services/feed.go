package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DashboardFeed fans change events out to connected staff dashboards. It
// de-duplicates replayed events and mutes events for attendees a local staff
// edit just touched, so the operator doing the edit doesn't get alerted
// about their own action.
type DashboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan ChangeEvent]struct{}
	suppressed  map[string]time.Time // attendee id -> suppression expiry
	seen        map[string]time.Time // event id -> first seen
	window      time.Duration
	now         func() time.Time
}

// NewDashboardFeed creates a feed with the given suppression window.
func NewDashboardFeed(window time.Duration) *DashboardFeed {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &DashboardFeed{
		subscribers: make(map[chan ChangeEvent]struct{}),
		suppressed:  make(map[string]time.Time),
		seen:        make(map[string]time.Time),
		window:      window,
		now:         time.Now,
	}
}

// Subscribe registers a dashboard session. The returned channel is buffered;
// a slow consumer loses events rather than blocking the feed.
func (f *DashboardFeed) Subscribe() chan ChangeEvent {
	ch := make(chan ChangeEvent, 32)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a dashboard session and closes its channel.
func (f *DashboardFeed) Unsubscribe(ch chan ChangeEvent) {
	f.mu.Lock()
	if _, ok := f.subscribers[ch]; ok {
		delete(f.subscribers, ch)
		close(ch)
	}
	f.mu.Unlock()
}

// Suppress mutes feed events for the attendee until the window elapses.
// Called when a staff edit originates locally.
func (f *DashboardFeed) Suppress(attendeeID string) {
	f.mu.Lock()
	f.suppressed[attendeeID] = f.now().Add(f.window)
	f.mu.Unlock()
}

// Dispatch delivers an event to every subscriber, unless it is a duplicate
// or the attendee is inside a suppression window.
func (f *DashboardFeed) Dispatch(ev ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.expire(now)

	if _, dup := f.seen[ev.ID]; dup {
		return
	}
	f.seen[ev.ID] = now

	if until, ok := f.suppressed[ev.AttendeeID]; ok && now.Before(until) {
		return
	}

	for ch := range f.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber is backed up; drop rather than stall the feed.
		}
	}
}

// expire drops stale suppression markers and dedup entries. Caller holds mu.
func (f *DashboardFeed) expire(now time.Time) {
	for id, until := range f.suppressed {
		if !now.Before(until) {
			delete(f.suppressed, id)
		}
	}
	for id, at := range f.seen {
		if now.Sub(at) > 10*time.Minute {
			delete(f.seen, id)
		}
	}
}

// FeedConsumer bridges the Redis change-feed channel into a DashboardFeed.
type FeedConsumer struct {
	client  *redis.Client
	channel string
	feed    *DashboardFeed
}

// NewFeedConsumer creates a new feed consumer
func NewFeedConsumer(client *redis.Client, channel string, feed *DashboardFeed) *FeedConsumer {
	return &FeedConsumer{
		client:  client,
		channel: channel,
		feed:    feed,
	}
}

// Run subscribes to the channel and dispatches events until ctx is done.
func (c *FeedConsumer) Run(ctx context.Context) error {
	pubsub := c.client.Subscribe(ctx, c.channel)
	defer pubsub.Close()

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("Dropping malformed change event: %v", err)
				continue
			}

			c.feed.Dispatch(ev)
		}
	}
}
