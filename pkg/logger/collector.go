package logger

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Sink receives flushed batches. *kafka.Producer satisfies it.
type Sink interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

type CollectorConfig struct {
	Interval  time.Duration // periodic flush
	Threshold int           // distinct entries that force a flush
	Topic     string
	Sink      Sink
	OnError   func(error) // publish failures; defaults to dropping them
}

// AggregatedEntry is one distinct warn/error line with its repeat count.
type AggregatedEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector deduplicates warn/error entries and ships them in batches.
type Collector struct {
	cfg     CollectorConfig
	mu      sync.Mutex
	entries map[uint64]*AggregatedEntry
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	now     func() time.Time
}

func NewCollector(cfg CollectorConfig) *Collector {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 100
	}
	c := &Collector{
		cfg:     cfg,
		entries: make(map[uint64]*AggregatedEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if cfg.Interval > 0 {
		c.wg.Add(1)
		go c.loop()
	}
	return c
}

// Add records one occurrence.
func (c *Collector) Add(level, message string, fields map[string]interface{}, caller string) {
	now := c.now()
	key := entryKey(level, message, fields, caller)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &AggregatedEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var batch []AggregatedEntry
	if len(c.entries) >= c.cfg.Threshold {
		batch = c.drainLocked()
	}
	c.mu.Unlock()

	if batch != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.publish(batch)
		}()
	}
}

// Pending returns the number of distinct entries waiting for a flush.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush ships pending entries synchronously.
func (c *Collector) Flush() {
	c.mu.Lock()
	batch := c.drainLocked()
	c.mu.Unlock()
	c.publish(batch)
}

// Close stops the flush loop and ships what is left.
func (c *Collector) Close() {
	c.once.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.Flush()
	})
}

func (c *Collector) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Flush()
		case <-c.done:
			return
		}
	}
}

func (c *Collector) drainLocked() []AggregatedEntry {
	if len(c.entries) == 0 {
		return nil
	}
	out := make([]AggregatedEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	c.entries = make(map[uint64]*AggregatedEntry)
	sort.Slice(out, func(i, j int) bool { return out[i].FirstSeen.Before(out[j].FirstSeen) })
	return out
}

func (c *Collector) publish(batch []AggregatedEntry) {
	if len(batch) == 0 || c.cfg.Sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	key := []byte(strconv.Itoa(len(batch)))
	if err := c.cfg.Sink.Publish(ctx, c.cfg.Topic, key, batch); err != nil && c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
}

func entryKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(level))
	h.Write([]byte{0})
	h.Write([]byte(message))
	h.Write([]byte{0})
	h.Write([]byte(caller))
	if len(fields) > 0 {
		// json.Marshal sorts map keys
		b, _ := json.Marshal(fields)
		h.Write(b)
	}
	return h.Sum64()
}
