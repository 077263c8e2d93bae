// internal/instance/cache.go
//
// Barali – In-memory cache of mounted form instances.
//
// Context
//   Every browser that opens a stateful form gets its own instance (for the
//   registration page, a *register.Controller) keyed by the browser's
//   form-instance cookie.  Instances are mounted lazily on first use and
//   unmounted when they go idle, when the cache is over capacity, when a
//   handler unmounts them explicitly, or at shutdown.  Unmounting always
//   calls Close so in-flight work is discarded.
//
// Notes
//   •  Concurrent first requests for one key mount exactly once
//      (singleflight).
//   •  An entry is closed at most once, whichever path removes it first.
//
//------------------------------------------------------------------------------

package instance

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/baraliresort/reserve/internal/metrics"
)

// Defaults used when Config leaves a field zero.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 10000
	EvictInterval = time.Minute
)

// Unmount reasons, as reported to form_unmount_total.
const (
	ReasonIdle     = "idle"
	ReasonLRU      = "lru"
	ReasonExplicit = "explicit"
	ReasonShutdown = "shutdown"
)

// ErrNotFound is returned by Lookup when nothing is mounted under a key.
var ErrNotFound = errors.New("form instance not mounted")

// Closer is what the cache holds.  Close must be safe to call once from any
// goroutine.
type Closer interface {
	Close()
}

// MountFunc builds a fresh instance for key.
type MountFunc[T Closer] func(key string) (T, error)

// Config sizes a Cache.
type Config struct {
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration
	Logger        *zap.SugaredLogger
}

// Cache maps instance keys to mounted values.  Construct with New.
type Cache[T Closer] struct {
	name  string
	mount MountFunc[T]

	sfg singleflight.Group
	m   sync.Map // key → *entry[T]

	idleTTL    time.Duration
	maxEntries int
	log        *zap.SugaredLogger

	evictTicker *time.Ticker
	stop        chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// New constructs a Cache for the form called name and starts the evictor.
func New[T Closer](name string, mount MountFunc[T], cfg Config) *Cache[T] {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = IdleTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = MaxEntries
	}
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = EvictInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.S()
	}
	c := &Cache[T]{
		name:       name,
		mount:      mount,
		idleTTL:    cfg.IdleTTL,
		maxEntries: cfg.MaxEntries,
		log:        cfg.Logger.With("form", name),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	c.evictTicker = time.NewTicker(cfg.EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the instance for key, mounting it on demand.
func (c *Cache[T]) Get(key string) (T, error) {
	if ent, ok := c.load(key); ok {
		ent.touch()
		return ent.value, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		// Double-check after singleflight barrier.
		if ent, ok := c.load(key); ok {
			ent.touch()
			return ent.value, nil
		}
		val, err := c.mount(key)
		if err != nil {
			return nil, err
		}
		ent := &entry[T]{value: val, lastSeen: time.Now().UnixNano()}
		c.m.Store(key, ent)
		metrics.MountedForms.WithLabelValues(c.name).Inc()
		c.log.Debugw("form mounted", "key", key)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Lookup returns the mounted instance for key without mounting.
func (c *Cache[T]) Lookup(key string) (T, error) {
	if ent, ok := c.load(key); ok {
		ent.touch()
		return ent.value, nil
	}
	var zero T
	return zero, ErrNotFound
}

// Unmount closes and forgets the instance for key.  It reports whether one
// was mounted.
func (c *Cache[T]) Unmount(key string) bool {
	v, ok := c.m.LoadAndDelete(key)
	if !ok {
		return false
	}
	c.closeEntry(key, v.(*entry[T]), ReasonExplicit)
	return true
}

// Len reports how many instances are mounted.
func (c *Cache[T]) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Close stops the evictor and unmounts everything.  Safe to call twice.
func (c *Cache[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
		c.m.Range(func(key, value any) bool {
			if c.m.CompareAndDelete(key, value) {
				c.closeEntry(key.(string), value.(*entry[T]), ReasonShutdown)
			}
			return true
		})
	})
}

func (c *Cache[T]) load(key string) (*entry[T], bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*entry[T]), true
}

func (c *Cache[T]) closeEntry(key string, ent *entry[T], reason string) {
	ent.value.Close()
	metrics.MountedForms.WithLabelValues(c.name).Dec()
	metrics.FormUnmountTotal.WithLabelValues(c.name, reason).Inc()
	c.log.Debugw("form unmounted", "key", key, "reason", reason)
}

type entry[T Closer] struct {
	value    T
	lastSeen int64 // unix nanos, atomic
}

func (e *entry[T]) touch() { atomic.StoreInt64(&e.lastSeen, time.Now().UnixNano()) }
