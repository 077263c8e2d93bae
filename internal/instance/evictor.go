// evictor.go houses the eviction loop for Cache.  Every tick it scans the
// map and unmounts:
//
//   - instances idle longer than idleTTL
//   - least-recently-used instances when the map holds more than maxEntries
package instance

import (
	"sort"
	"sync/atomic"
	"time"
)

func (c *Cache[T]) evictLoop() {
	defer close(c.done)
	defer c.evictTicker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case t := <-c.evictTicker.C:
			c.evict(t)
		}
	}
}

func (c *Cache[T]) evict(now time.Time) {
	var count int

	// Idle pass
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry[T])
		idle := now.Sub(time.Unix(0, atomic.LoadInt64(&ent.lastSeen)))
		if idle > c.idleTTL && c.m.CompareAndDelete(key, value) {
			c.closeEntry(key.(string), ent, ReasonIdle)
			return true
		}
		count++
		return true
	})

	// LRU pass
	if count <= c.maxEntries {
		return
	}
	type kv struct {
		key string
		ent *entry[T]
		at  int64
	}
	var all []kv
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry[T])
		all = append(all, kv{key: key.(string), ent: ent, at: atomic.LoadInt64(&ent.lastSeen)})
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < len(all)-c.maxEntries; i++ {
		if c.m.CompareAndDelete(all[i].key, all[i].ent) {
			c.closeEntry(all[i].key, all[i].ent, ReasonLRU)
		}
	}
}
