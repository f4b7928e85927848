package controller

import (
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

// stateKey identifies one cached item of remote device state
type stateKey string

const (
	keyFreqA  stateKey = "freq:A"
	keyFreqB  stateKey = "freq:B"
	keyMode   stateKey = "mode"
	keyPTT    stateKey = "ptt"
	keySignal stateKey = "signal"
	keySplit  stateKey = "split"
	keyRIT    stateKey = "rit"
)

func freqKey(vfo rig.VFO) stateKey {
	if vfo == rig.VFOB {
		return keyFreqB
	}
	return keyFreqA
}

// Per-key freshness windows. Fast-moving state (PTT, S-meter) expires
// quickly; tuning state survives long enough to absorb bursts of reads.
var cacheTTLs = map[stateKey]time.Duration{
	keyFreqA:  5 * time.Second,
	keyFreqB:  5 * time.Second,
	keyMode:   5 * time.Second,
	keyPTT:    500 * time.Millisecond,
	keySignal: 250 * time.Millisecond,
	keySplit:  5 * time.Second,
	keyRIT:    5 * time.Second,
}

// cacheDeps lists keys invalidated alongside a write to the map key.
// Split state derives from the frequency pair, so retuning either VFO
// drops it.
var cacheDeps = map[stateKey][]stateKey{
	keyFreqA: {keySplit},
	keyFreqB: {keySplit},
	keySplit: {keyFreqA, keyFreqB},
	keyRIT:   {keyFreqA, keyFreqB},
}

type cacheEntry struct {
	value interface{}
	at    time.Time
}

// stateCache is the session's volatile view of device state. It is
// owned by exactly one session and only touched while the session's
// transaction lock is held; the internal mutex guards the handful of
// read paths that bypass the transaction (status snapshots).
type stateCache struct {
	mutex   sync.Mutex
	entries map[stateKey]cacheEntry
	now     func() time.Time
}

func newStateCache() *stateCache {
	return &stateCache{
		entries: make(map[stateKey]cacheEntry),
		now:     time.Now,
	}
}

// get returns the cached value if it is younger than the key's TTL
func (c *stateCache) get(key stateKey) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ttl, ok := cacheTTLs[key]
	if !ok || c.now().Sub(e.at) > ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// put stores a value confirmed by a device response and drops
// dependent keys
func (c *stateCache) put(key stateKey, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = cacheEntry{value: value, at: c.now()}
	for _, dep := range cacheDeps[key] {
		delete(c.entries, dep)
	}
}

// invalidate drops a key and its dependents
func (c *stateCache) invalidate(key stateKey) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	for _, dep := range cacheDeps[key] {
		delete(c.entries, dep)
	}
}

// clear drops everything; used on disconnect and fault
func (c *stateCache) clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[stateKey]cacheEntry)
}
