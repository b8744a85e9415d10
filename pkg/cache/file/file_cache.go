package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/gokyle/filecache"
	"go.uber.org/zap"
)

type Config struct {
	MaxCacheSize   int64 `validate:"gte=0"`
	MaxCacheItems  int   `validate:"gte=0"`
	CacheTTL       int   `validate:"gte=0"`
	CacheThreshold int   `validate:"gte=1"`
	FlushEvery     int   `validate:"gte=1"`
	CheckoutEvery  int   `validate:"gte=1"`
}

// Cache keeps content of frequently downloaded files in memory.
// Keys are absolute file paths.
type Cache interface {
	Hit(path string)
	Lookup(path string) ([]byte, bool)
	Evict(path string)
	Start(debug bool) error
	Stop()
}

type FileCache struct {
	cache        *filecache.FileCache
	hitThreshold int
	hits         map[string]int
	mu           *sync.Mutex
	logger       *zap.SugaredLogger
	isFlushing   bool
	ticker       *time.Ticker
	wg           *sync.WaitGroup
	shutdown     chan interface{}
}

func NewFileCache(logger *zap.SugaredLogger, cfg *Config) *FileCache {

	c := filecache.NewDefaultCache()
	c.MaxItems = cfg.MaxCacheItems
	c.Every = cfg.CheckoutEvery
	c.MaxSize = cfg.MaxCacheSize * filecache.Megabyte
	c.ExpireItem = cfg.CacheTTL

	return &FileCache{
		cache:        c,
		hitThreshold: cfg.CacheThreshold,
		hits:         make(map[string]int),
		wg:           new(sync.WaitGroup),
		mu:           new(sync.Mutex),
		logger:       logger,
		ticker:       time.NewTicker(time.Second * time.Duration(cfg.FlushEvery)),
		isFlushing:   false,
		shutdown:     make(chan interface{}),
	}
}

// Hit counts a download of path. Once the count reaches the threshold
// the file is loaded into the cache.
// Every call into fc.cache happens under fc.mu.
func (fc *FileCache) Hit(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.hits == nil || fc.cache.InCache(path) {
		return
	}

	fc.hits[path]++
	if fc.hits[path] < fc.hitThreshold {
		return
	}
	delete(fc.hits, path)

	if err := fc.cache.CacheNow(path); err != nil {
		fc.logger.Debugf("could not cache %s: %s", path, err.Error())
	}
}

func (fc *FileCache) Lookup(path string) ([]byte, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if !fc.cache.InCache(path) {
		return nil, false
	}

	return fc.cache.GetItem(path)
}

// Evict forgets path. Call before the file is removed from disk
func (fc *FileCache) Evict(path string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.hits != nil {
		delete(fc.hits, path)
	}

	if _, err := fc.cache.Remove(path); err != nil {
		fc.logger.Debugf("could not evict %s: %s", path, err.Error())
	}
}

func (fc *FileCache) flush() {
	fc.mu.Lock()
	for k := range fc.hits {
		delete(fc.hits, k)
	}
	fc.mu.Unlock()
}

func (fc *FileCache) flushing() {
	defer fc.wg.Done()
	for {
		select {
		case <-fc.ticker.C:
			fc.logger.Debugf("flushing cache hits")
			fc.flush()
		case <-fc.shutdown:
			fc.ticker.Stop()
			return
		}
	}
}

func (fc *FileCache) debug() {
	defer fc.wg.Done()
	debugTicker := time.NewTicker(time.Second * 5)
	defer debugTicker.Stop()
	for {
		select {
		case <-debugTicker.C:
			fc.mu.Lock()
			items, size := fc.cache.Size(), fc.cache.FileSize()
			fc.mu.Unlock()
			mem := float64(size) / (float64(1024 * 1024))
			fc.logger.Debugf("cached items: %d cache size: %.4fMB", items, mem)
		case <-fc.shutdown:
			return
		}
	}
}

func (fc *FileCache) Start(debug bool) error {
	if fc.isFlushing {
		return nil
	}

	err := fc.cache.Start()
	if err != nil {
		return fmt.Errorf("FileCache.fc.cache.Start: %w", err)
	}

	fc.isFlushing = true

	fc.wg.Add(1)
	go fc.flushing()

	if debug {
		fc.wg.Add(1)
		go fc.debug()
	}

	return nil
}

func (fc *FileCache) Stop() {
	if !fc.isFlushing {
		return
	}
	fc.isFlushing = false

	//Clear hits map
	fc.mu.Lock()
	fc.hits = nil
	fc.mu.Unlock()

	close(fc.shutdown)
	fc.wg.Wait()

	//Clear file cache and it's underlying stuff
	fc.mu.Lock()
	fc.cache.Stop()
	fc.mu.Unlock()
}

// NoOp is used when caching is disabled in config
type NoOp struct{}

func (NoOp) Hit(path string) {}

func (NoOp) Lookup(path string) ([]byte, bool) {
	return nil, false
}

func (NoOp) Evict(path string) {}

func (NoOp) Start(debug bool) error {
	return nil
}

func (NoOp) Stop() {}
