package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically destroys sessions that outlived TTL.
// It is best-effort: a session may outlive TTL by up to one interval,
// lookups already hide it in the meantime.
type Sweeper struct {
	store    *Store
	logger   *zap.SugaredLogger
	every    time.Duration
	wg       *sync.WaitGroup
	shutdown chan struct{}
	once     *sync.Once
	started  bool
}

func NewSweeper(logger *zap.SugaredLogger, store *Store, every time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		logger:   logger,
		every:    every,
		wg:       new(sync.WaitGroup),
		shutdown: make(chan struct{}),
		once:     new(sync.Once),
	}
}

func (sw *Sweeper) Start() {
	if sw.started {
		return
	}
	sw.started = true

	sw.wg.Add(1)
	go sw.sweeping()
}

func (sw *Sweeper) sweeping() {
	defer sw.wg.Done()

	ticker := time.NewTicker(sw.every)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			sw.sweep(now)
		case <-sw.shutdown:
			return
		}
	}
}

func (sw *Sweeper) sweep(now time.Time) {
	n := sw.store.Sweep(now)
	if n > 0 {
		sw.logger.Infof("sweep: %d expired session(s) destroyed. live: %d", n, sw.store.Len())
	}
}

func (sw *Sweeper) Stop() {
	sw.once.Do(func() {
		close(sw.shutdown)
	})
	sw.wg.Wait()
}
