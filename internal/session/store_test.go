package session

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"senda/relay/internal/entities"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testTTL = time.Minute * 10

type fakeRemover struct {
	mu      sync.Mutex
	removed map[string]int
	calls   int
}

func newFakeRemover() *fakeRemover {
	return &fakeRemover{removed: make(map[string]int)}
}

func (f *fakeRemover) RemoveFiles(records []entities.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, r := range records {
		f.removed[r.StorageKey]++
	}
	return nil
}

func (f *fakeRemover) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removed[key]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(cfg Config) (*Store, *fakeRemover, *clock) {
	if cfg.TTL == 0 {
		cfg.TTL = testTTL
	}
	if cfg.CodeDigits == 0 {
		cfg.CodeDigits = 4
	}

	remover := newFakeRemover()
	c := &clock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}

	s := NewStore(zap.NewNop().Sugar(), cfg, remover)
	s.now = c.Now

	return s, remover, c
}

func records(prefix string, n int) []entities.FileRecord {
	out := make([]entities.FileRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entities.FileRecord{
			StorageKey:   fmt.Sprintf("%s-%d.pdf", prefix, i),
			OriginalName: fmt.Sprintf("%s-%d.pdf", prefix, i),
			Size:         int64(i + 1),
			MimeType:     "application/pdf",
		})
	}
	return out
}

func TestCreateAndLookup(t *testing.T) {
	s, _, _ := newTestStore(Config{})

	sess, err := s.Create()
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Len(t, sess.Code, 4)
	require.Empty(t, sess.Files)

	n, err := strconv.Atoi(sess.Code)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 1000)
	require.LessOrEqual(t, n, 9999)

	id, err := s.LookupByCode(sess.Code)
	require.NoError(t, err)
	require.Equal(t, sess.ID, id)

	got, err := s.LookupByID(sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.Code, got.Code)

	_, err = s.LookupByCode("0000")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)

	_, err = s.LookupByID("unknown")
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestConcurrentCreateGivesDistinctCodes(t *testing.T) {
	s, _, _ := newTestStore(Config{})

	N := 2000
	codes := make(chan string, N)
	start := make(chan struct{})
	wg := new(sync.WaitGroup)
	wg.Add(N)

	for i := 0; i < N; i++ {
		go func() {
			defer wg.Done()
			<-start
			sess, err := s.Create()
			require.NoError(t, err)
			codes <- sess.Code
		}()
	}
	close(start)
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, N)
	for code := range codes {
		require.False(t, seen[code], "code %s assigned twice", code)
		seen[code] = true
	}
	require.Len(t, seen, N)
	require.Equal(t, N, s.Len())
}

func TestCodeSpaceExhaustion(t *testing.T) {
	// 1 digit gives codes 1..9
	s, _, _ := newTestStore(Config{CodeDigits: 1})

	var last *entities.Session
	for i := 0; i < 9; i++ {
		sess, err := s.Create()
		require.NoError(t, err)
		last = sess
	}

	_, err := s.Create()
	require.ErrorIs(t, err, entities.ErrCodeSpaceExhausted)

	// Code is freed once its session is destroyed
	require.True(t, s.Destroy(last.ID))

	sess, err := s.Create()
	require.NoError(t, err)
	require.Equal(t, last.Code, sess.Code)
}

func TestExpiredCodesAreReclaimed(t *testing.T) {
	t.Run("create succeeds when every code is held by an expired session", func(t *testing.T) {
		s, remover, c := newTestStore(Config{CodeDigits: 1})

		var destroyed []string
		var mu sync.Mutex
		s.OnDestroy(func(sess *entities.Session) {
			mu.Lock()
			destroyed = append(destroyed, sess.ID)
			mu.Unlock()
		})

		for i := 0; i < 9; i++ {
			sess, err := s.Create()
			require.NoError(t, err)
			require.NoError(t, s.AppendFiles(sess.ID, records(sess.ID, 1)))
		}

		c.Advance(testTTL + time.Second)

		sess, err := s.Create()
		require.NoError(t, err)
		require.Equal(t, 1, s.Len())

		id, err := s.LookupByCode(sess.Code)
		require.NoError(t, err)
		require.Equal(t, sess.ID, id)

		mu.Lock()
		require.Len(t, destroyed, 9)
		mu.Unlock()
		require.Equal(t, 9, remover.calls)
	})

	t.Run("live sessions keep their codes while expired ones are reclaimed", func(t *testing.T) {
		s, _, c := newTestStore(Config{CodeDigits: 1})

		for i := 0; i < 8; i++ {
			_, err := s.Create()
			require.NoError(t, err)
		}

		c.Advance(testTTL / 2)
		live, err := s.Create()
		require.NoError(t, err)

		c.Advance(testTTL/2 + time.Second)

		sess, err := s.Create()
		require.NoError(t, err)
		require.NotEqual(t, live.Code, sess.Code)
		require.Equal(t, 2, s.Len())

		id, err := s.LookupByCode(live.Code)
		require.NoError(t, err)
		require.Equal(t, live.ID, id)
	})

	t.Run("space stays exhausted when no session has expired", func(t *testing.T) {
		s, _, c := newTestStore(Config{CodeDigits: 1})

		for i := 0; i < 9; i++ {
			_, err := s.Create()
			require.NoError(t, err)
		}

		c.Advance(testTTL)

		_, err := s.Create()
		require.ErrorIs(t, err, entities.ErrCodeSpaceExhausted)
		require.Equal(t, 9, s.Len())
	})
}

func TestLookupByCodeAfterTTL(t *testing.T) {
	s, remover, c := newTestStore(Config{})

	sess, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.AppendFiles(sess.ID, records(sess.ID, 2)))

	c.Advance(testTTL + time.Second)

	_, err = s.LookupByCode(sess.Code)
	require.ErrorIs(t, err, entities.ErrSessionExpired)

	// Destroyed as a side effect
	_, err = s.LookupByCode(sess.Code)
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
	require.Equal(t, 0, s.Len())

	require.Equal(t, 1, remover.count(sess.ID+"-0.pdf"))
	require.Equal(t, 1, remover.count(sess.ID+"-1.pdf"))
}

func TestLookupByIDAfterTTLHasNoSideEffect(t *testing.T) {
	s, remover, c := newTestStore(Config{})

	sess, err := s.Create()
	require.NoError(t, err)

	c.Advance(testTTL + time.Second)

	_, err = s.LookupByID(sess.ID)
	require.ErrorIs(t, err, entities.ErrSessionNotFound)

	// Still held until sweep or code lookup
	require.Equal(t, 1, s.Len())
	require.Equal(t, 0, remover.calls)

	err = s.AppendFiles(sess.ID, records("late", 1))
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestSessionAtExactlyTTLIsLive(t *testing.T) {
	s, _, c := newTestStore(Config{})

	sess, err := s.Create()
	require.NoError(t, err)

	c.Advance(testTTL)

	id, err := s.LookupByCode(sess.Code)
	require.NoError(t, err)
	require.Equal(t, sess.ID, id)
}

func TestAppendFiles(t *testing.T) {
	t.Run("preserves submission order", func(t *testing.T) {
		s, _, _ := newTestStore(Config{})

		sess, err := s.Create()
		require.NoError(t, err)

		first := records("a", 2)
		second := records("b", 2)
		require.NoError(t, s.AppendFiles(sess.ID, first))
		require.NoError(t, s.AppendFiles(sess.ID, second))

		got, err := s.LookupByID(sess.ID)
		require.NoError(t, err)
		require.Equal(t, append(first, second...), got.Files)
	})

	t.Run("rejects batch over session cap without touching existing files", func(t *testing.T) {
		s, _, _ := newTestStore(Config{MaxFiles: 5})

		sess, err := s.Create()
		require.NoError(t, err)

		existing := records("a", 3)
		require.NoError(t, s.AppendFiles(sess.ID, existing))

		err = s.AppendFiles(sess.ID, records("b", 3))
		require.ErrorIs(t, err, entities.ErrTooManyFiles)

		got, err := s.LookupByID(sess.ID)
		require.NoError(t, err)
		require.Equal(t, existing, got.Files)

		// Exactly filling the cap is fine
		require.NoError(t, s.AppendFiles(sess.ID, records("c", 2)))
	})

	t.Run("unknown session", func(t *testing.T) {
		s, _, _ := newTestStore(Config{})
		err := s.AppendFiles("nope", records("a", 1))
		require.ErrorIs(t, err, entities.ErrSessionNotFound)
	})

	t.Run("snapshot is detached from store", func(t *testing.T) {
		s, _, _ := newTestStore(Config{})

		sess, err := s.Create()
		require.NoError(t, err)
		require.NoError(t, s.AppendFiles(sess.ID, records("a", 1)))

		got, err := s.LookupByID(sess.ID)
		require.NoError(t, err)
		got.Files[0].OriginalName = "tampered.pdf"

		again, err := s.LookupByID(sess.ID)
		require.NoError(t, err)
		require.Equal(t, "a-0.pdf", again.Files[0].OriginalName)
	})
}

func TestDestroyIsIdempotent(t *testing.T) {
	s, remover, c := newTestStore(Config{})

	var hooked int
	var mu sync.Mutex
	s.OnDestroy(func(sess *entities.Session) {
		mu.Lock()
		hooked++
		mu.Unlock()
	})

	sess, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.AppendFiles(sess.ID, records(sess.ID, 3)))

	// Race manual destroy against a sweep
	var destroyed int
	var dmu sync.Mutex
	start := make(chan struct{})
	wg := new(sync.WaitGroup)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			if s.Destroy(sess.ID) {
				dmu.Lock()
				destroyed++
				dmu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			n := s.Sweep(c.Now().Add(testTTL * 2))
			dmu.Lock()
			destroyed += n
			dmu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, destroyed)
	require.Equal(t, 1, hooked)
	require.Equal(t, 1, remover.calls)
	for i := 0; i < 3; i++ {
		require.Equal(t, 1, remover.count(fmt.Sprintf("%s-%d.pdf", sess.ID, i)))
	}

	require.False(t, s.Destroy(sess.ID))
	_, err = s.LookupByCode(sess.Code)
	require.ErrorIs(t, err, entities.ErrSessionNotFound)
}

func TestSweep(t *testing.T) {
	s, _, c := newTestStore(Config{})

	old1, err := s.Create()
	require.NoError(t, err)
	old2, err := s.Create()
	require.NoError(t, err)

	c.Advance(testTTL / 2)
	fresh, err := s.Create()
	require.NoError(t, err)

	var hooked []string
	s.OnDestroy(func(sess *entities.Session) {
		hooked = append(hooked, sess.ID)
	})

	n := s.Sweep(c.Now().Add(testTTL/2 + time.Second))
	require.Equal(t, 2, n)
	require.ElementsMatch(t, []string{old1.ID, old2.ID}, hooked)

	_, err = s.LookupByID(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	// Nothing left to sweep
	require.Equal(t, 0, s.Sweep(c.Now()))
}
