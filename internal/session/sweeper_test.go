package session

import (
	"sync/atomic"
	"testing"
	"time"

	"senda/relay/internal/entities"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type panickyRemover struct{}

func (panickyRemover) RemoveFiles(records []entities.FileRecord) error {
	panic("disk vanished")
}

func TestSweeperEvictsExpiredSessions(t *testing.T) {
	remover := newFakeRemover()
	s := NewStore(zap.NewNop().Sugar(), Config{TTL: time.Millisecond * 100, CodeDigits: 4}, remover)

	sess, err := s.Create()
	require.NoError(t, err)
	require.NoError(t, s.AppendFiles(sess.ID, records(sess.ID, 1)))

	sw := NewSweeper(zap.NewNop().Sugar(), s, time.Millisecond*5)
	sw.Start()
	defer sw.Stop()

	require.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, time.Millisecond*5)

	require.Equal(t, 1, remover.count(sess.ID+"-0.pdf"))
}

func TestSweeperSurvivesFailingRemoval(t *testing.T) {
	s := NewStore(zap.NewNop().Sugar(), Config{TTL: time.Millisecond * 100, CodeDigits: 4}, panickyRemover{})

	var hooked int32
	s.OnDestroy(func(sess *entities.Session) {
		atomic.AddInt32(&hooked, 1)
	})

	for i := 0; i < 3; i++ {
		sess, err := s.Create()
		require.NoError(t, err)
		require.NoError(t, s.AppendFiles(sess.ID, records(sess.ID, 1)))
	}

	sw := NewSweeper(zap.NewNop().Sugar(), s, time.Millisecond*5)
	sw.Start()
	defer sw.Stop()

	// Every session is evicted even though each removal fails
	require.Eventually(t, func() bool {
		return s.Len() == 0 && atomic.LoadInt32(&hooked) == 3
	}, time.Second, time.Millisecond*5)
}

func TestSweeperStopIsIdempotent(t *testing.T) {
	s := NewStore(zap.NewNop().Sugar(), Config{TTL: time.Minute, CodeDigits: 4}, nil)
	sw := NewSweeper(zap.NewNop().Sugar(), s, time.Millisecond)
	sw.Start()
	sw.Stop()
	sw.Stop()
}
