package session

import (
	"sync"
	"time"

	"senda/relay/internal/entities"
	"senda/relay/internal/relay/relayutil"
	"senda/relay/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reasonSweep   = "sweep"
	reasonLookup  = "lookup"
	reasonManual  = "manual"
	reasonReclaim = "reclaim"
)

// FileRemover deletes stored files of a destroyed session.
// Missing files must not be reported as errors.
type FileRemover interface {
	RemoveFiles(records []entities.FileRecord) error
}

// DestroyHook is called once per destroyed session, outside the store lock.
type DestroyHook func(s *entities.Session)

type Config struct {
	TTL        time.Duration
	CodeDigits int
	// Session-wide file cap. Zero disables it
	MaxFiles int
}

// Store is an in-memory TTL cache of sessions indexed by id and by code.
// A single mutex guards both indexes so every operation is atomic
// relative to the others. Disk I/O and hooks run outside the lock.
type Store struct {
	mu     *sync.Mutex
	byID   map[string]*entities.Session
	byCode map[string]string

	ttl      time.Duration
	codes    codeSpace
	maxFiles int

	remover FileRemover
	hooks   []DestroyHook
	logger  *zap.SugaredLogger

	// Swapped in tests
	now func() time.Time
}

func NewStore(logger *zap.SugaredLogger, cfg Config, remover FileRemover) *Store {
	return &Store{
		mu:       new(sync.Mutex),
		byID:     make(map[string]*entities.Session),
		byCode:   make(map[string]string),
		ttl:      cfg.TTL,
		codes:    newCodeSpace(cfg.CodeDigits),
		maxFiles: cfg.MaxFiles,
		remover:  remover,
		logger:   logger,
		now:      time.Now,
	}
}

// OnDestroy registers hook. Not safe to call concurrently with Destroy/Sweep
func (s *Store) OnDestroy(hook DestroyHook) {
	s.hooks = append(s.hooks, hook)
}

// Create inserts a new live session with a fresh id and a fresh code.
// Codes still held by sessions past TTL are reclaimed before giving up.
func (s *Store) Create() (*entities.Session, error) {
	var reclaimed []*entities.Session

	s.mu.Lock()
	now := s.now()

	if int64(len(s.byCode)) >= s.codes.size {
		for _, sess := range s.byID {
			if sess.ExpiredAt(now, s.ttl) {
				reclaimed = append(reclaimed, sess)
			}
		}
		for _, sess := range reclaimed {
			s.detach(sess)
		}
	}

	sess, err := s.insert(now, &reclaimed)
	s.mu.Unlock()

	for _, old := range reclaimed {
		s.finalize(old, reasonReclaim)
	}

	if err != nil {
		return nil, err
	}

	metrics.SessionsCreated.Inc()
	s.logger.Debugf("session created: %s (code: %s)", sess.ID, sess.Code)

	return sess, nil
}

// insert picks a code and registers a new session. Caller holds s.mu.
// An expired owner of the picked code is detached and appended to reclaimed.
func (s *Store) insert(now time.Time, reclaimed *[]*entities.Session) (*entities.Session, error) {
	if int64(len(s.byCode)) >= s.codes.size {
		return nil, entities.ErrCodeSpaceExhausted
	}

	code, ok, err := s.codes.next(func(code string) bool {
		id, taken := s.byCode[code]
		return taken && !s.byID[id].ExpiredAt(now, s.ttl)
	})
	if err != nil {
		return nil, relayutil.WrapInternal(err, "Store.Create.codes.next")
	}
	if !ok {
		return nil, entities.ErrCodeSpaceExhausted
	}

	if id, taken := s.byCode[code]; taken {
		old := s.byID[id]
		s.detach(old)
		*reclaimed = append(*reclaimed, old)
	}

	sess := &entities.Session{
		ID:        uuid.NewString(),
		Code:      code,
		CreatedAt: now,
		Files:     make([]entities.FileRecord, 0),
	}

	s.byID[sess.ID] = sess
	s.byCode[sess.Code] = sess.ID
	metrics.SessionsLive.Set(float64(len(s.byID)))

	return sess.Copy(), nil
}

// LookupByCode resolves code to session id.
// A matched session that is past TTL is destroyed and ErrSessionExpired is returned.
func (s *Store) LookupByCode(code string) (string, error) {
	s.mu.Lock()
	id, ok := s.byCode[code]
	if !ok {
		s.mu.Unlock()
		return "", entities.ErrSessionNotFound
	}

	sess := s.byID[id]
	if sess.ExpiredAt(s.now(), s.ttl) {
		s.detach(sess)
		s.mu.Unlock()

		s.finalize(sess, reasonLookup)
		return "", entities.ErrSessionExpired
	}
	s.mu.Unlock()

	return id, nil
}

// LookupByID returns a snapshot of a live session.
// Sessions past TTL are reported as not found but left to the sweeper.
func (s *Store) LookupByID(id string) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok || sess.ExpiredAt(s.now(), s.ttl) {
		return nil, entities.ErrSessionNotFound
	}

	return sess.Copy(), nil
}

// AppendFiles appends records to a live session preserving their order
func (s *Store) AppendFiles(id string, records []entities.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok || sess.ExpiredAt(s.now(), s.ttl) {
		return entities.ErrSessionNotFound
	}

	if s.maxFiles > 0 && len(sess.Files)+len(records) > s.maxFiles {
		return entities.ErrTooManyFiles
	}

	sess.Files = append(sess.Files, records...)

	return nil
}

// Destroy removes session and deletes its files. Reports whether this call
// did the removal; destroying an unknown or already destroyed session is a no-op.
func (s *Store) Destroy(id string) bool {
	s.mu.Lock()
	sess, ok := s.byID[id]
	if ok {
		s.detach(sess)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.finalize(sess, reasonManual)
	return true
}

// Sweep destroys every session older than TTL at the moment now
func (s *Store) Sweep(now time.Time) int {
	var expired []*entities.Session

	s.mu.Lock()
	for _, sess := range s.byID {
		if sess.ExpiredAt(now, s.ttl) {
			expired = append(expired, sess)
		}
	}
	for _, sess := range expired {
		s.detach(sess)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.finalize(sess, reasonSweep)
	}

	return len(expired)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// detach drops session from both indexes. Caller holds s.mu
func (s *Store) detach(sess *entities.Session) {
	delete(s.byID, sess.ID)
	if s.byCode[sess.Code] == sess.ID {
		delete(s.byCode, sess.Code)
	}
	metrics.SessionsLive.Set(float64(len(s.byID)))
}

// finalize runs for a session exactly once, after detach
func (s *Store) finalize(sess *entities.Session, reason string) {
	s.removeFiles(sess)

	for _, hook := range s.hooks {
		hook(sess)
	}

	metrics.SessionsDestroyed.WithLabelValues(reason).Inc()
	s.logger.Debugf("session destroyed: %s (reason: %s, files: %d)", sess.ID, reason, len(sess.Files))
}

// removeFiles never fails the caller. Errors are logged
func (s *Store) removeFiles(sess *entities.Session) {
	if len(sess.Files) == 0 || s.remover == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("removing files of session: %s panicked: %v", sess.ID, r)
		}
	}()

	if err := s.remover.RemoveFiles(sess.Files); err != nil {
		s.logger.Errorf("could not remove files of session: %s. err: %s", sess.ID, err.Error())
	}
}
