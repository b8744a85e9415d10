package relay

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"senda/relay/internal/entities"
	"senda/relay/internal/formdata"
	"senda/relay/internal/fs"
	"senda/relay/internal/notify"
	"senda/relay/internal/relay/dto"
	"senda/relay/internal/relay/relayutil"
	"senda/relay/internal/relay/validate"
	filecache "senda/relay/pkg/cache/file"
	"senda/relay/pkg/dealer"
	"senda/relay/pkg/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=relay_service.go -destination=mocks/mock_relay.go

type Service interface {
	CreateSession(ctx context.Context) (*dto.CreatedSession, error)
	LookupCode(ctx context.Context, code string) (string, error)

	// AcceptUpload validates, stores and records a batch, then notifies the receiver
	AcceptUpload(ctx context.Context, sessionID string, files []*formdata.UploadFile) ([]entities.FileRecord, error)

	Resolve(ctx context.Context, sessionID string, index int) (*entities.FileRecord, error)
	Open(ctx context.Context, record *entities.FileRecord) (*StoredFile, error)
}

// SessionStore is the part of session.Store used by the relay
type SessionStore interface {
	Create() (*entities.Session, error)
	LookupByCode(code string) (string, error)
	LookupByID(id string) (*entities.Session, error)
	AppendFiles(id string, records []entities.FileRecord) error
}

type Publisher interface {
	Publish(sessionID string, evt notify.Event) bool
}

type Config struct {
	PublicURL       string
	SenderPath      string
	MaxFiles        int
	MaxSessionFiles int
	MaxFileSize     int64
	MaxBatchSize    int64
	AllowedTypes    []string
	SniffContent    bool
}

// StoredFile is an opened stored file. Callers must Close it
type StoredFile struct {
	Content io.ReadSeeker
	Size    int64
	ModTime time.Time
	close   func() error
}

func (f *StoredFile) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}

type RelayService struct {
	logger    *zap.SugaredLogger
	store     SessionStore
	publisher Publisher
	dealer    *dealer.Dealer
	fc        filecache.Cache
	validator *validate.Validator
	cfg       Config
}

func NewService(logger *zap.SugaredLogger,
	store SessionStore,
	publisher Publisher,
	dealer *dealer.Dealer,
	fileCache filecache.Cache,
	cfg Config) *RelayService {
	return &RelayService{
		logger:    logger,
		store:     store,
		publisher: publisher,
		dealer:    dealer,
		fc:        fileCache,
		cfg:       cfg,
		validator: validate.New(validate.Limits{
			MaxFiles:     cfg.MaxFiles,
			MaxFileSize:  cfg.MaxFileSize,
			MaxBatchSize: cfg.MaxBatchSize,
			AllowedTypes: cfg.AllowedTypes,
			SniffContent: cfg.SniffContent,
		}),
	}
}

func (s *RelayService) CreateSession(ctx context.Context) (*dto.CreatedSession, error) {
	sess, err := s.store.Create()
	if err != nil {
		return nil, relayutil.ChainInternal(err, "RelayService.CreateSession.s.store.Create")
	}

	return &dto.CreatedSession{
		SessionID: sess.ID,
		Code:      sess.Code,
		URL:       s.pairingURL(sess.ID),
	}, nil
}

func (s *RelayService) pairingURL(sessionID string) string {
	return fmt.Sprintf("%s%s?session=%s", s.cfg.PublicURL, s.cfg.SenderPath, url.QueryEscape(sessionID))
}

func (s *RelayService) LookupCode(ctx context.Context, code string) (string, error) {
	return s.store.LookupByCode(strings.TrimSpace(code))
}

func (s *RelayService) AcceptUpload(ctx context.Context, sessionID string, files []*formdata.UploadFile) ([]entities.FileRecord, error) {
	records, err := s.acceptUpload(ctx, sessionID, files)
	if err != nil {
		metrics.UploadsRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	var total int64
	for _, r := range records {
		total += r.Size
	}
	metrics.FilesUploaded.Add(float64(len(records)))
	metrics.BytesUploaded.Add(float64(total))

	delivered := s.publisher.Publish(sessionID, notify.FilesReceived(sessionID, records))
	s.logger.Debugf("session %s got %d file(s), receiver notified: %t", sessionID, len(records), delivered)

	return records, nil
}

func (s *RelayService) acceptUpload(ctx context.Context, sessionID string, files []*formdata.UploadFile) ([]entities.FileRecord, error) {
	sess, err := s.store.LookupByID(sessionID)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, entities.ErrNoFiles
	}

	if len(files) > s.cfg.MaxFiles {
		return nil, fmt.Errorf("%w: got %d, max %d per upload", entities.ErrTooManyFiles, len(files), s.cfg.MaxFiles)
	}

	if s.cfg.MaxSessionFiles > 0 && len(sess.Files)+len(files) > s.cfg.MaxSessionFiles {
		return nil, fmt.Errorf("%w: session already holds %d, max %d", entities.ErrTooManyFiles, len(sess.Files), s.cfg.MaxSessionFiles)
	}

	types, err := s.validator.Batch(files)
	if err != nil {
		return nil, err
	}

	records := make([]entities.FileRecord, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			s.rollback(records)
			return nil, relayutil.WrapInternal(err, "RelayService.AcceptUpload.ctx")
		}

		rec, err := s.save(sessionID, f, types[i])
		if err != nil {
			s.rollback(records)
			if errors.Is(err, entities.ErrFileTooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", entities.ErrStorage, err.Error())
		}
		records = append(records, rec)
	}

	// Session may have expired or filled up while files were written
	if err := s.store.AppendFiles(sessionID, records); err != nil {
		s.rollback(records)
		return nil, err
	}

	return records, nil
}

// save writes one file through the dealer under a fresh storage key
func (s *RelayService) save(sessionID string, f *formdata.UploadFile, mimeType string) (entities.FileRecord, error) {
	key := storageKey(sessionID, mimeType)
	path := fs.PathOf(key)

	res := s.dealer.Run(func() *dealer.JobResult {
		src, err := f.Open()
		if err != nil {
			return dealer.NewJobResult(nil, relayutil.WrapInternal(err, "RelayService.save.f.Open"))
		}
		defer src.Close()

		// One extra byte tells an oversized stream from an exact fit
		n, err := fs.WriteFile(path, io.LimitReader(src, s.cfg.MaxFileSize+1))
		if err != nil {
			return dealer.NewJobResult(nil, err)
		}
		if n > s.cfg.MaxFileSize {
			fs.TryDelete(path)
			return dealer.NewJobResult(nil, fmt.Errorf("%w: %s", entities.ErrFileTooLarge, f.OriginalName))
		}
		return dealer.NewJobResult(n, nil)
	}).Wait()

	if res.Err != nil {
		return entities.FileRecord{}, res.Err
	}

	s.logger.Debugf("stored %s as %s", f.OriginalName, key)

	return entities.FileRecord{
		StorageKey:   key,
		OriginalName: f.OriginalName,
		Size:         res.Out.(int64),
		MimeType:     mimeType,
	}, nil
}

func (s *RelayService) rollback(records []entities.FileRecord) {
	if len(records) == 0 {
		return
	}
	s.logger.Debugf("rolling back %d stored file(s)", len(records))

	for _, r := range records {
		path := fs.PathOf(r.StorageKey)
		res := s.dealer.Run(func() *dealer.JobResult {
			return dealer.NewJobResult(nil, fs.TryDelete(path))
		}).Wait()
		if res.Err != nil {
			s.logger.Errorf("could not roll back %s: %s", path, res.Err.Error())
		}
	}
}

func (s *RelayService) Resolve(ctx context.Context, sessionID string, index int) (*entities.FileRecord, error) {
	sess, err := s.store.LookupByID(sessionID)
	if err != nil {
		return nil, err
	}

	if len(sess.Files) == 0 {
		return nil, entities.ErrNoFiles
	}

	if index < 0 || index >= len(sess.Files) {
		return nil, fmt.Errorf("%w: %d", entities.ErrInvalidIndex, index)
	}

	rec := sess.Files[index]
	return &rec, nil
}

func (s *RelayService) Open(ctx context.Context, record *entities.FileRecord) (*StoredFile, error) {
	path := fs.PathOf(record.StorageKey)

	if bits, ok := s.fc.Lookup(path); ok {
		s.logger.Debugf("found in cache: %s", path)
		metrics.Downloads.Inc()
		return &StoredFile{
			Content: bytes.NewReader(bits),
			Size:    int64(len(bits)),
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, relayutil.WrapInternal(err, "RelayService.Open.ctx")
	}

	// Waits without ctx so an opened file is never abandoned
	res := s.dealer.Run(func() *dealer.JobResult {
		f, info, err := fs.Open(path)
		if err != nil {
			return dealer.NewJobResult(nil, err)
		}
		return dealer.NewJobResult(&StoredFile{
			Content: f,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			close:   f.Close,
		}, nil)
	}).Wait()
	if err := res.Err; err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, record.OriginalName)
		}
		return nil, relayutil.ChainInternal(err, "RelayService.Open.s.dealer.Run")
	}

	s.fc.Hit(path)
	metrics.Downloads.Inc()

	return res.Out.(*StoredFile), nil
}

// storageKey is <sessionId>-<unixNano>-<random><ext>. Extension comes
// from the validated type, never from the user supplied name.
func storageKey(sessionID string, mimeType string) string {
	id := uuid.New()
	suffix := hex.EncodeToString(id[:6])

	var ext string
	if m := mimetype.Lookup(mimeType); m != nil {
		ext = m.Extension()
	}

	return fmt.Sprintf("%s-%d-%s%s", sessionID, time.Now().UnixNano(), suffix, ext)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, entities.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, entities.ErrNoFiles):
		return "no_files"
	case errors.Is(err, entities.ErrTooManyFiles):
		return "too_many_files"
	case relayutil.IsAnyOf(entities.ErrFileTooLarge, entities.ErrBatchTooLarge)(err):
		return "too_large"
	case errors.Is(err, entities.ErrMimeNotAllowed):
		return "mime"
	default:
		return "storage"
	}
}
