package relay

import (
	"senda/relay/internal/entities"
	"senda/relay/internal/fs"
	"senda/relay/internal/relay/relayutil"
	filecache "senda/relay/pkg/cache/file"
	"senda/relay/pkg/dealer"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DiskRemover deletes stored files of destroyed sessions.
// It satisfies session.FileRemover.
type DiskRemover struct {
	logger *zap.SugaredLogger
	dealer *dealer.Dealer
	fc     filecache.Cache
}

func NewDiskRemover(logger *zap.SugaredLogger, dealer *dealer.Dealer, fileCache filecache.Cache) *DiskRemover {
	return &DiskRemover{
		logger: logger,
		dealer: dealer,
		fc:     fileCache,
	}
}

func (r *DiskRemover) RemoveFiles(records []entities.FileRecord) error {
	var errs error
	for _, rec := range records {
		path := fs.PathOf(rec.StorageKey)
		r.fc.Evict(path)

		res := r.dealer.Run(func() *dealer.JobResult {
			return dealer.NewJobResult(nil, fs.TryDelete(path))
		}).Wait()

		err := res.Err
		// Dealer is already stopped on shutdown
		if relayutil.IsErrorOf(dealer.ErrNotStarted)(err) {
			err = fs.TryDelete(path)
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r.logger.Debugf("removed %s", path)
	}

	if errs != nil {
		return relayutil.WrapInternal(errs, "DiskRemover.RemoveFiles")
	}
	return nil
}
