package relay_errors

import (
	"net/http"

	"senda/relay/internal/entities"
	"senda/relay/internal/relay/relayutil"
	"senda/relay/pkg/http/response"

	"go.uber.org/zap"
)

func ToHttp(logger *zap.SugaredLogger, w http.ResponseWriter, err error) {
	resp, code := parse(err)
	write(logger, w, err, resp, code)
}

// DownloadToHttp differs from ToHttp in that a session without files is
// reported as not found.
func DownloadToHttp(logger *zap.SugaredLogger, w http.ResponseWriter, err error) {
	if relayutil.IsErrorOf(entities.ErrNoFiles)(err) {
		write(logger, w, err, err.Error(), http.StatusNotFound)
		return
	}
	ToHttp(logger, w, err)
}

func write(logger *zap.SugaredLogger, w http.ResponseWriter, err error, resp string, code int) {
	if code >= http.StatusInternalServerError {
		logger.Error(err.Error())
		if code == http.StatusInternalServerError {
			response.Internal(w)
			return
		}
	} else {
		logger.Debugf("%d: %s", code, err.Error())
	}

	response.Error(logger, w, code, resp)
}

func parse(err error) (string, int) {

	is := relayutil.IsErrorOf

	switch true {

	// Session
	case is(entities.ErrSessionNotFound)(err):
		return err.Error(), http.StatusNotFound

	case is(entities.ErrSessionExpired)(err):
		return err.Error(), http.StatusGone

	case is(entities.ErrCodeSpaceExhausted)(err):
		return err.Error(), http.StatusServiceUnavailable
	// --- Session END

	// Download
	case relayutil.IsAnyOf(entities.ErrInvalidIndex, entities.ErrFileNotFound)(err):
		return err.Error(), http.StatusNotFound
	// --- Download END

	// Upload
	case is(entities.ErrNoFiles)(err):
		return err.Error(), http.StatusBadRequest

	case relayutil.IsAnyOf(
		entities.ErrTooManyFiles,
		entities.ErrFileTooLarge,
		entities.ErrBatchTooLarge,
		entities.ErrMimeNotAllowed,
		entities.ErrMalformedForm,
	)(err):
		return err.Error(), http.StatusBadRequest
	// --- Upload END

	default:
		return "internal error", http.StatusInternalServerError
	}

}
