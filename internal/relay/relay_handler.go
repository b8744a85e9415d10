package relay

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	relay_go "senda/relay"
	"senda/relay/internal/entities"
	"senda/relay/internal/formdata"
	"senda/relay/internal/relay/dto"
	relay_errors "senda/relay/internal/relay/errors"
	"senda/relay/pkg/http/response"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Room for multipart boundaries and part headers on top of the batch ceiling
const multipartOverhead = relay_go.Megabyte

type HandlerDeps struct {
	Logger  *zap.SugaredLogger
	Mux     *mux.Router
	Service Service

	// Bytes of a multipart form kept in memory, the rest spills to temp files
	MaxMemory    int64
	MaxBatchSize int64
	StaticDir    string
}

type Handler struct {
	logger      *zap.SugaredLogger
	service     Service
	mux         *mux.Router
	maxMemory   int64
	maxBodySize int64
	staticDir   string
}

func NewHandler(deps *HandlerDeps) *Handler {
	return &Handler{
		logger:      deps.Logger,
		mux:         deps.Mux,
		service:     deps.Service,
		maxMemory:   deps.MaxMemory,
		maxBodySize: deps.MaxBatchSize + multipartOverhead,
		staticDir:   deps.StaticDir,
	}
}

func (h *Handler) InitRoutes() {
	api := h.mux.PathPrefix("/api").Subrouter()
	{
		api.HandleFunc("/health", h.Healthcheck).Methods(http.MethodGet)

		api.HandleFunc("/session", h.CreateSession).Methods(http.MethodPost)
		api.HandleFunc("/session/{code}", h.LookupCode).Methods(http.MethodGet)

		api.HandleFunc("/upload/{sessionId}", h.Upload).Methods(http.MethodPost)

		api.HandleFunc("/download/{sessionId}", h.Download).Methods(http.MethodGet)
		api.HandleFunc("/download/{sessionId}/{fileIndex}", h.Download).Methods(http.MethodGet)
	}
}

// InitStaticRoutes registers the UI. Call after every other route, static
// files are served from a catch-all prefix.
func (h *Handler) InitStaticRoutes() {
	h.mux.Handle("/", http.RedirectHandler(relay_go.IndexPage, http.StatusFound)).Methods(http.MethodGet)

	if h.staticDir == "" {
		return
	}
	h.mux.PathPrefix("/").Handler(http.FileServer(http.Dir(h.staticDir))).Methods(http.MethodGet, http.MethodHead)
}

func (h *Handler) Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.CreateSession(r.Context())
	if err != nil {
		relay_errors.ToHttp(h.logger, w, err)
		return
	}

	response.Json(h.logger, w, http.StatusOK, created)
}

func (h *Handler) LookupCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)[relay_go.CodeKey]

	sessionID, err := h.service.LookupCode(r.Context(), code)
	if err != nil {
		relay_errors.ToHttp(h.logger, w, err)
		return
	}

	response.Json(h.logger, w, http.StatusOK, dto.CodeLookup{
		SessionID: sessionID,
		Valid:     true,
	})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)[relay_go.SessionIDKey]

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var files []*formdata.UploadFile

	err := r.ParseMultipartForm(h.maxMemory)
	switch {
	case err == nil:
		defer r.MultipartForm.RemoveAll()
		files = formdata.ParseFiles(r.MultipartForm)

	// No body at all is treated as an empty batch
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):

	case strings.Contains(err.Error(), "request body too large"):
		relay_errors.ToHttp(h.logger, w, entities.ErrBatchTooLarge)
		return

	default:
		h.logger.Debugf("could not parse multipart form: %s", err.Error())
		relay_errors.ToHttp(h.logger, w, entities.ErrMalformedForm)
		return
	}

	records, err := h.service.AcceptUpload(r.Context(), sessionID, files)
	if err != nil {
		relay_errors.ToHttp(h.logger, w, err)
		return
	}

	response.Json(h.logger, w, http.StatusOK, dto.UploadResult{
		Success: true,
		Files:   records,
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars[relay_go.SessionIDKey]

	index := 0
	if raw, ok := vars[relay_go.FileIndexKey]; ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			relay_errors.DownloadToHttp(h.logger, w, entities.ErrInvalidIndex)
			return
		}
		index = parsed
	}

	rec, err := h.service.Resolve(r.Context(), sessionID, index)
	if err != nil {
		relay_errors.DownloadToHttp(h.logger, w, err)
		return
	}

	f, err := h.service.Open(r.Context(), rec)
	if err != nil {
		relay_errors.DownloadToHttp(h.logger, w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition(rec.OriginalName))

	h.logger.Debugf("serving %s (%s)", rec.StorageKey, rec.OriginalName)
	http.ServeContent(w, r, rec.OriginalName, f.ModTime, f.Content)
}

// contentDisposition restores the original name. Non-ASCII names are
// encoded as in RFC 2231.
func contentDisposition(name string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if v == "" {
		return "attachment"
	}
	return v
}
