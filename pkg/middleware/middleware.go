package middleware

import (
	"net/http"

	"senda/relay/pkg/logging"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

type Middlewares struct {
	logger *zap.SugaredLogger
}

func NewMiddlewares(logger *zap.SugaredLogger) *Middlewares {
	return &Middlewares{logger: logger}
}

// Cors allows any origin to call GET and POST endpoints
func (m *Middlewares) Cors(h http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
}

// Recovery answers 500 on panic and logs it with the stack trace
func (m *Middlewares) Recovery(h http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(logging.NewPrintlnLogger(m.logger)),
		handlers.PrintRecoveryStack(true),
	)(h)
}

// Wrap applies every middleware, recovery being the outermost
func (m *Middlewares) Wrap(h http.Handler) http.Handler {
	return m.Recovery(m.Cors(h))
}
