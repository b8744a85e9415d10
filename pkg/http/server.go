package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

type Server struct {
	s *http.Server
}

func NewServer(port string, host string, h http.Handler, t Timeouts) *Server {
	return &Server{
		s: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", host, port),
			Handler:           h,
			ReadTimeout:       t.Read,
			ReadHeaderTimeout: time.Second * 15,
			WriteTimeout:      t.Write,
			IdleTimeout:       t.Idle,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

func (s *Server) Addr() string {
	return s.s.Addr
}

func (s *Server) ListenAndServe() error {
	err := s.s.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.s.Shutdown(ctx)
}
