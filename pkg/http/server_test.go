package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServerShutdown(t *testing.T) {
	srv := NewServer("0", "127.0.0.1", http.NotFoundHandler(), Timeouts{
		Read:  time.Second,
		Write: time.Second,
		Idle:  time.Second,
	})
	require.Equal(t, "127.0.0.1:0", srv.Addr())

	errch := make(chan error, 1)
	go func() {
		errch <- srv.ListenAndServe()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	// Closed server is not an error
	require.NoError(t, <-errch)
}
