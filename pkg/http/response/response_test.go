package response_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"senda/relay/pkg/http/response"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInternal(t *testing.T) {

	w := httptest.NewRecorder()

	response.Internal(w)

	expectedBody := `{"error":"internal error"}`
	expectedCode := 500

	actualBody, err := io.ReadAll(w.Body)

	require.NoError(t, err)
	require.Equal(t, expectedBody, string(actualBody))
	require.Equal(t, expectedCode, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestJson(t *testing.T) {
	logger := zap.NewNop().Sugar()

	t.Run("should write map", func(t *testing.T) {
		w := httptest.NewRecorder()

		content := map[string]interface{}{
			"sessionId": "some-id",
			"valid":     true,
		}
		expectedContent, _ := json.Marshal(content)

		response.Json(logger, w, http.StatusOK, content)

		respBytes, err := io.ReadAll(w.Body)
		require.NoError(t, err)

		require.Equal(t, expectedContent, respBytes)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("should write struct", func(t *testing.T) {
		w := httptest.NewRecorder()

		response.Json(logger, w, http.StatusOK, struct {
			Success bool `json:"success"`
		}{Success: true})

		require.Equal(t, `{"success":true}`, w.Body.String())
	})

	t.Run("should answer internal error on unmarshalable content", func(t *testing.T) {
		w := httptest.NewRecorder()

		response.Json(logger, w, http.StatusOK, response.JSON{"ch": make(chan int)})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Equal(t, `{"error":"internal error"}`, w.Body.String())
	})
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	response.Error(zap.NewNop().Sugar(), w, http.StatusNotFound, "session not found")

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, `{"error":"session not found"}`, w.Body.String())
}
