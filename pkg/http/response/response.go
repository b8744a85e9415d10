package response

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type JSON map[string]interface{}

const internalBody = `{"error":"internal error"}`

func Ok(w http.ResponseWriter) {
	w.WriteHeader(200)
	return
}

func Internal(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(internalBody))
	return
}

// Json writes content (map or struct) as application/json
func Json(logger *zap.SugaredLogger, w http.ResponseWriter, code int, content interface{}) {
	bytes, err := json.Marshal(content)
	if err != nil {
		logger.Error(err.Error())
		Internal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	w.Write(bytes)
	return
}

// Error writes {"error": msg}
func Error(logger *zap.SugaredLogger, w http.ResponseWriter, code int, msg string) {
	Json(logger, w, code, JSON{
		"error": msg,
	})
}
