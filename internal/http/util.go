package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MrMangoye/Project/internal/domain"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// 调用方身份（认证由上游网关负责）
const (
	headerUserID   = "X-User-Id"
	headerPersonID = "X-Person-Id"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// writeError NotFound -> 404, Validation -> 400, 其它 -> 500（内部错误不透出细节）
func writeError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail(err.Error()))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

func actingUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerUserID))
}

func actingPersonID(r *http.Request) domain.PersonID {
	return domain.PersonID(strings.TrimSpace(r.Header.Get(headerPersonID)))
}
