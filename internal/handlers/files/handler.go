package files

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	appcontext "github.com/dataplane-io/lazyfile/internal/context"
	"github.com/dataplane-io/lazyfile/internal/metrics"
	"github.com/dataplane-io/lazyfile/internal/store"
)

// FilesHandler serves registered virtual files, reading lazy entries
// through to the origin chunk by chunk.
type FilesHandler struct {
	store *store.Store
}

var _ gin.HandlerFunc = (&FilesHandler{}).Handle

// Handle handles a request for a file.
func (h *FilesHandler) Handle(c *gin.Context) {
	key := appcontext.FileKey(c)
	log := appcontext.Logger(c).With().Str("key", key).Logger()
	log.Debug().Msg("files handler start")
	s := time.Now()
	defer func() {
		dur := time.Since(s)
		metrics.Global.RecordRequest(c.Request.Method, "files", dur.Seconds())
		log.Debug().Dur("duration", dur).Msg("files handler stop")
	}()

	c.Set(appcontext.FileKeyCtxKey, key)

	f, err := h.store.Open(c.Request.Context(), key)
	if errors.Is(err, os.ErrNotExist) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		// nolint
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set(appcontext.CorrelationHeaderKey, c.GetString(appcontext.CorrelationIdCtxKey))

	http.ServeContent(w, c.Request, "file", time.Time{}, f)
}

// New creates a new files handler.
func New(ctx context.Context, s *store.Store) *FilesHandler {
	return &FilesHandler{s}
}
