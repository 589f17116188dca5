package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vardhanngg/socket-v/internal/adapters/media"
	"github.com/vardhanngg/socket-v/internal/adapters/signal"
	"github.com/vardhanngg/socket-v/internal/domain"
)

const (
	uploadField    = "media"
	multipartSlack = 1 << 20
)

type uploadHandler struct {
	store   media.Store
	maxSize int64
	limiter *signal.RateLimiter
}

func (h *uploadHandler) handle(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.GetString(signal.ClientTokenKey)) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": domain.ErrRateLimited.Error()})
		return
	}
	if h.maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartSlack)
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if h.maxSize > 0 && fh.Size > h.maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("open upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	defer f.Close()

	contentType, err := detectType(fh, f)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("sniff upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	stored, err := h.store.Put(c.Request.Context(), media.Object{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("file", fh.Filename).Msg("store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("url", stored.URL).Str("type", stored.ContentType).Msg("upload stored")
	c.JSON(http.StatusOK, gin.H{"fileUrl": stored.URL, "fileType": stored.ContentType})
}

// detectType trusts the part header unless it is missing or generic, then
// sniffs the content and rewinds f.
func detectType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct, nil
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
