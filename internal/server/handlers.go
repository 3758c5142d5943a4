package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/denysvitali/picmark/pkg/watermark"
)

// HandleHealth reports liveness
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleWatermark composites the uploaded "file" with the stored settings,
// overridden by an optional partial "config" JSON form field.
func (s *Server) HandleWatermark(c *gin.Context) {
	logger := loggerFrom(c, s.logger)

	data, filename, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := s.baseConfig()
	if raw := c.PostForm("config"); raw != "" {
		var partial watermark.PartialConfig
		if err := json.Unmarshal([]byte(raw), &partial); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid config: %v", err)})
			return
		}
		cfg = watermark.Merge(cfg, partial)
	}

	opts := s.config.Encode
	if q := c.Query("quality"); q != "" {
		quality, err := cast.ToFloat64E(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid quality %q", q)})
			return
		}
		opts.Quality = quality
	}
	if f := c.Query("format"); f != "" {
		format, err := watermark.ParseFormat(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts.Format = format
	}

	processor := watermark.NewProcessor(s.engine, cfg, watermark.ProcessorOptions{
		Quality: opts.Quality,
		Format:  opts.Format,
		Logger:  logger,
	})
	result, err := processor.ProcessBytes(c.Request.Context(), data)
	if err != nil {
		s.writeError(c, logger.WithField("file", filename), err)
		return
	}

	c.Header("X-Image-Width", strconv.Itoa(result.Width))
	c.Header("X-Image-Height", strconv.Itoa(result.Height))
	c.Header("X-Watermarked", strconv.FormatBool(result.Watermarked))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// HandleProbe reports the dimensions of the uploaded "file"
func (s *Server) HandleProbe(c *gin.Context) {
	logger := loggerFrom(c, s.logger)

	data, filename, err := s.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dims, err := watermark.ProbeDimensions(c.Request.Context(), data)
	if err != nil {
		s.writeError(c, logger.WithField("file", filename), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"width":     dims.Width,
		"height":    dims.Height,
		"format":    dims.Format,
		"mime_type": watermark.MimeType(filename),
	})
}

// HandleGetConfig returns the settings new requests start from
func (s *Server) HandleGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.baseConfig())
}

// HandlePutConfig merges a partial config over the current settings and stores it
func (s *Server) HandlePutConfig(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "settings persistence is disabled"})
		return
	}

	var partial watermark.PartialConfig
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid config: %v", err)})
		return
	}

	cfg := watermark.Merge(s.baseConfig(), partial)
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.store.Save(cfg)
	c.JSON(http.StatusOK, cfg)
}

// HandleDeleteConfig clears the stored settings
func (s *Server) HandleDeleteConfig(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "settings persistence is disabled"})
		return
	}
	s.store.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("no file uploaded")
	}

	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	return data, header.Filename, nil
}

func (s *Server) writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var (
		cfgErr *watermark.ConfigurationError
		decErr *watermark.DecodeError
		encErr *watermark.EncodingError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr):
		status = http.StatusBadRequest
	case errors.As(err, &decErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &encErr):
		status = http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	logger.WithError(err).WithField("status", status).Warn("Request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}
