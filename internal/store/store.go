// Package store persists the last used watermark configuration
package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/picmark/pkg/watermark"
)

// Key is the key the watermark configuration is stored under
const Key = "watermark_config"

// Backend is a minimal key/value store
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Store reads and writes the watermark configuration on a best-effort basis:
// failures are logged and never returned, and reads degrade to defaults.
type Store struct {
	backend Backend
	logger  logrus.FieldLogger
}

// New creates a store over backend. A nil logger discards output.
func New(backend Backend, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Store{backend: backend, logger: logger.WithField("key", Key)}
}

// Load returns the stored configuration merged over the defaults
func (s *Store) Load() watermark.Config {
	return s.LoadOver(watermark.Defaults())
}

// LoadOver returns the stored configuration merged over base. base is
// returned unchanged when nothing usable is stored.
func (s *Store) LoadOver(base watermark.Config) watermark.Config {
	cfg, err := s.load(base)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load watermark config")
		return base
	}
	return cfg
}

func (s *Store) load(base watermark.Config) (watermark.Config, error) {
	data, ok, err := s.backend.Get(Key)
	if err != nil {
		return watermark.Config{}, fmt.Errorf("reading store: %w", err)
	}
	if !ok {
		return base, nil
	}

	var partial watermark.PartialConfig
	if err := json.Unmarshal(data, &partial); err != nil {
		return watermark.Config{}, fmt.Errorf("decoding stored config: %w", err)
	}

	cfg := watermark.Merge(base, partial)
	if err := cfg.Validate(); err != nil {
		return watermark.Config{}, fmt.Errorf("stored config: %w", err)
	}
	return cfg, nil
}

// Save stores cfg
func (s *Store) Save(cfg watermark.Config) {
	data, err := json.Marshal(cfg)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode watermark config")
		return
	}
	if err := s.backend.Put(Key, data); err != nil {
		s.logger.WithError(err).Warn("Failed to save watermark config")
		return
	}
	s.logger.Debug("Saved watermark config")
}

// Clear removes the stored configuration
func (s *Store) Clear() {
	if err := s.backend.Delete(Key); err != nil {
		s.logger.WithError(err).Warn("Failed to clear watermark config")
	}
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
