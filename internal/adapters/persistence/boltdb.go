package persistence

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/spreadlabs/spread-engine/internal/config"
	"github.com/spreadlabs/spread-engine/internal/domain"
	"github.com/spreadlabs/spread-engine/internal/metrics"
	"github.com/spreadlabs/spread-engine/internal/services"
)

const (
	STORAGE_SERVICE = "storage-service"

	InstancesBucket = "instances"
	SolutionsBucket = "solutions"
)

// Storage persists submitted instances and solved results. Instances are
// stored as the raw submitted document, so the id derived from the bytes
// stays stable across re-submissions of the same problem.
type Storage struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	db     *boltdb.BoltDatabase
	dbPath string
}

func (s *Storage) ID() string {
	return STORAGE_SERVICE
}

func (s *Storage) Configure(c container.IContainer) error {
	s.logger = services.NewServiceLogger(s)
	conf := c.GetConfig(config.STORE_CONFIG_KEY).(*config.StoreConfig)
	s.dbPath = conf.DBPath

	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	s.db = boltdb.NewBoltDatabase(s.dbPath)
	if s.db == nil {
		return fmt.Errorf("failed to open database at %s", s.dbPath)
	}

	s.logger.Info().Str("path", s.dbPath).Msg("[storage] opened database")
	return nil
}

func (s *Storage) Start() error {
	return nil
}

func (s *Storage) Stop() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InstanceID derives the canonical id of a submitted document: the first 16
// hex characters of the SHA-256 of the raw bytes.
func InstanceID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

// SaveInstance stores a raw instance document under its derived id.
func (s *Storage) SaveInstance(id string, raw []byte) error {
	if err := s.db.Set(InstancesBucket, []byte(id), raw); err != nil {
		return fmt.Errorf("failed to save instance %s: %w", id, err)
	}
	metrics.StoreWrites.WithLabelValues(InstancesBucket).Inc()
	return nil
}

// LoadInstance loads and decodes a stored instance document. Returns nil
// without error when the id is unknown.
func (s *Storage) LoadInstance(id string) (*domain.InstanceDoc, error) {
	raw, err := s.get(InstancesBucket, id)
	if err != nil || raw == nil {
		return nil, err
	}

	var doc domain.InstanceDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance %s: %w", id, err)
	}
	return &doc, nil
}

// SaveSolution stores a solved result under the instance id.
func (s *Storage) SaveSolution(id string, doc *domain.ResultDoc) error {
	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal solution %s: %w", id, err)
	}
	if err := s.db.Set(SolutionsBucket, []byte(id), data); err != nil {
		return fmt.Errorf("failed to save solution %s: %w", id, err)
	}
	metrics.StoreWrites.WithLabelValues(SolutionsBucket).Inc()
	return nil
}

// LoadSolution loads a stored result. Returns nil without error when the
// instance has not been solved yet.
func (s *Storage) LoadSolution(id string) (*domain.ResultDoc, error) {
	raw, err := s.get(SolutionsBucket, id)
	if err != nil || raw == nil {
		return nil, err
	}

	var doc domain.ResultDoc
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal solution %s: %w", id, err)
	}
	return &doc, nil
}

// get reads one key through a bucket scan.
func (s *Storage) get(bucket, id string) ([]byte, error) {
	data, err := s.db.List(bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", bucket, err)
	}
	metrics.StoreReads.WithLabelValues(bucket).Inc()
	return data[id], nil
}

// ListInstanceIDs returns the ids of every stored instance.
func (s *Storage) ListInstanceIDs() ([]string, error) {
	data, err := s.db.List(InstancesBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	return ids, nil
}
