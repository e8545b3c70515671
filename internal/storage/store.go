package storage

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/p2ppsr/metanet-desktop/pkg/model"
)

// Keys for the small scalar state the bridge persists. Nothing else is
// stored; HostRequest/HostResponse traffic is transient by contract.
const (
	keyNetworkMode    = "network_mode"
	keyExchangeRate   = "exchange_rate"
	keyExchangeRateAt = "exchange_rate_at"
)

// Record is one persisted key/value pair.
type Record struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (Record) TableName() string { return "mnd_kv" }

// Store is the sqlite-backed key/value state.
type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the sqlite database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: NewGormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the value for key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	var rec Record
	err := s.db.Where("key = ?", key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rec.Value, true, nil
}

// Put upserts key to value.
func (s *Store) Put(key, value string) error {
	rec := Record{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

// Network reads the persisted network mode, defaulting to main.
func (s *Store) Network() (model.Network, error) {
	v, ok, err := s.Get(keyNetworkMode)
	if err != nil {
		return "", err
	}
	if !ok {
		return model.NetworkMain, nil
	}
	n, err := model.ParseNetwork(v)
	if err != nil {
		// A corrupt value falls back rather than wedging the bridge.
		return model.NetworkMain, nil
	}
	return n, nil
}

// SetNetwork persists a validated network mode.
func (s *Store) SetNetwork(n model.Network) error {
	if _, err := model.ParseNetwork(string(n)); err != nil {
		return err
	}
	return s.Put(keyNetworkMode, string(n))
}

// ExchangeRate returns the cached rate snapshot and its write time.
func (s *Store) ExchangeRate() (string, time.Time, error) {
	body, ok, err := s.Get(keyExchangeRate)
	if err != nil || !ok {
		return "", time.Time{}, err
	}
	atRaw, ok, err := s.Get(keyExchangeRateAt)
	if err != nil || !ok {
		return "", time.Time{}, err
	}
	unix, err := strconv.ParseInt(atRaw, 10, 64)
	if err != nil {
		return "", time.Time{}, nil
	}
	return body, time.UnixMilli(unix), nil
}

// SetExchangeRate stores the serialized rate snapshot, stamped now.
func (s *Store) SetExchangeRate(body string) error {
	if err := s.Put(keyExchangeRate, body); err != nil {
		return err
	}
	return s.Put(keyExchangeRateAt, strconv.FormatInt(time.Now().UnixMilli(), 10))
}
