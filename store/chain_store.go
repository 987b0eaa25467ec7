package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query limits for the read API. Requests above the max are clamped, zero or
// negative requests fall back to the default.
const (
	DefaultBlockLimit = 20
	MaxBlockLimit     = 100

	DefaultTxLimit = 50
	MaxTxLimit     = 200
)

// ChainStore provides the primitive chain-mirror operations used by the
// subscriber, the broadcast gateway, and the query API. Every write commits
// before returning.
type ChainStore struct {
	client *gorm.DB
}

// NewChainStore creates a chain store over an open GORM client.
func NewChainStore(client *gorm.DB) *ChainStore {
	return &ChainStore{client: client}
}

// UpsertBlock inserts the block record for its height, replacing any
// previously observed row at that height. Benign re-delivery from the event
// feed therefore leaves exactly one row with the latest observed values.
func (cs *ChainStore) UpsertBlock(block *Block) error {
	if cs.client == nil {
		return fmt.Errorf("database is nil")
	}
	if block == nil {
		return fmt.Errorf("block is nil")
	}

	err := cs.client.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "height"}},
			UpdateAll: true,
		}).
		Create(block).Error
	if err != nil {
		return fmt.Errorf("failed to upsert block %d: %w", block.Height, err)
	}
	return nil
}

// GetBlock returns the block at the given height, or nil if none was
// observed.
func (cs *ChainStore) GetBlock(height uint64) (*Block, error) {
	if cs.client == nil {
		return nil, fmt.Errorf("database is nil")
	}

	var block Block
	err := cs.client.Where("height = ?", height).First(&block).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", height, err)
	}
	return &block, nil
}

// ListBlocks returns blocks ordered by height descending. The limit is
// clamped to [1, MaxBlockLimit]; zero or negative means DefaultBlockLimit.
func (cs *ChainStore) ListBlocks(limit int) ([]Block, error) {
	if cs.client == nil {
		return nil, fmt.Errorf("database is nil")
	}

	limit = clampLimit(limit, DefaultBlockLimit, MaxBlockLimit)

	var blocks []Block
	if err := cs.client.
		Order("height DESC").
		Limit(limit).
		Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	return blocks, nil
}

// InsertSightingIfAbsent inserts a transaction sighting unless a row with
// the same hash already exists. Returns (true, nil) when a new row was
// inserted and (false, nil) when the hash was already present. An existing
// row is never modified: a "seen" arrival must not overwrite a "broadcast"
// row's enrichment fields.
func (cs *ChainStore) InsertSightingIfAbsent(sighting *TxSighting) (bool, error) {
	if cs.client == nil {
		return false, fmt.Errorf("database is nil")
	}
	if sighting == nil {
		return false, fmt.Errorf("sighting is nil")
	}

	res := cs.client.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).
		Create(sighting)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert sighting %s: %w", sighting.Hash, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetSighting returns the sighting for the given hash, or nil if the hash
// was never observed.
func (cs *ChainStore) GetSighting(hash string) (*TxSighting, error) {
	if cs.client == nil {
		return nil, fmt.Errorf("database is nil")
	}

	var sighting TxSighting
	err := cs.client.Where("hash = ?", hash).First(&sighting).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sighting %s: %w", hash, err)
	}
	return &sighting, nil
}

// ListSightings returns sightings most-recent-first. When address is
// non-empty, only sightings where it matches sender or recipient are
// returned. The limit is clamped to [1, MaxTxLimit]; zero or negative means
// DefaultTxLimit.
func (cs *ChainStore) ListSightings(limit int, address string) ([]TxSighting, error) {
	if cs.client == nil {
		return nil, fmt.Errorf("database is nil")
	}

	limit = clampLimit(limit, DefaultTxLimit, MaxTxLimit)

	query := cs.client.Order("created_at DESC, hash DESC").Limit(limit)
	if address != "" {
		query = query.Where("from_addr = ? OR to_addr = ?", address, address)
	}

	var sightings []TxSighting
	if err := query.Find(&sightings).Error; err != nil {
		return nil, fmt.Errorf("failed to list sightings: %w", err)
	}
	return sightings, nil
}

// LatestHeight returns the highest observed block height, or 0 when no
// blocks were observed yet.
func (cs *ChainStore) LatestHeight() (uint64, error) {
	if cs.client == nil {
		return 0, fmt.Errorf("database is nil")
	}

	var block Block
	err := cs.client.Order("height DESC").First(&block).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest height: %w", err)
	}
	return block.Height, nil
}

func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}
