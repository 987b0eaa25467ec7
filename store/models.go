// Package store contains the GORM-backed models mirrored from the consensus
// node's event feed, plus the primitive operations every other component
// uses to read and write them.
package store

import (
	"time"
)

// Sighting status values. A "seen" sighting was learned from the event feed;
// a "broadcast" sighting was recorded by the gateway after relaying the
// transaction itself.
const (
	StatusSeen      = "seen"
	StatusBroadcast = "broadcast"
)

// Block is one observed block, keyed by height. A later observation of the
// same height replaces the row.
type Block struct {
	Height  uint64 `gorm:"primaryKey;autoIncrement:false" json:"height"`
	Hash    string `json:"hash,omitempty"` // may be empty if the source omitted it
	Time    string `json:"time,omitempty"`
	TxCount int    `json:"tx_count"`

	UpdatedAt time.Time `json:"-"`
}

// TxSighting is a locally-stored observation that a transaction hash exists.
// The hash is the primary key: a sighting is inserted at most once, and a
// later "seen" arrival never overwrites a "broadcast" row's enrichment.
type TxSighting struct {
	Hash         string  `gorm:"primaryKey" json:"hash"`
	Height       *uint64 `gorm:"index" json:"height,omitempty"`
	IndexInBlock *int    `json:"index_in_block,omitempty"`
	FromAddr     string  `gorm:"index" json:"from,omitempty"`
	ToAddr       string  `gorm:"index" json:"to,omitempty"`
	Amount       string  `json:"amount,omitempty"`
	Denom        string  `json:"denom,omitempty"`
	Raw          []byte  `json:"raw,omitempty"` // serialized node broadcast outcome
	Status       string  `gorm:"index" json:"status"`

	CreatedAt time.Time `json:"timestamp"`
}
