// internal/services/ledger_service.go
package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrichain/agrichain-backend/internal/config"
	"github.com/agrichain/agrichain-backend/internal/models"
)

// LedgerService mirrors lifecycle events onto a simulated append-only
// ledger. Mirroring is best effort: a mirror failure never rolls back the
// database record, and the hash is attached to the event when available.
type LedgerService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LedgerRecord struct {
	Hash      string                 `json:"hash"`
	Network   string                 `json:"network"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewLedgerService(db *gorm.DB, cfg *config.Config) *LedgerService {
	return &LedgerService{
		db:  db,
		cfg: cfg,
	}
}

// MirrorEvent computes the mirror hash for a lifecycle event. Returns an
// empty hash when mirroring is disabled.
func (s *LedgerService) MirrorEvent(eventType string, batchID, actorID uuid.UUID, details map[string]interface{}) string {
	if !s.cfg.Ledger.Enabled {
		return ""
	}

	recordData := map[string]interface{}{
		"type":      eventType,
		"batch_id":  batchID.String(),
		"actor_id":  actorID.String(),
		"timestamp": time.Now().Unix(),
	}
	for k, v := range details {
		recordData[k] = v
	}

	hash := s.generateHash(recordData)

	logrus.WithFields(logrus.Fields{
		"network":  s.cfg.Ledger.Network,
		"batch_id": batchID,
		"type":     eventType,
		"hash":     hash,
	}).Debug("Mirrored event to ledger")

	return hash
}

// GetProductLedger returns the mirrored hashes of every event recorded
// against a product, oldest first.
func (s *LedgerService) GetProductLedger(productID uuid.UUID) ([]LedgerRecord, error) {
	var logs []models.ProductChainLog
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load chain logs: %w", err)
	}

	eventIDs := make([]uuid.UUID, 0, len(logs))
	for _, log := range logs {
		eventIDs = append(eventIDs, log.EventID)
	}

	var events []models.Event
	if len(eventIDs) > 0 {
		if err := s.db.Preload("EventType").
			Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
			return nil, fmt.Errorf("failed to load events: %w", err)
		}
	}

	records := make([]LedgerRecord, 0, len(events))
	for _, event := range events {
		if event.LedgerTxHash == "" {
			continue
		}
		records = append(records, LedgerRecord{
			Hash:      event.LedgerTxHash,
			Network:   s.cfg.Ledger.Network,
			Timestamp: event.RecordedAt,
			Data: map[string]interface{}{
				"type":     event.EventType.Name,
				"batch_id": event.BatchID.String(),
			},
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return records, nil
}

func (s *LedgerService) generateHash(data map[string]interface{}) string {
	// Keys are sorted so the same record always produces the same hash
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		ordered = append(ordered, k, data[k])
	}

	payload, _ := json.Marshal(ordered)
	hash := sha256.Sum256(payload)
	return "0x" + hex.EncodeToString(hash[:])
}
