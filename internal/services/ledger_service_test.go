// internal/services/ledger_service_test.go
package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/agrichain/agrichain-backend/internal/config"
)

func testLedger(enabled bool) *LedgerService {
	return &LedgerService{
		cfg: &config.Config{
			Ledger: config.LedgerConfig{
				Network: "agrichain-sim",
				Enabled: enabled,
			},
		},
	}
}

func TestGenerateHashDeterministic(t *testing.T) {
	s := testLedger(true)

	data := map[string]interface{}{
		"type":     "Harvest",
		"batch_id": "abc",
		"quantity": 100.0,
	}

	first := s.generateHash(data)
	second := s.generateHash(data)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "0x"))
	assert.Len(t, first, 66)
}

func TestGenerateHashSensitiveToData(t *testing.T) {
	s := testLedger(true)

	a := s.generateHash(map[string]interface{}{"type": "Harvest"})
	b := s.generateHash(map[string]interface{}{"type": "Split"})

	assert.NotEqual(t, a, b)
}

func TestMirrorEventDisabled(t *testing.T) {
	s := testLedger(false)

	hash := s.MirrorEvent("Harvest", uuid.New(), uuid.New(), nil)
	assert.Empty(t, hash)
}

func TestMirrorEventEnabled(t *testing.T) {
	s := testLedger(true)

	hash := s.MirrorEvent("Harvest", uuid.New(), uuid.New(), map[string]interface{}{"quantity": 50})
	assert.True(t, strings.HasPrefix(hash, "0x"))
}
