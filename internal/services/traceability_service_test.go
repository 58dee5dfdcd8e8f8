// internal/services/traceability_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrichain/agrichain-backend/internal/models"
)

func makeBatch(code string, parentID *uuid.UUID, createdAt time.Time) models.Batch {
	return models.Batch{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: createdAt,
		},
		BatchCode:         code,
		ParentBatchID:     parentID,
		InitialQuantity:   100,
		RemainingQuantity: 100,
		QuantityUnit:      "kg",
	}
}

func TestBuildGenealogyRootBatch(t *testing.T) {
	now := time.Now()
	root := makeBatch("BAT-ROOT", nil, now)
	child1 := makeBatch("BAT-CHILD-1", &root.ID, now.Add(time.Hour))
	child2 := makeBatch("BAT-CHILD-2", &root.ID, now.Add(2*time.Hour))
	grandchild := makeBatch("BAT-GRANDCHILD", &child1.ID, now.Add(3*time.Hour))

	lineage := []models.Batch{root, child1, child2, grandchild}

	genealogy := BuildGenealogy(root.ID, lineage)
	require.NotNil(t, genealogy)

	assert.True(t, genealogy.IsRoot)
	assert.Empty(t, genealogy.Ancestors)

	require.NotNil(t, genealogy.Tree)
	assert.Equal(t, "BAT-ROOT", genealogy.Tree.BatchCode)
	require.Len(t, genealogy.Tree.Children, 2)

	// Children ordered by creation time
	assert.Equal(t, "BAT-CHILD-1", genealogy.Tree.Children[0].BatchCode)
	assert.Equal(t, "BAT-CHILD-2", genealogy.Tree.Children[1].BatchCode)

	require.Len(t, genealogy.Tree.Children[0].Children, 1)
	assert.Equal(t, "BAT-GRANDCHILD", genealogy.Tree.Children[0].Children[0].BatchCode)
}

func TestBuildGenealogyMidLineage(t *testing.T) {
	now := time.Now()
	root := makeBatch("BAT-ROOT", nil, now)
	mid := makeBatch("BAT-MID", &root.ID, now.Add(time.Hour))
	leaf := makeBatch("BAT-LEAF", &mid.ID, now.Add(2*time.Hour))

	lineage := []models.Batch{root, mid, leaf}

	genealogy := BuildGenealogy(mid.ID, lineage)
	require.NotNil(t, genealogy)

	assert.False(t, genealogy.IsRoot)

	// Ancestors come back root first
	require.Len(t, genealogy.Ancestors, 1)
	assert.Equal(t, "BAT-ROOT", genealogy.Ancestors[0].BatchCode)

	assert.Equal(t, "BAT-MID", genealogy.Tree.BatchCode)
	require.Len(t, genealogy.Tree.Children, 1)
	assert.Equal(t, "BAT-LEAF", genealogy.Tree.Children[0].BatchCode)
}

func TestBuildGenealogyDeepAncestorOrder(t *testing.T) {
	now := time.Now()
	root := makeBatch("BAT-ROOT", nil, now)
	mid := makeBatch("BAT-MID", &root.ID, now.Add(time.Hour))
	leaf := makeBatch("BAT-LEAF", &mid.ID, now.Add(2*time.Hour))

	genealogy := BuildGenealogy(leaf.ID, []models.Batch{root, mid, leaf})
	require.NotNil(t, genealogy)

	require.Len(t, genealogy.Ancestors, 2)
	assert.Equal(t, "BAT-ROOT", genealogy.Ancestors[0].BatchCode)
	assert.Equal(t, "BAT-MID", genealogy.Ancestors[1].BatchCode)
	assert.Empty(t, genealogy.Tree.Children)
}

func TestBuildGenealogyTerminatesOnCycle(t *testing.T) {
	now := time.Now()
	a := makeBatch("BAT-A", nil, now)
	b := makeBatch("BAT-B", &a.ID, now.Add(time.Hour))

	// Corrupt the lineage: a points back at b
	a.ParentBatchID = &b.ID

	genealogy := BuildGenealogy(a.ID, []models.Batch{a, b})
	require.NotNil(t, genealogy)

	// The walk must terminate; b appears once as ancestor, not forever
	assert.Len(t, genealogy.Ancestors, 1)
	assert.Equal(t, "BAT-A", genealogy.Tree.BatchCode)
}

func TestBuildGenealogyUnknownStart(t *testing.T) {
	now := time.Now()
	root := makeBatch("BAT-ROOT", nil, now)

	genealogy := BuildGenealogy(uuid.New(), []models.Batch{root})
	assert.Nil(t, genealogy)
}

func TestGroupLifecycleStagesByRole(t *testing.T) {
	timeline := []TimelineEntry{
		{EventType: models.EventHarvest, ActorRole: models.RoleFarmer},
		{EventType: models.EventSplit, ActorRole: models.RoleDistributor},
		{EventType: models.EventTransportStart, ActorRole: models.RoleTransporter},
		{EventType: models.EventSale, ActorRole: models.RoleShopkeeper},
	}

	stages := GroupLifecycleStages(timeline)

	assert.Len(t, stages[StageFarmer], 1)
	assert.Len(t, stages[StageDistributor], 1)
	assert.Len(t, stages[StageTransporter], 1)
	assert.Len(t, stages[StageRetailer], 1)
}

func TestGroupLifecycleStagesFallsBackToEventType(t *testing.T) {
	// Actor role does not classify; the event type decides the bucket
	timeline := []TimelineEntry{
		{EventType: models.EventHarvest, ActorRole: models.RoleConsumer},
		{EventType: models.EventTransportEnd, ActorRole: ""},
	}

	stages := GroupLifecycleStages(timeline)

	assert.Len(t, stages[StageFarmer], 1)
	assert.Len(t, stages[StageTransporter], 1)
	assert.Empty(t, stages[StageDistributor])
	assert.Empty(t, stages[StageRetailer])
}

func TestGroupLifecycleStagesSkipsUnclassifiable(t *testing.T) {
	timeline := []TimelineEntry{
		{EventType: "Unknown Event", ActorRole: models.RoleConsumer},
	}

	stages := GroupLifecycleStages(timeline)

	for _, entries := range stages {
		assert.Empty(t, entries)
	}
}

func TestBuildJourneySummaryMilestoneOrder(t *testing.T) {
	// Timeline order does not matter; milestones come out in fixed order
	timeline := []TimelineEntry{
		{EventType: models.EventSold},
		{EventType: models.EventHarvest},
		{EventType: models.EventTransportStart},
	}

	journey := BuildJourneySummary(timeline)

	assert.Equal(t, []string{
		"Harvested from farm",
		"Transported",
		"Sold",
	}, journey)
}

func TestBuildJourneySummaryDeduplicates(t *testing.T) {
	timeline := []TimelineEntry{
		{EventType: models.EventHarvest},
		{EventType: models.EventHarvest},
		{EventType: models.EventHarvest},
	}

	journey := BuildJourneySummary(timeline)
	assert.Equal(t, []string{"Harvested from farm"}, journey)
}

func TestBuildJourneySummaryPlaceholder(t *testing.T) {
	journey := BuildJourneySummary(nil)
	assert.Equal(t, []string{"Product journey tracked"}, journey)

	// Events without milestone phrases also fall back to the placeholder
	journey = BuildJourneySummary([]TimelineEntry{{EventType: models.EventChemical}})
	assert.Equal(t, []string{"Product journey tracked"}, journey)
}
