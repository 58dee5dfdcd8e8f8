// internal/services/traceability_service.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrichain/agrichain-backend/internal/models"
)

// TraceabilityService assembles the consumer-facing "story" of a batch:
// where it came from, every hand it passed through, and the evidence
// collected along the way. All reads, no locks; a slightly stale view is
// acceptable.
type TraceabilityService struct {
	db     *gorm.DB
	ledger *LedgerService
}

type GenealogyNode struct {
	BatchID           uuid.UUID        `json:"batch_id"`
	BatchCode         string           `json:"batch_code"`
	InitialQuantity   float64          `json:"initial_quantity"`
	RemainingQuantity float64          `json:"remaining_quantity"`
	QuantityUnit      string           `json:"quantity_unit"`
	StatusID          uuid.UUID        `json:"status_id"`
	HarvestDate       *time.Time       `json:"harvest_date,omitempty"`
	Children          []*GenealogyNode `json:"children,omitempty"`
}

type TraceGenealogy struct {
	IsRoot    bool             `json:"is_root"`
	Ancestors []*GenealogyNode `json:"ancestors,omitempty"` // root first
	Tree      *GenealogyNode   `json:"tree"`                // scanned batch and its descendants
}

type TimelineEntry struct {
	EventID      uuid.UUID                `json:"event_id"`
	EventType    string                   `json:"event_type"`
	BatchCode    string                   `json:"batch_code"`
	RecordedAt   time.Time                `json:"recorded_at"`
	ActorName    string                   `json:"actor"`
	ActorRole    models.UserRole          `json:"actor_role"`
	Location     string                   `json:"location,omitempty"`
	LedgerTxHash string                   `json:"ledger_tx,omitempty"`
	Details      models.JSONB             `json:"details,omitempty"`
	Attachments  []models.EventAttachment `json:"attachments,omitempty"`
	DeviceData   []models.DeviceRawData   `json:"iot_data,omitempty"`
}

type TraceSummary struct {
	TotalEvents int      `json:"total_events"`
	Origin      string   `json:"origin"`
	Journey     []string `json:"journey"`
}

type TraceStory struct {
	Batch     *models.Batch              `json:"batch"`
	Genealogy *TraceGenealogy            `json:"genealogy"`
	Timeline  []TimelineEntry            `json:"timeline"`
	Stages    map[string][]TimelineEntry `json:"lifecycle_stages"`
	Ledger    []LedgerRecord             `json:"ledger_transactions,omitempty"`
	Summary   TraceSummary               `json:"summary"`
}

func NewTraceabilityService(db *gorm.DB, ledger *LedgerService) *TraceabilityService {
	return &TraceabilityService{
		db:     db,
		ledger: ledger,
	}
}

// TraceByBatchCode resolves the scanned code and assembles the full story
// across the product's entire split lineage.
func (s *TraceabilityService) TraceByBatchCode(batchCode string) (*TraceStory, error) {
	batch, err := s.findByCode(batchCode)
	if err != nil {
		return nil, err
	}

	// One bulk fetch of the whole lineage; the walk is in memory
	var lineage []models.Batch
	if err := s.db.Where("product_id = ?", batch.ProductID).Find(&lineage).Error; err != nil {
		return nil, fmt.Errorf("failed to load lineage: %w", err)
	}

	genealogy := BuildGenealogy(batch.ID, lineage)

	timeline, err := s.buildTimeline(batch.ProductID, lineage)
	if err != nil {
		return nil, err
	}

	// Ledger enrichment is best effort; the trace never fails on it
	ledgerRecords, err := s.ledger.GetProductLedger(batch.ProductID)
	if err != nil {
		logrus.WithError(err).WithField("product_id", batch.ProductID).
			Warn("Ledger enrichment failed")
		ledgerRecords = nil
	}

	origin := "Harvested from farm"
	if batch.ParentBatchID != nil {
		origin = "Split from parent batch"
	}

	return &TraceStory{
		Batch:     batch,
		Genealogy: genealogy,
		Timeline:  timeline,
		Stages:    GroupLifecycleStages(timeline),
		Ledger:    ledgerRecords,
		Summary: TraceSummary{
			TotalEvents: len(timeline),
			Origin:      origin,
			Journey:     BuildJourneySummary(timeline),
		},
	}, nil
}

// GetGenealogy returns just the parent/child tree for a batch code.
func (s *TraceabilityService) GetGenealogy(batchCode string) (*TraceGenealogy, error) {
	batch, err := s.findByCode(batchCode)
	if err != nil {
		return nil, err
	}

	var lineage []models.Batch
	if err := s.db.Where("product_id = ?", batch.ProductID).Find(&lineage).Error; err != nil {
		return nil, fmt.Errorf("failed to load lineage: %w", err)
	}

	return BuildGenealogy(batch.ID, lineage), nil
}

// GetTimeline returns just the chronological event history for a batch code.
func (s *TraceabilityService) GetTimeline(batchCode string) ([]TimelineEntry, error) {
	batch, err := s.findByCode(batchCode)
	if err != nil {
		return nil, err
	}

	var lineage []models.Batch
	if err := s.db.Where("product_id = ?", batch.ProductID).Find(&lineage).Error; err != nil {
		return nil, fmt.Errorf("failed to load lineage: %w", err)
	}

	return s.buildTimeline(batch.ProductID, lineage)
}

func (s *TraceabilityService) findByCode(batchCode string) (*models.Batch, error) {
	if batchCode == "" {
		return nil, ErrBatchNotFound
	}

	var batch models.Batch
	err := s.db.Preload("Product").
		Preload("CurrentOwner").
		Preload("CurrentStatus").
		Where("batch_code = ?", batchCode).
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	return &batch, nil
}

func (s *TraceabilityService) buildTimeline(productID uuid.UUID, lineage []models.Batch) ([]TimelineEntry, error) {
	codesByID := make(map[uuid.UUID]string, len(lineage))
	ids := make([]uuid.UUID, 0, len(lineage))
	for _, b := range lineage {
		codesByID[b.ID] = b.BatchCode
		ids = append(ids, b.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var events []models.Event
	err := s.db.Where("batch_id IN ?", ids).
		Order("recorded_at ASC").
		Preload("EventType").
		Preload("Actor").
		Preload("Attachments").
		Preload("DeviceData").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	timeline := make([]TimelineEntry, 0, len(events))
	for _, event := range events {
		timeline = append(timeline, TimelineEntry{
			EventID:      event.ID,
			EventType:    event.EventType.Name,
			BatchCode:    codesByID[event.BatchID],
			RecordedAt:   event.RecordedAt,
			ActorName:    event.Actor.Username,
			ActorRole:    event.Actor.Role,
			Location:     event.LocationCoords,
			LedgerTxHash: event.LedgerTxHash,
			Details:      event.Details,
			Attachments:  event.Attachments,
			DeviceData:   event.DeviceData,
		})
	}

	return timeline, nil
}

// BuildGenealogy builds the ancestor chain and descendant tree for one
// batch out of a bulk-fetched lineage slice. A visited set bounds both
// walks so inconsistent parent pointers cannot loop forever.
func BuildGenealogy(startID uuid.UUID, lineage []models.Batch) *TraceGenealogy {
	byID := make(map[uuid.UUID]*models.Batch, len(lineage))
	childrenOf := make(map[uuid.UUID][]*models.Batch, len(lineage))
	for i := range lineage {
		b := &lineage[i]
		byID[b.ID] = b
		if b.ParentBatchID != nil {
			childrenOf[*b.ParentBatchID] = append(childrenOf[*b.ParentBatchID], b)
		}
	}

	start, ok := byID[startID]
	if !ok {
		return nil
	}

	// Walk upward to the root
	var ancestors []*GenealogyNode
	visited := map[uuid.UUID]bool{startID: true}
	for cur := start; cur.ParentBatchID != nil; {
		parent, ok := byID[*cur.ParentBatchID]
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		ancestors = append([]*GenealogyNode{snapshotNode(parent)}, ancestors...)
		cur = parent
	}

	// Walk downward over all transitive children
	tree := buildSubtree(start, childrenOf, map[uuid.UUID]bool{})

	return &TraceGenealogy{
		IsRoot:    start.ParentBatchID == nil,
		Ancestors: ancestors,
		Tree:      tree,
	}
}

func buildSubtree(batch *models.Batch, childrenOf map[uuid.UUID][]*models.Batch, visited map[uuid.UUID]bool) *GenealogyNode {
	if visited[batch.ID] {
		return nil
	}
	visited[batch.ID] = true

	node := snapshotNode(batch)

	children := childrenOf[batch.ID]
	sort.Slice(children, func(i, j int) bool {
		return children[i].CreatedAt.Before(children[j].CreatedAt)
	})
	for _, child := range children {
		if childNode := buildSubtree(child, childrenOf, visited); childNode != nil {
			node.Children = append(node.Children, childNode)
		}
	}

	return node
}

func snapshotNode(b *models.Batch) *GenealogyNode {
	return &GenealogyNode{
		BatchID:           b.ID,
		BatchCode:         b.BatchCode,
		InitialQuantity:   b.InitialQuantity,
		RemainingQuantity: b.RemainingQuantity,
		QuantityUnit:      b.QuantityUnit,
		StatusID:          b.CurrentStatusID,
		HarvestDate:       b.HarvestDate,
	}
}

// Lifecycle stage buckets shown to consumers.
const (
	StageFarmer      = "farmer"
	StageDistributor = "distributor"
	StageTransporter = "transporter"
	StageRetailer    = "retailer"
)

// eventTypeStages classifies events whose actor's role does not map to a
// stage directly.
var eventTypeStages = map[string]string{
	models.EventHarvest:           StageFarmer,
	models.EventChemical:          StageFarmer,
	models.EventHarvestLog:        StageFarmer,
	models.EventFertilizerApplied: StageFarmer,
	models.EventPesticideApplied:  StageFarmer,
	models.EventIrrigation:        StageFarmer,
	models.EventQualityCheck:      StageFarmer,
	models.EventSplit:             StageDistributor,
	models.EventSold:              StageDistributor,
	models.EventTransportStart:    StageTransporter,
	models.EventTransportEnd:      StageTransporter,
	models.EventSale:              StageRetailer,
}

var roleStages = map[models.UserRole]string{
	models.RoleFarmer:      StageFarmer,
	models.RoleDistributor: StageDistributor,
	models.RoleTransporter: StageTransporter,
	models.RoleShopkeeper:  StageRetailer,
}

// GroupLifecycleStages buckets timeline entries per supply-chain stage,
// preferring the actor's role and falling back to the event type.
func GroupLifecycleStages(timeline []TimelineEntry) map[string][]TimelineEntry {
	stages := map[string][]TimelineEntry{
		StageFarmer:      {},
		StageDistributor: {},
		StageTransporter: {},
		StageRetailer:    {},
	}

	for _, entry := range timeline {
		stage, ok := roleStages[entry.ActorRole]
		if !ok {
			stage, ok = eventTypeStages[entry.EventType]
			if !ok {
				continue
			}
		}
		stages[stage] = append(stages[stage], entry)
	}

	return stages
}

// journeyMilestones maps event types to summary phrases in a fixed display
// order.
var journeyMilestones = []struct {
	eventType string
	phrase    string
}{
	{models.EventHarvest, "Harvested from farm"},
	{models.EventFertilizerApplied, "Fertilizer applied"},
	{models.EventPesticideApplied, "Pesticide applied"},
	{models.EventIrrigation, "Irrigated"},
	{models.EventTransportStart, "Transported"},
	{models.EventQualityCheck, "Quality checked"},
	{models.EventSplit, "Split into smaller batches"},
	{models.EventSold, "Sold"},
}

// BuildJourneySummary derives the human-readable milestone checklist from
// the timeline. Each phrase appears at most once, in milestone order.
func BuildJourneySummary(timeline []TimelineEntry) []string {
	seen := make(map[string]bool, len(timeline))
	for _, entry := range timeline {
		seen[entry.EventType] = true
	}

	var journey []string
	for _, milestone := range journeyMilestones {
		if seen[milestone.eventType] {
			journey = append(journey, milestone.phrase)
		}
	}

	if len(journey) == 0 {
		return []string{"Product journey tracked"}
	}
	return journey
}
