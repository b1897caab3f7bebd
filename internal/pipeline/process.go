package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"ghgreport/internal"
	"ghgreport/internal/config"
	"ghgreport/internal/factors"
	"ghgreport/internal/rules"
	"ghgreport/internal/storage"
	"ghgreport/internal/units"
)

// ProcessingService runs the pipeline over stored batches. The factor
// table comes from storage and its absence is fatal: without reference
// data no downstream number means anything.
type ProcessingService struct {
	db    *storage.DB
	cfg   config.Config
	vocab rules.Table
}

func NewProcessingService(db *storage.DB, cfg config.Config, vocab rules.Table) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg, vocab: vocab}
}

type ProcessResult struct {
	BatchID   int
	Processed int
	Summary   internal.Summary
}

func (s *ProcessingService) ProcessBatchID(batchID int) (ProcessResult, error) {
	batch, err := s.db.BatchByID(batchID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessBatch(batch)
}

func (s *ProcessingService) ProcessPending(limit int) (int, int, error) {
	pending, err := s.db.ListBatchesByStatus("ingested", limit)
	if err != nil {
		return 0, 0, err
	}
	processedBatches := 0
	processedRecords := 0
	for _, batch := range pending {
		res, err := s.ProcessBatch(batch)
		if err != nil {
			return processedBatches, processedRecords, err
		}
		processedBatches++
		processedRecords += res.Processed
	}
	return processedBatches, processedRecords, nil
}

func (s *ProcessingService) ProcessBatch(batch internal.Batch) (ProcessResult, error) {
	start := time.Now()

	list, err := s.db.ListFactors()
	if err != nil {
		return ProcessResult{}, err
	}
	if len(list) == 0 {
		return ProcessResult{}, fmt.Errorf("refusing to process batch %d: %w (run factors:load or factors:sync first)", batch.ID, factors.ErrEmptyTable)
	}

	raw, err := s.db.ListRawRecords(batch.ID)
	if err != nil {
		return ProcessResult{}, err
	}

	p := New(factors.BuildIndex(list), units.Default(), s.vocab, s.cfg.MatchKeywordThreshold)
	calculated, summary := p.Run(raw)

	if err := s.db.ClearBatchResults(batch.ID); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.InsertResults(batch.ID, calculated); err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateBatchStatus(batch.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), batch.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{
			"records":   summary.TotalRecords,
			"flagged":   summary.FlaggedCount,
			"matched":   summary.MatchedCount,
			"unmatched": summary.UnmatchedCount,
		})

	return ProcessResult{BatchID: batch.ID, Processed: len(calculated), Summary: summary}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
