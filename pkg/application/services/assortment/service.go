package assortment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/application/services/analysis"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/repositories"
	"github.com/vsinha/pluanalyzer/pkg/domain/services"
	"github.com/vsinha/pluanalyzer/pkg/infrastructure/metrics"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
)

// ErrIncompleteInputs is returned when a run is requested before every input is available
var ErrIncompleteInputs = errors.New("analysis inputs incomplete")

// Service coordinates plant storage, store filtering and the reconciliation engine
type Service struct {
	plants      repositories.PlantRepository
	storeFilter *services.StoreFilter
	analyzer    *analysis.Analyzer
	metrics     *metrics.Collector
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new assortment service
func NewService(
	plants repositories.PlantRepository,
	storeFilter *services.StoreFilter,
	analyzer *analysis.Analyzer,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		plants:      plants,
		storeFilter: storeFilter,
		analyzer:    analyzer,
		metrics:     collector,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for import and report timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ImportPlants replaces the stored plant data
func (s *Service) ImportPlants(ctx context.Context, records []entities.PlantRecord, sourceFile string) (*dto.PlantStatus, error) {
	if len(records) == 0 {
		return nil, apperrors.NewValidationError("No plant records to import")
	}

	snapshot := entities.PlantSnapshot{
		Records: records,
		Metadata: entities.PlantMetadata{
			LastUpdated: s.now().UTC(),
			SourceFile:  sourceFile,
		},
	}
	if err := s.plants.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save plant data: %w", err)
	}

	status := s.statusOf(&snapshot)
	s.logger.Info("plant data imported",
		"source_file", sourceFile,
		"rows", status.RowCount,
		"active_stores", status.ActiveStores,
	)
	return status, nil
}

// PlantStatus describes the stored plant data; Loaded is false when none is stored
func (s *Service) PlantStatus(ctx context.Context) (*dto.PlantStatus, error) {
	snapshot, err := s.plants.Load(ctx)
	if errors.Is(err, repositories.ErrPlantDataNotFound) {
		return &dto.PlantStatus{Loaded: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plant data: %w", err)
	}
	return s.statusOf(snapshot), nil
}

// ClearPlants removes the stored plant data
func (s *Service) ClearPlants(ctx context.Context) error {
	if err := s.plants.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear plant data: %w", err)
	}
	s.logger.Info("plant data cleared")
	return nil
}

func (s *Service) statusOf(snapshot *entities.PlantSnapshot) *dto.PlantStatus {
	metadata := snapshot.Metadata
	return &dto.PlantStatus{
		Loaded:       true,
		Metadata:     &metadata,
		RowCount:     len(snapshot.Records),
		ActiveStores: len(s.storeFilter.ActiveStores(snapshot.Records)),
	}
}

// Run analyzes the session inputs against the stored plant data
func (s *Service) Run(ctx context.Context, inputs dto.SessionInputs) (*dto.Report, error) {
	if !inputs.Complete() {
		return nil, fmt.Errorf("%w: inventory, status and product files are all required", ErrIncompleteInputs)
	}

	snapshot, err := s.plants.Load(ctx)
	if errors.Is(err, repositories.ErrPlantDataNotFound) {
		return nil, fmt.Errorf("%w: plant data has not been imported", ErrIncompleteInputs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plant data: %w", err)
	}

	return s.RunWithPlants(ctx, snapshot.Records, inputs)
}

// RunWithPlants analyzes the session inputs against an explicit plant list, bypassing storage
func (s *Service) RunWithPlants(ctx context.Context, plants []entities.PlantRecord, inputs dto.SessionInputs) (*dto.Report, error) {
	if !inputs.Complete() {
		return nil, fmt.Errorf("%w: inventory, status and product files are all required", ErrIncompleteInputs)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	activeStores := s.storeFilter.ActiveStores(plants)

	output := s.analyzer.Analyze(inputs.Inventory, inputs.Status, inputs.Products, activeStores)
	audit := s.analyzer.Audit(inputs.Inventory, inputs.Status, inputs.Products, activeStores)

	report := &dto.Report{
		Results:      output.Results,
		FilteredOut:  output.FilteredOut,
		Audit:        audit,
		Summary:      output.Summary,
		ActiveStores: activeStores,
		GeneratedAt:  s.now().UTC(),
	}

	outcome := metrics.OutcomeSuccess
	if report.Summary.Error != "" {
		outcome = metrics.OutcomeNoActiveStores
		s.logger.Warn("analysis skipped", "reason", report.Summary.Error, "plant_rows", len(plants))
	}
	s.metrics.ObserveAnalysis(outcome, time.Since(start), len(activeStores), map[string]int{
		entities.Publish.String():   report.Summary.ToPublish,
		entities.Unpublish.String(): report.Summary.ToUnpublish,
		entities.NoAction.String():  report.Summary.NoAction,
	})

	s.logger.Info("analysis complete",
		"active_stores", len(activeStores),
		"plus", report.Summary.TotalPLUs,
		"publish", report.Summary.ToPublish,
		"unpublish", report.Summary.ToUnpublish,
		"no_action", report.Summary.NoAction,
		"ecom_ineligible", len(report.FilteredOut),
		"audit", len(report.Audit),
		"duration", time.Since(start),
	)

	return report, nil
}
