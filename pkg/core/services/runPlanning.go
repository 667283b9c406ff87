package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/internal/config"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/aggregator"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator/criteria"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/calendar"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/roster"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/rotation"
)

// PlanningSession defines the session operations needed for a planning run
type PlanningSession interface {
	Machines() []model.Machine
	Plan() []model.PlanItem
	Pools() map[string][]string
	PoolSizes() map[string]int
	Rotation() *rotation.Index
	EnsureAllPlaceholders() int
}

// RunOptions selects the run's calendar window
type RunOptions struct {
	// Start is the first date of the run; zero means today
	Start time.Time

	// HorizonDays overrides the configured horizon when positive
	HorizonDays int

	// ExtraCriteria are applied after the default criteria
	ExtraCriteria []allocator.Criterion
}

// RunResult contains everything one planning run produced
type RunResult struct {
	RunID         string
	Start         time.Time
	HorizonDays   int
	Dates         []time.Time
	Slots         []model.ShiftSlot
	Report        *aggregator.Report
	Matrices      []*roster.Matrix
	TotalShortage int
	Skipped       []allocator.SkippedItem
	Late          []allocator.LateItem
}

// RunPlanning allocates every plan line of the session and rolls the result up.
//
// The run is all or nothing: missing machines or plan lines abort it with
// MissingInput, an unknown machine aborts it with UnknownMachine before any
// rotation cursor moves, and any unexpected failure is returned as Internal with
// no partial result. Plan lines on machines with non-positive capacity are
// skipped and reported in the result.
//
// Rotation cursors only move when the run succeeds: any failure after allocation
// has started restores them to where they were before the run.
func RunPlanning(
	ctx context.Context,
	state PlanningSession,
	cfg *config.Config,
	logger *zap.Logger,
	opts RunOptions,
) (result *RunResult, err error) {
	var rollback func()
	defer func() {
		if r := recover(); r != nil {
			if rollback != nil {
				rollback()
			}
			stack := string(debug.Stack())
			logger.Error("Planning run failed unexpectedly",
				zap.Any("panic", r),
				zap.String("stack", stack))
			result = nil
			err = &model.PlanError{
				Kind:   model.KindInternal,
				Detail: fmt.Sprintf("unexpected failure during planning: %v", r),
				Stack:  stack,
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("planning run cancelled: %w", err)
	}

	// Step 1: Check inputs
	machines := state.Machines()
	if len(machines) == 0 {
		return nil, &model.PlanError{Kind: model.KindMissingInput, Detail: "no machines defined"}
	}

	plan := state.Plan()
	if len(plan) == 0 {
		return nil, &model.PlanError{Kind: model.KindMissingInput, Detail: "no plan items defined"}
	}

	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	start = model.Day(start)

	horizonDays := cfg.HorizonDays
	if opts.HorizonDays > 0 {
		horizonDays = opts.HorizonDays
	}
	if horizonDays < 1 || horizonDays > 28 {
		return nil, &model.PlanError{
			Kind:   model.KindInvalidInput,
			Detail: fmt.Sprintf("horizon must be between 1 and 28 days, got %d", horizonDays),
		}
	}

	runID := uuid.New().String()
	logger.Debug("Starting planning run",
		zap.String("run_id", runID),
		zap.String("start", start.Format(model.DateLayout)),
		zap.Int("horizon_days", horizonDays),
		zap.Int("machines", len(machines)),
		zap.Int("plan_items", len(plan)))

	// Step 2: Top up pools with placeholder personnel
	if added := state.EnsureAllPlaceholders(); added > 0 {
		logger.Info("Generated placeholder personnel", zap.Int("count", added))
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare planning run: %w", err)
	}

	// Step 3: Allocate
	cursors := state.Rotation()
	snapshot := cursors.Snapshot()
	rollback = func() {
		cursors.Restore(snapshot)
		logger.Debug("Restored rotation cursors", zap.String("run_id", runID))
	}

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Calendar:                   cal,
		Rotation:                   cursors,
		Machines:                   machines,
		Pools:                      state.Pools(),
		Plan:                       plan,
		Start:                      start,
		Criteria:                   append(criteria.Default(cfg.WeeklyCap()), opts.ExtraCriteria...),
		ContinueCalendarPerMachine: cfg.ContinueCalendarPerMachine,
	})
	if err != nil {
		rollback()
		if _, ok := model.KindOf(err); ok {
			logger.Error("Planning run aborted", zap.Error(err))
			return nil, err
		}
		return nil, &model.PlanError{Kind: model.KindInternal, Detail: "allocation failed", Err: err}
	}

	for _, skipped := range outcome.Skipped {
		logger.Warn("Skipped plan item",
			zap.String("product", skipped.Item.Product),
			zap.String("machine", skipped.Item.Machine),
			zap.Error(skipped.Err))
	}

	if !outcome.Success {
		rollback()
		for _, ve := range outcome.ValidationErrors {
			logger.Error("Schedule validation error",
				zap.String("criterion", ve.CriterionName),
				zap.Int("slot", ve.SlotIndex),
				zap.String("machine", ve.Machine),
				zap.String("description", ve.Description))
		}
		return nil, &model.PlanError{
			Kind:   model.KindInternal,
			Detail: fmt.Sprintf("schedule failed validation with %d errors", len(outcome.ValidationErrors)),
		}
	}

	slots := outcome.State.Slots

	// Step 4: Aggregate
	dates := aggregator.RunDateSpan(slots, start, horizonDays)
	report := aggregator.Summarise(slots, machines, state.PoolSizes(), dates, aggregator.Config{
		DailyFTEHours:  cfg.DailyFTE(),
		WeeklyFTEHours: cfg.WeeklyFTE(),
	})

	// Step 5: Person x date matrices
	matrices := roster.Build(machines, state.Pools(), slots, roster.SlotDates(slots, calendar.Horizon(start, horizonDays)))

	logger.Info("Planning run complete",
		zap.String("run_id", runID),
		zap.Int("slots", len(slots)),
		zap.Int("shortages", outcome.TotalShortage),
		zap.Int("skipped", len(outcome.Skipped)),
		zap.Int("late", len(outcome.Late)))

	return &RunResult{
		RunID:         runID,
		Start:         start,
		HorizonDays:   horizonDays,
		Dates:         dates,
		Slots:         slots,
		Report:        report,
		Matrices:      matrices,
		TotalShortage: outcome.TotalShortage,
		Skipped:       outcome.Skipped,
		Late:          outcome.Late,
	}, nil
}
