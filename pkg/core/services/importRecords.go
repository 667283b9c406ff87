package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/tabular"
)

// MachineRow is one record of a machine import file
type MachineRow struct {
	Machine           string  `table:"machine"`
	CapacityKgPerHour float64 `table:"capacity_kg_per_hour"`
	HeadcountPerShift int     `table:"headcount_per_shift"`
	TotalPersonnel    int     `table:"total_personnel,optional"`
}

// PlanRow is one record of a plan import file
type PlanRow struct {
	Product    string     `table:"product"`
	QuantityKg float64    `table:"quantity_kg"`
	Machine    string     `table:"machine"`
	DueDate    *time.Time `table:"due_date,optional"`
}

// TableReader reads a tabular file into rows, header first
type TableReader interface {
	ReadRows(path string) ([][]string, error)
}

// MachineStore defines the session operations needed to import machines
type MachineStore interface {
	Machine(name string) (model.Machine, bool)
	AddMachine(m model.Machine) error
}

// PlanStore defines the session operations needed to import plan lines
type PlanStore interface {
	Machine(name string) (model.Machine, bool)
	AddPlanItem(item model.PlanItem) error
}

// ImportMachines reads machines from a tabular file and adds them to the session.
// The import is all or nothing: any malformed record, duplicate name or name
// already in the session rejects the whole file with InvalidBulkFormat.
func ImportMachines(
	ctx context.Context,
	reader TableReader,
	store MachineStore,
	logger *zap.Logger,
	path string,
) ([]model.Machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("machine import cancelled: %w", err)
	}

	logger.Debug("Importing machines", zap.String("path", path))

	rows, err := readRecords[MachineRow](reader, path)
	if err != nil {
		return nil, err
	}

	machines := make([]model.Machine, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		m, err := model.NewMachine(row.Machine, row.CapacityKgPerHour, row.HeadcountPerShift, row.TotalPersonnel)
		if err != nil {
			return nil, bulkError(path, fmt.Sprintf("record %d", i+1), err)
		}

		if seen[m.Name] {
			return nil, bulkError(path, fmt.Sprintf("record %d: machine %q appears more than once", i+1, m.Name), nil)
		}
		if _, exists := store.Machine(m.Name); exists {
			return nil, bulkError(path, fmt.Sprintf("record %d: machine %q already exists", i+1, m.Name), nil)
		}
		seen[m.Name] = true

		machines = append(machines, m)
	}

	for _, m := range machines {
		if err := store.AddMachine(m); err != nil {
			return nil, fmt.Errorf("failed to add machine %s: %w", m.Name, err)
		}
	}

	logger.Info("Imported machines", zap.String("path", path), zap.Int("count", len(machines)))
	return machines, nil
}

// ImportPlan reads plan lines from a tabular file and appends them to the session plan.
// Every referenced machine must already exist; the import is all or nothing.
func ImportPlan(
	ctx context.Context,
	reader TableReader,
	store PlanStore,
	logger *zap.Logger,
	path string,
) ([]model.PlanItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan import cancelled: %w", err)
	}

	logger.Debug("Importing plan", zap.String("path", path))

	rows, err := readRecords[PlanRow](reader, path)
	if err != nil {
		return nil, err
	}

	items := make([]model.PlanItem, 0, len(rows))
	for i, row := range rows {
		item, err := model.NewPlanItem(row.Product, row.QuantityKg, row.Machine, row.DueDate)
		if err != nil {
			return nil, bulkError(path, fmt.Sprintf("record %d", i+1), err)
		}

		if _, ok := store.Machine(item.Machine); !ok {
			return nil, bulkError(path, fmt.Sprintf("record %d", i+1), &model.PlanError{
				Kind:    model.KindUnknownMachine,
				Machine: item.Machine,
				Product: item.Product,
				Detail:  "plan item references an unknown machine",
			})
		}

		items = append(items, item)
	}

	for _, item := range items {
		if err := store.AddPlanItem(item); err != nil {
			return nil, fmt.Errorf("failed to add plan item %s: %w", item.Product, err)
		}
	}

	logger.Info("Imported plan", zap.String("path", path), zap.Int("count", len(items)))
	return items, nil
}

// readRecords reads and decodes a file; an empty file is MissingInput
func readRecords[T any](reader TableReader, path string) ([]T, error) {
	rows, err := reader.ReadRows(path)
	if err != nil {
		return nil, bulkError(path, "unreadable file", err)
	}

	records, err := tabular.Decode[T](rows)
	if err != nil {
		return nil, bulkError(path, "malformed table", err)
	}

	if len(records) == 0 {
		return nil, &model.PlanError{
			Kind:   model.KindMissingInput,
			Detail: fmt.Sprintf("%s contains no records", path),
		}
	}

	return records, nil
}

func bulkError(path, detail string, err error) error {
	return &model.PlanError{
		Kind:   model.KindInvalidBulkFormat,
		Detail: strings.TrimSpace(fmt.Sprintf("%s: %s", path, detail)),
		Err:    err,
	}
}
