package allocator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/calendar"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/rotation"
)

var runStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New([]calendar.ShiftDefinition{
		{Label: "12 vardiyası"},
		{Label: "35 vardiyası"},
		{Label: "51 vardiyası"},
	}, decimal.RequireFromString("7.5"))
	require.NoError(t, err)
	return cal
}

func baseConfig(t *testing.T, machines []model.Machine, pools map[string][]string, plan []model.PlanItem) AllocationConfig {
	return AllocationConfig{
		Calendar: testCalendar(t),
		Rotation: rotation.NewIndex(),
		Machines: machines,
		Pools:    pools,
		Plan:     plan,
		Start:    runStart,
	}
}

func sumHours(slots []model.ShiftSlot, product string) decimal.Decimal {
	total := decimal.Zero
	for _, slot := range slots {
		if slot.Product == product {
			total = total.Add(slot.Hours)
		}
	}
	return total
}

func TestAllocate_SingleSlotClosesRequirement(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 3}}
	pools := map[string][]string{"M1": {"Ali", "Ayşe", "Mehmet"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	slots := outcome.State.Slots
	require.Len(t, slots, 1, "4.0h requirement fits in one 7.5h shift")

	slot := slots[0]
	assert.True(t, slot.Hours.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, []string{"Ali", "Ayşe", "Mehmet"}, slot.Assigned)
	assert.Equal(t, 0, slot.Shortage())
	assert.Equal(t, "12 vardiyası", slot.ShiftLabel)
	assert.Equal(t, runStart, slot.Date)
	assert.Equal(t, 0, outcome.TotalShortage)
	assert.True(t, outcome.Success)
}

func TestAllocate_SlotHoursSumToRequiredHours(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 300, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b", "c", "d"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 10000, Machine: "M1"}}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	// 10000 / 300 = 33.33h -> 4 full shifts of 7.5h + 3.33h
	slots := outcome.State.Slots
	require.Len(t, slots, 5)
	for _, slot := range slots[:4] {
		assert.True(t, slot.Hours.Equal(decimal.RequireFromString("7.5")))
	}
	assert.Equal(t, "3.33", slots[4].Hours.StringFixed(2))

	required := decimal.NewFromInt(10000).Div(decimal.NewFromInt(300))
	diff := sumHours(slots, "P1").Sub(required).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.01")), "sum of slot hours should match quantity / capacity")
}

func TestAllocate_WalksCalendarAcrossDays(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 100, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 3000, Machine: "M1"}}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	// 30h -> exactly 4 shifts: three on day one, one on day two
	slots := outcome.State.Slots
	require.Len(t, slots, 4)
	assert.Equal(t, []int{0, 1, 2, 0}, []int{slots[0].ShiftIndex, slots[1].ShiftIndex, slots[2].ShiftIndex, slots[3].ShiftIndex})
	assert.Equal(t, runStart, slots[2].Date)
	assert.Equal(t, runStart.AddDate(0, 0, 1), slots[3].Date)
}

func TestAllocate_ShortageWhenPoolTooSmall(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 3}}
	pools := map[string][]string{"M1": {"Ali"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 5000, Machine: "M1"}}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	slots := outcome.State.Slots
	require.Len(t, slots, 3) // 20h -> 7.5 + 7.5 + 5
	for _, slot := range slots {
		assert.Equal(t, 1, slot.AssignedCount())
		assert.Equal(t, 2, slot.Shortage())
	}
	assert.Equal(t, 2*len(slots), outcome.TotalShortage)
}

func TestAllocate_EmptyPoolIsTotalShortage(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 2}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 2500, Machine: "M1"}}
	config := baseConfig(t, machines, map[string][]string{}, plan)

	outcome, err := Allocate(config)
	require.NoError(t, err)

	slots := outcome.State.Slots
	require.Len(t, slots, 2) // 10h -> 7.5 + 2.5
	for _, slot := range slots {
		assert.Empty(t, slot.Assigned)
		assert.Equal(t, 2, slot.Shortage())
	}
	assert.Equal(t, 4, outcome.TotalShortage)
	assert.Empty(t, config.Rotation.Snapshot(), "cursor untouched for empty pool")
}

func TestAllocate_InvalidCapacitySkipsLineOnly(t *testing.T) {
	machines := []model.Machine{
		{Name: "Broken", CapacityPerHour: 0, HeadcountPerShift: 1},
		{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1},
	}
	pools := map[string][]string{"Broken": {"x"}, "M1": {"a"}}
	plan := []model.PlanItem{
		{Product: "P0", Quantity: 1000, Machine: "Broken"},
		{Product: "P1", Quantity: 1000, Machine: "M1"},
	}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "P0", outcome.Skipped[0].Item.Product)
	assert.True(t, model.IsKind(outcome.Skipped[0].Err, model.KindInvalidCapacity))

	require.Len(t, outcome.State.Slots, 1)
	assert.Equal(t, "P1", outcome.State.Slots[0].Product)
}

func TestAllocate_UnknownMachineAbortsBeforeRotating(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b"}}
	plan := []model.PlanItem{
		{Product: "P1", Quantity: 1000, Machine: "M1"},
		{Product: "P2", Quantity: 1000, Machine: "Ghost"},
	}
	config := baseConfig(t, machines, pools, plan)

	outcome, err := Allocate(config)

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.True(t, model.IsKind(err, model.KindUnknownMachine))
	assert.Empty(t, config.Rotation.Snapshot())
}

func TestAllocate_EmptyPlanProducesNoSlots(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}

	outcome, err := Allocate(baseConfig(t, machines, map[string][]string{"M1": {"a"}}, nil))
	require.NoError(t, err)

	assert.Empty(t, outcome.State.Slots)
	assert.Equal(t, 0, outcome.TotalShortage)
	assert.True(t, outcome.Success)
}

func TestAllocate_MissingCalendar(t *testing.T) {
	_, err := Allocate(AllocationConfig{Rotation: rotation.NewIndex()})
	assert.Error(t, err)

	_, err = Allocate(AllocationConfig{Calendar: testCalendar(t)})
	assert.Error(t, err)
}

func TestAllocate_RotationContinuesAcrossRuns(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b", "c"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}
	config := baseConfig(t, machines, pools, plan)

	first, err := Allocate(config)
	require.NoError(t, err)
	second, err := Allocate(config)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, first.State.Slots[0].Assigned)
	assert.Equal(t, []string{"b"}, second.State.Slots[0].Assigned)
}

func TestAllocate_CursorAdvancesByProbesNotSuccesses(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b", "c", "d"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}
	config := baseConfig(t, machines, pools, plan)
	config.Criteria = []Criterion{&mockCriterion{name: "reject-a-b", reject: map[string]bool{"a": true, "b": true}}}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	assert.Equal(t, []string{"c"}, outcome.State.Slots[0].Assigned)
	assert.Equal(t, 3, config.Rotation.Position("M1", 4), "three probes were taken")
}

func TestAllocate_ProbesAreBoundedByTwicePoolSize(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 2}}
	pools := map[string][]string{"M1": {"a", "b", "c"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}
	config := baseConfig(t, machines, pools, plan)
	rejectAll := &mockCriterion{name: "reject-all", reject: map[string]bool{"a": true, "b": true, "c": true}}
	config.Criteria = []Criterion{rejectAll}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	assert.Equal(t, 6, rejectAll.calls)
	assert.Equal(t, 2, outcome.State.Slots[0].Shortage())
}

func TestAllocate_LedgerRecordsUnroundedHours(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 300, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	ledger := outcome.State.Ledger
	assert.Equal(t, "3.33", outcome.State.Slots[0].Hours.String())
	assert.True(t, ledger.Hours("a").GreaterThan(decimal.RequireFromString("3.33")))

	label, ok := ledger.ShiftOn("a", runStart)
	require.True(t, ok)
	assert.Equal(t, "12 vardiyası", label)
}

func TestAllocate_EachPlanLineRestartsAtRunStart(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b"}}
	plan := []model.PlanItem{
		{Product: "P1", Quantity: 1000, Machine: "M1"},
		{Product: "P2", Quantity: 1000, Machine: "M1"},
	}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	slots := outcome.State.Slots
	require.Len(t, slots, 2)
	assert.Equal(t, slots[0].Date, slots[1].Date)
	assert.Equal(t, 0, slots[1].ShiftIndex)
}

func TestAllocate_ContinueCalendarPerMachine(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a", "b"}}
	plan := []model.PlanItem{
		{Product: "P1", Quantity: 1000, Machine: "M1"},
		{Product: "P2", Quantity: 1000, Machine: "M1"},
	}
	config := baseConfig(t, machines, pools, plan)
	config.ContinueCalendarPerMachine = true

	outcome, err := Allocate(config)
	require.NoError(t, err)

	slots := outcome.State.Slots
	require.Len(t, slots, 2)
	assert.Equal(t, 0, slots[0].ShiftIndex)
	assert.Equal(t, 1, slots[1].ShiftIndex)
}

func TestAllocate_ReportsLateItems(t *testing.T) {
	due := runStart
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 100, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a"}}
	plan := []model.PlanItem{
		{Product: "Late", Quantity: 3000, Machine: "M1", DueDate: &due},
		{Product: "OnTime", Quantity: 100, Machine: "M1", DueDate: &due},
	}

	outcome, err := Allocate(baseConfig(t, machines, pools, plan))
	require.NoError(t, err)

	require.Len(t, outcome.Late, 1)
	assert.Equal(t, "Late", outcome.Late[0].Item.Product)
	assert.Equal(t, runStart.AddDate(0, 0, 1), outcome.Late[0].FinishDate)
	assert.Equal(t, 1, outcome.Late[0].DaysLate())
}

func TestAllocate_ValidationErrorsFromCriteria(t *testing.T) {
	machines := []model.Machine{{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1}}
	pools := map[string][]string{"M1": {"a"}}
	plan := []model.PlanItem{{Product: "P1", Quantity: 1000, Machine: "M1"}}
	config := baseConfig(t, machines, pools, plan)
	config.Criteria = []Criterion{&mockCriterion{
		name:        "always-invalid",
		validateErr: []SlotValidationError{{SlotIndex: 0, CriterionName: "always-invalid"}},
	}}

	outcome, err := Allocate(config)
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Len(t, outcome.ValidationErrors, 1)
}

func TestLedger_PersonsSorted(t *testing.T) {
	ledger := NewLedger()
	ledger.Record("Zeynep", runStart, "A", decimal.NewFromInt(1))
	ledger.Record("Ali", runStart, "B", decimal.NewFromInt(2))
	ledger.Record("Ali", runStart.AddDate(0, 0, 1), "C", decimal.NewFromInt(3))

	assert.Equal(t, []string{"Ali", "Zeynep"}, ledger.Persons())
	assert.True(t, ledger.Hours("Ali").Equal(decimal.NewFromInt(5)))
	assert.Equal(t, map[string]string{"2025-01-06": "B", "2025-01-07": "C"}, ledger.Assignments("Ali"))
	assert.True(t, ledger.Hours("nobody").IsZero())
}
