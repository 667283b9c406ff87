package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
)

func newSession(t *testing.T, machines ...model.Machine) *SchedulerState {
	t.Helper()
	s := New()
	for _, m := range machines {
		require.NoError(t, s.AddMachine(m))
	}
	return s
}

func TestAddMachine_DuplicateName(t *testing.T) {
	s := newSession(t, model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1})

	err := s.AddMachine(model.Machine{Name: "M1", CapacityPerHour: 100, HeadcountPerShift: 2})

	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.KindInvalidInput))
	assert.Len(t, s.Machines(), 1)
}

func TestAddPerson_Named(t *testing.T) {
	s := newSession(t,
		model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1},
		model.Machine{Name: "M2", CapacityPerHour: 250, HeadcountPerShift: 1},
	)

	added, err := s.AddPerson("M1", "  Ali ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ali"}, added)
	assert.Equal(t, []string{"Ali"}, s.Pool("M1"))

	_, err = s.AddPerson("M2", "Ali")
	require.Error(t, err, "pools are disjoint")
	assert.True(t, model.IsKind(err, model.KindInvalidInput))

	_, err = s.AddPerson("Ghost", "Ayşe")
	assert.True(t, model.IsKind(err, model.KindUnknownMachine))
}

func TestAddPerson_EmptyNameGeneratesPlaceholders(t *testing.T) {
	s := newSession(t, model.Machine{Name: "Dolum", CapacityPerHour: 250, HeadcountPerShift: 1, TotalPersonnel: 3})
	_, err := s.AddPerson("Dolum", "Ali")
	require.NoError(t, err)

	added, err := s.AddPerson("Dolum", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dolum-Personel2", "Dolum-Personel3"}, added)

	// pool already at its nominal total: exactly one more
	added, err = s.AddPerson("Dolum", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dolum-Personel4"}, added)

	assert.Equal(t, []string{"Ali", "Dolum-Personel2", "Dolum-Personel3", "Dolum-Personel4"}, s.Pool("Dolum"))
}

func TestEnsureAllPlaceholders(t *testing.T) {
	s := newSession(t,
		model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1, TotalPersonnel: 2},
		model.Machine{Name: "M2", CapacityPerHour: 250, HeadcountPerShift: 1, TotalPersonnel: 0},
	)

	assert.Equal(t, 2, s.EnsureAllPlaceholders())
	assert.Equal(t, []string{"M1-Personel1", "M1-Personel2"}, s.Pool("M1"))
	assert.Empty(t, s.Pool("M2"))

	assert.Equal(t, 0, s.EnsureAllPlaceholders(), "idempotent once topped up")
	assert.Equal(t, map[string]int{"M1": 2, "M2": 0}, s.PoolSizes())
}

func TestEnsureAllPlaceholders_SkipsNamesHeldByAnotherPool(t *testing.T) {
	s := newSession(t,
		model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1},
		model.Machine{Name: "M2", CapacityPerHour: 250, HeadcountPerShift: 1, TotalPersonnel: 1},
	)
	_, err := s.AddPerson("M1", "M2-Personel1")
	require.NoError(t, err)

	assert.Equal(t, 1, s.EnsureAllPlaceholders())

	assert.Equal(t, []string{"M2-Personel1"}, s.Pool("M1"))
	assert.Equal(t, []string{"M2-Personel2"}, s.Pool("M2"))
	owner, ok := s.PoolOf("M2-Personel1")
	require.True(t, ok)
	assert.Equal(t, "M1", owner)
}

func TestPoolsAreCopies(t *testing.T) {
	s := newSession(t, model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1})
	_, err := s.AddPerson("M1", "Ali")
	require.NoError(t, err)

	pool := s.Pool("M1")
	pool[0] = "changed"
	pools := s.Pools()
	pools["M1"] = nil

	assert.Equal(t, []string{"Ali"}, s.Pool("M1"))
}

func TestAddPlanItem(t *testing.T) {
	s := newSession(t, model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1})

	require.NoError(t, s.AddPlanItem(model.PlanItem{Product: "P1", Quantity: 1000, Machine: "M1"}))

	err := s.AddPlanItem(model.PlanItem{Product: "P2", Quantity: 1000, Machine: "Ghost"})
	assert.True(t, model.IsKind(err, model.KindUnknownMachine))

	require.Len(t, s.Plan(), 1)
	s.ClearPlan()
	assert.Empty(t, s.Plan())
}

func TestRemoveMachine(t *testing.T) {
	s := newSession(t,
		model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1},
		model.Machine{Name: "M2", CapacityPerHour: 250, HeadcountPerShift: 1},
	)
	_, err := s.AddPerson("M1", "Ali")
	require.NoError(t, err)
	require.NoError(t, s.AddPlanItem(model.PlanItem{Product: "P1", Quantity: 1000, Machine: "M1"}))
	require.NoError(t, s.AddPlanItem(model.PlanItem{Product: "P2", Quantity: 1000, Machine: "M2"}))
	s.Rotation().NextCandidate("M1", s.Pool("M1"))

	require.NoError(t, s.RemoveMachine("M1"))

	_, ok := s.Machine("M1")
	assert.False(t, ok)
	assert.Empty(t, s.Pool("M1"))
	require.Len(t, s.Plan(), 1)
	assert.Equal(t, "P2", s.Plan()[0].Product)
	assert.NotContains(t, s.Rotation().Snapshot(), "M1")

	assert.True(t, model.IsKind(s.RemoveMachine("M1"), model.KindUnknownMachine))
}

func TestResetRotation(t *testing.T) {
	s := newSession(t,
		model.Machine{Name: "M1", CapacityPerHour: 250, HeadcountPerShift: 1},
		model.Machine{Name: "M2", CapacityPerHour: 250, HeadcountPerShift: 1},
	)
	pool := []string{"a", "b", "c"}
	s.Rotation().NextCandidate("M1", pool)
	s.Rotation().NextCandidate("M2", pool)

	require.NoError(t, s.ResetRotation("M1"))
	assert.Equal(t, 0, s.Rotation().Position("M1", 3))
	assert.Equal(t, 1, s.Rotation().Position("M2", 3))

	s.ResetAllRotations()
	assert.Empty(t, s.Rotation().Snapshot())

	assert.True(t, model.IsKind(s.ResetRotation("Ghost"), model.KindUnknownMachine))
}
