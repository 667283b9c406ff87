package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kenger42-gif/uretim-planlayici/pkg/core/model"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/rotation"
)

// SchedulerState is one planning session: machines, their personnel pools, the
// current plan and the rotation cursors. Pools and cursors outlive individual
// planning runs; the assignment ledger does not live here.
//
// A SchedulerState is not safe for concurrent use.
type SchedulerState struct {
	machines []model.Machine
	pools    map[string][]string
	plan     []model.PlanItem
	rotation *rotation.Index
}

// New creates an empty planning session
func New() *SchedulerState {
	return &SchedulerState{
		machines: []model.Machine{},
		pools:    make(map[string][]string),
		plan:     []model.PlanItem{},
		rotation: rotation.NewIndex(),
	}
}

// AddMachine registers a machine. Names must be unique within the session.
func (s *SchedulerState) AddMachine(m model.Machine) error {
	if _, exists := s.Machine(m.Name); exists {
		return &model.PlanError{
			Kind:    model.KindInvalidInput,
			Machine: m.Name,
			Detail:  "machine already exists",
		}
	}

	s.machines = append(s.machines, m)
	if _, ok := s.pools[m.Name]; !ok {
		s.pools[m.Name] = []string{}
	}
	return nil
}

// RemoveMachine drops a machine together with its pool, its plan lines and its rotation cursor
func (s *SchedulerState) RemoveMachine(name string) error {
	idx := slices.IndexFunc(s.machines, func(m model.Machine) bool { return m.Name == name })
	if idx < 0 {
		return &model.PlanError{Kind: model.KindUnknownMachine, Machine: name, Detail: "cannot remove machine"}
	}

	s.machines = slices.Delete(s.machines, idx, idx+1)
	delete(s.pools, name)
	s.plan = slices.DeleteFunc(s.plan, func(item model.PlanItem) bool { return item.Machine == name })
	s.rotation.Reset(name)
	return nil
}

// Machine looks up a machine by name
func (s *SchedulerState) Machine(name string) (model.Machine, bool) {
	for _, m := range s.machines {
		if m.Name == name {
			return m, true
		}
	}
	return model.Machine{}, false
}

// Machines returns the machines in insertion order
func (s *SchedulerState) Machines() []model.Machine {
	return slices.Clone(s.machines)
}

// AddPerson appends a person to a machine's pool and returns the names added.
//
// With an empty name, placeholders are generated up to the machine's nominal
// total personnel, or exactly one when the pool already meets it. A named person
// may belong to only one pool.
func (s *SchedulerState) AddPerson(machine, name string) ([]string, error) {
	m, ok := s.Machine(machine)
	if !ok {
		return nil, &model.PlanError{Kind: model.KindUnknownMachine, Machine: machine, Detail: "cannot add person"}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		added := s.EnsurePlaceholders(machine)
		if len(added) == 0 {
			added = []string{s.appendPlaceholder(m.Name)}
		}
		return added, nil
	}

	if owner, taken := s.PoolOf(name); taken {
		return nil, &model.PlanError{
			Kind:    model.KindInvalidInput,
			Machine: machine,
			Detail:  fmt.Sprintf("person %q already belongs to machine %q", name, owner),
		}
	}

	s.pools[machine] = append(s.pools[machine], name)
	return []string{name}, nil
}

// EnsurePlaceholders tops the machine's pool up to its nominal total personnel
// with generated names, returning the names added
func (s *SchedulerState) EnsurePlaceholders(machine string) []string {
	m, ok := s.Machine(machine)
	if !ok {
		return nil
	}

	var added []string
	for len(s.pools[machine]) < m.TotalPersonnel {
		added = append(added, s.appendPlaceholder(machine))
	}
	return added
}

// EnsureAllPlaceholders runs EnsurePlaceholders for every machine
func (s *SchedulerState) EnsureAllPlaceholders() int {
	total := 0
	for _, m := range s.machines {
		total += len(s.EnsurePlaceholders(m.Name))
	}
	return total
}

// appendPlaceholder adds the next "<machine>-PersonelN" name not held by any pool
func (s *SchedulerState) appendPlaceholder(machine string) string {
	n := len(s.pools[machine]) + 1
	name := model.PlaceholderName(machine, n)
	for {
		if _, taken := s.PoolOf(name); !taken {
			break
		}
		n++
		name = model.PlaceholderName(machine, n)
	}
	s.pools[machine] = append(s.pools[machine], name)
	return name
}

// Pool returns a copy of the machine's ordered personnel list
func (s *SchedulerState) Pool(machine string) []string {
	return slices.Clone(s.pools[machine])
}

// Pools returns a copy of every machine's pool
func (s *SchedulerState) Pools() map[string][]string {
	pools := make(map[string][]string, len(s.pools))
	for machine, pool := range s.pools {
		pools[machine] = slices.Clone(pool)
	}
	return pools
}

// PoolSizes returns the personnel count of every machine
func (s *SchedulerState) PoolSizes() map[string]int {
	sizes := make(map[string]int, len(s.pools))
	for machine, pool := range s.pools {
		sizes[machine] = len(pool)
	}
	return sizes
}

// PoolOf returns the machine whose pool contains the person
func (s *SchedulerState) PoolOf(person string) (string, bool) {
	for machine, pool := range s.pools {
		if slices.Contains(pool, person) {
			return machine, true
		}
	}
	return "", false
}

// AddPlanItem appends a plan line. The referenced machine must exist.
func (s *SchedulerState) AddPlanItem(item model.PlanItem) error {
	if _, ok := s.Machine(item.Machine); !ok {
		return &model.PlanError{
			Kind:    model.KindUnknownMachine,
			Machine: item.Machine,
			Product: item.Product,
			Detail:  "plan item references an unknown machine",
		}
	}
	s.plan = append(s.plan, item)
	return nil
}

// ClearPlan removes every plan line
func (s *SchedulerState) ClearPlan() {
	s.plan = []model.PlanItem{}
}

// Plan returns the plan lines in insertion order
func (s *SchedulerState) Plan() []model.PlanItem {
	return slices.Clone(s.plan)
}

// Rotation returns the session's rotation index
func (s *SchedulerState) Rotation() *rotation.Index {
	return s.rotation
}

// ResetRotation moves a machine's rotation cursor back to the head of its pool
func (s *SchedulerState) ResetRotation(machine string) error {
	if _, ok := s.Machine(machine); !ok {
		return &model.PlanError{Kind: model.KindUnknownMachine, Machine: machine, Detail: "cannot reset rotation"}
	}
	s.rotation.Reset(machine)
	return nil
}

// ResetAllRotations moves every rotation cursor back to the head of its pool
func (s *SchedulerState) ResetAllRotations() {
	s.rotation.ResetAll()
}
