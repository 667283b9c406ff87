package e2e

import (
	allocator "github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator"
	"github.com/kenger42-gif/uretim-planlayici/pkg/core/allocator/criteria"
)

// Type aliases to avoid prefixing everything with allocator.
type (
	Criterion         = allocator.Criterion
	AllocationConfig  = allocator.AllocationConfig
	AllocationOutcome = allocator.AllocationOutcome
	RunState          = allocator.RunState
)

// Function aliases
var (
	Allocate                   = allocator.Allocate
	ValidateRunState           = allocator.ValidateRunState
	DefaultCriteria            = criteria.Default
	NewShiftSizeCriterion      = criteria.NewShiftSizeCriterion
	NewNoDoubleShiftsCriterion = criteria.NewNoDoubleShiftsCriterion
	NewWeeklyHourCapCriterion  = criteria.NewWeeklyHourCapCriterion
)
