package allocator

// SlotValidationError represents a validation error for a specific slot
type SlotValidationError struct {
	// SlotIndex is the position in the emitted slot list (-1 when not slot specific)
	SlotIndex     int
	SlotDate      string
	Machine       string
	CriterionName string
	Description   string
}

// Criterion defines the interface for assignment rules.
// Every criterion may veto a candidate and must be able to audit the finished schedule.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsCandidateEligible determines if the person may be assigned to the slot
	// This acts as a veto - if ANY criterion returns false, the candidate is skipped
	IsCandidateEligible(state *RunState, person string, slot *SlotRequest) bool

	// ValidateRunState checks the finished schedule against this criterion
	// Returns a slice of validation errors (empty if all valid)
	ValidateRunState(state *RunState) []SlotValidationError
}

// IsCandidateEligible returns true when no criterion vetoes the candidate
func IsCandidateEligible(state *RunState, person string, slot *SlotRequest, criteria []Criterion) bool {
	for _, criterion := range criteria {
		if !criterion.IsCandidateEligible(state, person, slot) {
			return false
		}
	}
	return true
}

// ValidateRunState validates the final run state against all provided criteria.
// An empty slice indicates the schedule is valid.
func ValidateRunState(state *RunState, criteria []Criterion) []SlotValidationError {
	var errors []SlotValidationError

	for _, criterion := range criteria {
		errors = append(errors, criterion.ValidateRunState(state)...)
	}

	return errors
}
