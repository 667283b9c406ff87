package rotation

import "maps"

// Index keeps one round-robin cursor per machine.
//
// Cursors survive across planning runs. When a machine's pool changes size the
// stored cursor is clamped modulo the new size on the next read, so rotation
// continues from the same relative position instead of restarting. Reset and
// ResetAll return cursors to the head of the pool.
type Index struct {
	cursors map[string]int
}

// NewIndex creates an empty rotation index
func NewIndex() *Index {
	return &Index{cursors: make(map[string]int)}
}

// NextCandidate returns the pool member at the machine's cursor and advances the
// cursor by one, modulo the pool size. Returns false for an empty pool, in which
// case the cursor is left untouched.
func (ix *Index) NextCandidate(machine string, pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}

	pos := ix.Position(machine, len(pool))
	ix.cursors[machine] = (pos + 1) % len(pool)

	return pool[pos], true
}

// Position returns the machine's cursor clamped to a pool of the given size
func (ix *Index) Position(machine string, poolSize int) int {
	if poolSize <= 0 {
		return 0
	}
	return ix.cursors[machine] % poolSize
}

// Reset moves the machine's cursor back to the head of its pool
func (ix *Index) Reset(machine string) {
	delete(ix.cursors, machine)
}

// ResetAll clears every cursor
func (ix *Index) ResetAll() {
	clear(ix.cursors)
}

// Snapshot returns a copy of the raw cursor values
func (ix *Index) Snapshot() map[string]int {
	return maps.Clone(ix.cursors)
}

// Restore replaces every cursor with the values of a Snapshot
func (ix *Index) Restore(snapshot map[string]int) {
	clear(ix.cursors)
	maps.Copy(ix.cursors, snapshot)
}
