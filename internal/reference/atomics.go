// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package reference

import "sync/atomic"

// AtomicMin lowers *cell to value and reports whether this call stored it.
// Contenders retry until the cell already holds something no larger.
func AtomicMin(cell *atomic.Int64, value int64) bool {
	for {
		old := cell.Load()
		if value >= old {
			return false
		}
		if cell.CompareAndSwap(old, value) {
			return true
		}
	}
}

// SwapMin lowers *cell to value using swaps only, the way targets without
// an atomic compare do it. A better value displaced by the swap is swapped
// back until none is displaced. The caller's value is not modified, so a
// re-check of *cell against it selects the contender whose value survived.
// A worse value may be visible to other contenders until it is swapped out.
func SwapMin(cell *atomic.Int64, value int64) {
	for v := value; ; {
		old := cell.Swap(v)
		if old >= v {
			return
		}
		v = old
	}
}

// Claim marks *cell with desired if it still holds unset. Exactly one of
// any number of concurrent callers wins.
func Claim(cell *atomic.Int64, unset, desired int64) bool {
	return cell.CompareAndSwap(unset, desired)
}
