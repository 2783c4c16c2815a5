package ceiling

// Register is the current ceiling register. It is owned by a single
// scheduler context and only touched from the core.
type Register struct {
	value int
	depth int
	peak  int
}

// Load returns the current ceiling.
func (r *Register) Load() int { return r.value }

// Depth returns the number of locks currently held.
func (r *Register) Depth() int { return r.depth }

// Peak returns the highest ceiling observed since the last Reset.
func (r *Register) Peak() int { return r.peak }

// Raise sets the register to max(current, ceiling) and returns the previous
// value, which must be passed to Restore.
func (r *Register) Raise(ceiling int) int {
	prev := r.value
	if ceiling > r.value {
		r.value = ceiling
	}
	if r.value > r.peak {
		r.peak = r.value
	}
	r.depth++
	return prev
}

// Restore reinstates a value returned by Raise.
func (r *Register) Restore(prev int) {
	r.value = prev
	if r.depth > 0 {
		r.depth--
	}
}

// Reset clears the register, used on full system reset only.
func (r *Register) Reset() {
	*r = Register{}
}
