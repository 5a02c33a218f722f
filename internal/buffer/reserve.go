package buffer

// Reserve holds the writer goroutine's two backup buffers. Producers never
// see it. Buffers handed out are cleared from their slot so a second take
// without a Refill in between panics instead of sharing a buffer.
type Reserve struct {
	primary   *FixedBuffer
	secondary *FixedBuffer
	size      int
}

// NewReserve allocates both backups.
func NewReserve(size int) *Reserve {
	if size <= 0 {
		size = DefaultSize
	}
	return &Reserve{
		primary:   NewFixed(size),
		secondary: NewFixed(size),
		size:      size,
	}
}

func (r *Reserve) takePrimary() *FixedBuffer {
	if r.primary == nil {
		panic("buffer: backup buffer #1 is empty")
	}
	b := r.primary
	r.primary = nil
	return b
}

func (r *Reserve) takeSecondary() *FixedBuffer {
	if r.secondary == nil {
		panic("buffer: backup buffer #2 is empty")
	}
	b := r.secondary
	r.secondary = nil
	return b
}

// Full reports whether both backups are present.
func (r *Reserve) Full() bool {
	return r.primary != nil && r.secondary != nil
}

// Refill replaces consumed backups, recycling buffers from the tail of
// drained after resetting them. It allocates only when drained runs out and
// returns how many buffers were taken from drained. The caller must drop
// its references to the recycled entries.
func (r *Reserve) Refill(drained []*FixedBuffer) int {
	used := 0
	for _, slot := range []**FixedBuffer{&r.primary, &r.secondary} {
		if *slot != nil {
			continue
		}
		if n := len(drained) - used; n > 0 {
			b := drained[n-1]
			b.Reset()
			*slot = b
			used++
			continue
		}
		*slot = NewFixed(r.size)
	}
	return used
}
