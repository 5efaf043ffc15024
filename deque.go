package swapvec

// deque is a growable ring buffer holding the in-memory portion of the
// container. Elements enter at the back and leave from the front in
// batch-sized runs when a spill triggers; the replay iterator addresses
// the remainder by position without draining it.
type deque[T any] struct {
	buf  []T
	head int
	n    int
}

func (d *deque[T]) len() int { return d.n }

func (d *deque[T]) pushBack(v T) {
	if d.n == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.n)%len(d.buf)] = v
	d.n++
}

// at returns the i-th element from the front without removing it.
func (d *deque[T]) at(i int) (T, bool) {
	var zero T
	if i < 0 || i >= d.n {
		return zero, false
	}
	return d.buf[(d.head+i)%len(d.buf)], true
}

// drainFront removes the k oldest elements and returns them in order.
func (d *deque[T]) drainFront(k int) []T {
	if k > d.n {
		k = d.n
	}
	if k <= 0 {
		return nil
	}
	out := make([]T, k)
	var zero T
	for i := 0; i < k; i++ {
		idx := (d.head + i) % len(d.buf)
		out[i] = d.buf[idx]
		d.buf[idx] = zero
	}
	d.head = (d.head + k) % len(d.buf)
	d.n -= k
	return out
}

func (d *deque[T]) grow() {
	newCap := len(d.buf) * 2
	if newCap == 0 {
		newCap = 8
	}
	buf := make([]T, newCap)
	for i := 0; i < d.n; i++ {
		buf[i] = d.buf[(d.head+i)%len(d.buf)]
	}
	d.buf = buf
	d.head = 0
}
