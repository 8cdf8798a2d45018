package availability

// window is a fixed-capacity ring of probe outcomes with a running
// success counter. Oldest entries are evicted first once full.
type window struct {
	data      []bool
	head      int // index of the oldest outcome
	count     int
	successes int
}

func newWindow(capacity int) *window {
	return &window{data: make([]bool, capacity)}
}

func (w *window) record(outcome bool) {
	if w.count == len(w.data) {
		if w.data[w.head] {
			w.successes--
		}
		w.data[w.head] = outcome
		w.head = (w.head + 1) % len(w.data)
	} else {
		w.data[(w.head+w.count)%len(w.data)] = outcome
		w.count++
	}
	if outcome {
		w.successes++
	}
}

// rate returns the success percentage, or false when nothing was recorded yet.
func (w *window) rate() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	return float64(w.successes) / float64(w.count) * 100.0, true
}

func (w *window) len() int { return w.count }

func (w *window) capacity() int { return len(w.data) }

// outcomes copies the window, oldest first.
func (w *window) outcomes() []bool {
	out := make([]bool, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.data[(w.head+i)%len(w.data)]
	}
	return out
}
