package snapshot

import "sync"

// observers is a set of change callbacks. Callbacks run synchronously,
// outside the owner's lock, in registration order.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
	ids  []int
}

func (o *observers) add(fn func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func())
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	o.ids = append(o.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.fns, id)
			for i, v := range o.ids {
				if v == id {
					o.ids = append(o.ids[:i:i], o.ids[i+1:]...)
					break
				}
			}
		})
	}
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.ids))
	for _, id := range o.ids {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
