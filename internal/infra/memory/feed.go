package memory

// feed fans snapshots out to per-key subscribers. It is not safe for concurrent use; the owning
// store serializes every call under its own lock so that publish order is delivery order.
type feed[T any] struct {
	subscribers map[string]map[chan T]struct{}
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{subscribers: make(map[string]map[chan T]struct{})}
}

func (f *feed[T]) add(key string, initial *T) chan T {
	ch := make(chan T, 8)
	if f.subscribers[key] == nil {
		f.subscribers[key] = make(map[chan T]struct{})
	}
	f.subscribers[key][ch] = struct{}{}
	if initial != nil {
		ch <- *initial
	}
	return ch
}

func (f *feed[T]) remove(key string, ch chan T) {
	subs, ok := f.subscribers[key]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(f.subscribers, key)
	}
}

func (f *feed[T]) publish(key string, v T) {
	for ch := range f.subscribers[key] {
		select {
		case ch <- v:
		default:
			// every value is a full snapshot, so a lagging subscriber only needs the newest
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}
