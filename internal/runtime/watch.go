package runtime

import "github.com/aretw0/tripreel/pkg/domain"

// Subscribe returns a channel that receives state snapshots, starting with the
// current one. Slow readers only miss intermediate snapshots: the channel
// always ends up holding the most recent state.
// The returned func unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan domain.State, func()) {
	ch := make(chan domain.State, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.state.Clone()
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
}

// broadcastLocked delivers s to every subscriber. Callers hold c.mu.
func (c *Controller) broadcastLocked(state domain.State) {
	for ch := range c.subs {
		s := state.Clone()
		select {
		case ch <- s:
		default:
			// Replace the unread snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
