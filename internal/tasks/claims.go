package tasks

import "sync"

// claim is the favorite of one destination id within a run. done is closed once err holds its result.
type claim struct {
	done chan struct{}
	err  error
}

func (c *claim) resolve(err error) {
	c.err = err
	close(c.done)
}

// wait blocks until the owning track has resolved the claim and returns its result.
func (c *claim) wait() error {
	<-c.done
	return c.err
}

// claimSet records destination ids favorited during one run. Claims are never released:
// an id is mutated at most once per run, and later entries inherit the first result.
type claimSet struct {
	mu  sync.Mutex
	ids map[string]*claim
}

func newClaimSet() *claimSet {
	return &claimSet{ids: make(map[string]*claim)}
}

// TryClaim inserts id and reports true with a fresh claim the caller must resolve,
// or reports false with the existing claim when id was already claimed.
func (c *claimSet) TryClaim(id string) (*claim, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.ids[id]; ok {
		return existing, false
	}
	fresh := &claim{done: make(chan struct{})}
	c.ids[id] = fresh
	return fresh, true
}
