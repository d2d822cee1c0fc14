package neat

// InnovationRegistry hands out the historical markings attached to
// connection genes. It is owned by the Population rather than being
// process-global, so multiple populations (and tests) stay isolated.
type InnovationRegistry struct {
	// NextID is the id the next call to Next will return. Exported so
	// checkpoints can persist the counter.
	NextID int
}

// NewInnovationRegistry creates a registry starting at id 0.
func NewInnovationRegistry() *InnovationRegistry {
	return &InnovationRegistry{}
}

// Next returns a fresh innovation id. Ids are monotonically increasing and
// never reused within one registry.
func (r *InnovationRegistry) Next() int {
	id := r.NextID
	r.NextID++
	return id
}

// Observe fast-forwards the counter past an id seen in a deserialized
// genome, so that ids minted afterwards never collide with loaded ones.
func (r *InnovationRegistry) Observe(id int) {
	if id >= r.NextID {
		r.NextID = id + 1
	}
}
