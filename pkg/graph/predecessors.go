package graph

// Predecessors is a memo table for traversal algorithms, keyed by
// (target id, source id). A missing pair means "not computed"; any stored
// value, nil included, is a computed result. Entries are only ever removed
// all at once by Clear.
type Predecessors struct {
	table map[string]map[string]any
}

// NewPredecessors returns an empty table.
func NewPredecessors() *Predecessors {
	return &Predecessors{table: make(map[string]map[string]any)}
}

// Get returns the value memoised for (targetID, sourceID).
func (p *Predecessors) Get(targetID, sourceID string) (any, bool) {
	sources, ok := p.table[targetID]
	if !ok {
		return nil, false
	}
	v, ok := sources[sourceID]
	return v, ok
}

// Set memoises value for (targetID, sourceID), replacing any earlier value.
func (p *Predecessors) Set(targetID, sourceID string, value any) {
	sources, ok := p.table[targetID]
	if !ok {
		sources = make(map[string]any)
		p.table[targetID] = sources
	}
	sources[sourceID] = value
}

// Clear empties the table.
func (p *Predecessors) Clear() {
	p.table = make(map[string]map[string]any)
}

// Len returns the number of memoised pairs.
func (p *Predecessors) Len() int {
	n := 0
	for _, sources := range p.table {
		n += len(sources)
	}
	return n
}
