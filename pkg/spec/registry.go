package spec

// Registry accumulates Descriptors in registration order and assigns each a
// zero-based index. Indices are never deduplicated: the same physical
// interface may be registered multiple times with different networks, each
// occurrence getting its own index. Rule priority follows index order, so
// more specific networks for a shared interface must be registered first.
//
// A derived set of unique interface names (first-seen order) is maintained
// for "any known interface" match clauses.
type Registry struct {
	descriptors []*Descriptor
	uniqueNames []string
	nameSeen    map[string]struct{}
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make([]*Descriptor, 0),
		uniqueNames: make([]string, 0),
		nameSeen:    make(map[string]struct{}),
	}
}

// BuildRegistry parses the provided tokens in order and registers each
// resulting Descriptor. Any parse failure aborts the build; a partial
// registry is never returned.
func BuildRegistry(tokens []string) (*Registry, error) {
	r := NewRegistry()
	for _, token := range tokens {
		d, err := Parse(token)
		if err != nil {
			return nil, err
		}
		r.Register(d)
	}
	return r, nil
}

// Register appends the descriptor, assigns and returns its index.
// The descriptor's name is added to the unique name set if not seen before.
func (r *Registry) Register(d *Descriptor) int {
	d.Index = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)

	if _, ok := r.nameSeen[d.Name]; !ok {
		r.nameSeen[d.Name] = struct{}{}
		r.uniqueNames = append(r.uniqueNames, d.Name)
	}
	return d.Index
}

// Len returns the number of registered descriptors
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Descriptors returns the registered descriptors in registration order
func (r *Registry) Descriptors() []*Descriptor {
	return r.descriptors
}

// UniqueNames returns the deduplicated interface names in first-seen order
func (r *Registry) UniqueNames() []string {
	return r.uniqueNames
}

// NamesWhere returns the deduplicated interface names, in first-seen order,
// of descriptors matching the provided predicate. It is the via-clause
// builder used to construct compound interface match expressions.
func (r *Registry) NamesWhere(pred func(*Descriptor) bool) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, d := range r.descriptors {
		if !pred(d) {
			continue
		}
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		names = append(names, d.Name)
	}
	return names
}
