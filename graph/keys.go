package graph

import "sort"

// KeySet is a node or edge key contract: either an explicit set of
// attribute keys with human-readable descriptions, or the inherit-all
// wildcard. Descriptions double as documentation and as prompt material
// for model-backed nodes.
type KeySet struct {
	inheritAll bool
	keys       map[string]string
}

// InheritAll returns the wildcard contract: every available key.
func InheritAll() KeySet { return KeySet{inheritAll: true} }

// Keys returns an explicit contract from key names to descriptions.
func Keys(m map[string]string) KeySet {
	keys := make(map[string]string, len(m))
	for k, d := range m {
		keys[k] = d
	}
	return KeySet{keys: keys}
}

// NoKeys returns the empty contract.
func NoKeys() KeySet { return KeySet{} }

// InheritsAll reports whether the contract is the wildcard.
func (s KeySet) InheritsAll() bool { return s.inheritAll }

// Has reports whether key is in the contract. The wildcard has every key.
func (s KeySet) Has(key string) bool {
	if s.inheritAll {
		return true
	}
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of explicit keys; 0 for the wildcard.
func (s KeySet) Len() int { return len(s.keys) }

// Names returns the explicit key names sorted; nil for the wildcard.
func (s KeySet) Names() []string {
	if s.inheritAll || len(s.keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.keys))
	for k := range s.keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Description returns the description bound to key, or "".
func (s KeySet) Description(key string) string { return s.keys[key] }

// Filter returns the subset of p covered by the contract. The wildcard
// passes p through unchanged.
func (s KeySet) Filter(p Payload) Payload {
	if s.inheritAll {
		return p
	}
	out := make(Payload, len(s.keys))
	for k := range s.keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Missing returns the contract keys absent from p, sorted; nil for the
// wildcard.
func (s KeySet) Missing(p Payload) []string {
	if s.inheritAll {
		return nil
	}
	var missing []string
	for k := range s.keys {
		if _, ok := p[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
