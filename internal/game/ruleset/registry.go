package ruleset

import "fmt"

// Registry provides lookup of archetype stat tables and attack variants.
// Lookups never fail: unknown archetype keys resolve to the built-in default
// table, and every registry carries the built-in normal attack.
type Registry struct {
	archetypes map[string]*Archetype
	variants   map[string]*AttackVariant
	fallback   *Archetype
}

// NewRegistry returns a registry holding only the built-in default archetype
// and normal attack.
//
// Postcondition: Returns a non-nil *Registry; Archetype of any key resolves.
func NewRegistry() *Registry {
	r := &Registry{
		archetypes: make(map[string]*Archetype),
		variants:   make(map[string]*AttackVariant),
		fallback:   DefaultArchetype(),
	}
	r.variants["normal"] = builtinNormal()
	return r
}

// RegisterArchetype adds a stat table to the registry.
//
// Precondition: a must be non-nil with a non-empty ID.
// Postcondition: a is retrievable via Archetype using a.ID; if called
// multiple times with the same ID, the last call wins.
func (r *Registry) RegisterArchetype(a *Archetype) {
	if a == nil {
		panic("Registry.RegisterArchetype: precondition violated: archetype must be non-nil")
	}
	if a.ID == "" {
		panic("Registry.RegisterArchetype: precondition violated: archetype ID must be non-empty")
	}
	r.archetypes[a.ID] = a
}

// RegisterVariant adds an attack variant to the registry.
//
// Precondition: v must be non-nil with a non-empty ID.
// Postcondition: v is retrievable via Variant using v.ID; if called multiple
// times with the same ID, the last call wins.
func (r *Registry) RegisterVariant(v *AttackVariant) {
	if v == nil {
		panic("Registry.RegisterVariant: precondition violated: variant must be non-nil")
	}
	if v.ID == "" {
		panic("Registry.RegisterVariant: precondition violated: variant ID must be non-empty")
	}
	r.variants[v.ID] = v
}

// Archetype returns the stat table for the given key.
//
// Precondition: key may be any string.
// Postcondition: Never returns nil; unknown keys resolve to the default
// table.
func (r *Registry) Archetype(key string) *Archetype {
	if a, ok := r.archetypes[key]; ok {
		return a
	}
	return r.fallback
}

// Known reports whether key names a registered archetype.
func (r *Registry) Known(key string) bool {
	_, ok := r.archetypes[key]
	return ok
}

// Variant returns the attack variant for the given ID, if registered.
//
// Postcondition: Returns the variant and true, or nil and false.
func (r *Registry) Variant(id string) (*AttackVariant, bool) {
	v, ok := r.variants[id]
	return v, ok
}

// Repertoire resolves the archetype's unlocked attack list to variants.
// Unresolvable IDs are skipped; an empty resolution falls back to the
// built-in normal attack so a guard can always swing.
//
// Precondition: a must not be nil.
// Postcondition: Returns a non-empty slice.
func (r *Registry) Repertoire(a *Archetype) []*AttackVariant {
	if a == nil {
		panic("Registry.Repertoire: precondition violated: archetype must be non-nil")
	}
	out := make([]*AttackVariant, 0, len(a.Attacks))
	for _, id := range a.Attacks {
		if v, ok := r.variants[id]; ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, r.variants["normal"])
	}
	return out
}

// ArchetypeIDs returns the registered archetype keys, fallback excluded.
func (r *Registry) ArchetypeIDs() []string {
	ids := make([]string, 0, len(r.archetypes))
	for id := range r.archetypes {
		ids = append(ids, id)
	}
	return ids
}

// VariantIDs returns the registered attack variant IDs.
func (r *Registry) VariantIDs() []string {
	ids := make([]string, 0, len(r.variants))
	for id := range r.variants {
		ids = append(ids, id)
	}
	return ids
}

// BuildRegistry assembles a registry from loaded tables and cross-checks
// that every repertoire entry resolves.
//
// Postcondition: Returns a registry resolving every archetype's attack list,
// or an error naming the first dangling reference.
func BuildRegistry(archetypes []*Archetype, variants []*AttackVariant) (*Registry, error) {
	r := NewRegistry()
	for _, v := range variants {
		r.RegisterVariant(v)
	}
	for _, a := range archetypes {
		r.RegisterArchetype(a)
	}
	for _, a := range archetypes {
		for _, id := range a.Attacks {
			if _, ok := r.variants[id]; !ok {
				return nil, fmt.Errorf("archetype %q references unknown attack %q", a.ID, id)
			}
		}
	}
	return r, nil
}
