package archetype

// IDSource yields every archetype id referenced by a matchup table, in
// first-appearance order.
type IDSource interface {
	ArchetypeIDs() []int
}

// Universe is the resolved set of archetypes referenced by a matchup table.
type Universe struct {
	IDs        map[int]bool
	Archetypes []Archetype
}

// Resolve builds the archetype universe. Ids that are neither in the catalog
// nor a valid "Other" bucket are dropped silently.
func Resolve(src IDSource, catalog *Catalog) Universe {
	u := Universe{IDs: make(map[int]bool)}
	if src == nil {
		return u
	}

	for _, id := range src.ArchetypeIDs() {
		if u.IDs[id] {
			continue
		}
		a, ok := catalog.Resolve(id)
		if !ok {
			continue
		}
		u.IDs[id] = true
		u.Archetypes = append(u.Archetypes, a)
	}

	return u
}

// Get returns the resolved archetype with id.
func (u Universe) Get(id int) (Archetype, bool) {
	if !u.IDs[id] {
		return Archetype{}, false
	}
	for _, a := range u.Archetypes {
		if a.ID == id {
			return a, true
		}
	}
	return Archetype{}, false
}

// Contains reports whether id resolved.
func (u Universe) Contains(id int) bool {
	return u.IDs[id]
}
