// Package archetype resolves the archetypes referenced by matchup statistics
// into display-ready records.
package archetype

import (
	"encoding/json"
	"fmt"
)

// Kind distinguishes catalog archetypes from synthesized "Other" buckets.
type Kind int

const (
	// KindKnown is an archetype backed by a catalog record.
	KindKnown Kind = iota
	// KindOther is a per-class "Other <Class>" bucket with no catalog record.
	KindOther
)

// Archetype is a named, class-scoped deck category. Immutable once resolved.
type Archetype struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	PlayerClass CardClass `json:"player_class"`
	URL         string    `json:"url"`
	Kind        Kind      `json:"-"`
}

// IsOther reports whether the archetype is a synthesized "Other" bucket.
func (a Archetype) IsOther() bool {
	return a.Kind == KindOther
}

// Record is a catalog entry as served by the archetypes endpoint.
type Record struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	PlayerClassName string `json:"player_class_name"`
	URL             string `json:"url"`
}

// OtherClass decodes the wire encoding of an "Other" bucket id (id = -classId).
// It returns false when id is not negative or the class is unknown.
func OtherClass(id int) (CardClass, bool) {
	if id >= 0 {
		return CardClassInvalid, false
	}
	class := CardClass(-id)
	return class, class.Known()
}

// IsOtherID reports whether id uses the negative "Other" bucket encoding.
func IsOtherID(id int) bool {
	return id < 0
}

// OtherID returns the wire id of the "Other" bucket for class.
func OtherID(class CardClass) int {
	return -int(class)
}

// NewOther synthesizes the "Other <Class>" archetype for class.
func NewOther(class CardClass) Archetype {
	return Archetype{
		ID:          OtherID(class),
		Name:        "Other " + class.DisplayName(),
		PlayerClass: class,
		URL:         "/archetypes/",
		Kind:        KindOther,
	}
}

// Catalog holds the known archetype records keyed by id.
type Catalog struct {
	byID map[int]Archetype
}

// NewCatalog builds a catalog from records. Later duplicates win.
func NewCatalog(records []Record) *Catalog {
	c := &Catalog{byID: make(map[int]Archetype, len(records))}
	for _, r := range records {
		class, err := ParseCardClass(r.PlayerClassName)
		if err != nil {
			class = CardClassInvalid
		}
		kind := KindKnown
		if IsOtherID(r.ID) {
			kind = KindOther
		}
		c.byID[r.ID] = Archetype{
			ID:          r.ID,
			Name:        r.Name,
			PlayerClass: class,
			URL:         r.URL,
			Kind:        kind,
		}
	}
	return c
}

// DecodeCatalog parses the archetypes endpoint payload.
func DecodeCatalog(data []byte) (*Catalog, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode archetype catalog: %w", err)
	}
	return NewCatalog(records), nil
}

// Lookup returns the catalog record for id.
func (c *Catalog) Lookup(id int) (Archetype, bool) {
	if c == nil {
		return Archetype{}, false
	}
	a, ok := c.byID[id]
	return a, ok
}

// Resolve looks id up in the catalog and falls back to synthesizing an
// "Other" bucket for negative ids of a known class.
func (c *Catalog) Resolve(id int) (Archetype, bool) {
	if a, ok := c.Lookup(id); ok {
		return a, true
	}
	if class, ok := OtherClass(id); ok {
		return NewOther(class), true
	}
	return Archetype{}, false
}

// Len returns the number of catalog records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byID)
}
