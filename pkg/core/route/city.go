package route

import (
	"cmp"
	"strconv"
	"strings"
)

// City is a named location. Identity and equality are by ID only; two City
// values with the same ID refer to the same city even if the names differ.
//
// The zero value (ID 0) never comes out of a [Registry] and marks an unset city.
type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// IsZero reports whether c is the unset city.
func (c City) IsZero() bool { return c.ID == 0 }

// Equal reports whether c and other have the same identity.
func (c City) Equal(other City) bool { return c.ID == other.ID }

// String returns the city name, or "#<id>" for unnamed cities.
func (c City) String() string {
	if c.Name != "" {
		return c.Name
	}
	return "#" + strconv.Itoa(c.ID)
}

// CompareCities orders cities by ascending ID. It is the tie-break order used
// throughout the optimizer.
func CompareCities(a, b City) int { return cmp.Compare(a.ID, b.ID) }

// Registry assigns stable ids to city names for one loading session.
//
// Ids start at 1 and increase by one for every new distinct name. Names are
// compared after trimming surrounding whitespace, so " Paris" and "Paris"
// resolve to the same city.
type Registry struct {
	byName map[string]City
	byID   map[int]City
	next   int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]City),
		byID:   make(map[int]City),
		next:   1,
	}
}

// CreateOrGet returns the city registered under name, registering it first if
// this is the first time the name is seen.
func (r *Registry) CreateOrGet(name string) City {
	name = strings.TrimSpace(name)
	if c, ok := r.byName[name]; ok {
		return c
	}
	c := City{ID: r.next, Name: name}
	r.next++
	r.byName[name] = c
	r.byID[c.ID] = c
	return c
}

// Lookup returns the city registered under name without registering it.
func (r *Registry) Lookup(name string) (City, bool) {
	c, ok := r.byName[strings.TrimSpace(name)]
	return c, ok
}

// ByID returns the city with the given id.
func (r *Registry) ByID(id int) (City, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of registered cities.
func (r *Registry) Len() int { return len(r.byName) }
