// Package metrics memoizes text measurements for one text style.
//
// A Cache sits between the fitting engine and a Measurer. It keeps three
// tables:
//
//   - basic: rune -> width, unbounded, lives as long as the style context;
//   - advanced: text -> Size, bounded by the cache limit;
//   - correction: (rune, n) -> per-occurrence width correction, bounded the same way.
//
// Bounded tables evict in insertion order: once the key list grows past the
// limit the oldest key leaves both the list and the map.
package metrics

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxCacheLimit bounds the advanced and correction tables when the
// caller does not pick a limit.
const DefaultMaxCacheLimit = 500

// Size is a measured text footprint in px.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer is the raw measurement primitive of a rendering backend.
type Measurer interface {
	MeasureText(text string) Size
}

// Stats reports cache activity.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// Cache memoizes measurements of one style. Not safe for concurrent use.
type Cache struct {
	measurer   Measurer
	basic      map[rune]float64
	advanced   *boundedMap[string, Size]
	correction *boundedMap[string, float64]
	hits       uint64
	misses     uint64
}

// NewCache returns a cache in front of m. A non-positive limit selects
// DefaultMaxCacheLimit.
func NewCache(m Measurer, limit int) *Cache {
	if limit <= 0 {
		limit = DefaultMaxCacheLimit
	}
	return &Cache{
		measurer:   m,
		basic:      make(map[rune]float64),
		advanced:   newBoundedMap[string, Size](limit),
		correction: newBoundedMap[string, float64](limit),
	}
}

// Limit returns the bound of the advanced table.
func (c *Cache) Limit() int { return c.advanced.limit }

// Len returns the number of entries in the advanced table.
func (c *Cache) Len() int { return len(c.advanced.entries) }

// Keys returns the advanced table keys, oldest first.
func (c *Cache) Keys() []string {
	return append([]string(nil), c.advanced.order...)
}

// Stats returns hit/miss/eviction counters of the advanced and correction tables.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.advanced.evictions + c.correction.evictions,
	}
}

// Measure returns the size of text, calling the measurer only on a miss.
func (c *Cache) Measure(text string) Size {
	if s, ok := c.advanced.get(text); ok {
		c.hits++
		return s
	}
	c.misses++
	s := c.measurer.MeasureText(text)
	c.advanced.put(text, s)
	return s
}

// CharWidth returns the width of a single rune from the unbounded basic table.
func (c *Cache) CharWidth(r rune) float64 {
	if w, ok := c.basic[r]; ok {
		return w
	}
	w := c.measurer.MeasureText(string(r)).Width
	c.basic[r] = w
	return w
}

// Correction returns the per-occurrence width correction of r inside a run
// of n characters: (width(r×n) − n×width(r)) / (n+1).
//
// Summing individually measured glyphs drifts from the width of the
// concatenated string (kerning, sub-pixel rounding); adding the correction
// to each glyph width brings the sum back in line.
func (c *Cache) Correction(r rune, n int) float64 {
	if n <= 1 {
		return 0
	}
	key := string(r) + "\x00" + strconv.Itoa(n)
	if v, ok := c.correction.get(key); ok {
		c.hits++
		return v
	}
	c.misses++
	ch := string(r)
	single := c.Measure(ch).Width
	repeated := c.Measure(strings.Repeat(ch, n)).Width
	v := (repeated - float64(n)*single) / float64(n+1)
	c.correction.put(key, v)
	return v
}

// Detailed measures text letter by letter. Each letter width carries the
// repetition correction for the text length; the total width is their sum
// and the height is that of the tallest letter.
func (c *Cache) Detailed(text string) (Size, []float64) {
	n := utf8.RuneCountInString(text)
	widths := make([]float64, 0, n)
	var total Size
	for _, r := range text {
		s := c.Measure(string(r))
		w := s.Width + c.Correction(r, n)
		widths = append(widths, w)
		total.Width += w
		if s.Height > total.Height {
			total.Height = s.Height
		}
	}
	return total, widths
}

// boundedMap is a map with an insertion-ordered key list. put evicts from the
// front of the list until len(order) <= limit; entries and order always hold
// the same key set.
type boundedMap[K comparable, V any] struct {
	limit     int
	entries   map[K]V
	order     []K
	evictions uint64
}

func newBoundedMap[K comparable, V any](limit int) *boundedMap[K, V] {
	return &boundedMap[K, V]{
		limit:   limit,
		entries: make(map[K]V),
	}
}

func (b *boundedMap[K, V]) get(k K) (V, bool) {
	v, ok := b.entries[k]
	return v, ok
}

func (b *boundedMap[K, V]) put(k K, v V) {
	if _, ok := b.entries[k]; ok {
		b.entries[k] = v
		return
	}
	b.entries[k] = v
	b.order = append(b.order, k)
	for len(b.order) > b.limit {
		oldest := b.order[0]
		var zero K
		b.order[0] = zero
		b.order = b.order[1:]
		delete(b.entries, oldest)
		b.evictions++
	}
}
