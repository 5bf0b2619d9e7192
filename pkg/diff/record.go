// Package diff implements the model-comparison engine: generic record
// accumulators, the diff tree they populate, per-kind diff drivers and
// the cartoon elision planner.
//
// The engine has a two-phase lifecycle. During accumulation the drivers
// insert one fact per (element, model) observation; once every model
// has been processed the tree is finalized and handed read-only to the
// presentation layers. Comparisons are only meaningful after
// finalization, since an attribute can only be judged same/different
// once all models have been observed.
package diff

import (
	"sort"
	"strings"
)

// keySep joins the parts of a compound fact key. Unit separator keeps
// joined keys collision-free for any printable id.
const keySep = "\x1f"

// Attrs carries the per-model attribute payload of one insertion.
// Values are compared with ==; use strings and bools.
type Attrs map[string]any

// Entry accumulates the model set and attribute payloads for a single
// fact key.
type Entry struct {
	key    []string
	models map[int]bool
	attrs  map[int]Attrs
}

// Key returns the parts of the fact key: a single element id for node
// facts, the related-id tuple for arrows.
func (e *Entry) Key() []string { return e.key }

// Models returns the sorted indices of the models that reported this fact.
func (e *Entry) Models() []int {
	out := make([]int, 0, len(e.models))
	for m := range e.models {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Compare collapses this entry's recorded values for one attribute.
func (e *Entry) Compare(attr string) Comparison {
	return compareAttr([]*Entry{e}, attr)
}

// Record is the generic accumulator mapping fact keys to the set of
// models that reported them, with optional per-insertion attributes.
// Inserting the same key from different models unions their indices
// into one entry; identity never splits.
type Record struct {
	entries map[string]*Entry
}

// NewRecord returns an empty accumulator.
func NewRecord() *Record {
	return &Record{entries: map[string]*Entry{}}
}

// Add records that the given model reported the fact identified by key.
// Repeated insertion of the same (key, model) is idempotent; attrs from
// the latest insertion win for that model.
func (r *Record) Add(model int, attrs Attrs, key ...string) {
	joined := strings.Join(key, keySep)
	e, ok := r.entries[joined]
	if !ok {
		e = &Entry{
			key:    append([]string(nil), key...),
			models: map[int]bool{},
			attrs:  map[int]Attrs{},
		}
		r.entries[joined] = e
	}
	e.models[model] = true
	if attrs != nil {
		merged, ok := e.attrs[model]
		if !ok {
			merged = Attrs{}
			e.attrs[model] = merged
		}
		for k, v := range attrs {
			merged[k] = v
		}
	}
}

// Len returns the number of distinct fact keys.
func (r *Record) Len() int { return len(r.entries) }

// Entries returns every entry sorted by key, for deterministic traversal.
func (r *Record) Entries() []*Entry {
	joined := make([]string, 0, len(r.entries))
	for k := range r.entries {
		joined = append(joined, k)
	}
	sort.Strings(joined)

	out := make([]*Entry, len(joined))
	for i, k := range joined {
		out[i] = r.entries[k]
	}
	return out
}

// Entry returns the entry for a fact key, or nil.
func (r *Record) Entry(key ...string) *Entry {
	return r.entries[strings.Join(key, keySep)]
}

// AllModels returns the sorted union of model indices over every key.
func (r *Record) AllModels() []int {
	seen := map[int]bool{}
	for _, e := range r.entries {
		for m := range e.models {
			seen[m] = true
		}
	}
	out := make([]int, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// FindModels returns the sorted model indices whose recorded value for
// attr equals value.
func (r *Record) FindModels(attr string, value any) []int {
	seen := map[int]bool{}
	for _, e := range r.entries {
		for m, attrs := range e.attrs {
			if v, ok := attrs[attr]; ok && v == value {
				seen[m] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Ints(out)
	return out
}

// Compare collapses every recorded value for attr across all keys and
// models. A model that reported the fact without the attribute counts
// as a difference: omission is not equivalence to any explicit value.
func (r *Record) Compare(attr string) Comparison {
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return compareAttr(entries, attr)
}

func compareAttr(entries []*Entry, attr string) Comparison {
	var (
		value   any
		found   bool
		mixed   bool
		omitted bool
	)
	for _, e := range entries {
		for m := range e.models {
			v, ok := e.attrs[m][attr]
			if !ok {
				omitted = true
				continue
			}
			if !found {
				value, found = v, true
			} else if v != value {
				mixed = true
			}
		}
	}

	switch {
	case !found:
		return Comparison{}
	case mixed || omitted:
		return Comparison{kind: comparisonDifferent}
	default:
		return Comparison{kind: comparisonSame, value: value}
	}
}

// comparisonKind tags the three comparison outcomes.
type comparisonKind int

const (
	comparisonAbsent comparisonKind = iota
	comparisonSame
	comparisonDifferent
)

// Comparison is the tagged outcome of collapsing an attribute: Absent
// (no model recorded it), Same (one distinct value), or Different. A
// dedicated type rather than a sentinel string, so real attribute text
// can never collide with the "different" marker.
type Comparison struct {
	kind  comparisonKind
	value any
}

// Same constructs a single-value outcome. Exposed for tests and for
// render layers that synthesize comparisons.
func Same(value any) Comparison { return Comparison{kind: comparisonSame, value: value} }

// Different constructs the values-disagree outcome.
func Different() Comparison { return Comparison{kind: comparisonDifferent} }

// IsAbsent reports that no model recorded the attribute.
func (c Comparison) IsAbsent() bool { return c.kind == comparisonAbsent }

// IsDifferent reports that models recorded disagreeing values.
func (c Comparison) IsDifferent() bool { return c.kind == comparisonDifferent }

// IsSame reports that every model recorded the same value.
func (c Comparison) IsSame() bool { return c.kind == comparisonSame }

// StringOr returns the single value as a string; fallback when Absent,
// and fallback also when Different (callers render Different through
// style, not text).
func (c Comparison) StringOr(fallback string) string {
	if c.kind != comparisonSame {
		return fallback
	}
	if s, ok := c.value.(string); ok {
		return s
	}
	return fallback
}

// BoolValue reports whether the outcome is Same(true).
func (c Comparison) BoolValue() bool {
	if c.kind != comparisonSame {
		return false
	}
	b, ok := c.value.(bool)
	return ok && b
}

// Value returns the single value and whether the outcome is Same.
func (c Comparison) Value() (any, bool) {
	return c.value, c.kind == comparisonSame
}
