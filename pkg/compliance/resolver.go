package compliance

import (
	"fmt"
	"strings"
)

// Resolver normalizes compliance labels and reconciles them with industry
// mandates. The zero value is not usable; build one with NewResolver.
type Resolver struct {
	// tagged holds, per framework id, the tags used by this resolver. It starts
	// from the vocabulary and is adjusted by options.
	tagged map[ID][]Tag
	exempt map[Industry]struct{}
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRegionalFrameworks replaces the set of frameworks carrying the
// regional-privacy tag. Ids outside the vocabulary are ignored.
func WithRegionalFrameworks(ids ...ID) Option {
	return func(r *Resolver) {
		for id, tags := range r.tagged {
			r.tagged[id] = withoutTag(tags, TagRegionalPrivacy)
		}
		for _, id := range ids {
			if tags, ok := r.tagged[id]; ok && !hasTag(tags, TagRegionalPrivacy) {
				r.tagged[id] = append(tags, TagRegionalPrivacy)
			}
		}
	}
}

// WithExemptIndustries replaces the industries that keep regional-privacy
// frameworks.
func WithExemptIndustries(industries ...Industry) Option {
	return func(r *Resolver) {
		r.exempt = make(map[Industry]struct{}, len(industries))
		for _, ind := range industries {
			if ind = ParseIndustry(string(ind)); ind != "" {
				r.exempt[ind] = struct{}{}
			}
		}
	}
}

// NewResolver returns a resolver using the built-in vocabulary. Without
// options only GDPR is regional and travel, financial and healthcare are
// exempt.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{tagged: make(map[ID][]Tag, len(frameworks))}
	for _, f := range frameworks {
		r.tagged[f.ID] = append([]Tag(nil), f.Tags...)
	}
	WithExemptIndustries(DefaultRegionalExemptIndustries...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Default returns the shared resolver with the built-in policy.
func Default() *Resolver { return defaultResolver }

// Normalize maps labels to canonical identifiers and removes duplicates.
// Unrecognized labels pass through in folded form. Blank labels are dropped.
func (r *Resolver) Normalize(labels []string) Set {
	out := make(Set, len(labels))
	for _, label := range labels {
		id, _ := Canonicalize(label)
		out.Add(id)
	}
	return out
}

// MandatoryFor returns the frameworks an industry requires. Unknown and blank
// industries require nothing.
func (r *Resolver) MandatoryFor(industry string) Set {
	return NewSet(mandates[ParseIndustry(industry)]...)
}

// Resolve returns the canonical compliance set for a recommendation in the
// context of an industry: the normalized labels plus the industry mandates,
// minus regional-privacy frameworks when the industry is not exempt.
func (r *Resolver) Resolve(recommended []string, industry string) Set {
	return r.Explain(recommended, industry).Set()
}

// Resolution breaks a Resolve call into its parts.
type Resolution struct {
	Industry Industry `json:"industry"`
	IDs      []ID     `json:"compliance"`
	// Mandated lists industry mandates that were not among the normalized
	// labels.
	Mandated   []ID `json:"mandated,omitempty"`
	Suppressed []ID `json:"suppressed,omitempty"`
	// Passthrough lists normalized ids outside the vocabulary.
	Passthrough []ID `json:"passthrough,omitempty"`
}

// Set returns the resolved ids as a set.
func (res Resolution) Set() Set { return NewSet(res.IDs...) }

// Explain performs Resolve and reports what each step contributed.
func (r *Resolver) Explain(recommended []string, industry string) Resolution {
	ind := ParseIndustry(industry)
	normalized := r.Normalize(recommended)
	mandatory := r.MandatoryFor(string(ind))

	res := Resolution{Industry: ind}
	for _, id := range mandatory.Sorted() {
		if !normalized.Has(id) {
			res.Mandated = append(res.Mandated, id)
		}
	}

	merged := normalized.Union(mandatory)
	keepRegional := r.Exempt(ind)
	for _, id := range merged.Sorted() {
		if !keepRegional && r.HasTag(id, TagRegionalPrivacy) {
			res.Suppressed = append(res.Suppressed, id)
			continue
		}
		if !IsCanonical(id) {
			res.Passthrough = append(res.Passthrough, id)
		}
		res.IDs = append(res.IDs, id)
	}
	if res.IDs == nil {
		res.IDs = []ID{}
	}
	return res
}

// Exempt reports whether industry keeps regional-privacy frameworks.
func (r *Resolver) Exempt(industry Industry) bool {
	_, ok := r.exempt[industry]
	return ok
}

// HasTag reports whether id carries tag under this resolver's policy.
func (r *Resolver) HasTag(id ID, tag Tag) bool {
	return hasTag(r.tagged[id], tag)
}

// Frameworks returns the vocabulary with this resolver's tags applied.
func (r *Resolver) Frameworks() []Framework {
	out := Frameworks()
	for i := range out {
		out[i].Tags = append([]Tag(nil), r.tagged[out[i].ID]...)
	}
	return out
}

// CheckPolicy reports a regional-privacy configuration that would drop an
// industry mandate: every industry that mandates a regional framework must be
// exempt.
func CheckPolicy(regional []ID, exempt []Industry) error {
	tagged := make(map[ID]struct{}, len(regional))
	for _, id := range regional {
		if !IsCanonical(id) {
			return fmt.Errorf("unknown regional framework %q", id)
		}
		tagged[id] = struct{}{}
	}
	exemptSet := make(map[Industry]struct{}, len(exempt))
	for _, ind := range exempt {
		ind = ParseIndustry(string(ind))
		if ind == "" {
			return fmt.Errorf("blank exempt industry")
		}
		exemptSet[ind] = struct{}{}
	}

	var conflicts []string
	for _, ind := range industries {
		if _, ok := exemptSet[ind.Code]; ok {
			continue
		}
		for _, id := range ind.Mandatory {
			if _, ok := tagged[id]; ok {
				conflicts = append(conflicts, fmt.Sprintf("%s mandates %s", ind.Code, id))
			}
		}
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("regional frameworks would be suppressed for mandating industries: %s",
			strings.Join(conflicts, "; "))
	}
	return nil
}

// Normalize uses the default resolver.
func Normalize(labels []string) Set { return defaultResolver.Normalize(labels) }

// MandatoryFor uses the default resolver.
func MandatoryFor(industry string) Set { return defaultResolver.MandatoryFor(industry) }

// Resolve uses the default resolver.
func Resolve(recommended []string, industry string) Set {
	return defaultResolver.Resolve(recommended, industry)
}

func hasTag(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func withoutTag(tags []Tag, tag Tag) []Tag {
	out := tags[:0:0]
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
