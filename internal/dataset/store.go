package dataset

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Months is the canonical month label order.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Kind classifies a domain by the shape of its data.
type Kind string

const (
	KindTrend     Kind = "trend"
	KindBreakdown Kind = "breakdown"
	KindRegions   Kind = "regions"
)

// Meta describes a domain for presentation.
type Meta struct {
	Domain string
	Kind   Kind
	Title  string
	Axis   string
}

// RegionValue is one vendor count for a region.
type RegionValue struct {
	Region string  `json:"region"`
	Source Source  `json:"source"`
	Value  float64 `json:"value"`
}

type period struct {
	labels []string
	values map[Source][]Value
}

type trend struct {
	meta  Meta
	yoy   *period
	mom   map[string]period
	years []string
}

type breakdown struct {
	meta     Meta
	variants []string
	byName   map[string]period
}

type regionSet struct {
	meta   Meta
	counts map[Source]map[string]float64
}

// Store is the immutable metric tree. All reads are safe for concurrent use.
type Store struct {
	name       string
	checksum   string
	trends     map[string]*trend
	breakdowns map[string]*breakdown
	regions    map[string]*regionSet
}

// New validates doc and builds a Store. Sequences shorter than their labels
// are padded with missing cells; longer ones are rejected.
func New(doc Document) (*Store, error) {
	v := &validator{}
	s := &Store{
		name:       strings.TrimSpace(doc.Name),
		trends:     make(map[string]*trend, len(doc.Trends)),
		breakdowns: make(map[string]*breakdown, len(doc.Breakdowns)),
		regions:    make(map[string]*regionSet, len(doc.Regions)),
	}
	if s.name == "" {
		s.name = "default"
	}
	seen := map[string]string{}
	claim := func(domain, section string) bool {
		if domain == "" {
			v.add(section, "domain name required")
			return false
		}
		if prev, ok := seen[domain]; ok {
			v.add(section+"."+domain, "domain already defined under "+prev)
			return false
		}
		seen[domain] = section
		return true
	}

	for _, domain := range sortedKeys(doc.Trends) {
		td := doc.Trends[domain]
		path := "trends." + domain
		if !claim(domain, "trends") {
			continue
		}
		t := &trend{meta: Meta{Domain: domain, Kind: KindTrend, Title: td.Title, Axis: td.Axis}}
		if td.YoY == nil && len(td.MoM) == 0 {
			v.add(path, "no yoy or mom data")
		}
		if td.YoY != nil {
			p := v.period(path+".yoy", td.YoY.Labels, td.YoY.Sources)
			v.yearLabels(path+".yoy", p.labels)
			t.yoy = &p
		}
		if len(td.MoM) > 0 {
			t.mom = make(map[string]period, len(td.MoM))
			for year, pd := range td.MoM {
				ypath := path + ".mom." + year
				if !isYear(year) {
					v.add(ypath, "year key must be four digits")
					continue
				}
				p := v.period(ypath, pd.Labels, pd.Sources)
				v.monthLabels(ypath, p.labels)
				t.mom[year] = p
				t.years = append(t.years, year)
			}
			sort.Strings(t.years)
		}
		s.trends[domain] = t
	}

	for _, domain := range sortedKeys(doc.Breakdowns) {
		bd := doc.Breakdowns[domain]
		path := "breakdowns." + domain
		if !claim(domain, "breakdowns") {
			continue
		}
		b := &breakdown{
			meta:   Meta{Domain: domain, Kind: KindBreakdown, Title: bd.Title, Axis: bd.Axis},
			byName: make(map[string]period, len(bd.Variants)),
		}
		if len(bd.Variants) == 0 {
			v.add(path, "at least one variant required")
		}
		for i, vd := range bd.Variants {
			name := strings.TrimSpace(vd.Name)
			vpath := fmt.Sprintf("%s.variants[%d]", path, i)
			if name == "" {
				v.add(vpath, "variant name required")
				continue
			}
			if _, dup := b.byName[name]; dup {
				v.add(vpath, "duplicate variant "+name)
				continue
			}
			b.byName[name] = v.period(vpath, vd.Labels, vd.Sources)
			b.variants = append(b.variants, name)
		}
		s.breakdowns[domain] = b
	}

	for _, domain := range sortedKeys(doc.Regions) {
		rd := doc.Regions[domain]
		path := "regions." + domain
		if !claim(domain, "regions") {
			continue
		}
		r := &regionSet{
			meta:   Meta{Domain: domain, Kind: KindRegions, Title: rd.Title},
			counts: make(map[Source]map[string]float64, len(rd.Sources)),
		}
		for src, counts := range rd.Sources {
			if !src.Valid() {
				v.add(path+"."+string(src), "unknown source")
				continue
			}
			cp := make(map[string]float64, len(counts))
			for code, n := range counts {
				if n < 0 {
					v.add(path+"."+string(src)+"."+code, "negative count")
					continue
				}
				cp[strings.ToUpper(code)] = n
			}
			r.counts[src] = cp
		}
		s.regions[domain] = r
	}

	if err := v.err(); err != nil {
		return nil, err
	}
	sum, err := checksum(doc)
	if err != nil {
		return nil, err
	}
	s.checksum = sum
	return s, nil
}

// Parse decodes a JSON document and validates it.
func Parse(raw []byte) (*Store, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("dataset: decode document: %w", err)
	}
	return New(doc)
}

// Name returns the snapshot name.
func (s *Store) Name() string { return s.name }

// Checksum returns a hex blake2b-256 fingerprint of the document.
func (s *Store) Checksum() string { return s.checksum }

// HasDomain reports whether any data is registered under domain.
func (s *Store) HasDomain(domain string) bool {
	_, ok := s.Meta(domain)
	return ok
}

// Meta returns presentation metadata for a domain.
func (s *Store) Meta(domain string) (Meta, bool) {
	if t, ok := s.trends[domain]; ok {
		return t.meta, true
	}
	if b, ok := s.breakdowns[domain]; ok {
		return b.meta, true
	}
	if r, ok := s.regions[domain]; ok {
		return r.meta, true
	}
	return Meta{}, false
}

// Domains lists every domain name in ascending order.
func (s *Store) Domains() []string {
	out := make([]string, 0, len(s.trends)+len(s.breakdowns)+len(s.regions))
	for k := range s.trends {
		out = append(out, k)
	}
	for k := range s.breakdowns {
		out = append(out, k)
	}
	for k := range s.regions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the series for a trend domain. It never fails: an unknown
// domain, mode or year yields an empty series and an absent source yields a
// series of missing cells aligned with the domain labels.
func (s *Store) Get(domain string, mode Mode, source Source, year string) Series {
	t, ok := s.trends[domain]
	if !ok {
		return Series{Labels: []string{}, Values: []Value{}}
	}
	switch mode {
	case ModeYoY:
		if t.yoy == nil {
			return Series{Labels: []string{}, Values: []Value{}}
		}
		return t.yoy.series(source)
	case ModeMoM:
		p, ok := t.mom[year]
		if !ok {
			return Series{Labels: []string{}, Values: []Value{}}
		}
		return p.series(source)
	}
	return Series{Labels: []string{}, Values: []Value{}}
}

// Modes lists the modes a trend domain supports.
func (s *Store) Modes(domain string) []Mode {
	t, ok := s.trends[domain]
	if !ok {
		return nil
	}
	var out []Mode
	if t.yoy != nil {
		out = append(out, ModeYoY)
	}
	if len(t.mom) > 0 {
		out = append(out, ModeMoM)
	}
	return out
}

// Years returns the ascending years available for a trend in the given mode.
func (s *Store) Years(domain string, mode Mode) []string {
	t, ok := s.trends[domain]
	if !ok {
		return nil
	}
	switch mode {
	case ModeMoM:
		return cloneStrings(t.years)
	case ModeYoY:
		if t.yoy != nil {
			return cloneStrings(t.yoy.labels)
		}
	}
	return nil
}

// LatestYear returns the newest month-over-month year, or "" when the domain
// has none.
func (s *Store) LatestYear(domain string) string {
	t, ok := s.trends[domain]
	if !ok || len(t.years) == 0 {
		return ""
	}
	return t.years[len(t.years)-1]
}

// Variants lists the variant names of a breakdown; the first is the default.
func (s *Store) Variants(domain string) []string {
	b, ok := s.breakdowns[domain]
	if !ok {
		return nil
	}
	return cloneStrings(b.variants)
}

// Breakdown returns one vendor's categorical series. An empty variant selects
// the default. Unknown domains or variants yield an empty series.
func (s *Store) Breakdown(domain, variant string, source Source) Series {
	b, ok := s.breakdowns[domain]
	if !ok || len(b.variants) == 0 {
		return Series{Labels: []string{}, Values: []Value{}}
	}
	if variant == "" {
		variant = b.variants[0]
	}
	p, ok := b.byName[variant]
	if !ok {
		return Series{Labels: []string{}, Values: []Value{}}
	}
	return p.series(source)
}

// Regions flattens a region domain into per-source tuples ordered by source
// display order, then region code.
func (s *Store) Regions(domain string) []RegionValue {
	r, ok := s.regions[domain]
	if !ok {
		return nil
	}
	var out []RegionValue
	for _, src := range DisplayOrder {
		counts := r.counts[src]
		for _, code := range sortedKeys(counts) {
			out = append(out, RegionValue{Region: code, Source: src, Value: counts[code]})
		}
	}
	return out
}

func (p period) series(source Source) Series {
	vals, ok := p.values[source]
	if !ok {
		return missingSeries(p.labels)
	}
	return Series{Labels: cloneStrings(p.labels), Values: cloneValues(vals)}
}

func checksum(doc Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("dataset: checksum: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
