package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/viper"
)

// fuzzyMinRunes is the shortest normalized city name that tolerates a
// one-edit typo.
const fuzzyMinRunes = 6

// AliasConfig maps a canonical name to the other spellings and scripts it is
// known by. Metros map a metro name to its member cities.
type AliasConfig struct {
	Cities  map[string][]string `mapstructure:"cities"`
	Metros  map[string][]string `mapstructure:"metros"`
	Regions map[string][]string `mapstructure:"regions"`
}

func DefaultAliasConfig() AliasConfig {
	return AliasConfig{
		Cities: map[string][]string{
			"Delhi":              {"New Delhi", "दिल्ली", "नई दिल्ली", "Dilli"},
			"Mumbai":             {"Bombay", "मुंबई", "Mumbai City"},
			"Bengaluru":          {"Bangalore", "बेंगलुरु", "ಬೆಂಗಳೂರು"},
			"Kolkata":            {"Calcutta", "कोलकाता", "কলকাতা"},
			"Chennai":            {"Madras", "चेन्नई", "சென்னை"},
			"Hyderabad":          {"हैदराबाद", "హైదరాబాద్"},
			"Secunderabad":       {},
			"Gurugram":           {"Gurgaon", "गुरुग्राम"},
			"Noida":              {"नोएडा"},
			"Greater Noida":      {},
			"Ghaziabad":          {},
			"Faridabad":          {},
			"Thane":              {},
			"Navi Mumbai":        {"New Bombay"},
			"Kalyan":             {"Kalyan-Dombivli"},
			"Howrah":             {"Haora"},
			"Pune":               {"Poona", "पुणे"},
			"Pimpri-Chinchwad":   {"Pimpri Chinchwad"},
			"Kochi":              {"Cochin"},
			"Thiruvananthapuram": {"Trivandrum"},
			"Mysuru":             {"Mysore"},
			"Varanasi":           {"Benares", "Banaras"},
			"Vadodara":           {"Baroda"},
			"Prayagraj":          {"Allahabad"},
			"Puducherry":         {"Pondicherry"},
		},
		Metros: map[string][]string{
			"Delhi NCR":                  {"Delhi", "Gurugram", "Noida", "Greater Noida", "Ghaziabad", "Faridabad"},
			"Mumbai Metropolitan Region": {"Mumbai", "Thane", "Navi Mumbai", "Kalyan"},
			"Hyderabad Metropolitan":     {"Hyderabad", "Secunderabad"},
			"Kolkata Metropolitan":       {"Kolkata", "Howrah"},
			"Pune Metropolitan":          {"Pune", "Pimpri-Chinchwad"},
		},
		Regions: map[string][]string{
			"Delhi":          {"NCT of Delhi", "National Capital Territory of Delhi", "DL", "दिल्ली"},
			"Maharashtra":    {"MH", "महाराष्ट्र"},
			"Karnataka":      {"KA", "ಕರ್ನಾಟಕ"},
			"Tamil Nadu":     {"TN", "Tamilnadu", "தமிழ்நாடு"},
			"West Bengal":    {"WB", "পশ্চিমবঙ্গ"},
			"Telangana":      {"TS", "TG", "తెలంగాణ"},
			"Uttar Pradesh":  {"UP", "उत्तर प्रदेश"},
			"Haryana":        {"HR", "हरियाणा"},
			"Kerala":         {"KL", "കേരളം"},
			"Gujarat":        {"GJ", "ગુજરાત"},
			"Rajasthan":      {"RJ", "राजस्थान"},
			"Andhra Pradesh": {"AP"},
			"Puducherry":     {"PY", "Pondicherry"},
		},
	}
}

// AliasTable answers whether two free-text place names refer to the same
// city, metro area or region.
type AliasTable struct {
	cities  aliasIndex
	regions aliasIndex
	metroOf map[string]string
}

func DefaultAliasTable() *AliasTable {
	return NewAliasTable(DefaultAliasConfig())
}

func NewAliasTable(cfg AliasConfig) *AliasTable {
	t := &AliasTable{
		cities:  newAliasIndex(cfg.Cities),
		regions: newAliasIndex(cfg.Regions),
		metroOf: map[string]string{},
	}
	for _, metro := range sortedKeys(cfg.Metros) {
		for _, member := range cfg.Metros[metro] {
			city := t.cities.resolve(member)
			if city == "" {
				continue
			}
			if _, taken := t.metroOf[city]; !taken {
				t.metroOf[city] = metro
			}
		}
	}
	return t
}

// LoadAliasTable reads an alias file (yaml, json or toml) with top-level
// cities, metros and regions sections.
func LoadAliasTable(path string) (*AliasTable, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	var cfg AliasConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode alias file: %w", err)
	}
	if len(cfg.Cities) == 0 && len(cfg.Regions) == 0 {
		return nil, errors.New("alias file defines no cities or regions")
	}
	return NewAliasTable(cfg), nil
}

func (t *AliasTable) SameCity(a, b string) bool {
	ca, cb := t.cities.resolve(a), t.cities.resolve(b)
	return ca != "" && ca == cb
}

// SameCityInRegion is SameCity plus one-edit typo tolerance, which only
// applies when both places are in the same region. Distinct towns often
// differ by a single letter (Kalyan and Kalyani) but rarely share a state.
func (t *AliasTable) SameCityInRegion(a, aRegion, b, bRegion string) bool {
	if t.SameCity(a, b) {
		return true
	}
	return t.SameRegion(aRegion, bRegion) && t.cities.closeTo(a, b)
}

func (t *AliasTable) SameMetro(a, b string) bool {
	ma, ok := t.metroOf[t.cities.resolve(a)]
	if !ok {
		return false
	}
	mb, ok := t.metroOf[t.cities.resolve(b)]
	return ok && ma == mb
}

func (t *AliasTable) SameRegion(a, b string) bool {
	ra, rb := t.regions.resolve(a), t.regions.resolve(b)
	return ra != "" && ra == rb
}

// CityVariants returns every known spelling of the city, starting with the
// name as given. Unknown cities yield just the trimmed name.
func (t *AliasTable) CityVariants(name string) []string {
	return t.cities.variantsOf(name)
}

func (t *AliasTable) RegionVariants(name string) []string {
	return t.regions.variantsOf(name)
}

type aliasIndex struct {
	canonical map[string]string
	variants  map[string][]string
	keys      []string
}

func newAliasIndex(groups map[string][]string) aliasIndex {
	ix := aliasIndex{
		canonical: map[string]string{},
		variants:  map[string][]string{},
	}
	for _, name := range sortedKeys(groups) {
		canon := normalizePlace(name)
		if canon == "" {
			continue
		}
		for _, alias := range append([]string{name}, groups[name]...) {
			key := normalizePlace(alias)
			if key == "" {
				continue
			}
			if _, taken := ix.canonical[key]; taken {
				continue
			}
			ix.canonical[key] = canon
			ix.variants[canon] = append(ix.variants[canon], strings.TrimSpace(alias))
		}
	}
	for key := range ix.canonical {
		ix.keys = append(ix.keys, key)
	}
	sort.Strings(ix.keys)
	return ix
}

// resolve maps a name to its canonical key. Names outside the table resolve to
// their own normalized form so plain textual equality still matches.
func (ix aliasIndex) resolve(name string) string {
	key := normalizePlace(name)
	if canon, ok := ix.canonical[key]; ok {
		return canon
	}
	return key
}

// closeTo reports whether a and b are one edit apart, either directly or
// through a known spelling. Names shorter than fuzzyMinRunes never qualify.
func (ix aliasIndex) closeTo(a, b string) bool {
	ka, kb := normalizePlace(a), normalizePlace(b)
	if !fuzzyEligible(ka) || !fuzzyEligible(kb) {
		return false
	}
	if levenshtein.ComputeDistance(ka, kb) <= 1 {
		return true
	}
	ca, cb := ix.nearest(ka), ix.nearest(kb)
	return ca != "" && ca == cb
}

// nearest returns the canonical key of the first known spelling within one
// edit of key, or "" when none is.
func (ix aliasIndex) nearest(key string) string {
	if canon, ok := ix.canonical[key]; ok {
		return canon
	}
	for _, known := range ix.keys {
		if fuzzyEligible(known) && levenshtein.ComputeDistance(key, known) <= 1 {
			return ix.canonical[known]
		}
	}
	return ""
}

func fuzzyEligible(key string) bool {
	return utf8.RuneCountInString(key) >= fuzzyMinRunes
}

func (ix aliasIndex) variantsOf(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	out := []string{trimmed}
	seen := map[string]bool{normalizePlace(trimmed): true}
	for _, v := range ix.variants[ix.resolve(trimmed)] {
		key := normalizePlace(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func normalizePlace(s string) string {
	s = strings.NewReplacer(".", " ", ",", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
