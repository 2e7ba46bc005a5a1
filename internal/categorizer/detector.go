package categorizer

import (
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/logging"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/models"
)

type patternRef struct {
	rule    int
	exclude bool
}

// Detector maps free text to a canonical category name. All keywords of the
// ordered rule table are compiled into a single Aho-Corasick automaton; the
// lowest-indexed rule that matches and is not excluded wins. A Detector is
// safe for concurrent use.
type Detector struct {
	rules       []models.CategoryRule
	matcher     *ahocorasick.Matcher
	refs        [][]patternRef
	fuzzyMax    int
	fuzzyWords  []patternRef
	fuzzyTokens []string
	logger      logging.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithFuzzyMaxDistance enables the fuzzy retry for words within max edits of
// a single-word keyword. Zero disables it.
func WithFuzzyMaxDistance(max int) DetectorOption {
	return func(d *Detector) {
		d.fuzzyMax = max
	}
}

// NewDetector compiles rules. An empty table falls back to DefaultRules.
func NewDetector(rules []models.CategoryRule, logger logging.Logger, opts ...DetectorOption) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	d := &Detector{
		rules:  rules,
		logger: logging.OrDefault(logger),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.build()
	return d
}

// NewDetectorFromStore loads the rule table from store; a load failure is
// logged and the built-in table is used instead.
func NewDetectorFromStore(store RuleStore, logger logging.Logger, opts ...DetectorOption) *Detector {
	logger = logging.OrDefault(logger)
	var rules []models.CategoryRule
	if store != nil {
		loaded, err := store.LoadCategories()
		if err != nil {
			logger.WithError(err).Warn("Failed to load category rules, using built-in table")
		} else {
			rules = loaded
		}
	}
	return NewDetector(rules, logger, opts...)
}

func (d *Detector) build() {
	index := make(map[string]int)
	var patterns [][]byte

	add := func(keyword string, ref patternRef) {
		p := normalize(keyword)
		if p == "" {
			return
		}
		i, ok := index[p]
		if !ok {
			i = len(patterns)
			index[p] = i
			patterns = append(patterns, []byte(p))
			d.refs = append(d.refs, nil)
		}
		d.refs[i] = append(d.refs[i], ref)
	}

	for ri, rule := range d.rules {
		for _, k := range rule.Keywords {
			add(k, patternRef{rule: ri})
			if n := normalize(k); !strings.ContainsAny(n, " .") && len([]rune(n)) >= 4 {
				d.fuzzyWords = append(d.fuzzyWords, patternRef{rule: ri})
				d.fuzzyTokens = append(d.fuzzyTokens, n)
			}
		}
		for _, k := range rule.Exclude {
			add(k, patternRef{rule: ri, exclude: true})
		}
	}

	if len(patterns) > 0 {
		d.matcher = ahocorasick.NewMatcher(patterns)
	}
}

// Match returns the category of the first rule matching text.
func (d *Detector) Match(text string) (string, bool) {
	if d.matcher == nil {
		return "", false
	}
	norm := normalize(text)
	if norm == "" {
		return "", false
	}

	hits := d.matcher.MatchThreadSafe([]byte(norm))
	if len(hits) == 0 {
		return "", false
	}

	matched := make(map[int]bool)
	excluded := make(map[int]bool)
	for _, h := range hits {
		for _, ref := range d.refs[h] {
			if ref.exclude {
				excluded[ref.rule] = true
			} else {
				matched[ref.rule] = true
			}
		}
	}

	best := -1
	for rule := range matched {
		if excluded[rule] {
			continue
		}
		if best == -1 || rule < best {
			best = rule
		}
	}
	if best == -1 {
		return "", false
	}
	return d.rules[best].Name, true
}

// Detect resolves the category of a record. The bank-supplied category is
// tried alone first; if it yields nothing the bank category and the
// description are tried together, then the optional fuzzy retry runs.
func (d *Detector) Detect(bankCategory, description string) string {
	if name, ok := d.Match(bankCategory); ok {
		return name
	}

	combined := strings.TrimSpace(bankCategory + " " + description)
	if name, ok := d.Match(combined); ok {
		return name
	}

	if name, ok := d.fuzzyMatch(combined); ok {
		d.logger.Debug("Category resolved by fuzzy match",
			logging.Field{Key: logging.FieldCategory, Value: name})
		return name
	}
	return models.CategoryUncategorized
}

func (d *Detector) fuzzyMatch(text string) (string, bool) {
	if d.fuzzyMax <= 0 || len(d.fuzzyTokens) == 0 {
		return "", false
	}
	words := strings.FieldsFunc(normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	best := -1
	for _, w := range words {
		if len([]rune(w)) < 5 {
			continue
		}
		for i, token := range d.fuzzyTokens {
			diff := len([]rune(w)) - len([]rune(token))
			if diff < 0 || diff > d.fuzzyMax {
				continue
			}
			dist := fuzzy.RankMatchNormalizedFold(token, w)
			if dist < 0 || dist > d.fuzzyMax {
				continue
			}
			if rule := d.fuzzyWords[i].rule; best == -1 || rule < best {
				best = rule
			}
		}
	}
	if best == -1 {
		return "", false
	}
	return d.rules[best].Name, true
}

// Categories returns the distinct category names in rule order.
func (d *Detector) Categories() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range d.rules {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "ё", "е")
}
