package statement

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Matcher accepts text containing any Include keyword and none of the Exclude keywords.
type Matcher struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Matches reports whether lowercased text satisfies the matcher.
func (m Matcher) Matches(text string) bool {
	return containsAny(text, m.Include) && !containsAny(text, m.Exclude)
}

// Keywords holds the language-specific vocabulary used by the classifier and the reconciler.
type Keywords struct {
	Equity              []string                               `yaml:"equity"`
	NonOperational      []string                               `yaml:"nonOperational"`
	NonOperationalWords []string                               `yaml:"nonOperationalWords"`
	Depreciation        []string                               `yaml:"depreciation"`
	Labor               []string                               `yaml:"labor"`
	ResultsAdjustments  Matcher                                `yaml:"resultsAdjustments"`
	Reconciliation      map[domain.ReconciliationLabel]Matcher `yaml:"reconciliation"`
}

// DefaultKeywords returns the built-in Dutch and English vocabulary.
func DefaultKeywords() Keywords {
	var kw Keywords
	if err := yaml.Unmarshal(defaultRules, &kw); err != nil {
		panic(fmt.Sprintf("statement: embedded rules.yaml is invalid: %v", err))
	}
	return kw.normalized()
}

// LoadKeywords reads a YAML override file on top of the defaults. Sections absent from the
// file keep their default keywords. An empty path returns the defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("failed to read classification rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return Keywords{}, fmt.Errorf("failed to parse classification rules %s: %w", path, err)
	}
	return kw.normalized(), nil
}

func (kw Keywords) normalized() Keywords {
	kw.Equity = lowerAll(kw.Equity)
	kw.NonOperational = lowerAll(kw.NonOperational)
	kw.NonOperationalWords = lowerAll(kw.NonOperationalWords)
	kw.Depreciation = lowerAll(kw.Depreciation)
	kw.Labor = lowerAll(kw.Labor)
	kw.ResultsAdjustments = kw.ResultsAdjustments.normalized()
	matchers := make(map[domain.ReconciliationLabel]Matcher, len(kw.Reconciliation))
	for label, m := range kw.Reconciliation {
		matchers[label] = m.normalized()
	}
	kw.Reconciliation = matchers
	return kw
}

func (m Matcher) normalized() Matcher {
	return Matcher{Include: lowerAll(m.Include), Exclude: lowerAll(m.Exclude)}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// wordMatcher compiles whole-word keywords into one case-insensitive pattern.
func wordMatcher(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
