package fields

import (
	"strings"
)

// Extractor inspects one normalized line and returns the detail to record
type Extractor func(line string) (string, bool)

// Rule binds an extractor to the section it emits
type Rule struct {
	Section Section
	Extract Extractor
}

// Options tunes the built-in matchers and how text is fed to the rules
type Options struct {
	// FallThrough lets a matcher try its next tier when every candidate of
	// the first matching tier fails to parse.
	FallThrough bool
	// SplitLines makes ClassifyText classify each line on its own. By
	// default the whole text is normalized into one line first.
	SplitLines bool
}

// Classifier applies an ordered rule table to lines of text. Rules are
// independent: every rule runs against every line and each hit becomes a
// record.
type Classifier struct {
	rules      []Rule
	splitLines bool
}

// NewClassifier returns a classifier loaded with the default rule table
func NewClassifier(opts Options) *Classifier {
	return &Classifier{rules: DefaultRules(opts), splitLines: opts.SplitLines}
}

// NewClassifierWithRules returns a classifier that evaluates exactly rules
// and classifies whole texts as one line
func NewClassifierWithRules(rules ...Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// DefaultRules returns the label, keyword and matcher rules in evaluation
// order
func DefaultRules(opts Options) []Rule {
	return []Rule{
		{Section: SectionName, Extract: LabelPrefix("Name:")},
		{Section: SectionDateOfBirth, Extract: LabelPrefix("Date of Birth:")},
		{Section: SectionEmail, Extract: LabelPrefix("Email:")},
		{Section: SectionSkill, Extract: Keyword("Skill", "Python", "JavaScript")},
		{Section: SectionProject, Extract: Keyword("Project", "Chatbot")},
		{Section: SectionCertification, Extract: Keyword("Certification", "Certified")},
		{Section: SectionPhone, Extract: LabelAnywhere("Phone:")},
		{Section: SectionAddress, Extract: LabelAnywhere("Address:")},
		{Section: SectionDate, Extract: NewDateMatcher(opts.FallThrough).Match},
		{Section: SectionAmount, Extract: NewAmountMatcher(opts.FallThrough).Match},
		{Section: SectionName, Extract: NewNameMatcher(opts.FallThrough).Match},
	}
}

// LabelPrefix matches lines starting with label and yields the trimmed rest
func LabelPrefix(label string) Extractor {
	return func(line string) (string, bool) {
		rest, ok := strings.CutPrefix(line, label)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(rest), true
	}
}

// LabelAnywhere matches lines containing label and yields the trimmed text
// following its first occurrence
func LabelAnywhere(label string) Extractor {
	return func(line string) (string, bool) {
		_, rest, ok := strings.Cut(line, label)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(rest), true
	}
}

// Keyword matches lines that start with prefix or contain any of words, and
// yields the whole line
func Keyword(prefix string, words ...string) Extractor {
	return func(line string) (string, bool) {
		if strings.HasPrefix(line, prefix) {
			return line, true
		}
		for _, w := range words {
			if strings.Contains(line, w) {
				return line, true
			}
		}
		return "", false
	}
}

// AddRule appends a rule to the end of the table
func (c *Classifier) AddRule(rule Rule) {
	c.rules = append(c.rules, rule)
}

// Rules returns a copy of the rule table
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// ClassifyLine normalizes line, runs every rule against it and appends the
// hits to acc. It returns the number of records added.
func (c *Classifier) ClassifyLine(line string, acc *Accumulator) int {
	line = Normalize(line)
	if line == "" {
		return 0
	}

	added := 0
	for _, rule := range c.rules {
		if detail, ok := rule.Extract(line); ok {
			acc.Add(rule.Section, detail)
			added++
		}
	}
	return added
}

// ClassifyText classifies a page of text. The page is collapsed into a
// single normalized line unless the classifier splits lines, in which case
// each non-blank line is classified on its own.
func (c *Classifier) ClassifyText(text string, acc *Accumulator) int {
	if !c.splitLines {
		return c.ClassifyLine(text, acc)
	}

	added := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		added += c.ClassifyLine(line, acc)
	}
	return added
}
