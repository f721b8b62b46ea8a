// Package normalize rewrites submitted values of binary list fields into their
// canonical codes.
package normalize

import (
	"strings"

	"github.com/goliatone/go-formintake/pkg/classify"
)

// Rule describes how values of one tag are rewritten. Passthrough rules return
// the raw value untouched.
type Rule struct {
	Tag            classify.Tag
	CanonicalTrue  string
	CanonicalFalse string
	Passthrough    bool
}

// tokens maps trimmed, lower-cased input onto the canonical side of a rule.
type tokens struct {
	truthy map[string]struct{}
	falsy  map[string]struct{}
}

var rules = map[classify.Tag]Rule{
	classify.TagLOVYesNo:     {Tag: classify.TagLOVYesNo, CanonicalTrue: "yes", CanonicalFalse: "no"},
	classify.TagLOVOneTwo:    {Tag: classify.TagLOVOneTwo, CanonicalTrue: "1", CanonicalFalse: "2"},
	classify.TagMasterdata:   {Tag: classify.TagMasterdata, Passthrough: true},
	classify.TagUnclassified: {Tag: classify.TagUnclassified, Passthrough: true},
}

var ruleTokens = map[classify.Tag]tokens{
	classify.TagLOVYesNo: {
		truthy: set("yes", "y", "true", "1"),
		falsy:  set("no", "n", "false", "0"),
	},
	classify.TagLOVOneTwo: {
		truthy: set("1", "yes", "true"),
		falsy:  set("2", "no", "false"),
	},
}

// RuleFor returns the rule for tag. Unknown tags get a passthrough rule.
func RuleFor(tag classify.Tag) Rule {
	if rule, ok := rules[tag]; ok {
		return rule
	}
	return Rule{Tag: tag, Passthrough: true}
}

// Normalize applies the rule for tag to raw. It never fails: values outside
// the recognised tokens are returned unchanged.
func Normalize(tag classify.Tag, raw string) string {
	return RuleFor(tag).Apply(raw)
}

// Apply rewrites raw according to the rule. Applying it twice yields the same
// result as applying it once.
func (r Rule) Apply(raw string) string {
	if r.Passthrough {
		return raw
	}
	toks, ok := ruleTokens[r.Tag]
	if !ok {
		return raw
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := toks.truthy[key]; ok {
		return r.CanonicalTrue
	}
	if _, ok := toks.falsy[key]; ok {
		return r.CanonicalFalse
	}
	return raw
}

func set(values ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
