// Package javasrc extracts rule keys, cleaned sources and class outlines from
// Java rule visitor files.
package javasrc

import "regexp"

// ruleKeyPattern matches the rule annotation of a visitor, e.g. @Rule(key = "S1234").
var ruleKeyPattern = regexp.MustCompile(`@Rule\(key = "(S\d+)"\)`)

// ExtractRuleKey returns the key of the first @Rule annotation in src.
// The key is returned verbatim, digits included as written.
func ExtractRuleKey(src string) (string, bool) {
	matches := ruleKeyPattern.FindStringSubmatch(src)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}
