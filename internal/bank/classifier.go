// Package bank maintains the shared exercise bank: the catalog of known
// movements with a muscle-group category and default prescription values.
package bank

import "strings"

// Rule assigns a category to any exercise name containing one of its
// keywords. Rules are checked in order; the first hit wins.
type Rule struct {
	Keywords []string
	Category string
}

// DefaultRules covers the movement vocabulary the studios actually use.
// Keyword stems are substring-matched, so "לחיצ" catches both לחיצת חזה
// and לחיצות.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"דדליפט", "חתירה", "משיכ", "פול אפ", "מתח"}, Category: "גב"},
		{Keywords: []string{"סקוואט", "לאנג", "רגל", "מכרעים", "עקבים"}, Category: "רגליים"},
		{Keywords: []string{"לחיצ", "חזה", "פרפר", "שכיבות סמיכה"}, Category: "חזה"},
		{Keywords: []string{"כתף", "כתפיים", "ארנולד", "הרחק"}, Category: "כתפיים"},
		{Keywords: []string{"ביצפ", "טריצפ", "פטיש", "צרפתית"}, Category: "ידיים"},
		{Keywords: []string{"בטן", "פלאנק", "כפיפות", "גלגל"}, Category: "בטן"},
	}
}

// Classifier resolves exercise names to categories.
type Classifier struct {
	rules           []Rule
	defaultCategory string
}

// NewClassifier builds a classifier from the given rules. A nil or empty
// rule list falls back to the built-in defaults.
func NewClassifier(rules []Rule, defaultCategory string) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if defaultCategory == "" {
		defaultCategory = "כללי"
	}
	return &Classifier{rules: rules, defaultCategory: defaultCategory}
}

// Classify returns the category for an exercise name. Names matching no
// rule land in the default category.
func (c *Classifier) Classify(name string) string {
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Category
			}
		}
	}
	return c.defaultCategory
}
