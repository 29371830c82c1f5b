package engine

import (
	"strings"

	"spendsense/internal/model"
)

// keywordRule maps substrings to a category. Rules are evaluated in slice
// order and the first match wins.
type keywordRule struct {
	category string
	keywords []string
}

// keywordRules is the deterministic last-resort tier. It guarantees a
// category even when no model can be consulted.
var keywordRules = []keywordRule{
	{category: "Transport", keywords: []string{"uber", "bus", "taxi", "bolt"}},
	{category: "Food", keywords: []string{"restaurant", "lunch", "dinner", "coffee", "starbucks", "kfc", "grocer", "grocery"}},
	{category: "Utilities", keywords: []string{"electric", "water", "bill"}},
	{category: "Shopping", keywords: []string{"clothes", "shoe", "shopping", "mall", "store"}},
}

const (
	ruleConfidence    = 0.6
	defaultConfidence = 0.4
)

// PredictByRules scans the lower-cased text against the fixed keyword sets.
// No match yields ("Other", 0.4).
func PredictByRules(text string) model.PredictionResult {
	lowered := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return model.PredictionResult{Label: rule.category, Confidence: ruleConfidence}
			}
		}
	}
	return model.PredictionResult{Label: model.LabelOther, Confidence: defaultConfidence}
}
