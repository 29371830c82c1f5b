package model

// TrainingExample pairs a free-text expense description with its
// human-confirmed category label. Examples are derived from overridden
// expenses on demand and are never persisted independently.
type TrainingExample struct {
	Text  string
	Label string
}

// ExamplesFromExpenses extracts training examples from expenses carrying a
// human-confirmed category. Order follows the input slice so a fixed query
// ordering yields a stable training set.
func ExamplesFromExpenses(expenses []Expense) []TrainingExample {
	var examples []TrainingExample
	for i := range expenses {
		if !expenses[i].IsGroundTruth() {
			continue
		}
		examples = append(examples, TrainingExample{
			Text:  expenses[i].Description,
			Label: expenses[i].Category,
		})
	}
	return examples
}
