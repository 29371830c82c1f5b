package engine

import "spendsense/internal/model"

// SeedCorpus returns the fixed training set for the global model's cold
// start. It is deliberately small: the global model only needs a usable
// prior until per-user corrections accumulate.
func SeedCorpus() []model.TrainingExample {
	return []model.TrainingExample{
		{Text: "coffee, cafe", Label: "Food & Drink"},
		{Text: "restaurant dinner", Label: "Food & Drink"},
		{Text: "lunch at a diner", Label: "Food & Drink"},
		{Text: "groceries at supermarket", Label: "Groceries"},
		{Text: "weekly grocery shopping", Label: "Groceries"},
		{Text: "monthly rent payment", Label: "Rent"},
		{Text: "apartment rent", Label: "Rent"},
		{Text: "uber ride", Label: "Transport"},
		{Text: "bus ticket to downtown", Label: "Transport"},
		{Text: "taxi to the airport", Label: "Transport"},
		{Text: "movie ticket", Label: "Entertainment"},
		{Text: "concert tickets", Label: "Entertainment"},
		{Text: "electric bill", Label: "Utilities"},
		{Text: "water and sewer bill", Label: "Utilities"},
		{Text: "new shoes at the mall", Label: "Shopping"},
		{Text: "clothes shopping", Label: "Shopping"},
	}
}
