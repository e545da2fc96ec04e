// Package shopping builds shopping lists from a week of meal plans.
package shopping

import "strings"

// Ingredient is one raw line going into aggregation.
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string
}

// Line is one aggregated output line.
type Line struct {
	Name     string
	Quantity float64
	Unit     string
}

// Aggregate merges ingredient lines that share a name and unit, both
// compared case-insensitively after trimming. "Chicken, lbs" and
// " chicken , LBS" merge; "chicken, lbs" and "chicken, oz" stay separate
// lines. No unit conversion is attempted. The merged line keeps the name
// casing of the first occurrence, stores the unit lowercased, and output
// order is first-seen order. Lines whose trimmed name is empty are
// dropped.
func Aggregate(ingredients []Ingredient) []Line {
	index := make(map[string]int)
	var lines []Line

	for _, ing := range ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		unit := strings.ToLower(strings.TrimSpace(ing.Unit))
		key := strings.ToLower(name) + "\x00" + unit

		if i, ok := index[key]; ok {
			lines[i].Quantity += ing.Quantity
			continue
		}
		index[key] = len(lines)
		lines = append(lines, Line{Name: name, Quantity: ing.Quantity, Unit: unit})
	}
	return lines
}
