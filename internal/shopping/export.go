package shopping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bromleigh/mealboard/internal/model"
)

// Export renders a list as plain text with unchecked items first, suitable
// for sharing by email or copy-paste.
func Export(list *model.ShoppingList, items []model.ShoppingItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping List %s to %s\n", list.DateRangeStart, list.DateRangeEnd)

	var toBuy, purchased []model.ShoppingItem
	for _, item := range items {
		if item.Checked {
			purchased = append(purchased, item)
		} else {
			toBuy = append(toBuy, item)
		}
	}

	b.WriteString("\nTo Buy:\n")
	if len(toBuy) == 0 {
		b.WriteString("  (nothing)\n")
	}
	for _, item := range toBuy {
		fmt.Fprintf(&b, "  [ ] %s\n", formatItem(item))
	}

	if len(purchased) > 0 {
		b.WriteString("\nPurchased:\n")
		for _, item := range purchased {
			fmt.Fprintf(&b, "  [x] %s\n", formatItem(item))
		}
	}
	return b.String()
}

func formatItem(item model.ShoppingItem) string {
	if item.Quantity == 0 {
		return item.IngredientName
	}
	qty := strconv.FormatFloat(item.Quantity, 'f', -1, 64)
	if item.Unit == "" {
		return fmt.Sprintf("%s %s", qty, item.IngredientName)
	}
	return fmt.Sprintf("%s %s %s", qty, item.Unit, item.IngredientName)
}
