package cart

import "brewhaha/internal/domain"

// AddItem returns a new cart with one more unit of brew. An existing line for
// the same brew has its quantity incremented; otherwise a line with quantity 1
// is appended. cart is not modified.
func AddItem(cart []domain.LineItem, brew domain.Brew) []domain.LineItem {
	out := clone(cart, 1)
	if i := indexOf(out, brew.ID); i >= 0 {
		out[i].Quantity++
		return out
	}
	return append(out, domain.LineItemFromBrew(brew))
}

// RemoveItem returns a new cart without the line for id.
func RemoveItem(cart []domain.LineItem, id string) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(cart))
	for _, item := range cart {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity returns a new cart where the line for id has the given
// quantity. A quantity of zero or less removes the line.
func SetQuantity(cart []domain.LineItem, id string, quantity int) []domain.LineItem {
	if quantity <= 0 {
		return RemoveItem(cart, id)
	}
	out := clone(cart, 0)
	if i := indexOf(out, id); i >= 0 {
		out[i].Quantity = quantity
	}
	return out
}

func clone(cart []domain.LineItem, extra int) []domain.LineItem {
	out := make([]domain.LineItem, len(cart), len(cart)+extra)
	copy(out, cart)
	return out
}

func indexOf(cart []domain.LineItem, id string) int {
	for i, item := range cart {
		if item.ID == id {
			return i
		}
	}
	return -1
}
