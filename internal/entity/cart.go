package entity

// Cart is the ordered multiset of product ids held in a visitor's session.
// The same id appearing N times means quantity N. It is a value object:
// mutations return the updated cart and the caller persists it back to the
// session store.
type Cart []string

// Add appends one occurrence of the product id.
func (c Cart) Add(productID string) Cart {
	return append(c, productID)
}

// Remove drops the first occurrence of the product id, if present.
func (c Cart) Remove(productID string) Cart {
	return c.RemoveN(productID, 1)
}

// RemoveN drops up to n occurrences of the product id, preserving the order
// of the remaining entries. Used by the direct-purchase path, which only
// consumes the quantity it actually processed.
func (c Cart) RemoveN(productID string, n int) Cart {
	if n <= 0 {
		return c
	}
	out := make(Cart, 0, len(c))
	for _, id := range c {
		if id == productID && n > 0 {
			n--
			continue
		}
		out = append(out, id)
	}
	return out
}

// Aggregate folds the cart into a product id → quantity mapping. Pure; an
// empty cart yields an empty map.
func (c Cart) Aggregate() map[string]int {
	counts := make(map[string]int, len(c))
	for _, id := range c {
		counts[id]++
	}
	return counts
}

// CartLine is the derived per-product view of a cart: current catalog data
// plus the aggregated quantity and its subtotal at today's price. Computed
// on read, never persisted.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}
