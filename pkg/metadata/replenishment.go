package metadata

// ReorderQuantity computes how many units to order for an item that fell to or
// below its reorder level. The target buffer is twice the reorder level, with a
// minimum order of one full reorder level so a reorder is never a handful of
// units when stock sits just under the threshold.
func ReorderQuantity(currentQuantity, reorderLevel int) int {
	needed := 2*reorderLevel - currentQuantity
	if needed < reorderLevel {
		needed = reorderLevel
	}
	if needed < 0 {
		needed = 0
	}
	return needed
}
