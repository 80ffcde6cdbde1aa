package game

// Inventory holds the three item counters of a run. Every method either
// applies fully or leaves the counters untouched.
type Inventory struct {
	Material         int `json:"material"`
	EmptyContainers  int `json:"emptyContainers"`
	FilledContainers int `json:"filledContainers"`
}

// AddMaterial adds n units; non-positive n is ignored.
func (inv *Inventory) AddMaterial(n int) {
	if n > 0 {
		inv.Material += n
	}
}

// Craft turns cost units of material into one empty container.
func (inv *Inventory) Craft(cost int) bool {
	if cost < 1 || inv.Material < cost {
		return false
	}
	inv.Material -= cost
	inv.EmptyContainers++
	return true
}

// Fill turns one empty container into a filled one.
func (inv *Inventory) Fill() bool {
	if inv.EmptyContainers < 1 {
		return false
	}
	inv.EmptyContainers--
	inv.FilledContainers++
	return true
}

// Deliver removes one filled container.
func (inv *Inventory) Deliver() bool {
	if inv.FilledContainers < 1 {
		return false
	}
	inv.FilledContainers--
	return true
}

// CanCraft reports whether Craft(cost) would succeed.
func (inv Inventory) CanCraft(cost int) bool {
	return cost >= 1 && inv.Material >= cost
}
