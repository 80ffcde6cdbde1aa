package config

// Balance is the tunable part of the game section.
type Balance struct {
	CraftCost        int `json:"craft_cost"`
	DeliveryPoints   int `json:"delivery_points"`
	BonusMultiplier  int `json:"bonus_multiplier"`
	BonusWindowHours int `json:"bonus_window_hours"`
	TimedSeconds     int `json:"timed_seconds"`
}

// Normal returns the default balance
func Normal() Balance {
	return Balance{
		CraftCost:        5,
		DeliveryPoints:   10,
		BonusMultiplier:  2,
		BonusWindowHours: 24,
		TimedSeconds:     120,
	}
}

// Casual is cheaper crafting and a longer clock, for younger players
func Casual() Balance {
	b := Normal()
	b.CraftCost = 3
	b.TimedSeconds = 180
	return b
}

// Hard makes bottles expensive and the clock short
func Hard() Balance {
	b := Normal()
	b.CraftCost = 8
	b.TimedSeconds = 90
	return b
}

// Preset returns the balance for a difficulty name; unknown names get Normal.
func Preset(name string) Balance {
	switch name {
	case "casual":
		return Casual()
	case "hard":
		return Hard()
	default:
		return Normal()
	}
}
