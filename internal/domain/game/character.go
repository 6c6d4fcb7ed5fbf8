package game

// Stats holds the six ability scores
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// AbilityModifier converts an ability score to its modifier, floor((score-10)/2)
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// Character is a player-owned participant in a session
type Character struct {
	ID              string            `json:"id"`
	OwnerID         string            `json:"owner_id"`
	Name            string            `json:"name"`
	Race            string            `json:"race"`
	Class           string            `json:"class"`
	Level           int               `json:"level"`
	Stats           Stats             `json:"stats"`
	Health          int               `json:"health"`
	MaxHealth       int               `json:"max_health"`
	ActionPoints    int               `json:"action_points"`
	MaxActionPoints int               `json:"max_action_points"`
	Speed           int               `json:"speed"`
	ArmorClass      int               `json:"armor_class"`
	MeleeDamage     string            `json:"melee_damage,omitempty"`  // weapon override, defaults to 1d8
	RangedDamage    string            `json:"ranged_damage,omitempty"` // weapon override, defaults to 1d6
	Inventory       []string          `json:"inventory,omitempty"`
	Equipment       map[string]string `json:"equipment,omitempty"`
}

// IsAlive returns true while the character has health remaining
func (c *Character) IsAlive() bool {
	return c.Health > 0
}

// ProficiencyBonus follows the standard level progression
func (c *Character) ProficiencyBonus() int {
	level := c.Level
	if level < 1 {
		level = 1
	}
	return 2 + ((level - 1) / 4)
}

// ApplyDamage reduces health, floored at 0
func (c *Character) ApplyDamage(amount int) {
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
}

// Heal restores health, capped at max
func (c *Character) Heal(amount int) {
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}

// RestoreAll brings the character back to full health and action points
func (c *Character) RestoreAll() {
	c.Health = c.MaxHealth
	c.ActionPoints = c.MaxActionPoints
}

// ResetActionPoints refills the per-turn action budget
func (c *Character) ResetActionPoints() {
	c.ActionPoints = c.MaxActionPoints
}

// SpendActionPoints deducts cost if available, returns false when short
func (c *Character) SpendActionPoints(cost int) bool {
	if c.ActionPoints < cost {
		return false
	}
	c.ActionPoints -= cost
	return true
}

// DexModifier is the character's dexterity modifier
func (c *Character) DexModifier() int {
	return AbilityModifier(c.Stats.Dexterity)
}
