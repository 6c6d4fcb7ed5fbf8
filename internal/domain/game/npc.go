package game

// NPCToken is a placed, stateful copy of an NPC definition on the map
type NPCToken struct {
	TokenID         string         `json:"token_id"`
	DefinitionID    string         `json:"definition_id"`
	Name            string         `json:"name"`
	X               int            `json:"x"`
	Y               int            `json:"y"`
	Health          int            `json:"health"`
	MaxHealth       int            `json:"max_health"`
	ArmorClass      int            `json:"armor_class"`
	Speed           int            `json:"speed"`
	Dexterity       int            `json:"dexterity"`
	ActionPoints    int            `json:"action_points"`
	MaxActionPoints int            `json:"max_action_points"`
	Friendly        bool           `json:"friendly"`
	StatusEffects   []string       `json:"status_effects,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// IsAlive returns true while the token has health remaining
func (n *NPCToken) IsAlive() bool {
	return n.Health > 0
}

// ApplyDamage reduces health, floored at 0
func (n *NPCToken) ApplyDamage(amount int) {
	n.Health -= amount
	if n.Health < 0 {
		n.Health = 0
	}
}

// Heal restores health, capped at max
func (n *NPCToken) Heal(amount int) {
	n.Health += amount
	if n.Health > n.MaxHealth {
		n.Health = n.MaxHealth
	}
}

// RestoreAll brings the token back to full health and action points
func (n *NPCToken) RestoreAll() {
	n.Health = n.MaxHealth
	n.ActionPoints = n.MaxActionPoints
}

// ResetActionPoints refills the per-turn action budget
func (n *NPCToken) ResetActionPoints() {
	n.ActionPoints = n.MaxActionPoints
}

// SpendActionPoints deducts cost if available, returns false when short
func (n *NPCToken) SpendActionPoints(cost int) bool {
	if n.ActionPoints < cost {
		return false
	}
	n.ActionPoints -= cost
	return true
}

// DexModifier is the token's dexterity modifier
func (n *NPCToken) DexModifier() int {
	return AbilityModifier(n.Dexterity)
}
