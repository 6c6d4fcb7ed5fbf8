package game

// SpellCastType is how a spell resolves against its target
type SpellCastType string

const (
	SpellCastAttack  SpellCastType = "attack"   // roll to hit, then damage
	SpellCastAutoHit SpellCastType = "auto_hit" // damage always applied
	SpellCastSave    SpellCastType = "save"     // saving throw (not supported)
	SpellCastSupport SpellCastType = "support"  // buffs/utility (not supported)
)

// Spell is a catalog entry used by the combat resolver
type Spell struct {
	Key            string        `json:"key"`
	Name           string        `json:"name"`
	Level          int           `json:"level"`
	CastType       SpellCastType `json:"cast_type"`
	DamageDice     string        `json:"damage_dice,omitempty"`
	CastingAbility string        `json:"casting_ability,omitempty"` // stat name, defaults to intelligence
}
