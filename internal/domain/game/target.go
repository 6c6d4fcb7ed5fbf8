package game

// TargetType distinguishes the two combat target variants
type TargetType string

const (
	TargetTypeCharacter TargetType = "character"
	TargetTypeNPC       TargetType = "npc"
)

// Target is the tagged variant resolved once at the start of an
// offensive action: either a player character or a placed NPC token
type Target struct {
	Type      TargetType
	Character *Character
	NPC       *NPCToken
}

// TargetSummary is the uniform projection presented to callers
type TargetSummary struct {
	Type            TargetType `json:"type"`
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	ArmorClass      int        `json:"armor_class"`
	RemainingHealth int        `json:"remaining_health"`
	MaxHealth       int        `json:"max_health"`
}

// ResolveTarget finds a combat target by ID, trying characters first
// and falling back to placed NPC tokens
func (s *Session) ResolveTarget(id string) (*Target, bool) {
	if char, ok := s.Characters[id]; ok {
		return &Target{Type: TargetTypeCharacter, Character: char}, true
	}
	if s.MapState != nil {
		if token, ok := s.MapState.Tokens[id]; ok {
			return &Target{Type: TargetTypeNPC, NPC: token}, true
		}
	}
	return nil, false
}

// ID returns the target's entity identifier
func (t *Target) ID() string {
	if t.Type == TargetTypeCharacter {
		return t.Character.ID
	}
	return t.NPC.TokenID
}

// Name returns the target's display name
func (t *Target) Name() string {
	if t.Type == TargetTypeCharacter {
		return t.Character.Name
	}
	return t.NPC.Name
}

// ArmorClass returns the defense threshold an attack must meet
func (t *Target) ArmorClass() int {
	if t.Type == TargetTypeCharacter {
		return t.Character.ArmorClass
	}
	return t.NPC.ArmorClass
}

// ApplyDamage routes damage to the underlying variant
func (t *Target) ApplyDamage(amount int) {
	if t.Type == TargetTypeCharacter {
		t.Character.ApplyDamage(amount)
		return
	}
	t.NPC.ApplyDamage(amount)
}

// ActionPoints returns the target's remaining action budget
func (t *Target) ActionPoints() int {
	if t.Type == TargetTypeCharacter {
		return t.Character.ActionPoints
	}
	return t.NPC.ActionPoints
}

// SpendActionPoints deducts cost if available, returns false when short
func (t *Target) SpendActionPoints(cost int) bool {
	if t.Type == TargetTypeCharacter {
		return t.Character.SpendActionPoints(cost)
	}
	return t.NPC.SpendActionPoints(cost)
}

// Heal routes healing to the underlying variant
func (t *Target) Heal(amount int) {
	if t.Type == TargetTypeCharacter {
		t.Character.Heal(amount)
		return
	}
	t.NPC.Heal(amount)
}

// Summary builds the uniform projection
func (t *Target) Summary() TargetSummary {
	if t.Type == TargetTypeCharacter {
		return TargetSummary{
			Type:            TargetTypeCharacter,
			ID:              t.Character.ID,
			Name:            t.Character.Name,
			ArmorClass:      t.Character.ArmorClass,
			RemainingHealth: t.Character.Health,
			MaxHealth:       t.Character.MaxHealth,
		}
	}
	return TargetSummary{
		Type:            TargetTypeNPC,
		ID:              t.NPC.TokenID,
		Name:            t.NPC.Name,
		ArmorClass:      t.NPC.ArmorClass,
		RemainingHealth: t.NPC.Health,
		MaxHealth:       t.NPC.MaxHealth,
	}
}
