package combat

//go:generate mockgen -destination=mock/mock_service.go -package=mockcombat -source=service.go

import (
	"context"
	"fmt"
	"strings"

	"github.com/KirkDiggler/tabletop-engine/internal/clients/dnd5e"
	"github.com/KirkDiggler/tabletop-engine/internal/dice"
	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
)

// ActionType is the kind of combat action being attempted
type ActionType string

const (
	ActionBasicAttack ActionType = "basic_attack"
	ActionCastSpell   ActionType = "cast_spell"
)

// AttackStyle selects the ability behind a basic attack
type AttackStyle string

const (
	StyleMelee  AttackStyle = "melee"  // strength
	StyleRanged AttackStyle = "ranged" // dexterity
)

// Action-point costs. Points are spent as soon as the action is
// attempted and are not refunded on a miss.
const (
	CostBasicAttack = 1
	CostCastSpell   = 2
)

// Default weapon damage when the attacker carries no override
const (
	defaultMeleeDamage  = "1d8"
	defaultRangedDamage = "1d6"
)

// Service resolves combat actions against characters and NPC tokens
type Service interface {
	// PerformAction resolves a basic attack or spell cast
	PerformAction(ctx context.Context, input *PerformActionInput) (*ActionResult, error)
}

// PerformActionInput describes one combat action
type PerformActionInput struct {
	SessionID  string
	PlayerID   string
	ActorID    string
	ActionType ActionType
	TargetID   string
	Style      AttackStyle // basic attack only
	SpellName  string      // spell cast only
}

// ActionResult is the outcome presented to the caller
type ActionResult struct {
	ActionType       ActionType         `json:"action_type"`
	SpellName        string             `json:"spell_name,omitempty"`
	AttackRoll       int                `json:"attack_roll,omitempty"` // the raw d20
	AttackTotal      int                `json:"attack_total,omitempty"`
	Hit              bool               `json:"hit"`
	Critical         bool               `json:"critical"`
	Damage           int                `json:"damage"`
	DamageBreakdown  string             `json:"damage_breakdown,omitempty"`
	Target           game.TargetSummary `json:"target"`
	ActionPointsLeft int                `json:"action_points_left"`
}

// ServiceConfig holds configuration for the combat service
type ServiceConfig struct {
	GameStateRepo gamestate.Repository // Required
	Dispatcher    *engine.Dispatcher   // Required
	SpellClient   dnd5e.Client         // Required
	Roller        dice.Roller          // Optional, will use random roller if nil
}

type service struct {
	gameStates  gamestate.Repository
	dispatcher  *engine.Dispatcher
	spellClient dnd5e.Client
	roller      dice.Roller
}

// NewService creates a new combat service
func NewService(cfg *ServiceConfig) Service {
	if cfg.GameStateRepo == nil {
		panic("game state repository is required")
	}
	if cfg.Dispatcher == nil {
		panic("dispatcher is required")
	}
	if cfg.SpellClient == nil {
		panic("spell client is required")
	}

	svc := &service{
		gameStates:  cfg.GameStateRepo,
		dispatcher:  cfg.Dispatcher,
		spellClient: cfg.SpellClient,
	}

	if cfg.Roller != nil {
		svc.roller = cfg.Roller
	} else {
		svc.roller = dice.NewRandomRoller()
	}

	return svc
}

// PerformAction resolves a basic attack or spell cast
func (s *service) PerformAction(ctx context.Context, input *PerformActionInput) (*ActionResult, error) {
	if input == nil {
		return nil, apperr.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.ActorID) == "" {
		return nil, apperr.InvalidArgument("actor ID is required")
	}
	if strings.TrimSpace(input.TargetID) == "" {
		return nil, apperr.InvalidArgument("target ID is required")
	}

	// Catalog lookup happens before the state transition: the session op
	// must not block on external I/O, and a bad spell name must not cost
	// the actor anything.
	var spell *game.Spell
	switch input.ActionType {
	case ActionBasicAttack:
		if input.Style != StyleMelee && input.Style != StyleRanged {
			return nil, apperr.InvalidArgumentf("unknown attack style '%s'", input.Style)
		}
	case ActionCastSpell:
		if strings.TrimSpace(input.SpellName) == "" {
			return nil, apperr.InvalidArgument("spell name is required")
		}
		found, err := s.spellClient.GetSpell(spellKey(input.SpellName))
		if err != nil {
			return nil, apperr.Wrapf(err, "failed to look up spell '%s'", input.SpellName)
		}
		if found.CastType == game.SpellCastSave || found.CastType == game.SpellCastSupport {
			return nil, apperr.Unimplementedf("spell '%s' requires %s casting, which is not supported",
				found.Name, found.CastType)
		}
		spell = found
	default:
		return nil, apperr.InvalidArgumentf("unknown action type '%s'", input.ActionType)
	}

	var result *ActionResult
	err := s.dispatcher.Submit(ctx, input.SessionID, func(ctx context.Context) error {
		sess, err := s.gameStates.Get(ctx, input.SessionID)
		if err != nil {
			return err
		}
		if sess.Status != game.SessionStatusActive {
			return apperr.NotReadyf("session is %s, not active", sess.Status)
		}

		actor, ok := sess.ResolveTarget(input.ActorID)
		if !ok {
			return apperr.NotFoundf("actor %s not found", input.ActorID)
		}
		if err := s.checkActorPermission(sess, input.PlayerID, actor); err != nil {
			return err
		}
		target, ok := sess.ResolveTarget(input.TargetID)
		if !ok {
			return apperr.NotFoundf("target %s not found", input.TargetID)
		}

		cost := CostBasicAttack
		if input.ActionType == ActionCastSpell {
			cost = CostCastSpell
		}
		if !actor.SpendActionPoints(cost) {
			return apperr.Insufficientf("%s needs %d action points but has %d",
				actor.Name(), cost, actor.ActionPoints())
		}

		var actionResult *ActionResult
		if input.ActionType == ActionBasicAttack {
			actionResult, err = s.resolveBasicAttack(actor, target, input.Style)
		} else {
			actionResult, err = s.resolveSpell(actor, target, spell)
		}
		if err != nil {
			return err
		}
		actionResult.ActionPointsLeft = actor.ActionPoints()

		sess.AddLogEntry(actionLogEntry(actor, target, actionResult))

		if err := s.gameStates.Update(ctx, sess); err != nil {
			return apperr.Wrap(err, "failed to save session")
		}
		result = actionResult
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveBasicAttack rolls to hit and applies weapon damage
func (s *service) resolveBasicAttack(actor, target *game.Target, style AttackStyle) (*ActionResult, error) {
	abilityMod := attackAbilityMod(actor, style)
	attackBonus := abilityMod + proficiencyBonus(actor)

	attack, err := s.roller.Roll(1, 20, attackBonus)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to roll attack")
	}

	result := &ActionResult{
		ActionType:  ActionBasicAttack,
		AttackRoll:  attack.Rolls[0],
		AttackTotal: attack.Total,
		Critical:    attack.IsCrit,
	}

	// Natural 20 always hits, natural 1 always misses
	switch {
	case attack.IsCrit:
		result.Hit = true
	case attack.IsFumble:
		result.Hit = false
	default:
		result.Hit = attack.Total >= target.ArmorClass()
	}

	if result.Hit {
		damage, err := dice.RollDamage(s.roller, weaponDamage(actor, style), result.Critical)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to roll damage")
		}
		result.Damage = damage.Total + abilityMod
		if result.Damage < 0 {
			result.Damage = 0
		}
		result.DamageBreakdown = damage.Breakdown
		target.ApplyDamage(result.Damage)
	}

	result.Target = target.Summary()
	return result, nil
}

// resolveSpell applies a catalog spell of the attack or auto-hit variant
func (s *service) resolveSpell(actor, target *game.Target, spell *game.Spell) (*ActionResult, error) {
	result := &ActionResult{
		ActionType: ActionCastSpell,
		SpellName:  spell.Name,
	}

	damageDice := spell.DamageDice
	if damageDice == "" {
		damageDice = defaultRangedDamage
	}

	switch spell.CastType {
	case game.SpellCastAttack:
		attackBonus := castingAbilityMod(actor, spell.CastingAbility) + proficiencyBonus(actor)
		attack, err := s.roller.Roll(1, 20, attackBonus)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to roll spell attack")
		}
		result.AttackRoll = attack.Rolls[0]
		result.AttackTotal = attack.Total
		result.Critical = attack.IsCrit
		switch {
		case attack.IsCrit:
			result.Hit = true
		case attack.IsFumble:
			result.Hit = false
		default:
			result.Hit = attack.Total >= target.ArmorClass()
		}
	case game.SpellCastAutoHit:
		result.Hit = true
	default:
		return nil, apperr.Unimplementedf("spell cast type '%s' is not supported", spell.CastType)
	}

	if result.Hit {
		damage, err := dice.RollDamage(s.roller, damageDice, result.Critical)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to roll spell damage")
		}
		result.Damage = damage.Total
		result.DamageBreakdown = damage.Breakdown
		target.ApplyDamage(result.Damage)
	}

	result.Target = target.Summary()
	return result, nil
}

// checkActorPermission allows the host to act as anyone and players to
// act only as their own character
func (s *service) checkActorPermission(sess *game.Session, playerID string, actor *game.Target) error {
	if sess.IsHost(playerID) {
		return nil
	}
	if actor.Type == game.TargetTypeCharacter && actor.Character.OwnerID == playerID {
		return nil
	}
	return apperr.PermissionDeniedf("player %s does not control %s", playerID, actor.Name())
}

// attackAbilityMod picks the ability behind a basic attack. NPC tokens
// carry only a dexterity score, so they attack off dexterity.
func attackAbilityMod(actor *game.Target, style AttackStyle) int {
	if actor.Type == game.TargetTypeCharacter {
		if style == StyleMelee {
			return game.AbilityModifier(actor.Character.Stats.Strength)
		}
		return actor.Character.DexModifier()
	}
	return actor.NPC.DexModifier()
}

// castingAbilityMod resolves the spellcasting ability named by the catalog
func castingAbilityMod(actor *game.Target, ability string) int {
	if actor.Type != game.TargetTypeCharacter {
		return actor.NPC.DexModifier()
	}
	stats := actor.Character.Stats
	switch strings.ToLower(ability) {
	case "strength":
		return game.AbilityModifier(stats.Strength)
	case "dexterity":
		return game.AbilityModifier(stats.Dexterity)
	case "constitution":
		return game.AbilityModifier(stats.Constitution)
	case "wisdom":
		return game.AbilityModifier(stats.Wisdom)
	case "charisma":
		return game.AbilityModifier(stats.Charisma)
	default:
		return game.AbilityModifier(stats.Intelligence)
	}
}

// proficiencyBonus follows the character's level; tokens get the floor
func proficiencyBonus(actor *game.Target) int {
	if actor.Type == game.TargetTypeCharacter {
		return actor.Character.ProficiencyBonus()
	}
	return 2
}

// weaponDamage picks the attacker's damage dice for the style
func weaponDamage(actor *game.Target, style AttackStyle) string {
	if actor.Type == game.TargetTypeCharacter {
		if style == StyleMelee {
			if actor.Character.MeleeDamage != "" {
				return actor.Character.MeleeDamage
			}
			return defaultMeleeDamage
		}
		if actor.Character.RangedDamage != "" {
			return actor.Character.RangedDamage
		}
		return defaultRangedDamage
	}
	if style == StyleMelee {
		return defaultMeleeDamage
	}
	return defaultRangedDamage
}

// spellKey normalizes a display name into a catalog key
func spellKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// actionLogEntry renders one activity-log line for a resolved action
func actionLogEntry(actor, target *game.Target, result *ActionResult) string {
	verb := "attacked"
	if result.ActionType == ActionCastSpell {
		verb = fmt.Sprintf("cast %s at", result.SpellName)
	}
	if !result.Hit {
		return fmt.Sprintf("%s %s %s and missed", actor.Name(), verb, target.Name())
	}
	if result.Critical {
		return fmt.Sprintf("%s %s %s for %d damage (critical!)", actor.Name(), verb, target.Name(), result.Damage)
	}
	return fmt.Sprintf("%s %s %s for %d damage", actor.Name(), verb, target.Name(), result.Damage)
}
