package dnd5e

import (
	"net/http"
	"strings"

	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	apiDnd5e "github.com/fadedpez/dnd5e-api/clients/dnd5e"
	apiEntities "github.com/fadedpez/dnd5e-api/entities"
)

type client struct {
	client apiDnd5e.Interface
}

// Config holds configuration for the API client
type Config struct {
	HttpClient *http.Client
}

// New creates a spell catalog client backed by the dnd5e API
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("cfg is required")
	}

	apiClient, err := apiDnd5e.NewDND5eAPI(&apiDnd5e.DND5eAPIConfig{
		Client: cfg.HttpClient,
	})
	if err != nil {
		return nil, err
	}

	return &client{
		client: apiClient,
	}, nil
}

// GetSpell retrieves a spell by key
func (c *client) GetSpell(key string) (*game.Spell, error) {
	apiSpell, err := c.client.GetSpell(key)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get spell %s", key)
	}

	return convertSpell(apiSpell), nil
}

// convertSpell maps an API spell onto the engine's catalog entry
func convertSpell(apiSpell *apiEntities.Spell) *game.Spell {
	spell := &game.Spell{
		Key:            apiSpell.Key,
		Name:           apiSpell.Name,
		Level:          apiSpell.SpellLevel,
		CastingAbility: "intelligence",
	}

	if apiSpell.SpellDamage != nil {
		spell.DamageDice = baseDamageDice(apiSpell.SpellDamage)
	}

	spell.CastType = castTypeFor(apiSpell, spell.DamageDice)

	return spell
}

// castTypeFor classifies how the spell resolves. Spells with a save DC
// are save spells; magic missile is the canonical auto-hit; remaining
// damage spells roll to hit; everything else is support.
func castTypeFor(apiSpell *apiEntities.Spell, damageDice string) game.SpellCastType {
	if apiSpell.DC != nil {
		return game.SpellCastSave
	}
	if damageDice == "" {
		return game.SpellCastSupport
	}
	if strings.EqualFold(apiSpell.Key, "magic-missile") {
		return game.SpellCastAutoHit
	}
	return game.SpellCastAttack
}

// baseDamageDice picks the lowest-slot damage expression
func baseDamageDice(damage *apiEntities.SpellDamage) string {
	slots := damage.SpellDamageAtSlotLevel
	if slots == nil {
		return ""
	}

	for _, dice := range []string{
		slots.FirstLevel,
		slots.SecondLevel,
		slots.ThirdLevel,
		slots.FourthLevel,
		slots.FifthLevel,
		slots.SixthLevel,
		slots.SeventhLevel,
		slots.EighthLevel,
		slots.NinthLevel,
	} {
		if dice != "" {
			return dice
		}
	}
	return ""
}
