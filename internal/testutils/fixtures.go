package testutils

import (
	"github.com/KirkDiggler/tabletop-engine/internal/domain/game"
)

// CreateTestCharacter creates a level-3 fighter ready for combat
func CreateTestCharacter(id, ownerID, name string) *game.Character {
	return &game.Character{
		ID:      id,
		OwnerID: ownerID,
		Name:    name,
		Race:    "dwarf",
		Class:   "fighter",
		Level:   3,
		Stats: game.Stats{
			Strength:     16,
			Dexterity:    14,
			Constitution: 14,
			Intelligence: 10,
			Wisdom:       12,
			Charisma:     8,
		},
		Health:          24,
		MaxHealth:       24,
		ActionPoints:    3,
		MaxActionPoints: 3,
		Speed:           25,
		ArmorClass:      16,
	}
}

// CreateTestGoblin creates a goblin token placed at the given cell
func CreateTestGoblin(tokenID string, x, y int) *game.NPCToken {
	return &game.NPCToken{
		TokenID:         tokenID,
		DefinitionID:    "goblin",
		Name:            "Goblin",
		X:               x,
		Y:               y,
		Health:          7,
		MaxHealth:       7,
		ArmorClass:      13,
		Speed:           30,
		Dexterity:       14,
		ActionPoints:    2,
		MaxActionPoints: 2,
	}
}

// CreateActiveTestSession creates an active session with one character
// and one goblin on a 10x10 map
func CreateActiveTestSession(id, hostID string) *game.Session {
	sess := game.NewSession(id, "TESTCODE", hostID)
	char := CreateTestCharacter("char-1", "player-1", "Thorin")
	sess.AddPlayer("player-1", "Alice", char.ID)
	sess.Characters[char.ID] = char
	sess.MapState = game.NewMapState("map-1", 10, 10)
	sess.MapState.CharacterPositions[char.ID] = game.Position{X: 0, Y: 0}
	sess.MapState.Tokens["npc-1"] = CreateTestGoblin("npc-1", 5, 5)
	sess.Start()
	return sess
}
