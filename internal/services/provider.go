package services

import (
	"github.com/KirkDiggler/tabletop-engine/internal/clients/dnd5e"
	"github.com/KirkDiggler/tabletop-engine/internal/dice"
	"github.com/KirkDiggler/tabletop-engine/internal/engine"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/characters"
	"github.com/KirkDiggler/tabletop-engine/internal/repositories/gamestate"
	combatService "github.com/KirkDiggler/tabletop-engine/internal/services/combat"
	movementService "github.com/KirkDiggler/tabletop-engine/internal/services/movement"
	sessionService "github.com/KirkDiggler/tabletop-engine/internal/services/session"
	turnService "github.com/KirkDiggler/tabletop-engine/internal/services/turn"
)

// Provider holds all service instances
type Provider struct {
	Dispatcher      *engine.Dispatcher
	SessionService  sessionService.Service
	TurnService     turnService.Service
	MovementService movementService.Service
	CombatService   combatService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	SpellClient         dnd5e.Client
	GameStateRepository gamestate.Repository
	CharacterRepository characters.Repository
	Roller              dice.Roller // Optional, shared by turn and combat
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	gameStateRepo := cfg.GameStateRepository
	if gameStateRepo == nil {
		gameStateRepo = gamestate.NewInMemoryRepository()
	}

	charRepo := cfg.CharacterRepository
	if charRepo == nil {
		charRepo = characters.NewInMemoryRepository()
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	dispatcher := engine.NewDispatcher()

	sessService := sessionService.NewService(&sessionService.ServiceConfig{
		GameStateRepo: gameStateRepo,
		CharacterRepo: charRepo,
		Dispatcher:    dispatcher,
	})

	tService := turnService.NewService(&turnService.ServiceConfig{
		GameStateRepo: gameStateRepo,
		Dispatcher:    dispatcher,
		Roller:        roller,
	})

	mService := movementService.NewService(&movementService.ServiceConfig{
		GameStateRepo: gameStateRepo,
		Dispatcher:    dispatcher,
	})

	cService := combatService.NewService(&combatService.ServiceConfig{
		GameStateRepo: gameStateRepo,
		Dispatcher:    dispatcher,
		SpellClient:   cfg.SpellClient,
		Roller:        roller,
	})

	return &Provider{
		Dispatcher:      dispatcher,
		SessionService:  sessService,
		TurnService:     tService,
		MovementService: mService,
		CombatService:   cService,
	}
}
