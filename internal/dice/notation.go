package dice

import (
	"fmt"
	"strconv"
	"strings"

	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
)

const (
	// MaxDiceCount is the largest number of dice a single notation may roll
	MaxDiceCount = 100

	// MaxDiceSides is the largest die size a notation may use
	MaxDiceSides = 100

	// MinDiceSides is the smallest die size a notation may use
	MinDiceSides = 2
)

// Notation is a parsed dice expression of the form XdY, XdY+Z or XdY-Z
type Notation struct {
	Count    int
	Sides    int
	Modifier int
}

// NotationResult is the outcome of rolling a parsed notation
type NotationResult struct {
	Rolls     []int  `json:"rolls"`
	Modifier  int    `json:"modifier"`
	Total     int    `json:"total"`
	Breakdown string `json:"breakdown"`
}

// ParseNotation parses a dice string like "2d6+3" into its parts
func ParseNotation(notation string) (*Notation, error) {
	trimmed := strings.TrimSpace(strings.ToLower(notation))
	if trimmed == "" {
		return nil, apperr.InvalidArgument("dice notation is required")
	}

	modifier := 0
	dicePart := trimmed
	if idx := strings.IndexAny(trimmed, "+-"); idx > 0 {
		modValue, err := strconv.Atoi(trimmed[idx+1:])
		if err != nil {
			return nil, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
		}
		modifier = modValue
		if trimmed[idx] == '-' {
			modifier = -modValue
		}
		dicePart = trimmed[:idx]
	}

	parts := strings.Split(dicePart, "d")
	if len(parts) != 2 {
		return nil, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, apperr.InvalidArgumentf("invalid dice notation '%s'", notation)
	}

	if count < 1 || count > MaxDiceCount {
		return nil, apperr.InvalidArgumentf("dice count must be between 1 and %d", MaxDiceCount)
	}
	if sides < MinDiceSides || sides > MaxDiceSides {
		return nil, apperr.InvalidArgumentf("dice size must be between %d and %d", MinDiceSides, MaxDiceSides)
	}

	return &Notation{Count: count, Sides: sides, Modifier: modifier}, nil
}

// RollNotation rolls a dice expression. Advantage and disadvantage are only
// valid for a single d20; when both are requested, advantage wins.
func RollNotation(roller Roller, notation string, advantage, disadvantage bool) (*NotationResult, error) {
	parsed, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}

	if advantage || disadvantage {
		if parsed.Count != 1 || parsed.Sides != 20 {
			return nil, apperr.InvalidArgument("advantage and disadvantage only apply to 1d20 rolls")
		}

		var result *RollResult
		if advantage {
			result, err = roller.RollWithAdvantage(parsed.Sides, parsed.Modifier)
		} else {
			result, err = roller.RollWithDisadvantage(parsed.Sides, parsed.Modifier)
		}
		if err != nil {
			return nil, apperr.Wrap(err, "failed to roll dice")
		}

		mode := "advantage"
		if !advantage {
			mode = "disadvantage"
		}
		return &NotationResult{
			Rolls:     result.Rolls,
			Modifier:  parsed.Modifier,
			Total:     result.Total,
			Breakdown: fmt.Sprintf("%s(%d, %d)%s = %d", mode, result.Rolls[0], result.Rolls[1], modifierSuffix(parsed.Modifier), result.Total),
		}, nil
	}

	result, err := roller.Roll(parsed.Count, parsed.Sides, parsed.Modifier)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to roll dice")
	}

	return &NotationResult{
		Rolls:     result.Rolls,
		Modifier:  parsed.Modifier,
		Total:     result.Total,
		Breakdown: buildBreakdown(result.Rolls, parsed.Modifier, result.Total),
	}, nil
}

// RollDamage rolls a damage expression. A critical hit doubles the number of
// dice, never the modifier.
func RollDamage(roller Roller, notation string, critical bool) (*NotationResult, error) {
	parsed, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}

	count := parsed.Count
	if critical {
		count *= 2
	}

	result, err := roller.Roll(count, parsed.Sides, parsed.Modifier)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to roll damage")
	}

	return &NotationResult{
		Rolls:     result.Rolls,
		Modifier:  parsed.Modifier,
		Total:     result.Total,
		Breakdown: buildBreakdown(result.Rolls, parsed.Modifier, result.Total),
	}, nil
}

func buildBreakdown(rolls []int, modifier, total int) string {
	parts := make([]string, 0, len(rolls))
	for _, roll := range rolls {
		parts = append(parts, strconv.Itoa(roll))
	}
	return fmt.Sprintf("%s%s = %d", strings.Join(parts, " + "), modifierSuffix(modifier), total)
}

func modifierSuffix(modifier int) string {
	switch {
	case modifier > 0:
		return fmt.Sprintf(" + %d", modifier)
	case modifier < 0:
		return fmt.Sprintf(" - %d", -modifier)
	default:
		return ""
	}
}
