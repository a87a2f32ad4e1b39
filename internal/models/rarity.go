package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rarity is a card's tier. The canonical spelling is first letter upper,
// rest lower ("Legendary"), matching what the frontend renders.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// AllRarities lists the tiers in ascending order of prestige.
var AllRarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityLegendary,
}

// NormalizeRarity folds free-form rarity text to a canonical tier. Anything
// that doesn't match a known tier after folding, including empty input,
// becomes Common. Whitespace is not trimmed; callers supply clean tokens.
func NormalizeRarity(raw string) Rarity {
	if raw == "" {
		return RarityCommon
	}
	folded := strings.ToLower(raw)

	first, size := utf8.DecodeRuneInString(folded)
	candidate := Rarity(string(unicode.ToUpper(first)) + folded[size:])

	for _, r := range AllRarities {
		if candidate == r {
			return r
		}
	}
	return RarityCommon
}
