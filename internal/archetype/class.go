package archetype

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CardClass is the player class an archetype belongs to.
// Values follow the numeric class ids used by the statistics backend.
type CardClass int

const (
	CardClassInvalid     CardClass = 0
	CardClassDeathKnight CardClass = 1
	CardClassDruid       CardClass = 2
	CardClassHunter      CardClass = 3
	CardClassMage        CardClass = 4
	CardClassPaladin     CardClass = 5
	CardClassPriest      CardClass = 6
	CardClassRogue       CardClass = 7
	CardClassShaman      CardClass = 8
	CardClassWarlock     CardClass = 9
	CardClassWarrior     CardClass = 10
	CardClassDream       CardClass = 11
	CardClassNeutral     CardClass = 12
	CardClassWhizbang    CardClass = 13
	CardClassDemonHunter CardClass = 14
)

// classInfo pairs the wire name with a display name.
type classInfo struct {
	Name    string // e.g., "DEMONHUNTER"
	Display string // e.g., "Demon Hunter"
}

// classes lists every class the backend can reference.
var classes = map[CardClass]classInfo{
	CardClassDeathKnight: {Name: "DEATHKNIGHT", Display: "Death Knight"},
	CardClassDruid:       {Name: "DRUID", Display: "Druid"},
	CardClassHunter:      {Name: "HUNTER", Display: "Hunter"},
	CardClassMage:        {Name: "MAGE", Display: "Mage"},
	CardClassPaladin:     {Name: "PALADIN", Display: "Paladin"},
	CardClassPriest:      {Name: "PRIEST", Display: "Priest"},
	CardClassRogue:       {Name: "ROGUE", Display: "Rogue"},
	CardClassShaman:      {Name: "SHAMAN", Display: "Shaman"},
	CardClassWarlock:     {Name: "WARLOCK", Display: "Warlock"},
	CardClassWarrior:     {Name: "WARRIOR", Display: "Warrior"},
	CardClassDream:       {Name: "DREAM", Display: "Dream"},
	CardClassNeutral:     {Name: "NEUTRAL", Display: "Neutral"},
	CardClassWhizbang:    {Name: "WHIZBANG", Display: "Whizbang"},
	CardClassDemonHunter: {Name: "DEMONHUNTER", Display: "Demon Hunter"},
}

// Known reports whether c is a class the backend can reference.
func (c CardClass) Known() bool {
	_, ok := classes[c]
	return ok
}

// String returns the wire name of the class ("MAGE"), or "INVALID".
func (c CardClass) String() string {
	if info, ok := classes[c]; ok {
		return info.Name
	}
	return "INVALID"
}

// DisplayName returns the human readable class name ("Demon Hunter").
func (c CardClass) DisplayName() string {
	if info, ok := classes[c]; ok {
		return info.Display
	}
	return "Unknown"
}

// ParseCardClass parses a wire class name. Matching is case-insensitive and
// ignores underscores so "DEMON_HUNTER" and "demonhunter" both resolve.
func ParseCardClass(name string) (CardClass, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	for class, info := range classes {
		if info.Name == normalized {
			return class, nil
		}
	}
	return CardClassInvalid, fmt.Errorf("unknown card class %q", name)
}

// MarshalJSON encodes the class by its wire name.
func (c CardClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the wire name or the numeric id.
func (c *CardClass) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseCardClass(name)
		if err != nil {
			*c = CardClassInvalid
			return nil
		}
		*c = parsed
		return nil
	}

	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("card class must be a name or id: %w", err)
	}
	*c = CardClass(id)
	return nil
}
