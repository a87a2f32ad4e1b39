package models

// StatKey names one of the six comparable attributes.
type StatKey string

const (
	StatPace      StatKey = "pace"
	StatShooting  StatKey = "shooting"
	StatPassing   StatKey = "passing"
	StatDribbling StatKey = "dribbling"
	StatDefending StatKey = "defending"
	StatPhysical  StatKey = "physical"
)

// StatKeys lists the attributes in display order.
var StatKeys = []StatKey{
	StatPace,
	StatShooting,
	StatPassing,
	StatDribbling,
	StatDefending,
	StatPhysical,
}

// StatWinner marks which side of a comparison took a stat.
type StatWinner string

const (
	StatEven  StatWinner = "none"
	StatAWins StatWinner = "a"
	StatBWins StatWinner = "b"
)

// Value returns the attribute named by key, or 0 for an unknown key.
func (s PlayerStats) Value(key StatKey) int {
	switch key {
	case StatPace:
		return s.Pace
	case StatShooting:
		return s.Shooting
	case StatPassing:
		return s.Passing
	case StatDribbling:
		return s.Dribbling
	case StatDefending:
		return s.Defending
	case StatPhysical:
		return s.Physical
	}
	return 0
}

// CompareStat decides one stat. A side wins only by being strictly greater;
// ties go to neither.
func CompareStat(a, b PlayerCard, key StatKey) StatWinner {
	va := a.Stats.Value(key)
	vb := b.Stats.Value(key)
	switch {
	case va > vb:
		return StatAWins
	case vb > va:
		return StatBWins
	}
	return StatEven
}

// CompareStats runs CompareStat over every attribute.
func CompareStats(a, b PlayerCard) map[StatKey]StatWinner {
	results := make(map[StatKey]StatWinner, len(StatKeys))
	for _, key := range StatKeys {
		results[key] = CompareStat(a, b, key)
	}
	return results
}
