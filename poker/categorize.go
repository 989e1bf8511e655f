package poker

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// Categorize buckets a starting hand class for logging.
// Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func (s StartingHand) Categorize() HoleCardCategory {
	if s.High > Ace || s.Low > Ace || s.Low > s.High {
		return CategoryUnknown
	}
	big, small := rankValue(s.High), rankValue(s.Low)

	switch {
	case s.IsPair() && small >= 11, big == 14 && small == 13:
		return CategoryPremium
	case s.IsPair() && small == 10, big == 14 && (small == 12 || small == 11):
		return CategoryStrong
	case s.IsPair() && small >= 7, s.Suited && small >= 10:
		return CategoryMedium
	case s.IsPair(), s.Suited && big-small <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}

// CategorizeHole is Categorize on the class of a hole.
func CategorizeHole(h Hole) HoleCardCategory {
	if !h[0].Valid() || !h[1].Valid() {
		return CategoryUnknown
	}
	return StartingHandOf(h).Categorize()
}

// rankValue converts the 0-12 rank to the 2-14 scale players use.
func rankValue(rank uint8) int {
	return int(rank) + 2
}

// RankValue is the 2-14 value of a card's rank (ace high).
func (c Card) RankValue() int { return rankValue(c.Rank()) }
