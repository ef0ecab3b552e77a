// Package scoring holds the pure point calculations for encounters.
// Tier boundaries here are the source of truth for difficulty labels.
package scoring

// Tier boundaries (base points).
const (
	TierBasicMax    = 45
	TierLightMax    = 75
	TierModerateMax = 110
	TierDeepMax     = 150
)

// PublicBonus is awarded when a response arrives through a public channel.
const PublicBonus = 50

// Tier returns the difficulty tier name for a given base point value.
//
// <45 basic, 45-74 light, 75-109 moderate, 110-149 deep, 150+ extreme.
func Tier(basePoints int) string {
	switch {
	case basePoints >= TierDeepMax:
		return "extreme"
	case basePoints >= TierModerateMax:
		return "deep"
	case basePoints >= TierLightMax:
		return "moderate"
	case basePoints >= TierBasicMax:
		return "light"
	default:
		return "basic"
	}
}

// SpeedBonus returns the bonus points for a response time in seconds.
func SpeedBonus(responseSeconds int) int {
	switch {
	case responseSeconds <= 15:
		return 30
	case responseSeconds <= 30:
		return 20
	case responseSeconds <= 60:
		return 15
	case responseSeconds <= 120:
		return 10
	case responseSeconds <= 300:
		return 5
	default:
		return 0
	}
}
