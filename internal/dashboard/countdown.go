package dashboard

import "fmt"

// Countdown urgency levels.
const (
	LevelNormal  = "normal"
	LevelWarning = "warning"
	LevelUrgent  = "urgent"
	LevelClosed  = "closed"
)

// Countdown is the closing-date badge of a tender.
type Countdown struct {
	Label string `json:"label"`
	Level string `json:"level"`
}

// CountdownFor builds the badge for a tender closing in days. ok is false when
// the closing date is unknown.
func CountdownFor(days int, ok bool) Countdown {
	switch {
	case !ok:
		return Countdown{Label: "TBC", Level: LevelNormal}
	case days < 0:
		return Countdown{Label: "CLOSED", Level: LevelClosed}
	case days == 0:
		return Countdown{Label: "TODAY!", Level: LevelUrgent}
	case days == 1:
		return Countdown{Label: "TOMORROW!", Level: LevelUrgent}
	case days <= 3:
		return Countdown{Label: fmt.Sprintf("%d days", days), Level: LevelUrgent}
	case days <= 7:
		return Countdown{Label: fmt.Sprintf("%d days", days), Level: LevelWarning}
	default:
		return Countdown{Label: fmt.Sprintf("%d days", days), Level: LevelNormal}
	}
}

// DaysText describes the time left on a tender's detail view.
func DaysText(days int, ok bool) string {
	switch {
	case !ok:
		return "-"
	case days < 0:
		return "Closed"
	case days == 1:
		return "1 day remaining"
	default:
		return fmt.Sprintf("%d days remaining", days)
	}
}
