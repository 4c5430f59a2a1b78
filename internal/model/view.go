package model

// ViewMode is the state of the video panel
type ViewMode int

const (
	ModeLive ViewMode = iota
	ModeResult
)

func (m ViewMode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeResult:
		return "result"
	default:
		return "unknown"
	}
}

// Badge is the visual category of the title badge
type Badge int

const (
	BadgeIdle Badge = iota
	BadgeLive
	BadgeResult
)

func (b Badge) String() string {
	switch b {
	case BadgeLive:
		return "alert/live"
	case BadgeResult:
		return "success/result"
	default:
		return "idle"
	}
}

// Category is the visual category of a logged action
type Category int

const (
	CategoryNormal Category = iota
	CategoryAlert
)

func (c Category) String() string {
	if c == CategoryAlert {
		return "alert"
	}
	return "normal"
}
