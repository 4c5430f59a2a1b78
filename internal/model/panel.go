package model

import "time"

// PanelKind is what the video panel currently holds
type PanelKind int

const (
	PanelEmpty PanelKind = iota
	PanelLive
	PanelPlayback
	PanelMessage
)

func (k PanelKind) String() string {
	switch k {
	case PanelLive:
		return "live"
	case PanelPlayback:
		return "playback"
	case PanelMessage:
		return "message"
	default:
		return "empty"
	}
}

// Panel is the content of the video panel
type Panel struct {
	Kind    PanelKind
	Source  string // stream or playback URL
	Message string

	// Live stream progress
	Frames    int
	LastFrame int // size in bytes of the most recent frame
	Ready     bool
	Err       string
}

// Snapshot is a copy of the whole dashboard state at one point in time
type Snapshot struct {
	Mode       ViewMode
	Identifier string
	Title      string
	Badge      Badge
	Loading    bool
	Panel      Panel
	Regions    map[Region]string
	Generation uint64

	LastSync    time.Time
	LastSyncErr string
}

// Region returns the markup of a region or "" if it is not mirrored
func (s Snapshot) Region(r Region) string {
	return s.Regions[r]
}
