package model

// Region is the element id of a server-rendered part of the dashboard page
type Region string

const (
	RegionLogBody       Region = "log-body"
	RegionVideoLibrary  Region = "video-library"
	RegionResultLibrary Region = "result-library"
	RegionEmployees     Region = "employee-list-container"
	RegionTitle         Region = "active-video-name"
	RegionVideo         Region = "video-container"
	RegionLoading       Region = "loading-overlay"
)

// SyncRegions are the regions mirrored from the server on every sync tick
var SyncRegions = []Region{
	RegionLogBody,
	RegionVideoLibrary,
	RegionResultLibrary,
	RegionEmployees,
}

func (r Region) String() string {
	return string(r)
}
