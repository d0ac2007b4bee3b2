package model

import "fmt"

// Unclassified is the region name given to coordinates outside every POI.
const Unclassified = "Other"

// DefaultLandingWindow is the number of time steps after a player's first
// active sample that still count as part of the drop.
const DefaultLandingWindow = 45

// ---- Raw telemetry ----

// Sample is one breadcrumb row: a player's position and life indicator at a time step.
type Sample struct {
	MatchID  int64
	PlayerID int64
	TimeStep int64
	X, Y, Z  float64
	Life     int64 // >= 0 while in play; negative before spawn / when inactive
}

// Active reports whether the player was in play at this sample.
func (s Sample) Active() bool { return s.Life >= 0 }

// Key returns the trajectory key for this sample.
func (s Sample) Key() PlayerKey { return PlayerKey{MatchID: s.MatchID, PlayerID: s.PlayerID} }

// PlayerKey identifies one player's trajectory within one match.
type PlayerKey struct {
	MatchID  int64
	PlayerID int64
}

func (k PlayerKey) String() string {
	return fmt.Sprintf("match_%d/player_%d", k.MatchID, k.PlayerID)
}

// Less orders keys by match, then player.
func (k PlayerKey) Less(o PlayerKey) bool {
	if k.MatchID != o.MatchID {
		return k.MatchID < o.MatchID
	}
	return k.PlayerID < o.PlayerID
}

// ---- Regions ----

// Vertex is one (x, y) corner of a region boundary in map units.
type Vertex struct{ X, Y float64 }

// RegionDef is a boundary row as read from a region source, before validation.
type RegionDef struct {
	Name     string
	Label    string // short display string, e.g. "A"
	Boundary []Vertex
}

// ---- Extracted events ----

// Trajectory is the per-player result of event extraction, before classification.
type Trajectory struct {
	Key          PlayerKey
	Landing      Sample
	Death        Sample
	SurvivalTime int64 // max time_step over active samples
}

type LandingEvent struct {
	Key          PlayerKey
	X, Y         float64
	SurvivalTime int64
	Region       string // Unclassified if outside every region
}

type DeathEvent struct {
	Key    PlayerKey
	X, Y   float64
	Region string
}

// ---- Summaries ----

// LandingSummary is the landing-based summary row for one region.
type LandingSummary struct {
	Region          string
	Label           string
	PlayerCount     int
	AvgSurvivalTime float64
	SurvivalScore   int // 0..100, min-max normalized over AvgSurvivalTime
}

// DeathSummary is the death-based summary row for one region.
type DeathSummary struct {
	Region     string
	Label      string
	DeathCount int
}

// RunSummary is a lightweight record for the runs/show commands.
type RunSummary struct {
	RunID            string
	CreatedAt        string
	Source           string // telemetry file or "db"
	LandingWindow    int64
	Regions          int
	Players          int
	SkippedPlayers   int
	UnclassifiedLand int
	UnclassifiedDead int
}
