// Package equipment classifies free-text exercise names into a closed set of
// equipment categories.
package equipment

import (
	"fmt"
	"strings"
)

// Category is one equipment category. The set is closed and ordered.
type Category int

// Equipment categories, in catalog order.
const (
	Barbell Category = iota
	Dumbbell
	DumbbellPair
	Kettlebell
	RowingMachine
	AssaultBike
	Bike
	Treadmill
	SkiErg
	CableMachine
	PullUpBar
	DipStation
	Rings
	ResistanceBand
	FoamRoller
	LacrosseBall
	PVCPipe
	WallBall
	MedicineBall
	SlamBall
	JumpRope
	Box
	Sandbag
	Sled
	Landmine
	TRX
	AbWheel
	// Bodyweight is both a real category and the fallback for names no rule
	// matches. Consumers rely on a category always being present.
	Bodyweight
)

var categoryNames = [...]string{
	Barbell:        "barbell",
	Dumbbell:       "dumbbell",
	DumbbellPair:   "dumbbell_pair",
	Kettlebell:     "kettlebell",
	RowingMachine:  "rowing_machine",
	AssaultBike:    "assault_bike",
	Bike:           "bike",
	Treadmill:      "treadmill",
	SkiErg:         "ski_erg",
	CableMachine:   "cable_machine",
	PullUpBar:      "pull_up_bar",
	DipStation:     "dip_station",
	Rings:          "rings",
	ResistanceBand: "resistance_band",
	FoamRoller:     "foam_roller",
	LacrosseBall:   "lacrosse_ball",
	PVCPipe:        "pvc_pipe",
	WallBall:       "wall_ball",
	MedicineBall:   "medicine_ball",
	SlamBall:       "slam_ball",
	JumpRope:       "jump_rope",
	Box:            "box",
	Sandbag:        "sandbag",
	Sled:           "sled",
	Landmine:       "landmine",
	TRX:            "trx",
	AbWheel:        "ab_wheel",
	Bodyweight:     "bodyweight",
}

// String returns the equipment key written into documents.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// All returns every category in catalog order.
func All() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory converts an equipment key back to its Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return Bodyweight, fmt.Errorf("unknown equipment category %q", s)
}
