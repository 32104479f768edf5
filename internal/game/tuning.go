package game

// Tuning holds the simulator's gameplay constants. Values are loaded
// from the config file; DefaultTuning matches the shipped demo.
type Tuning struct {
	ObjectRadius  float64 // falling object radius, points
	SpawnInterval float64 // seconds between spawns
	SpeedMin      float64 // fall speed range, points per tick
	SpeedMax      float64
	BonusProb     float64 // probability of a bonus object once unlocked
	BonusMinHits  int     // hits required before bonus objects appear
	CullMargin    float64 // how far below the viewport objects survive
	CollisionBand float64 // only objects within this band above the viewport bottom are tested
}

func DefaultTuning() Tuning {
	return Tuning{
		ObjectRadius:  10,
		SpawnInterval: 0.8,
		SpeedMin:      2,
		SpeedMax:      6,
		BonusProb:     0.25,
		BonusMinHits:  10,
		CullMargin:    50,
		CollisionBand: 600, // whole viewport; shrink to skip far-away objects
	}
}
