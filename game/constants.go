package game

import "time"

// FPS is the fixed rate of the simulation loop.
const FPS = 30

// TickDuration is the wall-clock length of a single tick.
const TickDuration = time.Second / FPS

// MsPerTick is the number of milliseconds per tick, used to convert
// user-supplied millisecond waits into tick counts.
const MsPerTick = 1000 / FPS

// TicksFromMillis converts a millisecond duration to whole ticks.
func TicksFromMillis(millis uint32) uint32 {
	return millis / MsPerTick
}
