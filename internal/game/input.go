package game

// Input is a lane press or release at a session time in ms, as recorded
// for replays.
type Input struct {
	Lane     int
	Time     float64
	Released bool
}
