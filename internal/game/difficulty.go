package game

// Header is the metadata block at the top of a chart.
type Header struct {
	Title     string
	Subtitle  string
	Artist    string
	Genre     string
	StageFile string
	PlayLevel int
	Rank      int
}

// DefaultBPM is used when a chart never declares #BPM
const DefaultBPM = 130.0
