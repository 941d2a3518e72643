package game

const beatsPerMeasure = 4.0

// MeasureDuration is the length in ms of a measure at the given tempo,
// scaled by the measure length multiplier.
func MeasureDuration(bpm, multiplier float64) float64 {
	return beatsPerMeasure * BeatDuration(bpm) * multiplier
}

// BeatDuration is the length of a single beat in ms.
func BeatDuration(bpm float64) float64 {
	return 60000.0 / bpm
}

// Decoded is the chart as read from the source, before any timing is
// applied. Events are in file order and have no Time.
type Decoded struct {
	Header
	InitialBPM float64

	Tempos         map[string]float64 // #BPMxx
	Pauses         map[string]float64 // #STOPxx, in beats
	MeasureLengths map[int]float64    // channel 02, by measure
	WAVs           map[string]string  // #WAVxx
	BMPs           map[string]string  // #BMPxx

	Events []*Event

	// Recoverable problems met while reading, the chart still loads
	Diagnostics []error
}

func NewDecoded() *Decoded {
	return &Decoded{
		InitialBPM:     DefaultBPM,
		Tempos:         map[string]float64{},
		Pauses:         map[string]float64{},
		MeasureLengths: map[int]float64{},
		WAVs:           map[string]string{},
		BMPs:           map[string]string{},
	}
}

// Multiplier is the length override of a measure, 1 when there is none.
func (d *Decoded) Multiplier(measure int) float64 {
	if m, ok := d.MeasureLengths[measure]; ok && m > 0 {
		return m
	}
	return 1
}
