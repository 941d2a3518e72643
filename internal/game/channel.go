package game

// Channel numbers of a data line, #mmmCC:
const (
	ChannelBGM           = 0x01
	ChannelMeasureLength = 0x02
	ChannelTempo         = 0x03
	ChannelBGA           = 0x04
	ChannelBGAPoor       = 0x06
	ChannelBGALayer      = 0x07
	ChannelPause         = 0x08
	ChannelStop          = 0x09
	ChannelBGALayer2     = 0x0A

	ChannelNote      = 0x10 // lane n is ChannelNote+n
	ChannelLongStart = ChannelNote + 0x40
	ChannelLongEnd   = ChannelLongStart + 0x10

	Lanes = 9
)

// Classify maps a channel to its event kind and lane. Lane is 0 for kinds
// that are not bound to a lane. ok is false for channels we do not handle.
func Classify(channel int) (kind Kind, lane int, ok bool) {
	switch channel {
	case ChannelBGM, ChannelBGA:
		return BackgroundCue, 0, true
	case ChannelBGAPoor, ChannelBGALayer, ChannelBGALayer2:
		return LayerCue, 0, true
	case ChannelMeasureLength:
		return MeasureOverride, 0, true
	case ChannelTempo:
		return TempoChange, 0, true
	case ChannelPause, ChannelStop:
		return Pause, 0, true
	}
	if lane, ok := laneOf(channel, ChannelNote); ok {
		return PlayableNote, lane, true
	}
	if lane, ok := laneOf(channel, ChannelLongStart); ok {
		return LongNoteStart, lane, true
	}
	if lane, ok := laneOf(channel, ChannelLongEnd); ok {
		return LongNoteEnd, lane, true
	}
	return 0, 0, false
}

func laneOf(channel, base int) (int, bool) {
	lane := channel - base
	return lane, lane >= 1 && lane <= Lanes
}

// ValidLane reports whether lane is one a player can press.
func ValidLane(lane int) bool {
	return lane >= 1 && lane <= Lanes
}
