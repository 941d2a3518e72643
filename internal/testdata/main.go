// Package testdata holds small charts shared by the package tests.
package testdata

import (
	"io"
	"strings"
)

// Single is one note in lane 1 at 1000ms, 120 bpm.
const Single = `
#TITLE Single
#ARTIST Tester
#BPM 120
#WAV01 kick.wav
#00011:0001
`

// LongNote is a long note in lane 2 from 1000ms to 2000ms, 120 bpm.
const LongNote = `
#TITLE Long
#BPM 120
#WAV01 hold.wav
#00052:0001
#00162:01
`

// Gapped has notes only in measure 3, 120 bpm, so the first note is at 6000ms.
const Gapped = `
#BPM 120
#00311:01
`

// Full exercises tempo changes, pauses, measure lengths, cues and some
// recoverable problems.
//
//	measure 0  0ms     BGA 01, lane 1 @ 1000
//	measure 1  2000ms  BGM 01, lane 1 @ 2000 2500 3000 3250, tempo 240 @ 3000
//	measure 2  3500ms  length 0.5, stop of 2 beats (500ms), lane 2 @ 4000 4250
//	measure 3  4500ms  lane 3 @ 4500, layer 02 @ 4500
//	measure 4  5500ms  unmatched end in lane 4, lane 5 long note 5500 - 6000
const Full = `
*---------------------- HEADER FIELD
#PLAYER 1
#PLAYLEVEL high
#GENRE Test
#TITLE Full Chart
#SUBTITLE [Another]
#ARTIST Tester
#PLAYLEVEL 7
#RANK 2
#STAGEFILE stage.png
#BPM 120
#BPM01 240
#STOP01 2
#WAV01 kick.wav
#WAV02 snare.ogg
#BMP01 back.bmp
#BMP02 layer.bmp

*---------------------- MAIN DATA FIELD
#00004:01
#00011:0001
#00101:01
#00111:01010201
#00103:0001
#00111:010
#00202:0.5
#00208:01
#00212:0101
#00313:02
#00307:02
#00464:01
#00455:02
#00465:0002
#00511:zz
`

// Reader wraps a chart for a parser.
func Reader(chart string) io.Reader {
	return strings.NewReader(chart)
}
