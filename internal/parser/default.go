package parser

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"git.lost.host/meutraa/bms/internal/game"
	"github.com/pkg/errors"
)

// Lines longer than this are treated as unterminated
const maxLineLength = 1 << 20

type DefaultParser struct {
	// Logger receives recoverable problems. Nil discards them.
	Logger *slog.Logger
}

func (p *DefaultParser) logger() *slog.Logger {
	if nil == p.Logger {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

func (p *DefaultParser) ParseFile(file string) (*game.Decoded, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, &Error{Kind: FileUnreadable, Err: errors.Wrapf(err, "open %s", file)}
	}
	defer f.Close()
	return p.Parse(f)
}

func (p *DefaultParser) Parse(r io.Reader) (*game.Decoded, error) {
	d := game.NewDecoded()
	rd := &reader{decoded: d, log: p.logger()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		rd.line++
		rd.read(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); nil != err {
		return nil, &Error{Kind: FileUnreadable, Line: rd.line + 1, Err: errors.Wrap(err, "read chart")}
	}

	return d, nil
}

// reader holds the state of a single Parse call
type reader struct {
	decoded *game.Decoded
	log     *slog.Logger
	line    int
	order   int
}

func (r *reader) diagnose(kind ErrorKind, text string, err error) {
	e := &Error{Kind: kind, Line: r.line, Text: text, Err: err}
	r.decoded.Diagnostics = append(r.decoded.Diagnostics, e)
	r.log.Warn("chart problem", "line", r.line, "kind", kind.String(), "text", text, "err", err)
}

func (r *reader) read(line string) {
	if len(line) < 2 || line[0] != '#' {
		return
	}
	if isDataLine(line) {
		r.readData(line)
		return
	}
	r.readHeader(line)
}

// #mmmcc:payload
func isDataLine(line string) bool {
	if len(line) < 7 || line[6] != ':' {
		return false
	}
	for _, c := range line[1:4] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (r *reader) readHeader(line string) {
	command, value := line[1:], ""
	if i := strings.IndexAny(command, " \t"); i >= 0 {
		command, value = command[:i], strings.TrimSpace(command[i+1:])
	}
	command = strings.ToUpper(command)
	d := r.decoded

	switch {
	case command == "TITLE":
		d.Title = value
	case command == "SUBTITLE":
		d.Subtitle = value
	case command == "ARTIST":
		d.Artist = value
	case command == "GENRE":
		d.Genre = value
	case command == "STAGEFILE":
		d.StageFile = value
	case command == "PLAYLEVEL":
		d.PlayLevel = r.integer(line, value)
	case command == "RANK":
		d.Rank = r.integer(line, value)
	case command == "BPM":
		if bpm, ok := r.positive(line, value); ok {
			d.InitialBPM = bpm
		}
	case len(command) == 5 && strings.HasPrefix(command, "BPM"):
		if bpm, ok := r.positive(line, value); ok {
			d.Tempos[command[3:]] = bpm
		}
	case len(command) == 6 && strings.HasPrefix(command, "STOP"):
		if beats, ok := r.positive(line, value); ok {
			d.Pauses[command[4:]] = beats
		}
	case len(command) == 5 && strings.HasPrefix(command, "WAV"):
		if r.filename(line, value) {
			d.WAVs[command[3:]] = value
		}
	case len(command) == 5 && strings.HasPrefix(command, "BMP"):
		if r.filename(line, value) {
			d.BMPs[command[3:]] = value
		}
	default:
		// #PLAYER, #RANDOM, #LNTYPE etc do not change timing
		r.log.Debug("ignoring directive", "line", r.line, "command", command)
	}
}

func (r *reader) integer(line, value string) int {
	v, err := strconv.Atoi(value)
	if nil != err {
		r.diagnose(InvalidNumericField, line, err)
		return 0
	}
	return v
}

func (r *reader) positive(line, value string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if nil != err {
		r.diagnose(MalformedDirective, line, err)
		return 0, false
	}
	if v <= 0 {
		r.diagnose(InvalidNumericField, line, errors.New("value must be positive"))
		return 0, false
	}
	return v, true
}

func (r *reader) filename(line, value string) bool {
	if value == "" {
		r.diagnose(MalformedDirective, line, errors.New("missing file name"))
		return false
	}
	return true
}

func (r *reader) readData(line string) {
	measure, _ := strconv.Atoi(line[1:4])
	channel, err := strconv.ParseUint(line[4:6], 16, 8)
	if nil != err {
		r.diagnose(MalformedDataLine, line, err)
		return
	}
	payload := strings.TrimSpace(line[7:])

	kind, lane, ok := game.Classify(int(channel))
	if !ok {
		r.log.Debug("ignoring channel", "line", r.line, "channel", line[4:6])
		return
	}

	if kind == game.MeasureOverride {
		r.readMeasureLength(line, measure, payload)
		return
	}

	if len(payload)%2 != 0 {
		r.diagnose(MalformedDataLine, line, errors.New("odd payload length"))
		return
	}
	if !isHex(payload) {
		r.diagnose(MalformedDataLine, line, errors.New("payload is not hex"))
		return
	}

	n := len(payload) / 2
	for i := 0; i < n; i++ {
		id := strings.ToUpper(payload[i*2 : i*2+2])
		if id == "00" {
			continue
		}
		r.decoded.Events = append(r.decoded.Events, &game.Event{
			Measure:  measure,
			Position: float64(i) / float64(n),
			Channel:  int(channel),
			Lane:     lane,
			Kind:     kind,
			ID:       id,
			Order:    r.next(),
		})
	}
}

// Channel 02 carries a decimal multiplier instead of ids
func (r *reader) readMeasureLength(line string, measure int, payload string) {
	v, err := strconv.ParseFloat(payload, 64)
	if nil != err {
		r.diagnose(InvalidNumericField, line, err)
		return
	}
	if v <= 0 {
		r.diagnose(InvalidNumericField, line, errors.New("measure length must be positive"))
		return
	}
	r.decoded.MeasureLengths[measure] = v
	r.decoded.Events = append(r.decoded.Events, &game.Event{
		Measure: measure,
		Channel: game.ChannelMeasureLength,
		Kind:    game.MeasureOverride,
		ID:      payload,
		Order:   r.next(),
	})
}

func (r *reader) next() int {
	r.order++
	return r.order
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
