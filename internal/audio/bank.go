// Package audio decodes a chart's keysounds and plays them through a
// mixer on the speaker.
package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"golang.org/x/sync/errgroup"
)

// DefaultFormat is what every keysound is resampled to.
var DefaultFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// Charts often name a .wav that was shipped as .ogg, try the others too.
var extensions = []string{".wav", ".ogg", ".mp3"}

// Bank holds decoded keysounds by id.
type Bank struct {
	Format beep.Format
	Logger *slog.Logger

	mu     sync.Mutex
	sounds map[string]*beep.Buffer
}

func NewBank(format beep.Format, logger *slog.Logger) *Bank {
	if nil == logger {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bank{Format: format, Logger: logger, sounds: map[string]*beep.Buffer{}}
}

// Load decodes every file of table, by id, relative to dir. Sounds that
// cannot be found or decoded are logged and skipped, the number loaded is
// returned.
func (b *Bank) Load(dir string, table map[string]string) int {
	var g errgroup.Group
	g.SetLimit(8)
	for id, name := range table {
		g.Go(func() error {
			buffer, err := b.decode(Resolve(dir, name))
			if nil != err {
				b.Logger.Warn("unable to load keysound", "id", id, "file", name, "err", err)
				return nil
			}
			b.mu.Lock()
			b.sounds[id] = buffer
			b.mu.Unlock()
			return nil
		})
	}
	g.Wait()
	b.Logger.Debug("loaded keysounds", "loaded", b.Len(), "listed", len(table))
	return b.Len()
}

func (b *Bank) decode(file string) (*beep.Buffer, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported audio file %s", file)
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %s: %w", file, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != b.Format.SampleRate {
		s = beep.Resample(4, format.SampleRate, b.Format.SampleRate, s)
	}
	buffer := beep.NewBuffer(b.Format)
	buffer.Append(s)
	return buffer, nil
}

// Add a decoded sound under id.
func (b *Bank) Add(id string, buffer *beep.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sounds[id] = buffer
}

// Streamer plays the sound of id from the start.
func (b *Bank) Streamer(id string) (beep.Streamer, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buffer, ok := b.sounds[id]
	if !ok {
		return nil, false
	}
	return buffer.Streamer(0, buffer.Len()), true
}

func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sounds)
}

// Resolve finds name in dir, trying the other audio extensions when the
// file as named does not exist.
func Resolve(dir, name string) string {
	file := filepath.Join(dir, filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if _, err := os.Stat(file); nil == err {
		return file
	}
	base := strings.TrimSuffix(file, filepath.Ext(file))
	for _, ext := range extensions {
		if _, err := os.Stat(base + ext); nil == err {
			return base + ext
		}
	}
	return file
}
