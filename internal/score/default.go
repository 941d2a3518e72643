package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"git.lost.host/meutraa/bms/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN keeps plays for the lifetime of the process only.
const MemoryDSN = ":memory:"

type DefaultScorer struct {
	// DSN of the sqlite database, MemoryDSN when empty
	DSN    string
	Logger *slog.Logger

	db *sql.DB
}

type InputsCompact struct {
	Lane     int
	Presses  []float64
	Releases []float64
}

func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if i.Lane+1 > laneCount {
			laneCount = i.Lane + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for n := range ins {
		ins[n] = InputsCompact{Lane: n, Presses: []float64{}, Releases: []float64{}}
	}
	for _, i := range inputs {
		if i.Lane < 0 {
			continue
		}
		if i.Released {
			ins[i.Lane].Releases = append(ins[i.Lane].Releases, i.Time)
		} else {
			ins[i.Lane].Presses = append(ins[i.Lane].Presses, i.Time)
		}
	}
	return ins
}

// uncompactInputs restores time order. Inputs at the same time are ordered
// by lane, presses before releases.
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Presses {
			ins = append(ins, game.Input{Lane: i.Lane, Time: t})
		}
		for _, t := range i.Releases {
			ins = append(ins, game.Input{Lane: i.Lane, Time: t, Released: true})
		}
	}
	sort.SliceStable(ins, func(a, b int) bool {
		p, q := ins[a], ins[b]
		if p.Time != q.Time {
			return p.Time < q.Time
		}
		if p.Lane != q.Lane {
			return p.Lane < q.Lane
		}
		return !p.Released && q.Released
	})
	return ins
}

func (s *DefaultScorer) logger() *slog.Logger {
	if nil == s.Logger {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *DefaultScorer) Init() error {
	dsn := s.DSN
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if nil != err {
		return fmt.Errorf("unable to open score database: %w", err)
	}
	// Every connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists plays
	  (
		  id text not null primary key,
		  sum text not null,
		  judge_offset real,
		  score integer,
		  max_combo integer,
		  played integer,
		  inputs blob
	  );
	create index if not exists plays_sum on plays(sum);
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		db.Close()
		return fmt.Errorf("unable to create score tables: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// hashChart identifies a chart by what is played, not by where it was
// loaded from.
func (s *DefaultScorer) hashChart(c *game.Chart) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", c.Title, c.Artist)
	for _, e := range c.Events {
		fmt.Fprintf(h, "%d:%02X:%s:%.3f\n", e.Measure, e.Channel, e.ID, e.Time)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultScorer) Save(c *game.Chart, inputs []game.Input, offset float64, tally Tally) (uuid.UUID, error) {
	if nil == s.db {
		return uuid.Nil, fmt.Errorf("score database is not open")
	}
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return uuid.Nil, fmt.Errorf("unable to marshal inputs: %w", err)
	}
	id := uuid.New()
	_, err = s.db.Exec(
		"insert into plays(id, sum, judge_offset, score, max_combo, played, inputs) values(?, ?, ?, ?, ?, ?, ?)",
		id.String(), s.hashChart(c), offset, tally.Score, tally.MaxCombo, time.Now().UnixNano(), data,
	)
	if nil != err {
		return uuid.Nil, fmt.Errorf("unable to save play: %w", err)
	}
	s.logger().Debug("saved play", "id", id, "inputs", len(inputs), "score", tally.Score)
	return id, nil
}

func (s *DefaultScorer) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	if nil == s.db {
		return histories, fmt.Errorf("score database is not open")
	}
	rows, err := s.db.Query(
		"select id, sum, judge_offset, score, max_combo, played, inputs from plays where sum = ? order by played, rowid",
		s.hashChart(c),
	)
	if nil != err {
		return histories, fmt.Errorf("unable to load plays: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		h, err := s.scan(rows)
		if nil != err {
			s.logger().Warn("skipping unreadable play", "err", err)
			continue
		}
		histories = append(histories, *h)
	}
	return histories, rows.Err()
}

func (s *DefaultScorer) Get(id uuid.UUID) (*History, error) {
	if nil == s.db {
		return nil, fmt.Errorf("score database is not open")
	}
	row := s.db.QueryRow(
		"select id, sum, judge_offset, score, max_combo, played, inputs from plays where id = ?",
		id.String(),
	)
	h, err := s.scan(row)
	if nil != err {
		return nil, fmt.Errorf("unable to load play %s: %w", id, err)
	}
	return h, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *DefaultScorer) scan(row scanner) (*History, error) {
	var id, sum string
	var offset float64
	var score, maxCombo, played int64
	var data []byte
	if err := row.Scan(&id, &sum, &offset, &score, &maxCombo, &played, &data); nil != err {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if nil != err {
		return nil, err
	}
	var ins []InputsCompact
	if err := json.Unmarshal(data, &ins); nil != err {
		return nil, fmt.Errorf("unable to unmarshal inputs: %w", err)
	}
	return &History{
		ID:       uid,
		Sum:      sum,
		Inputs:   uncompactInputs(ins),
		Offset:   offset,
		Score:    score,
		MaxCombo: maxCombo,
		Played:   time.Unix(0, played),
	}, nil
}
