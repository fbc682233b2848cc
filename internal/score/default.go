package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"git.lost.host/meutraa/stepline/internal/game"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type DefaultScorer struct {
	db *sql.DB
}

type PressesCompact struct {
	Lane    game.Direction
	Offsets []int
}

func compactPresses(presses []Press) []PressesCompact {
	laneCount := 0
	for _, p := range presses {
		if int(p.Lane) >= laneCount {
			laneCount = int(p.Lane) + 1
		}
	}
	ps := make([]PressesCompact, laneCount)
	for i := range ps {
		ps[i].Lane = game.Direction(i)
		ps[i].Offsets = []int{}
	}
	for _, p := range presses {
		ps[p.Lane].Offsets = append(ps[p.Lane].Offsets, p.Offset)
	}
	return ps
}

func uncompactPresses(presses []PressesCompact) []Press {
	ps := []Press{}
	for _, p := range presses {
		for _, o := range p.Offsets {
			ps = append(ps, Press{Lane: p.Lane, Offset: o})
		}
	}
	return ps
}

func (s *DefaultScorer) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.Wrap(err, "open score database")
	}

	initStatement := `
	create table if not exists scores 
	  (
		  id integer not null primary key, 
		  sum text,
		  points integer,
		  max_combo integer,
		  long_notes integer,
		  life integer,
		  counters text,
		  presses bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		db.Close()
		return errors.Wrap(err, "create scores table")
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

// hashChart identifies a chart by its event stream.
func (s *DefaultScorer) hashChart(c *game.Chart) string {
	h := sha256.New()
	h.Write([]byte{uint8(c.Difficulty), c.Level})
	record := make([]byte, 4+1+2+4*3)
	for _, e := range c.Events {
		binary.LittleEndian.PutUint32(record[0:], uint32(e.Timestamp))
		record[4] = uint8(e.Type)
		binary.LittleEndian.PutUint16(record[5:], uint16(e.Lanes))
		binary.LittleEndian.PutUint32(record[7:], uint32(e.Extra))
		binary.LittleEndian.PutUint32(record[11:], uint32(e.Extra2))
		binary.LittleEndian.PutUint32(record[15:], uint32(e.Extra3))
		h.Write(record)
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (s *DefaultScorer) Save(c *game.Chart, r Result) error {
	counters, err := json.Marshal(r.Counters)
	if nil != err {
		return errors.Wrap(err, "marshal counters")
	}
	presses, err := json.Marshal(compactPresses(r.Presses))
	if nil != err {
		return errors.Wrap(err, "marshal presses")
	}
	_, err = s.db.Exec(
		"insert into scores(sum, points, max_combo, long_notes, life, counters, presses) values(?, ?, ?, ?, ?, ?, ?)",
		s.hashChart(c), r.Points, r.MaxCombo, r.LongNotes, r.Life, string(counters), presses,
	)
	return errors.Wrap(err, "save score")
}

func (s *DefaultScorer) Load(c *game.Chart) []History {
	histories := []History{}
	rows, err := s.db.Query("select sum, points, max_combo, long_notes, life, counters, presses from scores where sum = ? order by id", s.hashChart(c))
	if nil != err {
		log.WithError(err).Warn("unable to load scores")
		return histories
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var counters string
		var presses []byte
		if err := rows.Scan(&h.Sum, &h.Result.Points, &h.Result.MaxCombo, &h.Result.LongNotes, &h.Result.Life, &counters, &presses); nil != err {
			log.WithError(err).Warn("unable to read score row")
			continue
		}
		if err := json.Unmarshal([]byte(counters), &h.Result.Counters); nil != err {
			log.WithError(err).Warn("unable to unmarshal counters")
			continue
		}
		var ps []PressesCompact
		if err := json.Unmarshal(presses, &ps); nil != err {
			log.WithError(err).Warn("unable to unmarshal press history")
			continue
		}
		h.Result.Presses = uncompactPresses(ps)
		histories = append(histories, h)
	}
	return histories
}
