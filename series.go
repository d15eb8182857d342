package indices

import (
	"fmt"
)

// Series is the ordered, contiguous sequence of monthly records of one index.
//
// Records are ascending by month, without duplicates and without holes. The month of a
// record is stored in the field named by Key. A Series keeps an index of months built when
// it is created, so lookups do not scan the records.
type Series struct {
	key     string
	records []*Record
	first   Month
	index   map[Month]int
}

// NewSeries validates records and returns them as a Series.
//
// It fails with a *GapError if two consecutive records are not exactly one month apart.
func NewSeries(key string, records []*Record) (*Series, error) {
	s := &Series{key: key, index: make(map[Month]int, len(records))}
	var previous Month
	for i, r := range records {
		m, err := r.Month(key)
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", i, err)
		}
		if i > 0 {
			switch {
			case m == previous:
				return nil, fmt.Errorf("record #%d: duplicate month %v", i, m)
			case m.Before(previous):
				return nil, fmt.Errorf("record #%d: month %v is before %v", i, m, previous)
			case m != previous.Next():
				return nil, &GapError{Last: previous, Requested: m}
			}
		} else {
			s.first = m
		}
		s.index[m] = i
		previous = m
	}
	s.records = records
	return s, nil
}

// Key returns the name of the month field.
func (s *Series) Key() string { return s.key }

// Len returns the number of records.
func (s *Series) Len() int { return len(s.records) }

// Records returns the records in chronological order. They are not copied.
func (s *Series) Records() []*Record { return s.records }

// At returns the i-th record.
func (s *Series) At(i int) *Record { return s.records[i] }

// Find returns the position of the record for m.
func (s *Series) Find(m Month) (int, bool) {
	i, ok := s.index[m]
	return i, ok
}

// Get returns the record for m, or nil.
func (s *Series) Get(m Month) *Record {
	if i, ok := s.index[m]; ok {
		return s.records[i]
	}
	return nil
}

// First returns the month of the anchor record.
func (s *Series) First() Month { return s.first }

// Last returns the month of the last record.
func (s *Series) Last() Month {
	if len(s.records) == 0 {
		return Month{}
	}
	return s.first.AddMonth(len(s.records) - 1)
}

// Append adds a record for m, which must be the month after Last. The month field is set
// as the first field of r.
func (s *Series) Append(m Month, r *Record) error {
	if len(s.records) > 0 && m != s.Last().Next() {
		return &GapError{Last: s.Last(), Requested: m}
	}
	rec := NewRecord(s.key, m)
	rec.Merge(r)
	if len(s.records) == 0 {
		s.first = m
	}
	s.index[m] = len(s.records)
	s.records = append(s.records, rec)
	return nil
}

// Locate finds where m falls in the series before a roll-forward.
//
// It returns the position of the record for m when it exists, or Len() when m is the month
// right after Last. The anchor is at position 0. Locate fails with ErrEmptySeries when there is
// no anchor, and with a *GapError when m is neither in the series nor right after it.
func (s *Series) Locate(m Month) (pos int, exists bool, err error) {
	if len(s.records) == 0 {
		return 0, false, ErrEmptySeries
	}
	if i, ok := s.index[m]; ok {
		return i, true, nil
	}
	if last := s.Last(); m != last.Next() {
		return 0, false, &GapError{Last: last, Requested: m}
	}
	return len(s.records), false, nil
}
