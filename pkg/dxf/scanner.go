// Package dxf extracts cuttable geometry from DXF drawings and normalizes it
// to millimeters. Common entity kinds go through the dxf-go document parser;
// the kinds it does not expose (arcs, lwpolylines, ellipses, splines, text,
// block inserts) are read by a second pass over the raw tag stream.
package dxf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Tag is one group-code/value pair from a DXF tag stream.
type Tag struct {
	Code  int
	Value string
}

func (t Tag) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("group %d: bad float %q", t.Code, t.Value)
	}
	return f, nil
}

func (t Tag) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(t.Value))
	if err != nil {
		return 0, fmt.Errorf("group %d: bad int %q", t.Code, t.Value)
	}
	return n, nil
}

// Scanner reads a DXF tag stream line pair by line pair.
type Scanner struct {
	r         *bufio.Scanner
	line      int
	err       error
	skipped   int
	firstSkip error
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{r: s}
}

// Next returns the next tag. A pair whose code line is not an integer is
// passed over, so one stray line does not lose the rest of the stream;
// Skipped reports such pairs. ok is false at end of stream or on a read
// error; check Err to distinguish.
func (s *Scanner) Next() (Tag, bool) {
	for {
		if s.err != nil {
			return Tag{}, false
		}
		if !s.r.Scan() {
			s.err = s.r.Err()
			return Tag{}, false
		}
		s.line++
		codeText := strings.TrimSpace(s.r.Text())
		if !s.r.Scan() {
			if err := s.r.Err(); err != nil {
				s.err = err
			} else {
				s.err = fmt.Errorf("line %d: group code %q without a value line", s.line, codeText)
			}
			return Tag{}, false
		}
		s.line++
		code, err := strconv.Atoi(codeText)
		if err != nil {
			s.skipped++
			if s.firstSkip == nil {
				s.firstSkip = fmt.Errorf("line %d: bad group code %q", s.line-1, codeText)
			}
			continue
		}
		return Tag{Code: code, Value: strings.TrimRight(s.r.Text(), "\r")}, true
	}
}

// Skipped reports how many malformed tag pairs were passed over, and the
// first one seen.
func (s *Scanner) Skipped() (int, error) {
	return s.skipped, s.firstSkip
}

func (s *Scanner) Err() error {
	return s.err
}
