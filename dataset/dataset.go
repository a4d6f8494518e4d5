// Package dataset reads and writes observation files.
//
// An observation file is a plain text file holding one observation per line.
// Each line contains m floating point fields separated by exactly one space or tab.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	identify "github.com/milosgajdos/go-identify"
	"gonum.org/v1/gonum/mat"
)

// ParseError is returned when an observation line can not be parsed
type ParseError struct {
	// Line is 1-based line number
	Line int
	// Msg describes the problem
	Msg string
}

// Error implements error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Unwrap returns identify.ErrFormat
func (e *ParseError) Unwrap() error {
	return identify.ErrFormat
}

// Reader reads observations from a text stream
type Reader struct {
	s    *bufio.Scanner
	c    io.Closer
	m    int
	line int
}

// NewReader creates new observation reader reading m-dimensional observations from r.
// It returns error if m is not positive.
func NewReader(r io.Reader, m int) (*Reader, error) {
	if m <= 0 {
		return nil, fmt.Errorf("%w: invalid observation dimension: %d", identify.ErrDims, m)
	}

	return &Reader{
		s: bufio.NewScanner(r),
		m: m,
	}, nil
}

// Open opens observation file at path
func Open(path string, m int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, m)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.c = f

	return r, nil
}

// Next returns next observation. It returns io.EOF when there are no more observations.
// Malformed lines are reported as *ParseError.
func (r *Reader) Next() (mat.Vector, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.line++

	return parse(strings.TrimSuffix(r.s.Text(), "\r"), r.m, r.line)
}

// Line returns the number of lines read so far
func (r *Reader) Line() int {
	return r.line
}

// Close closes the underlying file if the reader was created by Open
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}

	return r.c.Close()
}

// ReadAll reads all remaining observations
func (r *Reader) ReadAll() ([]mat.Vector, error) {
	var obs []mat.Vector
	for {
		y, err := r.Next()
		if errors.Is(err, io.EOF) {
			return obs, nil
		}
		if err != nil {
			return nil, err
		}
		obs = append(obs, y)
	}
}

func parse(text string, m, line int) (mat.Vector, error) {
	fields := split(text)
	if len(fields) != m {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("expected %d fields, got %d", m, len(fields))}
	}

	data := make([]float64, m)
	for i, f := range fields {
		if f == "" {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("field %d: empty", i+1)}
		}

		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &ParseError{Line: line, Msg: fmt.Sprintf("field %d: invalid number %q", i+1, f)}
		}
		data[i] = v
	}

	return mat.NewVecDense(m, data), nil
}

// split splits text at every single separator keeping empty fields; an empty line has no fields
func split(text string) []string {
	if text == "" {
		return nil
	}

	var fields []string
	start := 0
	for i, c := range text {
		if isSep(c) {
			fields = append(fields, text[start:i])
			start = i + 1
		}
	}

	return append(fields, text[start:])
}

func isSep(c rune) bool {
	return c == ' ' || c == '\t'
}

// Writer writes observations to a text stream
type Writer struct {
	w *bufio.Writer
	c io.Closer
}

// NewWriter creates new observation writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create creates observation file at path truncating it if it exists
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := NewWriter(f)
	w.c = f

	return w, nil
}

// Write writes observation y as a single line
func (w *Writer) Write(y mat.Vector) error {
	if y == nil || y.Len() == 0 {
		return fmt.Errorf("%w: empty observation", identify.ErrDims)
	}

	for i := 0; i < y.Len(); i++ {
		if i > 0 {
			if err := w.w.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w.w, "%f", y.AtVec(i)); err != nil {
			return err
		}
	}

	return w.w.WriteByte('\n')
}

// WriteAll writes all observations in obs
func (w *Writer) WriteAll(obs []mat.Vector) error {
	for _, y := range obs {
		if err := w.Write(y); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Flush flushes buffered observations
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Close flushes buffered observations and closes the underlying file if the writer was created by Create
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	if w.c == nil {
		return nil
	}

	return w.c.Close()
}

// Slice is in-memory observation source
type Slice struct {
	obs []mat.Vector
	pos int
}

// NewSlice returns observation source which delivers obs in order
func NewSlice(obs []mat.Vector) *Slice {
	return &Slice{obs: obs}
}

// Next returns next observation or io.EOF
func (s *Slice) Next() (mat.Vector, error) {
	if s.pos >= len(s.obs) {
		return nil, io.EOF
	}

	y := mat.VecDenseCopyOf(s.obs[s.pos])
	s.pos++

	return y, nil
}

// Reset rewinds the source to the first observation
func (s *Slice) Reset() {
	s.pos = 0
}

// Len returns total number of observations
func (s *Slice) Len() int {
	return len(s.obs)
}
