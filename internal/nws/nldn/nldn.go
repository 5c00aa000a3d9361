// Package nldn reads the binary NLDN lightning stroke feed.
package nldn

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Tag opens every NLDN stream.
const Tag = "NLDN"

const recordSize = 28

// Stroke is one detected lightning stroke.
type Stroke struct {
	Valid        time.Time
	Lat          float64
	Lon          float64
	Signal       float64 // kA
	Multiplicity int
	Axis         int
	Eccentricity int
	Ellipse      int
	ChiSqr       int
}

type record struct {
	TSec    int32
	NSec    int32
	Lat1000 int32
	Lon1000 int32
	_       int16
	Sgnl10  int16
	_       int16
	Multi   int8
	_       int8
	Axis    int8
	Ecc     int8
	Ellipse int8
	ChiSqr  int8
}

// Reader decodes strokes from a stream positioned at the tag.
type Reader struct {
	r     *bufio.Reader
	Count uint32 // as announced by the header
}

// NewReader consumes the tag and header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var head struct {
		Tag   [4]byte
		Count uint32
	}
	if err := binary.Read(br, binary.BigEndian, &head); err != nil {
		return nil, fmt.Errorf("nldn header: %w", err)
	}
	if string(head.Tag[:]) != Tag {
		return nil, fmt.Errorf("nldn header: unexpected tag %q", head.Tag[:])
	}
	if skip := int64(head.Count)*recordSize - 8; skip > 0 {
		if _, err := io.CopyN(io.Discard, br, skip); err != nil {
			return nil, fmt.Errorf("nldn header: %w", err)
		}
	}
	return &Reader{r: br, Count: head.Count}, nil
}

// Next returns the next stroke, or io.EOF at the end of the stream. A
// trailing partial record is reported as io.ErrUnexpectedEOF.
func (r *Reader) Next() (Stroke, error) {
	var rec record
	if err := binary.Read(r.r, binary.BigEndian, &rec); err != nil {
		return Stroke{}, err
	}
	return Stroke{
		// The offset field carries microseconds despite its name.
		Valid:        time.Unix(int64(rec.TSec), int64(rec.NSec)*int64(time.Microsecond)).UTC(),
		Lat:          float64(rec.Lat1000) / 1000,
		Lon:          float64(rec.Lon1000) / 1000,
		Signal:       float64(rec.Sgnl10) / 10,
		Multiplicity: int(rec.Multi),
		Axis:         int(rec.Axis),
		Eccentricity: int(rec.Ecc),
		Ellipse:      int(rec.Ellipse),
		ChiSqr:       int(rec.ChiSqr),
	}, nil
}

// ReadAll decodes every stroke until EOF. The header count is advisory.
func ReadAll(r io.Reader) ([]Stroke, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	var out []Stroke
	for {
		s, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("nldn record %d: %w", len(out), err)
		}
		out = append(out, s)
	}
}
