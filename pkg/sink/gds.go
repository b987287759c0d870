package sink

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/matzehuels/masktower/pkg/errors"
	"github.com/matzehuels/masktower/pkg/geom"
	"github.com/matzehuels/masktower/pkg/kernel"
	"github.com/matzehuels/masktower/pkg/library"
)

// GDSII record types (record type << 8 | data type).
const (
	recHeader   = 0x0002
	recBgnLib   = 0x0102
	recLibName  = 0x0206
	recUnits    = 0x0305
	recEndLib   = 0x0400
	recBgnStr   = 0x0502
	recStrName  = 0x0606
	recEndStr   = 0x0700
	recBoundary = 0x0800
	recSRef     = 0x0A00
	recLayer    = 0x0D02
	recDatatype = 0x0E02
	recXY       = 0x1003
	recEndEl    = 0x1100
	recSName    = 0x1206
)

const (
	gdsVersion = 600

	// 1 µm user unit over a 1 nm database unit.
	userUnit  = 1e-3
	dbUnit    = 1e-9
	dbPerUser = 1000.0

	// GDSII limits a BOUNDARY to 8191 points including the closing one.
	maxBoundaryPoints = 8190
)

// GDSOption configures WriteGDS.
type GDSOption func(*gdsWriter)

// WithTimestamp fixes the modification time written to the library and
// every structure. The default is the current time.
func WithTimestamp(t time.Time) GDSOption {
	return func(g *gdsWriter) { g.stamp = t }
}

type gdsWriter struct {
	w     *bufio.Writer
	k     kernel.Kernel
	stamp time.Time
	err   error
}

// WriteGDS writes lib as a GDSII stream. Cells are written children first.
func WriteGDS(w io.Writer, lib *library.Library, k kernel.Kernel, opts ...GDSOption) error {
	g := &gdsWriter{w: bufio.NewWriter(w), k: k, stamp: time.Now()}
	for _, opt := range opts {
		opt(g)
	}

	g.record(recHeader, int16s(gdsVersion))
	g.record(recBgnLib, g.dates())
	g.record(recLibName, gdsString(lib.Name()))
	g.record(recUnits, real8s(userUnit, dbUnit))

	for _, c := range lib.Ordered() {
		if err := g.cell(c); err != nil {
			return err
		}
	}

	g.record(recEndLib, nil)
	if g.err != nil {
		return fmt.Errorf("write gds: %w", g.err)
	}
	if err := g.w.Flush(); err != nil {
		return fmt.Errorf("write gds: %w", err)
	}
	return nil
}

func (g *gdsWriter) cell(c *library.Cell) error {
	g.record(recBgnStr, g.dates())
	g.record(recStrName, gdsString(c.Name().String()))

	for _, p := range c.Polygons() {
		pieces, err := kernel.Fracture(g.k, p)
		if err != nil {
			return fmt.Errorf("cell %s: %w", c.Name(), err)
		}
		for _, piece := range pieces {
			if err := g.boundary(piece); err != nil {
				return fmt.Errorf("cell %s: %w", c.Name(), err)
			}
		}
	}

	for _, r := range c.References() {
		g.record(recSRef, nil)
		g.record(recSName, gdsString(r.Cell.Name().String()))
		g.record(recXY, int32s(toDB(r.Origin)...))
		g.record(recEndEl, nil)
	}

	g.record(recEndStr, nil)
	return nil
}

func (g *gdsWriter) boundary(p geom.Polygon) error {
	if len(p.Points) > maxBoundaryPoints {
		return errors.New(errors.ErrCodeUnsupported, "polygon with %d points exceeds the GDSII limit of %d", len(p.Points), maxBoundaryPoints)
	}
	if p.Degenerate() {
		return nil
	}
	coords := make([]int32, 0, 2*(len(p.Points)+1))
	for _, q := range p.Points {
		coords = append(coords, toDB(q)...)
	}
	coords = append(coords, toDB(p.Points[0])...)

	g.record(recBoundary, nil)
	g.record(recLayer, int16s(p.Layer))
	g.record(recDatatype, int16s(p.Datatype))
	g.record(recXY, int32s(coords...))
	g.record(recEndEl, nil)
	return nil
}

func (g *gdsWriter) record(kind uint16, data []byte) {
	if g.err != nil {
		return
	}
	if len(data)+4 > math.MaxUint16 {
		g.err = errors.New(errors.ErrCodeUnsupported, "gds record of %d bytes is too long", len(data))
		return
	}
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:], uint16(len(data)+4))
	binary.BigEndian.PutUint16(hdr[2:], kind)
	if _, err := g.w.Write(hdr[:]); err != nil {
		g.err = err
		return
	}
	if _, err := g.w.Write(data); err != nil {
		g.err = err
	}
}

// dates returns the modification and access time fields.
func (g *gdsWriter) dates() []byte {
	t := g.stamp
	f := []int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
	return int16s(append(f, f...)...)
}

func toDB(p geom.Point) []int32 {
	return []int32{int32(math.Round(p.X * dbPerUser)), int32(math.Round(p.Y * dbPerUser))}
}

func int16s(vs ...int) []byte {
	out := make([]byte, 2*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint16(out[2*i:], uint16(int16(v)))
	}
	return out
}

func int32s(vs ...int32) []byte {
	out := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(out[4*i:], uint32(v))
	}
	return out
}

func gdsString(s string) []byte {
	b := []byte(s)
	if len(b)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

func real8s(vs ...float64) []byte {
	out := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint64(out[8*i:], real8(v))
	}
	return out
}

// real8 encodes v as a GDSII 8-byte real: sign bit, 7-bit excess-64 base-16
// exponent and 56-bit mantissa.
func real8(v float64) uint64 {
	if v == 0 {
		return 0
	}
	var sign uint64
	if v < 0 {
		sign = 1 << 63
		v = -v
	}
	exp := 0
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	mant := uint64(v * (1 << 56))
	return sign | uint64(exp+64)<<56 | mant
}
