// Package view interprets caller-owned memory as a 2-D float64 matrix without
// copying it.
//
// A View is built from a Descriptor (base address, rows, cols) handed across
// the C boundary. Element (i, j) lives at Address + (i*Cols + j)*8, row-major,
// encoded as IEEE-754 float64 in the configured byte order.
//
// Trust model: only the declared shape is transmitted. The view does not and
// cannot verify that the buffer really holds Rows*Cols elements; a host that
// lies about the shape corrupts memory. This is a protocol-level assumption,
// the same one every C array API makes.
//
// A View never owns its memory and must not outlive the call that supplied
// the descriptor.
package view

import (
	"encoding/binary"
	"math"
	"unsafe"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
)

// ElementWidth is the size in bytes of one float64 element.
const ElementWidth = 8

// Descriptor describes a caller-owned row-major float64 buffer.
// It mirrors `struct Array2Ptr { uint64_t data_address; int dim1; int dim2; }`.
type Descriptor struct {
	Address uintptr
	Rows    int
	Cols    int
}

// Len returns the declared element count.
func (d Descriptor) Len() int {
	return d.Rows * d.Cols
}

// FromSlice builds a Descriptor over Go memory. The caller must keep data
// alive (runtime.KeepAlive) for as long as any View over it is in use.
func FromSlice(data []float64, rows, cols int) Descriptor {
	d := Descriptor{Rows: rows, Cols: cols}
	if len(data) > 0 {
		d.Address = uintptr(unsafe.Pointer(&data[0]))
	}
	return d
}

// View is a non-owning matrix over a Descriptor. It implements mat.Matrix.
type View struct {
	desc  Descriptor
	order binary.ByteOrder
	raw   []byte
}

var _ mat.Matrix = (*View)(nil)

// New wraps d using the given byte order. Only negative dimensions and a null
// address behind a non-empty shape are rejected.
func New(d Descriptor, order binary.ByteOrder) (*View, error) {
	if d.Rows < 0 || d.Cols < 0 {
		return nil, errors.NewValueError("view.New", "negative dimensions")
	}
	if order == nil {
		order = binary.LittleEndian
	}

	v := &View{desc: d, order: order}
	n := d.Len()
	if n == 0 {
		return v, nil
	}
	if d.Address == 0 {
		return nil, errors.NewValueError("view.New", "null data address for a non-empty array")
	}

	v.raw = unsafe.Slice((*byte)(unsafe.Pointer(d.Address)), n*ElementWidth) //nolint:govet
	return v, nil
}

// LittleEndian wraps d with the boundary's wire encoding.
func LittleEndian(d Descriptor) (*View, error) {
	return New(d, binary.LittleEndian)
}

// Dims implements mat.Matrix.
func (v *View) Dims() (r, c int) {
	return v.desc.Rows, v.desc.Cols
}

// At implements mat.Matrix.
func (v *View) At(i, j int) float64 {
	return math.Float64frombits(v.order.Uint64(v.raw[v.offset(i, j):]))
}

// T implements mat.Matrix.
func (v *View) T() mat.Matrix {
	return mat.Transpose{Matrix: v}
}

// Set overwrites element (i, j) in the caller's buffer.
func (v *View) Set(i, j int, x float64) {
	v.order.PutUint64(v.raw[v.offset(i, j):], math.Float64bits(x))
}

// Len returns Rows*Cols.
func (v *View) Len() int {
	return v.desc.Len()
}

// IsEmpty reports whether the view has no elements.
func (v *View) IsEmpty() bool {
	return v.desc.Len() == 0
}

// Row copies row i into dst, allocating when dst is too short.
func (v *View) Row(i int, dst []float64) []float64 {
	if cap(dst) < v.desc.Cols {
		dst = make([]float64, v.desc.Cols)
	}
	dst = dst[:v.desc.Cols]
	for j := range dst {
		dst[j] = v.At(i, j)
	}
	return dst
}

// Flatten copies all elements in row-major order. A y view of shape n×1 or
// 1×n flattens to a plain vector of length n.
func (v *View) Flatten() []float64 {
	out := make([]float64, v.desc.Len())
	for k := range out {
		out[k] = math.Float64frombits(v.order.Uint64(v.raw[k*ElementWidth:]))
	}
	return out
}

// WriteVector overwrites the caller's buffer in place with src, row-major.
// The declared element count must equal len(src); the buffer is never resized.
func (v *View) WriteVector(src []float64) error {
	if v.desc.Len() != len(src) {
		return errors.NewDimensionError("view.WriteVector", len(src), v.desc.Len(), 0)
	}
	for k, x := range src {
		v.order.PutUint64(v.raw[k*ElementWidth:], math.Float64bits(x))
	}
	return nil
}

func (v *View) offset(i, j int) int {
	if i < 0 || i >= v.desc.Rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= v.desc.Cols {
		panic(mat.ErrColAccess)
	}
	return (i*v.desc.Cols + j) * ElementWidth
}
