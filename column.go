package forge

import (
	"reflect"
	"unsafe"
)

// column is a type-erased, contiguous buffer of component values: the
// physical storage behind one slot of a Table. Values are stored as raw
// bytes and reinterpreted through unsafe.Pointer at the typed accessor
// boundary (columnGet/columnWrite), the same technique lazyecs and arche
// both use to get a columnar layout without per-type generated code.
type column struct {
	typ       TypeID
	goType    reflect.Type
	elemSize  uintptr
	zeroSized bool
	needsDrop bool
	data      []byte
	length    int
}

func newColumn(id TypeID, info typeLayout) *column {
	c := &column{
		typ:       id,
		goType:    info.goType,
		elemSize:  info.size,
		zeroSized: info.zeroSized,
		needsDrop: info.needsDrop,
	}
	if !c.zeroSized {
		c.data = make([]byte, 0, c.elemSize*uintptr(Config.defaultColumnCapacity))
	}
	return c
}

func (c *column) Len() int { return c.length }

func (c *column) reserve(extra int) {
	if c.zeroSized {
		return
	}
	needed := uintptr(c.length+extra) * c.elemSize
	if uintptr(cap(c.data)) >= needed {
		return
	}
	newCap := uintptr(cap(c.data)) * 2
	if newCap < needed {
		newCap = needed
	}
	grown := make([]byte, len(c.data), newCap)
	copy(grown, c.data)
	c.data = grown
}

func (c *column) setLen(n int) {
	c.length = n
	if !c.zeroSized {
		c.data = c.data[:uintptr(n)*c.elemSize]
	}
}

// ptrAt returns a pointer to row's backing bytes. For zero-sized types
// there is nothing to point at; any pointer with the column's lifetime
// works since Go never dereferences through a *T of size zero.
func (c *column) ptrAt(row int) unsafe.Pointer {
	if c.zeroSized {
		return unsafe.Pointer(c)
	}
	off := uintptr(row) * c.elemSize
	return unsafe.Pointer(&c.data[off])
}

// writeBytes copies a raw value into row, used by the migration path to
// move a component's bytes between tables without going through a typed
// accessor.
func (c *column) writeBytes(row int, raw []byte) {
	if c.zeroSized {
		return
	}
	off := uintptr(row) * c.elemSize
	copy(c.data[off:off+c.elemSize], raw)
}

// extractBytes copies row's raw bytes out without dropping them — ownership
// is moving to the caller (a different table's column), not ending.
func (c *column) extractBytes(row int) []byte {
	if c.zeroSized {
		return nil
	}
	off := uintptr(row) * c.elemSize
	out := make([]byte, c.elemSize)
	copy(out, c.data[off:off+c.elemSize])
	return out
}

// dropAt zeroes row's bytes — forge's destructor equivalent, run when a
// component value is actually discarded (despawn, RemoveComponents),
// never when it's merely relocated by a migration.
func (c *column) dropAt(row int) {
	if c.zeroSized || !c.needsDrop {
		return
	}
	reflect.NewAt(c.goType, c.ptrAt(row)).Elem().SetZero()
}

// swapRemove drops row's value, then compacts by moving the last row into
// its place — the standard dense-array remove.
func (c *column) swapRemove(row int) {
	last := c.length - 1
	c.dropAt(row)
	if row != last && !c.zeroSized {
		off := uintptr(row) * c.elemSize
		lastOff := uintptr(last) * c.elemSize
		copy(c.data[off:off+c.elemSize], c.data[lastOff:lastOff+c.elemSize])
	}
	c.setLen(last)
}

// swapRemoveRaw is swapRemove without the drop: used once a row's bytes
// have already been extracted and ownership handed to another table.
func (c *column) swapRemoveRaw(row int) {
	last := c.length - 1
	if row != last && !c.zeroSized {
		off := uintptr(row) * c.elemSize
		lastOff := uintptr(last) * c.elemSize
		copy(c.data[off:off+c.elemSize], c.data[lastOff:lastOff+c.elemSize])
	}
	c.setLen(last)
}

// columnGet returns a *T pointing directly into the column's backing bytes.
func columnGet[T any](c *column, row int) *T {
	return (*T)(c.ptrAt(row))
}

// columnWrite stores v at row. For zero-sized T there is nothing to store;
// presence is tracked entirely by the column's length.
func columnWrite[T any](c *column, row int, v T) {
	if c.zeroSized {
		return
	}
	*(*T)(c.ptrAt(row)) = v
}
