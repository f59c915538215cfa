package forge

// Table is the columnar storage backing one archetype: one column per
// component type, plus a parallel entities slice, kept in lock-step so
// entities[row] always names the entity whose data lives at row in every
// column. Tables are never torn down once created — an emptied table just
// sits at length zero, ready to be refilled without re-registering its
// columns.
type Table struct {
	id       TableID
	spec     ComponentSpec
	columns  map[TypeID]*column
	entities []Entity
}

func newTable(id TableID, spec ComponentSpec, reg *TypeRegistry) *Table {
	cols := make(map[TypeID]*column, spec.Len())
	for _, tid := range spec.IDs() {
		cols[tid] = newColumn(tid, reg.Info(tid))
	}
	return &Table{id: id, spec: spec, columns: cols}
}

func (t *Table) ID() TableID          { return t.id }
func (t *Table) Spec() ComponentSpec  { return t.spec }
func (t *Table) Length() int          { return len(t.entities) }
func (t *Table) Entity(row int) Entity { return t.entities[row] }

func (t *Table) Contains(id TypeID) bool {
	_, ok := t.columns[id]
	return ok
}

func (t *Table) column(id TypeID) (*column, bool) {
	c, ok := t.columns[id]
	return c, ok
}

// addRow reserves and appends one row for e, returning its index. Column
// bytes at the new row are not cleared: they are zero in freshly grown
// capacity, but may hold a stale copy left behind by an earlier swap-remove,
// until the caller writes each component explicitly.
func (t *Table) addRow(e Entity) int {
	row := len(t.entities)
	for _, c := range t.columns {
		c.reserve(1)
		c.setLen(row + 1)
	}
	t.entities = append(t.entities, e)
	return row
}

// swapRemoveRow drops row's components (running forge's destructor
// equivalent on each) and compacts by moving the last row into its place.
// Reports the entity that was moved into row, if any, so the caller can
// patch that entity's Location.
func (t *Table) swapRemoveRow(row int) (moved Entity, didMove bool) {
	last := len(t.entities) - 1
	for _, c := range t.columns {
		c.swapRemove(row)
	}
	if row != last {
		moved = t.entities[last]
		t.entities[row] = moved
		didMove = true
	}
	t.entities = t.entities[:last]
	return moved, didMove
}

// extractRow copies out every column's raw bytes at row without dropping
// them, then compacts the table the same way swapRemoveRow does. Used by
// the archetype migration path, where ownership of the surviving
// components transfers to the destination table rather than ending.
func (t *Table) extractRow(row int) (raw map[TypeID][]byte, moved Entity, didMove bool) {
	raw = make(map[TypeID][]byte, len(t.columns))
	for id, c := range t.columns {
		raw[id] = c.extractBytes(row)
	}
	last := len(t.entities) - 1
	for _, c := range t.columns {
		c.swapRemoveRaw(row)
	}
	if row != last {
		moved = t.entities[last]
		t.entities[row] = moved
		didMove = true
	}
	t.entities = t.entities[:last]
	return raw, moved, didMove
}

func tableGet[T any](t *Table, id TypeID, row int) (*T, bool) {
	c, ok := t.columns[id]
	if !ok {
		return nil, false
	}
	return columnGet[T](c, row), true
}

func tableSet[T any](t *Table, id TypeID, row int, v T) bool {
	c, ok := t.columns[id]
	if !ok {
		return false
	}
	columnWrite[T](c, row, v)
	return true
}
