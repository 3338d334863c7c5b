package phout

// Dataset is an ordered, read-only collection of records. Subsets share the
// backing records of their parent
type Dataset struct {
	records []Record
}

// NewDataset wraps records in file order
func NewDataset(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Size returns the record count
func (d *Dataset) Size() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns the records in order. Callers must not modify the slice
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// First returns the first record by file order
func (d *Dataset) First() (Record, bool) {
	if d.Size() == 0 {
		return Record{}, false
	}
	return d.records[0], true
}

// Last returns the last record by file order
func (d *Dataset) Last() (Record, bool) {
	if d.Size() == 0 {
		return Record{}, false
	}
	return d.records[len(d.records)-1], true
}

// Subset returns records [start, start+length) clipped to the dataset
func (d *Dataset) Subset(start, length int) *Dataset {
	n := d.Size()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + length
	if length < 0 || end < start {
		end = start
	}
	if end > n {
		end = n
	}
	return &Dataset{records: d.Records()[start:end:end]}
}

// Where returns the records whose field f has grouping value v
func (d *Dataset) Where(f Field, v string) *Dataset {
	var selected []Record
	for _, rec := range d.Records() {
		if rec.Value(f) == v {
			selected = append(selected, rec)
		}
	}
	return &Dataset{records: selected}
}
