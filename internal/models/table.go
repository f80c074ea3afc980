package models

// Row maps a normalised column name to its raw cell text.
type Row map[string]string

// RawTable is a parsed upload: an ordered header and rows keyed by header name.
// Every row carries every header key.
type RawTable struct {
	Source string
	Header []string
	Rows   []Row
}

// HasColumn reports whether name is part of the table header.
func (t *RawTable) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
