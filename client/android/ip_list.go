package android

import "fmt"

// IPList wraps a list of ranges or addresses for export to Java
type IPList struct {
	items []string
}

// NewIPList creates an empty IPList
func NewIPList() *IPList {
	return &IPList{}
}

// Add appends an entry
func (l *IPList) Add(item string) {
	l.items = append(l.items, item)
}

// Get returns the entry at index i
func (l *IPList) Get(i int) (string, error) {
	if i < 0 || i >= len(l.items) {
		return "", fmt.Errorf("%d is out of range", i)
	}
	return l.items[i], nil
}

// Size returns the number of entries
func (l *IPList) Size() int {
	return len(l.items)
}

func (l *IPList) toSlice() []string {
	if l == nil {
		return []string{}
	}
	return append([]string{}, l.items...)
}

func ipListFrom(items []string) *IPList {
	return &IPList{items: append([]string(nil), items...)}
}
