package table

import (
	"errors"
	"fmt"
)

var (
	ErrGroupIndexOutOfRange = errors.New("group index out of range")
	ErrGroupNotFound        = errors.New("group not found")
	ErrInsufficientGroups   = errors.New("insufficient groups")
)

// Group is the subset of rows sharing one value of the split column.
type Group struct {
	Key   string
	Table *Table
}

// Groups are ordered by the first row in which each key appears.
type Groups []Group

// SplitOn partitions the table by the distinct values of column. Row order
// inside every group follows the source table.
func (t *Table) SplitOn(column string) (Groups, error) {
	keys, err := t.Strings(column)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	var order []string
	index := make(map[string][]int)
	for i, k := range keys {
		if _, ok := index[k]; !ok {
			order = append(order, k)
		}
		index[k] = append(index[k], i)
	}

	out := make(Groups, 0, len(order))
	for _, k := range order {
		sub := t.df.Subset(index[k])
		if sub.Err != nil {
			return nil, fmt.Errorf("split %q on %s: %w", column, k, sub.Err)
		}
		out = append(out, Group{Key: k, Table: New(k, sub)})
	}
	return out, nil
}

// Keys returns the group keys in order.
func (g Groups) Keys() []string {
	keys := make([]string, len(g))
	for i := range g {
		keys[i] = g[i].Key
	}
	return keys
}

// At returns the i-th group.
func (g Groups) At(i int) (Group, error) {
	if i < 0 || i >= len(g) {
		return Group{}, fmt.Errorf("%w: %d not in [0,%d)", ErrGroupIndexOutOfRange, i, len(g))
	}
	return g[i], nil
}

// Lookup returns the group with the given key.
func (g Groups) Lookup(key string) (Group, error) {
	for _, grp := range g {
		if grp.Key == key {
			return grp, nil
		}
	}
	return Group{}, fmt.Errorf("%w: %q (have %v)", ErrGroupNotFound, key, g.Keys())
}

// Require fails unless at least n groups exist.
func (g Groups) Require(n int) error {
	if len(g) < n {
		return fmt.Errorf("%w: need %d, found %d %v", ErrInsufficientGroups, n, len(g), g.Keys())
	}
	return nil
}
