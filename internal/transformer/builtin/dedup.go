// Package builtin contains the reusable table transformers of the pipeline.
//
// DedupeLatest collapses rows sharing a business key and keeps the most
// recent one by a timestamp column:
//
//   - the row with the greatest timestamp wins;
//   - a null timestamp loses to any non-null one;
//   - ties keep the earliest row in input order.
//
// Winners are emitted in their original relative order. Keys are hashed with
// xxh3 into buckets and compared exactly within a bucket, so hash collisions
// never merge distinct keys.
package builtin

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"dataflow/internal/table"
)

// DedupeLatest keeps one row per key: the one with the latest By timestamp.
type DedupeLatest struct {
	Keys []string
	By   string
}

func (d DedupeLatest) Apply(in table.Table) (table.Table, error) {
	if len(d.Keys) == 0 || in.NumRows() == 0 {
		return in, nil
	}
	keyCols := make([]table.Column, len(d.Keys))
	for i, k := range d.Keys {
		c, ok := in.Column(k)
		if !ok {
			return table.Table{}, fmt.Errorf("dedupe: key column %q not found", k)
		}
		keyCols[i] = c
	}
	ts, err := table.Get[time.Time](in, d.By)
	if err != nil {
		return table.Table{}, fmt.Errorf("dedupe: %w", err)
	}

	type slot struct {
		key  []byte
		best int
	}
	buckets := make(map[uint64][]slot, in.NumRows())
	var buf []byte
	for row := 0; row < in.NumRows(); row++ {
		buf = appendKey(buf[:0], keyCols, row)
		h := xxh3.Hash(buf)

		slots := buckets[h]
		found := false
		for i := range slots {
			if string(slots[i].key) != string(buf) {
				continue
			}
			found = true
			if later(ts.At(row), ts.At(slots[i].best)) {
				slots[i].best = row
			}
			break
		}
		if !found {
			buckets[h] = append(slots, slot{key: slices.Clone(buf), best: row})
		}
	}

	idx := make([]int, 0, len(buckets))
	for _, slots := range buckets {
		for _, s := range slots {
			idx = append(idx, s.best)
		}
	}
	slices.Sort(idx)
	return in.Take(idx), nil
}

// later reports whether a should replace the current winner b. Equal
// timestamps keep b, which always comes first in input order.
func later(a, b table.Opt[time.Time]) bool {
	switch {
	case !a.Valid:
		return false
	case !b.Valid:
		return true
	}
	return a.V.After(b.V)
}

// appendKey encodes the key cells of row with a kind tag per cell so that,
// for example, a null and an empty string never collide.
func appendKey(dst []byte, cols []table.Column, row int) []byte {
	for _, c := range cols {
		v := c.Value(row)
		switch x := v.(type) {
		case nil:
			dst = append(dst, 0)
		case string:
			dst = append(dst, 's')
			dst = strconv.AppendInt(dst, int64(len(x)), 10)
			dst = append(dst, ':')
			dst = append(dst, x...)
		case int64:
			dst = append(dst, 'i')
			dst = strconv.AppendInt(dst, x, 10)
		case float64:
			dst = append(dst, 'f')
			dst = strconv.AppendFloat(dst, x, 'g', -1, 64)
		case bool:
			dst = append(dst, 'b')
			dst = strconv.AppendBool(dst, x)
		case time.Time:
			dst = append(dst, 't')
			dst = strconv.AppendInt(dst, x.UnixNano(), 10)
		default:
			dst = fmt.Append(dst, v)
		}
		dst = append(dst, 0x1f)
	}
	return dst
}
