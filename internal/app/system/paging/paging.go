// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows shown in the volunteer and activity lists.
const PageSize = 50

// LimitPlusOne returns PageSize+1 for look-ahead pagination.
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseStart extracts the 1-based "start" query parameter used by offset
// pagination. Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "start"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Skip converts a 1-based start index into a Mongo skip.
func Skip(start int) int64 {
	if start < 1 {
		return 0
	}
	return int64(start - 1)
}

// Result reports whether neighbouring pages exist.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims rows fetched with LimitPlusOne for keyset pagination.
// Paging backwards drops the look-ahead row from the front, forwards from the back.
func TrimPage[T any](rows *[]T, before, after string) Result {
	var res Result
	if before != "" {
		if len(*rows) > PageSize {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
		return res
	}
	if len(*rows) > PageSize {
		*rows = (*rows)[:PageSize]
		res.HasNext = true
	}
	res.HasPrev = after != ""
	return res
}

// Range holds display values for an offset-paged list.
type Range struct {
	Start     int // 1-based, 0 when empty
	End       int
	Total     int64
	PrevStart int
	NextStart int
	HasPrev   bool
	HasNext   bool
}

// ComputeRange fills a Range from the current start, rows shown and total count.
func ComputeRange(start, shown int, total int64) Range {
	if shown == 0 {
		return Range{Total: total, PrevStart: 1, NextStart: 1}
	}
	prev := start - PageSize
	if prev < 1 {
		prev = 1
	}
	end := start + shown - 1
	return Range{
		Start:     start,
		End:       end,
		Total:     total,
		PrevStart: prev,
		NextStart: end + 1,
		HasPrev:   start > 1,
		HasNext:   int64(end) < total,
	}
}

// Direction indicates the keyset pagination direction.
type Direction int

const (
	Forward  Direction = iota // ascending, "gt" cursor
	Backward                  // descending, "lt" cursor
)

// KeysetConfig describes one keyset page request.
type KeysetConfig struct {
	Direction Direction
	SortOrder int
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset decodes before/after cursors; before wins when both are set.
func ConfigureKeyset(before, after string) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1}
	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// FindOptions returns sort and limit for a keyset page on sortField.
func (cfg KeysetConfig) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{
			{Key: sortField, Value: cfg.SortOrder},
			{Key: "_id", Value: cfg.SortOrder},
		}).
		SetLimit(LimitPlusOne())
}

// KeysetWindow returns the cursor condition for the query filter, or nil.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursors from the first and last rows.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
