package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"forum/storage"
)

// fakeDocs is an in-memory Documents implementation. It understands the
// filter and update shapes the repositories actually issue, and counts
// FindOne calls so tests can assert when the store was (not) consulted.
type fakeDocs struct {
	mu           sync.Mutex
	docs         map[string]bson.M
	order        []string
	findOneCalls int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: make(map[string]bson.M)}
}

func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDoc(m bson.M, out any) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func cloneDoc(m bson.M) bson.M {
	c, err := toDoc(m)
	if err != nil {
		panic(err)
	}
	return c
}

func (f *fakeDocs) InsertOne(ctx context.Context, doc any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	id, _ := m["_id"].(string)
	if id == "" {
		return errors.New("fake: document without _id")
	}
	if _, exists := f.docs[id]; exists {
		return fmt.Errorf("fake: duplicate key %q", id)
	}
	f.docs[id] = m
	f.order = append(f.order, id)
	return nil
}

func (f *fakeDocs) FindOne(ctx context.Context, filter bson.M, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findOneCalls++
	for _, id := range f.order {
		if matchFilter(f.docs[id], filter) {
			return decodeDoc(f.docs[id], out)
		}
	}
	return storage.ErrNoDocuments
}

func (f *fakeDocs) FindAll(ctx context.Context, filter bson.M, opts storage.FindOptions, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	matches := f.matches(filter)
	if len(opts.Sort) > 0 {
		key := opts.Sort[0].Key
		desc := asInt64(opts.Sort[0].Value) < 0
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := asInt64(matches[i][key]), asInt64(matches[j][key])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matches)) {
			matches = nil
		} else {
			matches = matches[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(matches)) {
		matches = matches[:opts.Limit]
	}

	outv := reflect.ValueOf(out).Elem()
	outv.Set(reflect.MakeSlice(outv.Type(), 0, len(matches)))
	for _, m := range matches {
		ev := reflect.New(outv.Type().Elem())
		if err := decodeDoc(m, ev.Interface()); err != nil {
			return err
		}
		outv.Set(reflect.Append(outv, ev.Elem()))
	}
	return nil
}

func (f *fakeDocs) Count(ctx context.Context, filter bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.matches(filter))), nil
}

func (f *fakeDocs) UpdateOne(ctx context.Context, filter bson.M, update any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.order {
		if !matchFilter(f.docs[id], filter) {
			continue
		}
		updated := cloneDoc(f.docs[id])
		if err := applyUpdate(updated, update); err != nil {
			return 0, err
		}
		if reflect.DeepEqual(normalizeDoc(updated), normalizeDoc(f.docs[id])) {
			return 0, nil
		}
		f.docs[id] = updated
		return 1, nil
	}
	return 0, nil
}

func (f *fakeDocs) FindOneAndUpdate(ctx context.Context, filter bson.M, update any, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.order {
		if !matchFilter(f.docs[id], filter) {
			continue
		}
		updated := cloneDoc(f.docs[id])
		if err := applyUpdate(updated, update); err != nil {
			return err
		}
		f.docs[id] = updated
		return decodeDoc(updated, out)
	}
	return storage.ErrNoDocuments
}

func (f *fakeDocs) DeleteOne(ctx context.Context, filter bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, id := range f.order {
		if matchFilter(f.docs[id], filter) {
			delete(f.docs, id)
			f.order = append(f.order[:i], f.order[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeDocs) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	remaining := f.order[:0]
	for _, id := range f.order {
		if matchFilter(f.docs[id], filter) {
			delete(f.docs, id)
			deleted++
			continue
		}
		remaining = append(remaining, id)
	}
	f.order = remaining
	return deleted, nil
}

func (f *fakeDocs) matches(filter bson.M) []bson.M {
	var out []bson.M
	for _, id := range f.order {
		if matchFilter(f.docs[id], filter) {
			out = append(out, f.docs[id])
		}
	}
	return out
}

func matchFilter(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			alternatives, ok := want.([]bson.M)
			if !ok {
				return false
			}
			anyMatch := false
			for _, alt := range alternatives {
				if matchFilter(doc, alt) {
					anyMatch = true
					break
				}
			}
			if !anyMatch {
				return false
			}
			continue
		}

		got := doc[key]
		if want == nil {
			if got != nil {
				return false
			}
			continue
		}
		if operators, ok := want.(bson.M); ok {
			pattern, ok := operators["$regex"].(string)
			if !ok || !matchRegexContains(got, pattern) {
				return false
			}
			continue
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// matchRegexContains approximates the case-insensitive $regex the
// search path uses, over strings and string arrays.
func matchRegexContains(got any, pattern string) bool {
	pattern = strings.ToLower(pattern)
	switch v := got.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), pattern)
	default:
		for _, el := range toSlice(got) {
			if s, ok := el.(string); ok && strings.Contains(strings.ToLower(s), pattern) {
				return true
			}
		}
		return false
	}
}

func looseEqual(got, want any) bool {
	if isNumeric(got) && isNumeric(want) {
		return asInt64(got) == asInt64(want)
	}
	return reflect.DeepEqual(got, want)
}

func applyUpdate(doc bson.M, update any) error {
	switch u := update.(type) {
	case bson.M:
		for op, fields := range u {
			fm, ok := fields.(bson.M)
			if !ok {
				return fmt.Errorf("fake: bad %s document", op)
			}
			switch op {
			case "$set":
				for k, v := range fm {
					doc[k] = v
				}
			case "$inc":
				for k, v := range fm {
					doc[k] = asInt64(doc[k]) + asInt64(v)
				}
			case "$addToSet":
				for k, v := range fm {
					cur := toSlice(doc[k])
					found := false
					for _, el := range cur {
						if looseEqual(el, v) {
							found = true
							break
						}
					}
					if !found {
						doc[k] = append(cur, v)
					}
				}
			case "$pull":
				for k, v := range fm {
					var kept []any
					for _, el := range toSlice(doc[k]) {
						if !looseEqual(el, v) {
							kept = append(kept, el)
						}
					}
					doc[k] = kept
				}
			default:
				return fmt.Errorf("fake: unsupported operator %s", op)
			}
		}
		return nil
	case mongo.Pipeline:
		for _, stage := range u {
			for _, elem := range stage {
				if elem.Key != "$set" {
					return fmt.Errorf("fake: unsupported pipeline stage %s", elem.Key)
				}
				fields, ok := elem.Value.(bson.M)
				if !ok {
					return errors.New("fake: bad pipeline $set")
				}
				for k, expr := range fields {
					if em, ok := expr.(bson.M); ok {
						if ref, ok := em["$not"].(string); ok {
							field := strings.TrimPrefix(ref, "$")
							b, _ := doc[field].(bool)
							doc[k] = !b
							continue
						}
						return errors.New("fake: unsupported pipeline expression")
					}
					doc[k] = expr
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("fake: unsupported update type %T", update)
	}
}

// normalizeDoc runs a doc through the bson codec so values written as
// Go types ([]string, int) compare equal to values read back from the
// store (primitive.A, int64).
func normalizeDoc(m bson.M) bson.M {
	return cloneDoc(m)
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case nil:
		return nil
	case []any:
		return s
	case bson.A:
		return []any(s)
	case []string:
		out := make([]any, len(s))
		for i, el := range s {
			out[i] = el
		}
		return out
	default:
		return nil
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float64:
		return true
	}
	return false
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

// fakeCache is an in-memory Cache. When failing is set every call
// errors, simulating an unreachable cache.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

var errCacheDown = errors.New("fake: cache unavailable")

func (f *fakeCache) Get(ctx context.Context, key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return false, errCacheDown
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (f *fakeCache) Set(ctx context.Context, key string, val any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return errCacheDown
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) SetMany(ctx context.Context, entries map[string]any) error {
	for key, val := range entries {
		if err := f.Set(ctx, key, val); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return errCacheDown
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}
