package view

import (
	"context"
	"errors"
	"sort"
)

// Pipeline describes a view as data: an anchor Match on Collection followed
// by joins, derived fields and shaping stages.
type Pipeline struct {
	Collection string
	Stages     []Stage
}

// Stage transforms the documents produced by the previous stage.
type Stage interface {
	apply(ctx context.Context, x *executor, in []Doc) ([]Doc, error)
}

type executor struct {
	src        Source
	collection string
	anchored   bool
}

var errNoAnchor = errors.New("pipeline must start with a match stage")

// Run executes the pipeline against src.
func (p Pipeline) Run(ctx context.Context, src Source) ([]Doc, error) {
	if len(p.Stages) == 0 {
		return nil, errNoAnchor
	}
	if _, ok := p.Stages[0].(MatchStage); !ok {
		return nil, errNoAnchor
	}
	x := &executor{src: src, collection: p.Collection}
	return x.run(ctx, nil, p.Stages)
}

func (x *executor) run(ctx context.Context, docs []Doc, stages []Stage) ([]Doc, error) {
	var err error
	for _, st := range stages {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		docs, err = st.apply(ctx, x, docs)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// MatchStage selects the anchor documents. As the first stage of a pipeline
// it queries the source; anywhere else it filters in memory.
type MatchStage struct {
	Field  string
	Values []any
	Where  map[string]any
}

func Match(field string, values ...any) MatchStage {
	return MatchStage{Field: field, Values: values}
}

// And adds an equality filter.
func (m MatchStage) And(field string, value any) MatchStage {
	where := make(map[string]any, len(m.Where)+1)
	for k, v := range m.Where {
		where[k] = v
	}
	where[field] = value
	m.Where = where
	return m
}

func (m MatchStage) apply(ctx context.Context, x *executor, in []Doc) ([]Doc, error) {
	if !x.anchored {
		x.anchored = true
		if len(m.Values) == 0 {
			return nil, nil
		}
		return x.src.Find(ctx, Query{Collection: x.collection, Field: m.Field, Values: m.Values, Where: m.Where})
	}
	want := keySet(m.Values)
	out := make([]Doc, 0, len(in))
	for _, d := range in {
		if k, ok := keyOf(d.Get(m.Field)); !ok || !want[k] {
			continue
		}
		if !matchesWhere(d, m.Where) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func keySet(values []any) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if k, ok := keyOf(v); ok {
			set[k] = true
		}
	}
	return set
}

// MatchesQuery reports whether d satisfies q. In-memory sources use it so
// they agree with the executor on key equality.
func MatchesQuery(d Doc, q Query) bool {
	k, ok := keyOf(d.Get(q.Field))
	if !ok || !keySet(q.Values)[k] {
		return false
	}
	return matchesWhere(d, q.Where)
}

func matchesWhere(d Doc, where map[string]any) bool {
	for field, want := range where {
		got, ok := keyOf(d.Get(field))
		w, _ := keyOf(want)
		if !ok || got != w {
			return false
		}
	}
	return true
}

// LookupStage joins documents from another collection. LocalField may hold
// a scalar or an array; for arrays the joined list follows the array order
// and repeats a document once per occurrence.
type LookupStage struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	// Where adds equality filters on the foreign collection.
	Where map[string]any
	// Fields projects joined documents. Empty keeps everything.
	Fields []string
	// Pipeline runs over the joined documents before they are attached.
	Pipeline []Stage
}

func (l LookupStage) apply(ctx context.Context, x *executor, in []Doc) ([]Doc, error) {
	locals := make([][]any, len(in))
	var values []any
	seen := make(map[string]bool)
	for i, d := range in {
		v := d.Get(l.LocalField)
		vs, isArray := asSlice(v)
		if !isArray && v != nil {
			vs = []any{v}
		}
		locals[i] = vs
		for _, lv := range vs {
			k, ok := keyOf(lv)
			if !ok || seen[k] {
				continue
			}
			seen[k] = true
			values = append(values, lv)
		}
	}

	index := make(map[string][]Doc)
	if len(values) > 0 {
		foreign, err := x.src.Find(ctx, Query{Collection: l.From, Field: l.ForeignField, Values: values, Where: l.Where})
		if err != nil {
			return nil, err
		}
		if len(l.Pipeline) > 0 {
			nested := &executor{src: x.src, collection: l.From, anchored: true}
			if foreign, err = nested.run(ctx, foreign, l.Pipeline); err != nil {
				return nil, err
			}
		}
		for _, f := range foreign {
			k, ok := keyOf(f.Get(l.ForeignField))
			if !ok {
				continue
			}
			if len(l.Fields) > 0 {
				f = project(f, l.Fields)
			}
			index[k] = append(index[k], f)
		}
	}

	out := make([]Doc, len(in))
	for i, d := range in {
		joined := make([]Doc, 0)
		for _, lv := range locals[i] {
			if k, ok := keyOf(lv); ok {
				joined = append(joined, index[k]...)
			}
		}
		nd := d.Clone()
		nd[l.As] = joined
		out[i] = nd
	}
	return out, nil
}

// Assign names one derived field.
type Assign struct {
	Name string
	Expr Expr
}

func Set(name string, expr Expr) Assign {
	return Assign{Name: name, Expr: expr}
}

// AddFieldsStage evaluates assignments in order; later ones see earlier ones.
type AddFieldsStage []Assign

func AddFields(assigns ...Assign) AddFieldsStage {
	return AddFieldsStage(assigns)
}

func (a AddFieldsStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	out := make([]Doc, len(in))
	for i, d := range in {
		nd := d.Clone()
		for _, as := range a {
			nd[as.Name] = as.Expr(nd)
		}
		out[i] = nd
	}
	return out, nil
}

// ProjectStage keeps only the named top-level fields.
type ProjectStage []string

func Project(fields ...string) ProjectStage {
	return ProjectStage(fields)
}

func (p ProjectStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	out := make([]Doc, len(in))
	for i, d := range in {
		out[i] = project(d, p)
	}
	return out, nil
}

func project(d Doc, fields []string) Doc {
	out := make(Doc, len(fields))
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}

// UnsetStage drops the named top-level fields.
type UnsetStage []string

func Unset(fields ...string) UnsetStage {
	return UnsetStage(fields)
}

func (u UnsetStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	out := make([]Doc, len(in))
	for i, d := range in {
		nd := d.Clone()
		for _, f := range u {
			delete(nd, f)
		}
		out[i] = nd
	}
	return out, nil
}

// UnwindStage emits one document per element of the array at Path. Documents
// whose array is missing or empty are dropped.
type UnwindStage struct {
	Path string
}

func Unwind(path string) UnwindStage {
	return UnwindStage{Path: path}
}

func (u UnwindStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	out := make([]Doc, 0, len(in))
	for _, d := range in {
		s, _ := asSlice(d[u.Path])
		for _, el := range s {
			nd := d.Clone()
			nd[u.Path] = el
			out = append(out, nd)
		}
	}
	return out, nil
}

// SortStage orders documents by one field. The sort is stable.
type SortStage struct {
	Field string
	Desc  bool
}

func Sort(field string, desc bool) SortStage {
	return SortStage{Field: field, Desc: desc}
}

func (s SortStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	out := make([]Doc, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i].Get(s.Field), out[j].Get(s.Field))
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

type accOp int

const (
	accCount accOp = iota
	accSum
	accSumSize
	accPush
	accMin
)

// Accumulator folds the documents of one group into a single field.
type Accumulator struct {
	Name  string
	op    accOp
	field string
}

func Count(name string) Accumulator { return Accumulator{Name: name, op: accCount} }
func Sum(name, field string) Accumulator { return Accumulator{Name: name, op: accSum, field: field} }
func SumSize(name, field string) Accumulator { return Accumulator{Name: name, op: accSumSize, field: field} }
func Push(name, field string) Accumulator { return Accumulator{Name: name, op: accPush, field: field} }
func Min(name, field string) Accumulator { return Accumulator{Name: name, op: accMin, field: field} }

// GroupStage groups documents by By. Output documents carry the group key
// under "id" and one field per accumulator, in first-seen group order.
type GroupStage struct {
	By           string
	Accumulators []Accumulator
}

func Group(by string, accs ...Accumulator) GroupStage {
	return GroupStage{By: by, Accumulators: accs}
}

func (g GroupStage) apply(_ context.Context, _ *executor, in []Doc) ([]Doc, error) {
	type bucket struct {
		key     any
		members []Doc
	}
	var order []string
	buckets := make(map[string]*bucket)
	for _, d := range in {
		v := d.Get(g.By)
		k, _ := keyOf(v)
		b, ok := buckets[k]
		if !ok {
			b = &bucket{key: v}
			buckets[k] = b
			order = append(order, k)
		}
		b.members = append(b.members, d)
	}

	out := make([]Doc, 0, len(order))
	for _, k := range order {
		b := buckets[k]
		nd := Doc{"id": b.key}
		for _, acc := range g.Accumulators {
			nd[acc.Name] = acc.fold(b.members)
		}
		out = append(out, nd)
	}
	return out, nil
}

func (a Accumulator) fold(members []Doc) any {
	switch a.op {
	case accCount:
		return int64(len(members))
	case accSum:
		items := make([]any, len(members))
		for i, m := range members {
			items[i] = m.Get(a.field)
		}
		return sum(items, func(v any) any { return v })
	case accSumSize:
		var total int64
		for _, m := range members {
			s, _ := asSlice(m.Get(a.field))
			total += int64(len(s))
		}
		return total
	case accPush:
		items := make([]any, 0, len(members))
		for _, m := range members {
			items = append(items, m.Get(a.field))
		}
		return items
	case accMin:
		var best any
		for _, m := range members {
			v := m.Get(a.field)
			if v == nil {
				continue
			}
			if best == nil || compare(v, best) < 0 {
				best = v
			}
		}
		return best
	}
	return nil
}
