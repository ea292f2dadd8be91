package index

import (
	"github.com/hupe1980/idxset/model"
)

// postings maps value keys to identity sets.
type postings struct {
	byKey map[string]*model.IDSet
	ids   *model.IDSet // every identity posted at least once
	refs  map[model.ID]int
}

func newPostings() postings {
	return postings{
		byKey: make(map[string]*model.IDSet),
		ids:   model.NewIDSet(),
		refs:  make(map[model.ID]int),
	}
}

func (p *postings) add(key string, id model.ID) {
	set, ok := p.byKey[key]
	if !ok {
		set = model.NewIDSet()
		p.byKey[key] = set
	}
	if set.Contains(id) {
		return
	}
	set.Add(id)
	p.refs[id]++
	p.ids.Add(id)
}

func (p *postings) remove(key string, id model.ID) {
	set, ok := p.byKey[key]
	if !ok || !set.Contains(id) {
		return
	}
	set.Remove(id)
	if set.IsEmpty() {
		delete(p.byKey, key)
	}
	if p.refs[id]--; p.refs[id] <= 0 {
		delete(p.refs, id)
		p.ids.Remove(id)
	}
}

func (p *postings) get(key string) *model.IDSet {
	if set, ok := p.byKey[key]; ok {
		return set.Clone()
	}
	return model.NewIDSet()
}

func (p *postings) count(key string) int {
	if set, ok := p.byKey[key]; ok {
		return int(set.Cardinality())
	}
	return 0
}
