package refcache

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/albertocavalcante/go-jsonschema/docparse"
	"github.com/albertocavalcante/go-jsonschema/jsonvalue"
	"github.com/albertocavalcante/go-jsonschema/refgraph"
	"github.com/albertocavalcante/go-jsonschema/uri"
)

// site is a $ref object found during discovery, together with the slot
// that holds it.
type site struct {
	doc string // key URI of the owning document
	ptr string // pointer of the $ref object inside doc

	parent jsonvalue.Value // *jsonvalue.Object, jsonvalue.Array or nil for the document root
	member string
	index  int

	raw    string
	target string // absolute, normalised target URI
	seq    int
}

func (s *site) from() string {
	return s.doc + "#" + s.ptr
}

// pass is one resolution pass. Documents it loads stay pending until every
// reference in them resolves.
type pass struct {
	c   *Cache
	ctx context.Context
	log *slog.Logger

	pending map[string]jsonvalue.Value
	queue   refQueue
	seq     int
	graph   *refgraph.Builder

	// active holds the targets being looked up on the current call stack.
	// A target met again while active loops forever.
	active map[string]bool
}

func (c *Cache) resolve(ctx context.Context, key string) (jsonvalue.Value, error) {
	p := &pass{
		c:       c,
		ctx:     ctx,
		log:     c.logger.With("root", key),
		pending: make(map[string]jsonvalue.Value),
		graph:   refgraph.NewBuilder(),
		active:  make(map[string]bool),
	}

	start := time.Now()
	c.emit(ProgressEvent{Type: ProgressResolveStart, URI: key})
	refs, err := p.run(key)
	c.emit(ProgressEvent{Type: ProgressResolveEnd, URI: key, Duration: time.Since(start), Err: err})
	if err != nil {
		p.log.Debug("resolution pass discarded", "resources", len(p.pending), "error", err)
		return nil, err
	}

	for _, ref := range refs {
		ref.Bind(c)
	}
	c.mu.Lock()
	for k, doc := range p.pending {
		c.docs[k] = doc
	}
	c.mu.Unlock()
	c.graph.Merge(p.graph)

	p.log.Debug("resolution pass committed",
		"resources", len(p.pending),
		"references", len(refs),
		"duration", time.Since(start))
	return p.pending[key], nil
}

func (p *pass) run(key string) ([]*jsonvalue.Ref, error) {
	if err := p.load(key); err != nil {
		return nil, err
	}
	return p.drain()
}

// document returns a pending or committed document.
func (p *pass) document(key string) (jsonvalue.Value, bool) {
	if doc, ok := p.pending[key]; ok {
		return doc, true
	}
	return p.c.cached(key)
}

// load fetches and parses key, records its references, makes the document
// visible to the pass and then loads every resource it refers to.
func (p *pass) load(key string) error {
	if _, ok := p.document(key); ok {
		return nil
	}
	if err := p.ctx.Err(); err != nil {
		return err
	}

	data, err := p.fetch(key)
	if err != nil {
		return err
	}
	doc, err := docparse.Decode(p.c.cfg.parserFor(key), key, data)
	if err != nil {
		return err
	}

	if obj, ok := doc.(*jsonvalue.Object); ok && p.c.cfg.rewriteID {
		if _, has := obj.Get(p.c.cfg.idKeyword); has {
			obj.Set(p.c.cfg.idKeyword, jsonvalue.String(key))
		}
	}

	base, err := uri.Parse(key)
	if err != nil {
		return err
	}
	var sites []*site
	if err := p.discover(key, doc, base, "", nil, "", 0, &sites); err != nil {
		return err
	}

	p.pending[key] = doc
	p.graph.AddResource(key)

	var deps []string
	seen := map[string]bool{}
	for _, s := range sites {
		heap.Push(&p.queue, s)
		depKey, _, err := splitTarget(s.target)
		if err != nil {
			return &ReferenceError{From: s.from(), Ref: s.raw, Target: s.target, Err: fmt.Errorf("%w: %v", ErrInvalidReference, err)}
		}
		p.graph.AddReference(key, depKey)
		if !seen[depKey] {
			seen[depKey] = true
			deps = append(deps, depKey)
		}
	}
	p.log.Debug("loaded schema resource", "uri", key, "references", len(sites), "resources", len(deps))

	for _, dep := range deps {
		if err := p.load(dep); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) fetch(key string) ([]byte, error) {
	p.c.emit(ProgressEvent{Type: ProgressFetchStart, URI: key})
	start := time.Now()
	data, err := p.c.cfg.fetcher.Fetch(p.ctx, key)
	p.c.emit(ProgressEvent{Type: ProgressFetchEnd, URI: key, Duration: time.Since(start), Err: err})
	if err != nil {
		if ctxErr := p.ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("load %s: %w", key, ctxErr)
		}
		return nil, &FetchError{URI: key, Err: err}
	}
	return data, nil
}

// discover walks v collecting $ref objects. base is rebased by every
// object carrying a string id before its members are visited; reference
// objects are not descended into.
func (p *pass) discover(doc string, v jsonvalue.Value, base uri.URI, ptr string, parent jsonvalue.Value, member string, index int, out *[]*site) error {
	switch t := v.(type) {
	case *jsonvalue.Object:
		if raw, ok := jsonvalue.IsReference(t); ok {
			s := &site{doc: doc, ptr: ptr, parent: parent, member: member, index: index, raw: raw, seq: p.seq}
			p.seq++
			target, err := base.Resolve(raw)
			if err != nil {
				return &ReferenceError{From: s.from(), Ref: raw, Err: fmt.Errorf("%w: %v", ErrInvalidReference, err)}
			}
			if !target.IsAbs() {
				return &ReferenceError{From: s.from(), Ref: raw, Err: fmt.Errorf("%w: resolves to relative uri %s", ErrInvalidReference, target)}
			}
			s.target = target.Key().WithFragment(target.Fragment()).String()
			*out = append(*out, s)
			return nil
		}

		if id, ok := t.Get(p.c.cfg.idKeyword); ok {
			if s, ok := id.(jsonvalue.String); ok {
				rebased, err := base.Resolve(string(s))
				if err != nil {
					p.log.Debug("ignoring unusable id", "uri", doc, "pointer", ptr, "id", string(s), "error", err)
				} else {
					base = rebased
				}
			}
		}
		for _, k := range t.Keys() {
			child, _ := t.Get(k)
			if err := p.discover(doc, child, base, jsonvalue.Child(ptr, k), t, k, 0, out); err != nil {
				return err
			}
		}
	case jsonvalue.Array:
		for i, item := range t {
			if err := p.discover(doc, item, base, jsonvalue.ChildIndex(ptr, i), t, "", i, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// drain rewrites every queued slot to a reference handle, in queue order,
// and then checks that each handle reaches a value.
func (p *pass) drain() ([]*jsonvalue.Ref, error) {
	n := p.queue.Len()
	refs := make([]*jsonvalue.Ref, 0, n)
	sites := make([]*site, 0, n)
	for p.queue.Len() > 0 {
		s := heap.Pop(&p.queue).(*site)
		ref := jsonvalue.NewRef(s.raw, s.target, p)
		p.rewrite(s, ref)
		refs = append(refs, ref)
		sites = append(sites, s)
	}

	for i, ref := range refs {
		if _, err := ref.Resolve(); err != nil {
			s := sites[i]
			var cycle *jsonvalue.CycleError
			if errors.As(err, &cycle) {
				p.log.Debug("reference chain loops", "from", s.from(), "target", s.target)
			}
			return nil, &ReferenceError{From: s.from(), Ref: s.raw, Target: s.target, Err: err}
		}
	}
	return refs, nil
}

func (p *pass) rewrite(s *site, ref *jsonvalue.Ref) {
	switch parent := s.parent.(type) {
	case *jsonvalue.Object:
		parent.Set(s.member, ref)
	case jsonvalue.Array:
		parent[s.index] = ref
	default:
		p.pending[s.doc] = ref
	}
}

// Pointer resolves target against the pending and committed documents. It
// backs the handles of the pass until they are bound to the cache.
func (p *pass) Pointer(target string) (jsonvalue.Value, error) {
	if p.active[target] {
		return nil, &jsonvalue.CycleError{Target: target}
	}
	p.active[target] = true
	defer delete(p.active, target)

	key, fragment, err := splitTarget(target)
	if err != nil {
		return nil, err
	}
	doc, ok := p.document(key)
	if !ok {
		return nil, &NotCachedError{URI: key}
	}
	return jsonvalue.Lookup(doc, fragment)
}
