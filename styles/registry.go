// Package styles manages named style resources of a document.
package styles

import (
	"sort"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"github.com/gosimple/slug"
	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Host is a document which keeps style elements.
type Host interface {
	Head() *etree.Element
	ElementsByID(id string) []*etree.Element
}

// Registry is a document scoped collection of <style> elements keyed by
// their id attribute. Document tree is the only storage, so resources which
// were already present in a loaded page are honored. Registry operations
// are serialized, check-then-create is never interleaved.
type Registry struct {
	mu   sync.Mutex
	host Host
	log  *zap.Logger
}

// NewRegistry creates registry for host.
func NewRegistry(host Host, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{host: host, log: log.Named("styles")}
}

// NormalizeID makes identifier usable as id attribute value.
func NormalizeID(id string) string {
	return slug.Make(id)
}

// EnsureOnce installs content under id unless resource already exists.
// Returns true when resource was created.
func (r *Registry) EnsureOnce(id, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.find(id)) > 0 {
		r.log.Debug("Style already present", zap.String("id", id))
		return false
	}
	r.install(id, content)
	return true
}

// Upsert replaces every resource with id by a single new one appended to
// document head. Returns true when something was replaced.
func (r *Registry) Upsert(id, content string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.find(id)
	for _, el := range existing {
		el.Parent().RemoveChild(el)
	}
	r.install(id, content)
	if len(existing) > 0 {
		r.log.Debug("Style replaced", zap.String("id", id), zap.Int("removed", len(existing)))
	}
	return len(existing) > 0
}

// Lookup returns content of resource with id.
func (r *Registry) Lookup(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.find(id)
	if len(found) == 0 {
		return "", false
	}
	return found[0].Text(), true
}

// Remove deletes all resources with id. Returns true if anything was removed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.find(id)
	for _, el := range found {
		el.Parent().RemoveChild(el)
	}
	return len(found) > 0
}

// Count returns number of resources installed under id.
func (r *Registry) Count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.find(id))
}

// IDs lists ids of style resources in document head, naturally ordered.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, el := range r.host.Head().ChildElements() {
		if !isStyle(el) {
			continue
		}
		if id := el.SelectAttrValue("id", ""); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

func (r *Registry) find(id string) []*etree.Element {
	var found []*etree.Element
	for _, el := range r.host.ElementsByID(id) {
		if isStyle(el) {
			found = append(found, el)
		} else {
			r.log.Warn("Element shares id with style resource, ignoring", zap.String("id", id), zap.String("tag", el.Tag))
		}
	}
	return found
}

func (r *Registry) install(id, content string) {
	el := r.host.Head().CreateElement("style")
	el.CreateAttr("id", id)
	el.SetText(content)
	r.log.Debug("Style installed", zap.String("id", id), zap.Int("bytes", len(content)))
}

func isStyle(el *etree.Element) bool {
	return strings.EqualFold(el.Tag, "style")
}
