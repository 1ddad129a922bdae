package styles_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"rotword/styles"
)

// host is a minimal document: a head element searched by id.
type host struct {
	doc  *etree.Document
	head *etree.Element
}

func newHost() *host {
	doc := etree.NewDocument()
	html := doc.CreateElement("html")
	return &host{doc: doc, head: html.CreateElement("head")}
}

func (h *host) Head() *etree.Element { return h.head }

func (h *host) ElementsByID(id string) []*etree.Element {
	return h.doc.FindElements("//*[@id='" + id + "']")
}

func TestRegistry_EnsureOnce(t *testing.T) {
	h := newHost()
	reg := styles.NewRegistry(h, zap.NewNop())

	if !reg.EnsureOnce("base", ".a { color: red; }") {
		t.Error("first EnsureOnce should create resource")
	}
	if reg.EnsureOnce("base", ".b { color: blue; }") {
		t.Error("second EnsureOnce should be a no-op")
	}
	if n := reg.Count("base"); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	content, ok := reg.Lookup("base")
	if !ok || content != ".a { color: red; }" {
		t.Errorf("Lookup() = %q, %v", content, ok)
	}
}

func TestRegistry_Upsert(t *testing.T) {
	h := newHost()
	reg := styles.NewRegistry(h, nil)

	if reg.Upsert("kf", "first") {
		t.Error("Upsert into empty registry should not report replacement")
	}
	if !reg.Upsert("kf", "second") {
		t.Error("Upsert should report replacement")
	}
	if n := reg.Count("kf"); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if content, _ := reg.Lookup("kf"); content != "second" {
		t.Errorf("Lookup() = %q, want second", content)
	}
}

func TestRegistry_UpsertCollapsesDuplicates(t *testing.T) {
	h := newHost()
	for _, text := range []string{"one", "two"} {
		el := h.head.CreateElement("style")
		el.CreateAttr("id", "kf")
		el.SetText(text)
	}
	reg := styles.NewRegistry(h, nil)

	if n := reg.Count("kf"); n != 2 {
		t.Fatalf("Count() = %d, want 2", n)
	}
	reg.Upsert("kf", "three")
	if n := reg.Count("kf"); n != 1 {
		t.Errorf("Count() after Upsert = %d, want 1", n)
	}
	// replacement is appended at the end of head
	last := h.head.ChildElements()[len(h.head.ChildElements())-1]
	if last.Text() != "three" {
		t.Errorf("last head element = %q", last.Text())
	}
}

func TestRegistry_PreexistingResourceHonored(t *testing.T) {
	h := newHost()
	el := h.head.CreateElement("style")
	el.CreateAttr("id", "base")
	el.SetText("page owned")

	reg := styles.NewRegistry(h, nil)
	if reg.EnsureOnce("base", "ours") {
		t.Error("existing resource should be kept")
	}
	if content, _ := reg.Lookup("base"); content != "page owned" {
		t.Errorf("Lookup() = %q", content)
	}
}

func TestRegistry_IgnoresNonStyleElements(t *testing.T) {
	h := newHost()
	body := h.doc.Root().CreateElement("body")
	div := body.CreateElement("div")
	div.CreateAttr("id", "base")

	reg := styles.NewRegistry(h, nil)
	if !reg.EnsureOnce("base", "x") {
		t.Error("div with the same id must not count as style resource")
	}
	if n := reg.Count("base"); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if div.Parent() != body {
		t.Error("div must be left in place")
	}
}

func TestRegistry_RemoveAndIDs(t *testing.T) {
	h := newHost()
	reg := styles.NewRegistry(h, nil)
	for _, id := range []string{"kf-10", "kf-2", "base", "kf-1"} {
		reg.EnsureOnce(id, id)
	}

	want := []string{"base", "kf-1", "kf-2", "kf-10"}
	if got := reg.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	if !reg.Remove("kf-2") {
		t.Error("Remove() should report removal")
	}
	if reg.Remove("kf-2") {
		t.Error("second Remove() should be a no-op")
	}
	if _, ok := reg.Lookup("kf-2"); ok {
		t.Error("removed resource still found")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	h := newHost()
	reg := styles.NewRegistry(h, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.EnsureOnce("base", "x") {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if created != 1 || reg.Count("base") != 1 {
		t.Errorf("created %d, count %d; want exactly one", created, reg.Count("base"))
	}
}

func TestNormalizeID(t *testing.T) {
	for in, want := range map[string]string{
		"rotating-words-base": "rotating-words-base",
		"My Base":             "my-base",
		"Keyframes 2":         "keyframes-2",
	} {
		if got := styles.NormalizeID(in); got != want {
			t.Errorf("NormalizeID(%q) = %q, want %q", in, got, want)
		}
	}
}
