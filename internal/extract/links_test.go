package extract

import (
	"testing"
)

const collectionHTML = `
<html><body>
<div class="collection-grid">
  <a class="product-card" href="/products/velox-2207">Velox 2207</a>
  <a class="product-card" href="/products/velox-2207#reviews">Velox 2207 reviews</a>
  <a class="product-card" href="/products/mach-3-frame">Mach 3 Frame</a>
</div>
<nav class="pagination"><a href="/collections/motors?page=2">Next</a></nav>
<footer>
  <a href="/pages/contact">Contact</a>
  <a href="https://instagram.example.com/shop">Instagram</a>
  <a href="mailto:info@shop.example.com">Mail</a>
</footer>
</body></html>`

func TestDiscoverLinks(t *testing.T) {
	p := extractProfile(t)
	p.LinkSelectors = []string{"a.product-card", ".pagination a"}

	links := DiscoverLinks(docFrom(t, collectionHTML), p)

	byURL := make(map[string]Link)
	for _, l := range links {
		if _, dup := byURL[l.URL]; dup {
			t.Errorf("duplicate link %q", l.URL)
		}
		byURL[l.URL] = l
	}

	product, ok := byURL["https://shop.example.com/products/velox-2207"]
	if !ok {
		t.Fatal("expected product link")
	}
	if !product.IsProduct {
		t.Error("expected /products/ link to be product-like")
	}

	pagination, ok := byURL["https://shop.example.com/collections/motors?page=2"]
	if !ok {
		t.Fatal("expected pagination link")
	}
	if pagination.IsProduct {
		t.Error("expected pagination link to be collection-like")
	}

	// Catch-all anchor scan picks up the footer page link too.
	if _, ok := byURL["https://shop.example.com/pages/contact"]; !ok {
		t.Error("expected catch-all scan to find footer link")
	}

	// The fragment variant normalizes to the same URL and is deduplicated.
	if len(byURL) != 5 {
		t.Errorf("got %d distinct links, want 5: %v", len(byURL), byURL)
	}

	if _, ok := byURL["mailto:info@shop.example.com"]; ok {
		t.Error("mailto link should be dropped")
	}
}

func TestDiscoverLinks_ContainerSelectors(t *testing.T) {
	html := `<html><body>
<div class="grid">
  <div class="card"><a href="/products/a">A</a></div>
  <div class="card"><a href="/products/b">B</a></div>
</div>
</body></html>`

	p := extractProfile(t)
	p.LinkSelectors = []string{".card"}

	links := DiscoverLinks(docFrom(t, html), p)
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
}

func TestDiscoverLinks_EmptyDocument(t *testing.T) {
	p := extractProfile(t)
	links := DiscoverLinks(docFrom(t, "<html><body></body></html>"), p)
	if len(links) != 0 {
		t.Errorf("got %d links, want 0", len(links))
	}
}
