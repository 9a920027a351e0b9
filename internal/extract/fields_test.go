package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/fpvcatalog/partscrawler/internal/vendor"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func extractProfile(t *testing.T) *vendor.Profile {
	t.Helper()
	p := &vendor.Profile{
		Name:            "testshop",
		BaseURL:         "https://shop.example.com",
		SeedURLs:        []string{"https://shop.example.com/"},
		ProductPatterns: []string{`/products/`},
		Selectors: vendor.FieldSelectors{
			Name:        "h1.product-title",
			Price:       ".price",
			Brand:       ".vendor",
			SKU:         ".sku",
			Description: ".description",
			Image:       ".gallery img",
			Stock:       ".availability",
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	return p
}

const productHTML = `
<html><body>
<h1 class="product-title">  Velox   V2  2207 Motor </h1>
<div class="price">$24.99</div>
<span class="vendor">T-Motor</span>
<span class="sku">TM-2207-1750</span>
<div class="description">A 2207 motor with 1750KV rating for 6S builds.</div>
<div class="gallery"><img src="/cdn/images/velox.jpg"></div>
<div class="availability">In stock, ships today</div>
</body></html>`

func TestExtractFields(t *testing.T) {
	doc := docFrom(t, productHTML)
	f := ExtractFields(doc, extractProfile(t), "https://shop.example.com/products/velox")

	if f.Name != "Velox V2 2207 Motor" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Price != 24.99 {
		t.Errorf("Price = %v, want 24.99", f.Price)
	}
	if f.Brand != "T-Motor" {
		t.Errorf("Brand = %q", f.Brand)
	}
	if f.SKU != "TM-2207-1750" {
		t.Errorf("SKU = %q", f.SKU)
	}
	if !f.InStock {
		t.Error("expected in stock")
	}
	if f.ImageURL != "https://shop.example.com/cdn/images/velox.jpg" {
		t.Errorf("ImageURL = %q", f.ImageURL)
	}
}

func TestExtractFields_OutOfStock(t *testing.T) {
	html := `<html><body>
<h1 class="product-title">Frame</h1>
<div class="price">€59,00</div>
<div class="availability">Sold out</div>
</body></html>`

	f := ExtractFields(docFrom(t, html), extractProfile(t), "https://shop.example.com/products/frame")

	if f.InStock {
		t.Error("expected out of stock")
	}
	if f.Price != 59.0 {
		t.Errorf("Price = %v, want 59", f.Price)
	}
}

func TestExtractFields_MissingSelectorsDegrade(t *testing.T) {
	html := `<html><body><h1>Bare Product</h1></body></html>`
	p := extractProfile(t)
	p.Selectors = vendor.FieldSelectors{}

	f := ExtractFields(docFrom(t, html), p, "https://shop.example.com/products/bare")

	// Name falls back to the page h1; everything else degrades to zero.
	if f.Name != "Bare Product" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.Price != 0 {
		t.Errorf("Price = %v, want 0", f.Price)
	}
	if f.Brand != "" || f.SKU != "" || f.Description != "" {
		t.Error("expected empty optional fields")
	}
	if !f.InStock {
		t.Error("absence of stock info should default to in-stock")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"$24.99", 24.99, true},
		{"€1.234,56", 1234.56, true},
		{"£1,234.56", 1234.56, true},
		{"49,99 €", 49.99, true},
		{"1299", 1299, true},
		{"USD 89.00", 89, true},
		{"Free", 0, false},
		{"", 0, false},
		{"0.00", 0, false},
		{"-5.00", 0, false},
		{"Call for price", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParsePrice(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  a \n\t b  "); got != "a b" {
		t.Errorf("NormalizeText = %q", got)
	}
}
