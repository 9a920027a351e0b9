// Package catalog defines the part categories shared across the crawler,
// classifier and emitted products.
package catalog

// Category is one of the six known drone part categories.
type Category string

// The complete category set. The classifier never emits anything outside
// this list.
const (
	Motor   Category = "motor"
	Frame   Category = "frame"
	Stack   Category = "stack"
	Camera  Category = "camera"
	Prop    Category = "prop"
	Battery Category = "battery"
)

// All returns every known category.
func All() []Category {
	return []Category{Motor, Frame, Stack, Camera, Prop, Battery}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Motor, Frame, Stack, Camera, Prop, Battery:
		return true
	default:
		return false
	}
}

// Valid reports whether s names a known category.
func Valid(s string) bool {
	return Category(s).Valid()
}
