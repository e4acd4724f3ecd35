package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NoArrayIndex is the MaxArrayIndex of a property that is not an array.
const NoArrayIndex = -1

// Properties maps identifiers to child properties in first-seen order.
type Properties = orderedmap.OrderedMap[string, *Property]

// NewProperties returns an empty scope.
func NewProperties() *Properties {
	return orderedmap.New[string, *Property]()
}

// Property is one schema field. Having children and being an array are independent:
// both together describe an array of objects.
type Property struct {
	// Children holds nested fields. Non-empty means the field is an object.
	Children *Properties
	// MaxArrayIndex is the highest index seen for this field, or NoArrayIndex.
	MaxArrayIndex int
}

// NewProperty returns a scalar, non-array property.
func NewProperty() *Property {
	return &Property{Children: NewProperties(), MaxArrayIndex: NoArrayIndex}
}

// IsArray reports whether any header addressed this field with an index.
func (p *Property) IsArray() bool {
	return p.MaxArrayIndex != NoArrayIndex
}

// IsObject reports whether the field has nested fields.
func (p *Property) IsObject() bool {
	return p.Children.Len() > 0
}

// ArrayLen is the declared array length, zero for non-arrays.
func (p *Property) ArrayLen() int {
	if !p.IsArray() {
		return 0
	}
	return p.MaxArrayIndex + 1
}

// Build walks header token by token from root, creating properties as needed and
// raising MaxArrayIndex to the largest index seen.
func Build(root *Properties, header string) error {
	tokens, err := ParseHeader(header)
	if err != nil {
		return err
	}

	scope := root
	for _, t := range tokens {
		prop, ok := scope.Get(t.Identifier)
		if !ok {
			prop = NewProperty()
			scope.Set(t.Identifier, prop)
		}
		if t.HasIndex && t.Index > prop.MaxArrayIndex {
			prop.MaxArrayIndex = t.Index
		}
		scope = prop.Children
	}
	return nil
}

// WalkLeaves calls visit with the full path of every scalar leaf the tree expands to, in
// output order, stopping at the first error. Arrays expand to every index in [0, MaxArrayIndex].
func WalkLeaves(root *Properties, visit func(path string) error) error {
	return walkScope("", root, visit)
}

func walkScope(prefix string, scope *Properties, visit func(string) error) error {
	for pair := scope.Oldest(); pair != nil; pair = pair.Next() {
		if err := walkProperty(ChildPath(prefix, pair.Key), pair.Value, visit); err != nil {
			return err
		}
	}
	return nil
}

func walkProperty(path string, prop *Property, visit func(string) error) error {
	if !prop.IsArray() {
		if prop.IsObject() {
			return walkScope(path, prop.Children, visit)
		}
		return visit(path)
	}

	for i := 0; i < prop.ArrayLen(); i++ {
		elem := IndexedPath(path, i)
		var err error
		if prop.IsObject() {
			err = walkScope(elem, prop.Children, visit)
		} else {
			err = visit(elem)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
