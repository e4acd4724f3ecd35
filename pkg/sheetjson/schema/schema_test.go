package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		token    string
		expected Token
	}{
		{"name", Token{Identifier: "name"}},
		{"lines[2]", Token{Identifier: "lines", Index: 2, HasIndex: true}},
		{"item_1[0]", Token{Identifier: "item_1", Index: 0, HasIndex: true}},
		{"2020", Token{Identifier: "2020"}},
		{"größe", Token{Identifier: "größe"}},
	}

	for _, tt := range tests {
		result, err := ParseToken(tt.token, tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.expected, result, tt.token)
	}
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"first name",
		"name-x",
		"lines[",
		"lines[]",
		"lines[-1]",
		"lines[1]x",
		"[1]",
		"lines[1][2]",
		"lines[99999999999999999999]",
		"a[01]",
		"a[00]",
		"lines[007]",
	}

	for _, token := range tests {
		_, err := ParseToken(token, "a."+token)
		require.Error(t, err, token)

		var schemaErr *Error
		require.True(t, errors.As(err, &schemaErr), token)
		assert.Equal(t, KindMalformedToken, schemaErr.Kind)
		assert.Equal(t, token, schemaErr.Token)
		assert.Equal(t, "a."+token, schemaErr.Header)
		assert.ErrorIs(t, err, ErrSchema)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	headers := []string{
		"name",
		"person.name",
		"address.lines[2]",
		"orders[0].items[3].sku",
		"a[10].b.c[0]",
		"x.y[100].z",
	}

	for _, header := range headers {
		tokens, err := ParseHeader(header)
		require.NoError(t, err)
		assert.Equal(t, header, FormatHeader(tokens))
	}
}

func TestParseHeaderReportsOffendingToken(t *testing.T) {
	_, err := ParseHeader("person.first name.x")

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "first name", schemaErr.Token)
	assert.Equal(t, "person.first name.x", schemaErr.Header)
	assert.Contains(t, err.Error(), `"first name"`)
}

func TestBuildPreservesOrderAndTracksMaxIndex(t *testing.T) {
	root := NewProperties()
	for _, h := range []string{"id", "tags[1]", "person.name", "tags[0]", "person.age", "tags[2]"} {
		require.NoError(t, Build(root, h))
	}

	var keys []string
	for pair := root.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"id", "tags", "person"}, keys)

	tags, ok := root.Get("tags")
	require.True(t, ok)
	assert.True(t, tags.IsArray())
	assert.False(t, tags.IsObject())
	assert.Equal(t, 2, tags.MaxArrayIndex)
	assert.Equal(t, 3, tags.ArrayLen())

	person, _ := root.Get("person")
	assert.False(t, person.IsArray())
	assert.True(t, person.IsObject())
	assert.Equal(t, 0, person.ArrayLen())

	id, _ := root.Get("id")
	assert.False(t, id.IsArray())
	assert.False(t, id.IsObject())
}

func TestBuildArrayOfObjects(t *testing.T) {
	root := NewProperties()
	for _, h := range []string{"items[0].sku", "items[0].qty", "items[1].sku", "items[1].qty"} {
		require.NoError(t, Build(root, h))
	}

	items, _ := root.Get("items")
	assert.True(t, items.IsArray())
	assert.True(t, items.IsObject())
	assert.Equal(t, 2, items.ArrayLen())
	assert.Equal(t, 2, items.Children.Len())
}

func TestWalkLeaves(t *testing.T) {
	root := NewProperties()
	for _, h := range []string{"id", "items[1].sku", "person.name", "items[0].qty"} {
		require.NoError(t, Build(root, h))
	}

	var paths []string
	err := WalkLeaves(root, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id",
		"items[0].sku",
		"items[0].qty",
		"items[1].sku",
		"items[1].qty",
		"person.name",
	}, paths)
}

func TestWalkLeavesStopsAtFirstError(t *testing.T) {
	root := NewProperties()
	require.NoError(t, Build(root, "a[1000000000]"))

	visited := 0
	stop := errors.New("stop")
	err := WalkLeaves(root, func(path string) error {
		visited++
		if path == "a[1]" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}
