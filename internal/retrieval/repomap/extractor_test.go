package repomap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDefinitions_Go(t *testing.T) {
	content := `package main

func Foo(x int) int {
	return x
}

type Bar struct {
	Name string
}
`
	tags := ExtractDefinitions("go", content)
	require.Len(t, tags, 2)
	assert.Equal(t, "Foo", tags[0].Name)
	assert.Equal(t, TagFunction, tags[0].Kind)
	assert.True(t, tags[0].IsDefinition)
	assert.Equal(t, "Bar", tags[1].Name)
	assert.Equal(t, TagType, tags[1].Kind)
}

func TestExtractDefinitions_UnknownLanguageReturnsNil(t *testing.T) {
	assert.Nil(t, ExtractDefinitions("cobol", "anything"))
}

func TestExtractDefinitions_Python(t *testing.T) {
	content := "def handler(req):\n    pass\n\nclass Widget:\n    pass\n"
	tags := ExtractDefinitions("python", content)
	require.Len(t, tags, 2)
	assert.Equal(t, "handler", tags[0].Name)
	assert.Equal(t, "Widget", tags[1].Name)
}

func TestExtractReferences_FindsKnownSymbols(t *testing.T) {
	known := map[string]bool{"Foo": true, "Bar": true}
	refs := ExtractReferences("result := Foo(Bar(1))", known)
	assert.ElementsMatch(t, []string{"Foo", "Bar"}, refs)
}

func TestExtractReferences_IgnoresUnknownIdentifiers(t *testing.T) {
	known := map[string]bool{"Foo": true}
	refs := ExtractReferences("baz := quux(1)", known)
	assert.Empty(t, refs)
}
