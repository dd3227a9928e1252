package intro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithFrontmatter(t *testing.T) {
	in, err := Parse([]byte(`---
title: " Home Network "
description: Everything on the LAN
---
Links for the **house**.

| host | role |
|------|------|
| nas  | files |
`))
	require.NoError(t, err)

	assert.Equal(t, "Home Network", in.Title)
	assert.Equal(t, "Everything on the LAN", in.Description)
	assert.Contains(t, string(in.Body), "<strong>house</strong>")
	assert.Contains(t, string(in.Body), "<table>")
	assert.NotContains(t, string(in.Body), "title:")
}

func TestParseWithoutFrontmatter(t *testing.T) {
	in, err := Parse([]byte("Just text."))
	require.NoError(t, err)

	assert.Empty(t, in.Title)
	assert.Equal(t, "<p>Just text.</p>\n", string(in.Body))
}

func TestParseOmitsRawHTML(t *testing.T) {
	in, err := Parse([]byte("<script>alert(1)</script>\n\nok"))
	require.NoError(t, err)

	assert.NotContains(t, string(in.Body), "<script>")
	assert.NotContains(t, string(in.Body), "alert(1)")
	assert.Contains(t, string(in.Body), "<!-- raw HTML omitted -->")
	assert.Contains(t, string(in.Body), "<p>ok</p>")
}

func TestLoadMissingIsOptional(t *testing.T) {
	in, err := Load(filepath.Join(t.TempDir(), "intro.md"))
	require.NoError(t, err)
	assert.Nil(t, in)

	in, err = Load("")
	require.NoError(t, err)
	assert.Nil(t, in)
}

func TestLoadBadFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: [unclosed\n---\nbody\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendering intro "+path)
}
