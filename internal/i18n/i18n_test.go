package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedCatalogs(t *testing.T) {
	m, err := Load("pt")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "pt"}, m.Languages())

	for _, lang := range m.Languages() {
		tr := m.Translator(lang)
		for _, key := range []string{
			KeyAccessDenied, KeyUnknownCommand, KeyGreeting, KeyRateLimited,
			KeyError, KeyWelcome, KeyStatus, KeyStatusTimeLayout,
		} {
			assert.NotEqual(t, key, tr.T(key), "%s missing key %s", lang, key)
		}
	}
}

func TestTranslator_Fallback(t *testing.T) {
	fsys := fstest.MapFS{
		"l/pt.yaml": {Data: []byte("pt:\n  a:\n    b: \"um\"\n  only: \"so pt\"\n")},
		"l/en.yaml": {Data: []byte("en:\n  a:\n    b: \"one\"\n")},
	}

	m, err := LoadFS(fsys, "l", "pt")
	require.NoError(t, err)

	en := m.Translator("EN")
	assert.Equal(t, "en", en.Lang())
	assert.Equal(t, "one", en.T("a.b"))
	assert.Equal(t, "so pt", en.T("only"))
	assert.Equal(t, "missing.key", en.T("missing.key"))

	unknown := m.Translator("de")
	assert.Equal(t, "pt", unknown.Lang())
	assert.Equal(t, "um", unknown.T("a.b"))
}

func TestTranslator_Format(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("en:\n  hello: \"Hi {name}, {name}! {other}\"\n")},
	}

	m, err := LoadFS(fsys, "l", "en")
	require.NoError(t, err)

	got := m.Default().Format("hello", map[string]string{"name": "Ana"})
	assert.Equal(t, "Hi Ana, Ana! {other}", got)
}

func TestLoadFS_Errors(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{"l/readme.txt": {Data: []byte("x")}}, "l", "en")
	assert.Error(t, err)

	_, err = LoadFS(fstest.MapFS{"l/en.yaml": {Data: []byte("en:\n  a: b\n")}}, "l", "pt")
	assert.Error(t, err)

	_, err = LoadFS(fstest.MapFS{"l/en.yaml": {Data: []byte("en: [")}}, "l", "en")
	assert.Error(t, err)
}

func TestNilManager(t *testing.T) {
	var m *Manager

	assert.Equal(t, "x.y", m.Default().T("x.y"))
	assert.Nil(t, m.Languages())
}
