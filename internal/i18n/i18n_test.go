package i18n_test

import (
	"testing"
	"testing/fstest"

	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   i18n.Language
		wantOK bool
	}{
		{in: "he", want: i18n.Hebrew, wantOK: true},
		{in: "en-US", want: i18n.English, wantOK: true},
		{in: "ar-EG", want: i18n.Arabic, wantOK: true},
		{in: "fr-CH, en;q=0.8", want: i18n.English, wantOK: true},
		{in: "", want: i18n.Hebrew, wantOK: false},
		{in: "not a tag!!", want: i18n.Hebrew, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := i18n.Parse(tt.in)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	t.Parallel()
	require.Equal(t, i18n.RTL, i18n.Hebrew.Direction())
	require.Equal(t, i18n.RTL, i18n.Arabic.Direction())
	require.Equal(t, i18n.LTR, i18n.English.Direction())
}

func TestCatalog_Translate(t *testing.T) {
	t.Parallel()
	c, err := i18n.LoadFromFS(fstest.MapFS{
		"locales/he.yaml": {Data: []byte("locale: he\nmessages:\n  start: התחל\n  next: הבא\n")},
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  start: Start\n")},
	})
	require.NoError(t, err)

	require.Equal(t, "Start", c.Translate("start", i18n.English))
	require.Equal(t, "הבא", c.Translate("next", i18n.English), "missing keys fall back to Hebrew")
	require.Equal(t, "התחל", c.Translate("start", i18n.Arabic), "missing languages fall back to Hebrew")
	require.Equal(t, "unknown", c.Translate("unknown", i18n.English))
}

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()
	c, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	for _, key := range c.Keys() {
		for _, lang := range i18n.Supported() {
			require.NotEmpty(t, c.Translate(key, lang), "key %s in %s", key, lang)
		}
	}
	require.Equal(t, "Start Game", c.Translate("start", i18n.English))
}

func TestLoadFromFS_requiresDefault(t *testing.T) {
	t.Parallel()
	_, err := i18n.LoadFromFS(fstest.MapFS{
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  start: Start\n")},
	})
	require.Error(t, err)
}
