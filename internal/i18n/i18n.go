// Package i18n resolves the UI language and translates interface strings.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/WingsGames/Neve-Or/internal/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Language string

const (
	Hebrew  Language = "he"
	English Language = "en"
	Arabic  Language = "ar"
)

// Default is used whenever a language or a message is missing.
const Default = Hebrew

type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

var supportedTags = []language.Tag{language.Hebrew, language.English, language.Arabic}

var matcher = language.NewMatcher(supportedTags)

// Supported lists the content languages in display order.
func Supported() []Language {
	return []Language{Hebrew, English, Arabic}
}

// Parse maps a BCP 47 tag such as "en-US" or an Accept-Language header value to a supported language.
func Parse(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, false
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return Default, false
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default, false
	}
	return Supported()[index], true
}

// Direction is right-to-left for Hebrew and Arabic.
func (l Language) Direction() Direction {
	if l == Hebrew || l == Arabic {
		return RTL
	}
	return LTR
}

func (l Language) String() string {
	return string(l)
}

// Translator translates interface keys.
type Translator interface {
	Translate(key string, lang Language) string
}

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the interface strings of every supported language.
type Catalog struct {
	messages map[Language]map[string]string
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads every locales/*.yaml file from fsys.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "glob locales")
	}
	if len(paths) == 0 {
		return nil, errors.New("no locale files found")
	}
	sort.Strings(paths)

	c := &Catalog{messages: map[Language]map[string]string{}}
	for _, p := range paths {
		var (
			data []byte
			file localeFile
		)
		if data, err = fs.ReadFile(fsys, p); err != nil {
			return nil, errors.Wrap(err, "read locale file")
		}
		if err = yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("parse %s", path.Base(p)))
		}
		lang, ok := Parse(file.Locale)
		if !ok {
			return nil, errors.New(fmt.Sprintf("unsupported locale %q in %s", file.Locale, path.Base(p)))
		}
		c.messages[lang] = file.Messages
	}
	if _, ok := c.messages[Default]; !ok {
		return nil, errors.New("default locale missing")
	}
	return c, nil
}

// MustLoadEmbedded panics when the embedded catalogs are broken, which is a build defect.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return c
}

// Translate returns the message for key in lang, falling back to the default language and finally the key itself.
func (c *Catalog) Translate(key string, lang Language) string {
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[Default][key]; ok {
		return msg
	}
	return key
}

// Keys lists the message keys of the default language.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.messages[Default]))
	for k := range c.messages[Default] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
