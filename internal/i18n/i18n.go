// Package i18n provides the localized console strings and the title prompt
// templates shipped with the binary.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used when no language was chosen
const DefaultLanguage = "en"

//go:embed languages/*.json prompts/*.txt
var files embed.FS

// Language is one shipped translation
type Language struct {
	Code string
	Name string // in the language itself
}

// Strings is a loaded translation. It is safe for concurrent use.
type Strings struct {
	code    string
	entries map[string]string
}

// Load reads the translation for code.
func Load(code string) (*Strings, error) {
	code, err := normalize(code)
	if err != nil {
		return nil, err
	}

	data, err := files.ReadFile(path.Join("languages", code+".json"))
	if err != nil {
		return nil, fmt.Errorf("language %q is not available", code)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid language file %s.json: %w", code, err)
	}
	return &Strings{code: code, entries: entries}, nil
}

// MustLoad is Load for the languages compiled into the binary
func MustLoad(code string) *Strings {
	s, err := Load(code)
	if err != nil {
		panic(err)
	}
	return s
}

// Code returns the language code of s
func (s *Strings) Code() string {
	return s.code
}

// Get returns the string for key formatted with args. Unknown keys yield a
// visible placeholder rather than an error.
func (s *Strings) Get(key string, args ...any) string {
	msg, ok := s.entries[key]
	if !ok {
		return "Missing string: " + key
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Has reports whether key is translated
func (s *Strings) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Available lists the shipped languages sorted by code.
func Available() []Language {
	entries, err := fs.ReadDir(files, "languages")
	if err != nil {
		return nil
	}

	var langs []Language
	for _, e := range entries {
		code := strings.TrimSuffix(e.Name(), ".json")
		if code == e.Name() {
			continue
		}
		name := strings.ToUpper(code)
		if tag, err := language.Parse(code); err == nil {
			if n := display.Self.Name(tag); n != "" {
				name = n
			}
		}
		langs = append(langs, Language{Code: code, Name: name})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs
}

// IsAvailable reports whether code names a shipped language
func IsAvailable(code string) bool {
	code, err := normalize(code)
	if err != nil {
		return false
	}
	_, err = fs.Stat(files, path.Join("languages", code+".json"))
	return err == nil
}

// PromptTemplate returns the title prompt for code, falling back to English
// when the language has none.
func PromptTemplate(code string) (string, error) {
	if normalized, err := normalize(code); err == nil {
		if data, err := files.ReadFile(promptPath(normalized)); err == nil {
			return string(data), nil
		}
	}
	data, err := files.ReadFile(promptPath(DefaultLanguage))
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %w", err)
	}
	return string(data), nil
}

func promptPath(code string) string {
	return path.Join("prompts", "title_generation_prompt_"+code+".txt")
}

// normalize reduces a tag such as "it-IT" or "EN" to its base language.
func normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage, nil
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}
