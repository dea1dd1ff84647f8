package dashboard

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	messagesVersionV1 = "1"
	// DefaultLocale is used when the viewer locale has no catalog.
	DefaultLocale = "es"
)

//go:embed messages/*.yaml
var embeddedMessages embed.FS

// MessageDocument models one YAML message file for a single locale.
type MessageDocument struct {
	Version  string            `yaml:"version"`
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
	Source   string            `yaml:"-"`
}

// MessageCatalog is an in-memory TranslationService backed by YAML documents.
type MessageCatalog struct {
	mu            sync.RWMutex
	defaultLocale string
	locales       map[string]map[string]string
}

var _ TranslationService = (*MessageCatalog)(nil)

// NewMessageCatalog creates an empty catalog.
func NewMessageCatalog(defaultLocale string) *MessageCatalog {
	if strings.TrimSpace(defaultLocale) == "" {
		defaultLocale = DefaultLocale
	}
	return &MessageCatalog{
		defaultLocale: normalizeLocale(defaultLocale),
		locales:       make(map[string]map[string]string),
	}
}

// DefaultMessageCatalog loads the embedded es/en message files.
func DefaultMessageCatalog() (*MessageCatalog, error) {
	catalog := NewMessageCatalog(DefaultLocale)
	entries, err := fs.ReadDir(embeddedMessages, "messages")
	if err != nil {
		return nil, fmt.Errorf("dashboard: list embedded messages: %w", err)
	}
	for _, entry := range entries {
		f, err := embeddedMessages.Open("messages/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("dashboard: open embedded messages %s: %w", entry.Name(), err)
		}
		doc, err := DecodeMessages(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("dashboard: embedded messages %s: %w", entry.Name(), err)
		}
		catalog.Add(doc)
	}
	return catalog, nil
}

// LoadMessagesFile reads an override document from disk and merges it into the catalog.
func (c *MessageCatalog) LoadMessagesFile(path string) error {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashboard: open messages %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeMessages(f)
	if err != nil {
		return fmt.Errorf("dashboard: decode messages %s: %w", path, err)
	}
	doc.Source = path
	c.Add(doc)
	return nil
}

// DecodeMessages reads a message document from any reader.
func DecodeMessages(r io.Reader) (*MessageDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc MessageDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: messages document is empty")
		}
		return nil, fmt.Errorf("dashboard: parse messages: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the document names its locale and carries messages.
func (doc *MessageDocument) Validate() error {
	if doc.Version != messagesVersionV1 {
		return fmt.Errorf("dashboard: unsupported messages version %q", doc.Version)
	}
	if normalizeLocale(doc.Locale) == "" {
		return fmt.Errorf("dashboard: messages document is missing locale")
	}
	if len(doc.Messages) == 0 {
		return fmt.Errorf("dashboard: messages document %s has no messages", doc.Locale)
	}
	return nil
}

// Add merges a document; later documents override earlier keys.
func (c *MessageCatalog) Add(doc *MessageDocument) {
	if doc == nil {
		return
	}
	locale := normalizeLocale(doc.Locale)
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.locales[locale]
	if !ok {
		bucket = make(map[string]string, len(doc.Messages))
		c.locales[locale] = bucket
	}
	for key, value := range doc.Messages {
		bucket[key] = value
	}
}

// Locales returns the loaded locale codes, sorted.
func (c *MessageCatalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.locales))
	for locale := range c.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate resolves key for locale, falling back to the base language and
// then the default locale. Arguments replace {name} placeholders.
func (c *MessageCatalog) Translate(_ context.Context, key, locale string, args map[string]any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	candidates := append(localeCandidates(locale), c.defaultLocale)
	for _, candidate := range candidates {
		bucket, ok := c.locales[candidate]
		if !ok {
			continue
		}
		if msg, ok := bucket[key]; ok && msg != "" {
			return interpolate(msg, args), nil
		}
	}
	return "", fmt.Errorf("dashboard: no message %q for locale %q", key, locale)
}

func interpolate(msg string, args map[string]any) string {
	if len(args) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
