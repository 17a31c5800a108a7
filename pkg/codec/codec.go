// Package codec reads and writes the macro document on disk.
package codec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"tableflip.dev/macromouse/pkg/macro"
)

// Codec persists a macro.Document at a fixed path. Save keeps a .bak
// sibling of the previous file and replaces the live file atomically.
type Codec struct {
	Path string
	Log  zerolog.Logger
}

// New returns a codec for the given document path.
func New(path string) *Codec {
	return &Codec{Path: path, Log: zerolog.Nop()}
}

type xmlCategory struct {
	ID          string          `xml:"id,attr"`
	Name        string          `xml:"name"`
	Created     macro.Timestamp `xml:"created"`
	Modified    macro.Timestamp `xml:"modified"`
	Description string          `xml:"description"`
	Hidden      bool            `xml:"hidden,omitempty"`
}

type xmlMacro struct {
	ID         string          `xml:"id,attr"`
	Name       string          `xml:"name"`
	CategoryID string          `xml:"category_id"`
	Content    string          `xml:"content"`
	Created    macro.Timestamp `xml:"created"`
	Modified   macro.Timestamp `xml:"modified"`
	Version    int             `xml:"version"`
}

type xmlDocument struct {
	XMLName       xml.Name      `xml:"macro_data"`
	Schema        string        `xml:"version"`
	CategoryOrder string        `xml:"category_order"`
	Categories    []xmlCategory `xml:"categories>category"`
	Macros        []xmlMacro    `xml:"macros>macro"`
}

// Load reads the document. A missing file or a malformed one yields an
// empty valid document rather than an error, so the application always
// starts with a usable store.
func (c *Codec) Load() (*macro.Document, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return macro.NewDocument(), nil
		}
		return nil, fmt.Errorf("codec: read %s: %w", c.Path, err)
	}

	var raw xmlDocument
	if err := xml.Unmarshal(data, &raw); err != nil {
		c.Log.Error().Err(err).Str("path", c.Path).Msg("malformed macro document, starting empty")
		return macro.NewDocument(), nil
	}

	doc := macro.NewDocument()
	if raw.Schema != "" {
		doc.Schema = raw.Schema
	}
	for _, cat := range raw.Categories {
		doc.Categories[cat.ID] = &macro.Category{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
			Hidden:      cat.Hidden,
			Created:     cat.Created,
			Modified:    cat.Modified,
		}
	}
	for _, m := range raw.Macros {
		doc.Macros[m.ID] = &macro.Macro{
			ID:         m.ID,
			CategoryID: m.CategoryID,
			Name:       m.Name,
			Content:    m.Content,
			Created:    m.Created,
			Modified:   m.Modified,
			Version:    m.Version,
		}
	}
	doc.CategoryOrder = parseOrder(raw.CategoryOrder, doc)
	return doc, nil
}

// parseOrder splits the comma-joined order, keeping only ids present in
// the document and appending any categories the order missed, sorted by
// name so a repaired order is the same on every load.
func parseOrder(raw string, doc *macro.Document) []string {
	order := make([]string, 0, len(doc.Categories))
	seen := make(map[string]bool, len(doc.Categories))
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		if _, ok := doc.Categories[id]; !ok {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	missing := make([]string, 0)
	for id := range doc.Categories {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		ni := strings.ToLower(doc.Categories[missing[i]].Name)
		nj := strings.ToLower(doc.Categories[missing[j]].Name)
		if ni != nj {
			return ni < nj
		}
		return missing[i] < missing[j]
	})
	return append(order, missing...)
}

// Save writes a complete replacement of the document. The previous file
// is copied to a .bak sibling first; a backup failure is logged but does
// not abort the save. The write goes through a temp file and rename so a
// failed save leaves the prior document untouched.
func (c *Codec) Save(doc *macro.Document) error {
	if c.Path == "" {
		return errors.New("codec: document path not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("codec: ensure data directory: %w", err)
	}

	raw := xmlDocument{
		Schema:        doc.Schema,
		CategoryOrder: strings.Join(doc.CategoryOrder, ","),
	}
	if raw.Schema == "" {
		raw.Schema = macro.CurrentSchema
	}
	written := make(map[string]bool, len(doc.Categories))
	appendCategory := func(cat *macro.Category) {
		raw.Categories = append(raw.Categories, xmlCategory{
			ID:          cat.ID,
			Name:        cat.Name,
			Created:     cat.Created,
			Modified:    cat.Modified,
			Description: cat.Description,
			Hidden:      cat.Hidden,
		})
		written[cat.ID] = true
	}
	for _, id := range doc.CategoryOrder {
		if cat, ok := doc.Categories[id]; ok && !written[id] {
			appendCategory(cat)
		}
	}
	// Categories the order missed still get persisted; Load repairs the
	// order on the way back in.
	for id, cat := range doc.Categories {
		if !written[id] {
			appendCategory(cat)
		}
	}
	for _, m := range doc.Macros {
		raw.Macros = append(raw.Macros, xmlMacro{
			ID:         m.ID,
			Name:       m.Name,
			CategoryID: m.CategoryID,
			Content:    m.Content,
			Created:    m.Created,
			Modified:   m.Modified,
			Version:    m.Version,
		})
	}

	data, err := xml.MarshalIndent(&raw, "", "  ")
	if err != nil {
		return fmt.Errorf("codec: marshal document: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	if err := c.backup(); err != nil {
		c.Log.Warn().Err(err).Str("path", c.Path).Msg("backup before save failed")
	}

	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("codec: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("codec: replace %s: %w", c.Path, err)
	}
	return nil
}

func (c *Codec) backup() error {
	src, err := os.Open(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.Create(c.Path + ".bak")
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
