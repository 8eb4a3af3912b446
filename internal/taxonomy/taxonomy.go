// Package taxonomy holds the project's category tree and tag set and
// resolves raw ingot references against them.
package taxonomy

import (
	"errors"
	"fmt"
	"io"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

// Category is one node of the category tree.
type Category struct {
	ID          uint64      `yaml:"id" json:"id"`
	PathName    string      `yaml:"pname" json:"pname"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description,omitempty"`
	ParentID    *uint64     `yaml:"parent" json:"parent,omitempty"`
	Children    []*Category `yaml:"-" json:"children,omitempty"`
}

// Validate checks a single category entry.
func (c *Category) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.PathName, validation.By(validSlug)),
		validation.Field(&c.ParentID, validation.By(func(v any) error {
			if p, _ := v.(*uint64); p != nil && *p == c.ID {
				return errors.New("must not be its own parent")
			}
			return nil
		})),
	)
}

// Tag is a flat label.
type Tag struct {
	ID          uint64 `yaml:"id" json:"id"`
	PathName    string `yaml:"pname" json:"pname"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// Validate checks a single tag entry.
func (t *Tag) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.ID, validation.Required),
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.PathName, validation.By(validSlug)),
	)
}

func validSlug(v any) error {
	s, _ := v.(string)
	if s != "" && !slug.IsValid(s) {
		return errors.New("must be a valid path name")
	}
	return nil
}

// pathName fills an empty path name from the display name.
func pathName(current, name string) string {
	if current != "" {
		return current
	}
	s, err := slug.Normalize(name)
	if err != nil {
		return ""
	}
	return s
}

// DecodeCategories reads a YAML list of categories.
func DecodeCategories(r io.Reader) ([]Category, error) {
	var out []Category
	if err := decode(r, &out); err != nil {
		return nil, fmt.Errorf("taxonomy: decode categories: %w", err)
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("taxonomy: category #%d: %w", i, err)
		}
		out[i].PathName = pathName(out[i].PathName, out[i].Name)
	}
	return out, nil
}

// DecodeTags reads a YAML list of tags.
func DecodeTags(r io.Reader) ([]Tag, error) {
	var out []Tag
	if err := decode(r, &out); err != nil {
		return nil, fmt.Errorf("taxonomy: decode tags: %w", err)
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("taxonomy: tag #%d: %w", i, err)
		}
		out[i].PathName = pathName(out[i].PathName, out[i].Name)
	}
	return out, nil
}

func decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// LoadFiles reads the category and tag files and builds an Index. A missing
// file, or an empty path, contributes nothing.
func LoadFiles(categoriesPath, tagsPath string) (*Index, error) {
	var (
		cats []Category
		tags []Tag
	)
	if err := withFile(categoriesPath, func(r io.Reader) (err error) {
		cats, err = DecodeCategories(r)
		return err
	}); err != nil {
		return nil, err
	}
	if err := withFile(tagsPath, func(r io.Reader) (err error) {
		tags, err = DecodeTags(r)
		return err
	}); err != nil {
		return nil, err
	}
	return NewIndex(cats, tags)
}

func withFile(path string, fn func(io.Reader) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("taxonomy: open %s: %w", path, err)
	}
	defer f.Close()
	return fn(f)
}
