package ingot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type options struct {
	strict          bool
	backMatterGuard bool
	logger          *slog.Logger
}

// Option configures a parse.
type Option func(*options)

// WithStrict makes every dropped field fail the parse with an error
// wrapping ErrInvalid instead of being recorded in Ingot.Issues.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithBackMatterGuard keeps a trailing block without any key/value pair as
// body text. By default everything after the last blank line is back matter
// and never reaches the body, whatever it holds.
func WithBackMatterGuard(enabled bool) Option {
	return func(o *options) { o.backMatterGuard = enabled }
}

// WithLogger logs dropped fields at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Parse reads r completely and parses it as an ingot. The only error in
// lenient mode is a read failure, reported as *IOError with no record.
func Parse(r io.Reader, opts ...Option) (*Ingot, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return parseChars(bytes.Runes(data), &o)
}

// ParseBytes parses an in-memory document.
func ParseBytes(b []byte, opts ...Option) (*Ingot, error) {
	return Parse(bytes.NewReader(b), opts...)
}

// ParseString parses an in-memory document.
func ParseString(s string, opts ...Option) (*Ingot, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseFile parses the file at path and records path on the result.
func ParseFile(path string, opts ...Option) (*Ingot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	defer f.Close()

	rec, err := Parse(f, opts...)
	if err != nil {
		return nil, err
	}
	rec.Path = path
	return rec, nil
}

func parseChars(chars []rune, o *options) (*Ingot, error) {
	rec := &Ingot{}

	t := NewTokenizer(chars)
	front := takeFrontMatter(t)
	_, rest := t.Rest()

	content, back := SplitBackMatter(rest)
	backNodes := NewParser(NewTokenizer(back).All()).KeyValues()
	if len(backNodes) == 0 && o.backMatterGuard {
		content = rest
	}

	var errs []error
	collate := func(nodes []*Node) {
		for _, kv := range nodes {
			if err := SetFromKeyValue(rec, kv.Key, kv.Value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	collate(NewParser(front).KeyValues())
	collate(backNodes)

	title, body, found := splitTitle(string(content))
	rec.Content = body
	if found || rec.Title == "" {
		rec.Title = title
	}

	for _, err := range errs {
		var fe *InvalidFieldError
		if !errors.As(err, &fe) {
			continue
		}
		rec.Issues = append(rec.Issues, Issue{Key: fe.Key, Value: fe.Value, Reason: fe.Reason})
		if o.logger != nil {
			o.logger.Debug("ingot: field dropped",
				slog.String("key", fe.Key),
				slog.String("value", fe.Value),
				slog.String("reason", fe.Reason))
		}
	}
	if o.strict && len(errs) > 0 {
		return nil, fmt.Errorf("ingot: strict parse: %w", errors.Join(errs...))
	}
	return rec, nil
}
