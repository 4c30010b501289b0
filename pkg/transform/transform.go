// Package transform provides named per-source stream transforms for bundles.
//
// Names accepted by Chain:
//
//	strip-bom          remove a leading UTF-8 byte order mark
//	strip-cr           drop carriage returns (CRLF becomes LF)
//	decode:<charset>   decode from an IANA/WHATWG charset to UTF-8
package transform

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"

	"github.com/yaklabco/htmlbundle/pkg/bundle"
)

// Transform names.
const (
	NameStripBOM = "strip-bom"
	NameStripCR  = "strip-cr"
	PrefixDecode = "decode:"
)

// ErrUnknownTransform is returned for names Chain does not recognize.
var ErrUnknownTransform = errors.New("unknown transform")

// newTransformer builds a fresh transformer per stream; x/text transformers are stateful.
type newTransformer func() xtransform.Transformer

// Names returns the fixed transform names, for help text and validation messages.
func Names() []string {
	return []string{NameStripBOM, NameStripCR, PrefixDecode + "<charset>"}
}

// Lookup resolves one transform name.
func Lookup(name string) (bundle.Transform, error) {
	ctor, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return wrap(ctor), nil
}

// Chain combines the named transforms, applied left to right, into one factory.
// An empty list returns a nil factory, which the bundler treats as identity.
func Chain(names []string) (bundle.TransformFactory, error) {
	ctors := make([]newTransformer, 0, len(names))
	for _, name := range names {
		ctor, err := lookup(name)
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, ctor)
	}

	if len(ctors) == 0 {
		return nil, nil
	}

	return func() bundle.Transform {
		return func(r io.Reader) io.Reader {
			stages := make([]xtransform.Transformer, len(ctors))
			for i, ctor := range ctors {
				stages[i] = ctor()
			}
			return xtransform.NewReader(r, xtransform.Chain(stages...))
		}
	}, nil
}

func wrap(ctor newTransformer) bundle.Transform {
	return func(r io.Reader) io.Reader {
		return xtransform.NewReader(r, ctor())
	}
}

func lookup(name string) (newTransformer, error) {
	trimmed := strings.TrimSpace(name)

	switch {
	case trimmed == NameStripBOM:
		return func() xtransform.Transformer {
			return unicode.UTF8BOM.NewDecoder()
		}, nil

	case trimmed == NameStripCR:
		return func() xtransform.Transformer {
			return runes.Remove(runes.Predicate(func(r rune) bool { return r == '\r' }))
		}, nil

	case strings.HasPrefix(trimmed, PrefixDecode):
		charset := strings.TrimSpace(strings.TrimPrefix(trimmed, PrefixDecode))
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: charset %q: %w", ErrUnknownTransform, name, charset, err)
		}
		return func() xtransform.Transformer {
			return enc.NewDecoder()
		}, nil

	default:
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownTransform, name, strings.Join(Names(), ", "))
	}
}
