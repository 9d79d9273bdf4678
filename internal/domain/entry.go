package domain

import "fmt"

// PrefillSource is the provenance record attached to every non-empty entry.
type PrefillSource struct {
	Type        SourceType  `json:"type"`
	DisplayName string      `json:"display_name,omitempty"`
	MatchMethod MatchMethod `json:"match_method"`
	// MatchedCode holds the authoritative vocabulary code that matched,
	// formatted as "<system>|<code>". Empty for text and direct-API matches.
	MatchedCode string `json:"matched_code,omitempty"`
}

// PrefillEntry is the atomic unit of prefill output: a value, the confidence
// in it, and where it came from.
//
// Invariants:
//   - Confidence == none  iff  Value is absent and Sources is empty.
//   - Confidence == high requires at least one source matched by code or
//     read from the direct API.
//   - An entry is never partially populated.
type PrefillEntry[T any] struct {
	Value      *T              `json:"value,omitempty"`
	Confidence Confidence      `json:"confidence"`
	Sources    []PrefillSource `json:"sources,omitempty"`
}

// EmptyEntry returns the canonical absent entry (value absent, confidence
// none, no sources).
func EmptyEntry[T any]() PrefillEntry[T] {
	return PrefillEntry[T]{Confidence: ConfidenceNone}
}

// NewEntry constructs a populated entry. At least one source is required;
// callers that have no source must use EmptyEntry instead.
func NewEntry[T any](value T, confidence Confidence, sources ...PrefillSource) PrefillEntry[T] {
	return PrefillEntry[T]{
		Value:      &value,
		Confidence: confidence,
		Sources:    sources,
	}
}

// IsKnown reports whether the entry carries any usable value.
func (e PrefillEntry[T]) IsKnown() bool {
	return e.Confidence != ConfidenceNone
}

// Validate checks the entry against the confidence invariants.
func (e PrefillEntry[T]) Validate() error {
	if !e.Confidence.IsValid() {
		return fmt.Errorf("prefill entry validation: %w", ErrInvalidConfidence)
	}

	absent := e.Value == nil && len(e.Sources) == 0
	if (e.Confidence == ConfidenceNone) != absent {
		return fmt.Errorf("prefill entry validation: %w: confidence %q with value present=%t, sources=%d",
			ErrEntryInvariant, e.Confidence, e.Value != nil, len(e.Sources))
	}

	if e.Confidence == ConfidenceHigh {
		authoritative := false
		for _, s := range e.Sources {
			if s.MatchMethod.Authoritative() {
				authoritative = true
				break
			}
		}
		if !authoritative {
			return fmt.Errorf("prefill entry validation: %w: high confidence without code or direct-API source",
				ErrEntryInvariant)
		}
	}

	for _, s := range e.Sources {
		if !s.MatchMethod.IsValid() {
			return fmt.Errorf("prefill entry validation: %w: %q", ErrInvalidMatchMethod, s.MatchMethod)
		}
	}

	return nil
}
