// Package classify implements the four domain classifiers over canonical
// resources: the medication classifier, condition and procedure mappers, and
// the lab extractor. All four follow the same two-pass policy (authoritative
// coded-vocabulary pass first, free-text fallback second), expressed through
// a shared first-match-wins combinator.
package classify

// firstMatch runs the ordered passes and returns the first hit. A later pass
// is only attempted when every earlier pass found nothing.
func firstMatch[T any](passes ...func() (T, bool)) (T, bool) {
	for _, pass := range passes {
		if v, ok := pass(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
