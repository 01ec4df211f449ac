package phone

// NeedsEnrichment reports whether a normalized record should be sent to the
// contact-search service. Any issue qualifies, valid or not.
func NeedsEnrichment(r Result) bool {
	return !r.IsValid || len(r.Issues) > 0
}
