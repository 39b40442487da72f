// Package batch packs ordered strings into translation-request batches
// that respect a provider byte-size limit.
package batch

// Defaults for the provider request budget. The overhead reserve covers
// request framing (JSON envelope, headers) around the text payload.
const (
	DefaultMaxRequestBytes = 128 * 1024
	DefaultOverheadBytes   = 2 * 1024
)

// TextBudget returns the byte budget available for text in one request.
// Zero or negative inputs fall back to the defaults.
func TextBudget(maxRequestBytes, overheadBytes int) int {
	if maxRequestBytes <= 0 {
		maxRequestBytes = DefaultMaxRequestBytes
	}
	if overheadBytes <= 0 {
		overheadBytes = DefaultOverheadBytes
	}
	budget := maxRequestBytes - overheadBytes
	if budget <= 0 {
		budget = 1
	}
	return budget
}

// ByBytes packs texts, in order, into the fewest greedy batches whose total
// UTF-8 size stays within maxBytes. A single text larger than maxBytes is
// never split or dropped; it ships alone in its own batch. Concatenating
// all batches reproduces the input exactly.
func ByBytes(texts []string, maxBytes int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = TextBudget(0, 0)
	}

	var batches [][]string
	var current []string
	currentSize := 0

	for _, text := range texts {
		size := len(text)

		if currentSize+size > maxBytes && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			currentSize = 0
		}

		current = append(current, text)
		currentSize += size
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches
}
