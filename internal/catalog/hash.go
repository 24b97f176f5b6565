package catalog

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// normalize flattens an entry into a canonical string. Text parts are
// lowercased with trimmed whitespace and unix line endings; tags are sorted
// so ordering edits in the catalog file do not change the id. Image
// references stay out of the hash, swapping a storage key must not detach
// the card from its scheduling history.
func normalize(e Entry) string {
	part := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		return strings.ReplaceAll(s, "\r\n", "\n")
	}

	parts := []string{part(e.Front.Text), part(e.Answer.Text)}
	for _, s := range e.ShortAnswer {
		parts = append(parts, part(s))
	}

	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		tags = append(tags, part(t))
	}
	sort.Strings(tags)
	parts = append(parts, tags...)

	// Joined with newlines so adjacent fields cannot run together.
	return strings.Join(parts, "\n")
}

// CardID returns the stable content-hash id for an entry.
func CardID(e Entry) string {
	sum := sha256.Sum256([]byte(normalize(e)))
	return fmt.Sprintf("%x", sum)
}
