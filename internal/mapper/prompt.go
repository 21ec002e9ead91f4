package mapper

import (
	"fmt"
	"strings"

	"shipstream/internal/domain"
)

// BuildFieldMappingPrompt returns the prompt asking the completion service to
// resolve one raw header against the canonical field catalog.
func BuildFieldMappingPrompt(header string) string {
	var b strings.Builder
	b.WriteString("You map spreadsheet column headers from logistics documents onto canonical shipment fields.\n\n")
	b.WriteString("Canonical fields and known header spellings:\n")
	for _, field := range domain.CanonicalFields() {
		fmt.Fprintf(&b, "- %s: %s\n", field, strings.Join(domain.FieldSynonyms[field], ", "))
	}
	fmt.Fprintf(&b, "\nColumn header to map: %q\n\n", header)
	b.WriteString(`Return ONLY a JSON object with exactly two keys and no other text:
{"field": "<one canonical field name from the list above, or \"unknown\">", "confidence": <float between 0.0 and 1.0>}

Use "unknown" with confidence 0.0 if the header does not correspond to any canonical field.`)
	return b.String()
}
