package mapper

import (
	"strings"

	"shipstream/internal/domain"
)

// Confidence levels assigned by header resolution. Exact spelling beats
// case/punctuation-insensitive equality, which beats partial matches.
const (
	confidenceExact       = 1.0
	confidenceInsensitive = 0.95
	substringFloor        = 0.55
	substringCeil         = 0.85
	tokenOverlapScale     = 0.7
)

// ResolveHeader returns the best-matching canonical field for a raw header and
// a heuristic confidence. Pure lookup against the static synonym dictionary;
// returns ("", 0) when nothing matches.
func ResolveHeader(header string) (string, float64) {
	if strings.TrimSpace(header) == "" {
		return "", 0
	}

	bestField := ""
	bestConf := 0.0
	consider := func(field string, conf float64) {
		if conf > bestConf {
			bestField, bestConf = field, conf
		}
	}

	norm := normalizeHeader(header)
	for _, field := range domain.CanonicalFields() {
		candidates := append([]string{fieldAsWords(field)}, domain.FieldSynonyms[field]...)
		for _, syn := range candidates {
			if header == syn || header == field {
				consider(field, confidenceExact)
				continue
			}
			synNorm := normalizeHeader(syn)
			if norm == synNorm {
				consider(field, confidenceInsensitive)
				continue
			}
			if conf := substringConfidence(norm, synNorm); conf > 0 {
				consider(field, conf)
				continue
			}
			if conf := tokenOverlapConfidence(norm, synNorm); conf > 0 {
				consider(field, conf)
			}
		}
	}

	return bestField, bestConf
}

// SynonymsFor returns the synonym set for a canonical field, or nil for an
// unknown field.
func SynonymsFor(field string) []string {
	return domain.FieldSynonyms[field]
}

// normalizeHeader lowercases a header and strips punctuation, collapsing runs
// of separators into single spaces: "Load  #" and "load_no." both normalize
// to comparable forms.
func normalizeHeader(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// fieldAsWords converts a camelCase canonical field name into spaced words so
// the field name itself acts as a synonym ("loadNumber" -> "load number").
func fieldAsWords(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// substringConfidence scores containment between normalized strings, scaled by
// the length ratio so "weight" inside "total weight kg" scores lower than
// "total weight" inside "total weight kg".
func substringConfidence(a, b string) float64 {
	if len(a) < 3 || len(b) < 3 {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return 0
	}
	ratio := float64(len(shorter)) / float64(len(longer))
	return substringFloor + (substringCeil-substringFloor)*ratio
}

// tokenOverlapConfidence scores the Jaccard overlap of word tokens, scaled
// below the substring band so it only wins when nothing stronger matched.
func tokenOverlapConfidence(a, b string) float64 {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}
	set := make(map[string]bool, len(aTokens))
	for _, t := range aTokens {
		set[t] = true
	}
	shared := 0
	for _, t := range bTokens {
		if set[t] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	union := len(aTokens) + len(bTokens) - shared
	return tokenOverlapScale * float64(shared) / float64(union)
}
