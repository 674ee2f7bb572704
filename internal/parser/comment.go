package parser

import "strings"

// normalizeComment tidies a raw comment block: single "//" lines are normalized
// to "///", and a lone summary line is wrapped with <summary></summary>.
func normalizeComment(rawLines []string) []string {
	if len(rawLines) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "///"):
			out = append(out, trimmed)
		case strings.HasPrefix(trimmed, "//"):
			out = append(out, "///"+strings.TrimPrefix(trimmed, "//"))
		case trimmed == "":
			continue
		default:
			out = append(out, trimmed)
		}
	}
	if len(out) == 1 {
		line := strings.TrimSpace(strings.TrimPrefix(out[0], "///"))
		if !strings.Contains(line, "<summary>") {
			out = []string{"/// <summary>", "/// " + line, "/// </summary>"}
		}
	}
	return out
}

// rewriteGetterToGetOrSet applies the property documentation
// rewrite: "/// Gets ..." becomes "/// Gets or sets ...".
func rewriteGetterToGetOrSet(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	for i, line := range out {
		trimmed := strings.TrimSpace(strings.TrimPrefix(line, "///"))
		if strings.HasPrefix(trimmed, "Gets or sets") {
			continue
		}
		if strings.HasPrefix(trimmed, "Gets ") {
			out[i] = "/// Gets or sets " + strings.TrimPrefix(trimmed, "Gets ")
			return out
		}
	}
	return out
}
