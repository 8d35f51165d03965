package domain

import "strings"

// Synthetic two-party roles used when a raw script comes with no role directory.
var syntheticRoles = []Role{
	{ID: "host", Name: "主持人"},
	{ID: "guest", Name: "嘉宾"},
}

// Normalize converts a script into the canonical ordered turn sequence.
//
// Structured segments win: each segment becomes one turn in order, with the
// speaker name resolved through the directory and falling back to the raw role
// id. Without segments the raw text is split into sentence-like fragments and
// speakers are assigned round-robin over the directory (or over a synthetic
// host/guest pair when the directory is empty). A script with neither yields
// an empty sequence. The function is pure and deterministic.
func Normalize(script Script, directory []Role) []DialogTurn {
	names := make(map[string]string, len(directory))
	for _, r := range directory {
		names[r.ID] = r.DisplayName()
	}

	if len(script.Segments) > 0 {
		turns := make([]DialogTurn, 0, len(script.Segments))
		for _, seg := range script.Segments {
			speaker, ok := names[seg.Role]
			if !ok {
				speaker = seg.Role
			}
			turns = append(turns, DialogTurn{RoleID: seg.Role, Speaker: speaker, Text: seg.Text})
		}
		return turns
	}

	if strings.TrimSpace(script.Raw) == "" {
		return nil
	}

	speakers := directory
	if len(speakers) == 0 {
		speakers = syntheticRoles
	}
	fragments := SplitSentences(script.Raw)
	turns := make([]DialogTurn, 0, len(fragments))
	for i, fragment := range fragments {
		role := speakers[i%len(speakers)]
		turns = append(turns, DialogTurn{
			RoleID:  role.ID,
			Speaker: role.DisplayName(),
			Text:    fragment,
		})
	}
	return turns
}

// SplitSentences cuts text at terminal punctuation, keeping the punctuation
// with the preceding fragment and dropping fragments that trim to nothing.
// Text with no boundary at all comes back as a single fragment.
func SplitSentences(text string) []string {
	var fragments []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if isSentenceBoundary(r) {
			if fragment := strings.TrimSpace(current.String()); fragment != "" {
				fragments = append(fragments, fragment)
			}
			current.Reset()
		}
	}
	if fragment := strings.TrimSpace(current.String()); fragment != "" {
		fragments = append(fragments, fragment)
	}
	return fragments
}

func isSentenceBoundary(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
