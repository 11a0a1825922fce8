package analyzer

import (
	"strconv"
	"strings"
)

// Label renders the display label of a group member, e.g. "[1a]" for the
// first member of the first group. Both indexes are zero based.
func Label(groupIndex, memberIndex int) string {
	return "[" + strconv.Itoa(groupIndex+1) + memberSuffix(memberIndex) + "]"
}

// ParseLabel reverses Label. Surrounding brackets are optional.
func ParseLabel(label string) (groupIndex, memberIndex int, ok bool) {
	label = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(label), "["), "]")
	split := strings.IndexFunc(label, func(r rune) bool { return r < '0' || r > '9' })
	if split <= 0 {
		return 0, 0, false
	}

	group, err := strconv.Atoi(label[:split])
	if err != nil || group < 1 {
		return 0, 0, false
	}

	member := 0
	for _, r := range strings.ToLower(label[split:]) {
		if r < 'a' || r > 'z' {
			return 0, 0, false
		}
		member = member*26 + int(r-'a') + 1
	}
	return group - 1, member - 1, true
}

func memberSuffix(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}
