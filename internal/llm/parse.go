package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Laisky/errors/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/docman-dev/docman/internal/docman"
)

const (
	maxFilenameLength  = 255
	maxDirectoryLength = 1024
	maxReasonLength    = 2000
)

var noSeparators = validation.Match(regexp.MustCompile(`^[^/\\]+$`)).Error("must not contain path separators")

// ParseSuggestion extracts the JSON object from model output and validates it.
// Markdown fences and prose around the object are ignored.
func ParseSuggestion(text string) (docman.Suggestion, error) {
	raw := strings.TrimSpace(text)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return docman.Suggestion{}, errors.Wrap(ErrInvalidSuggestion, "no JSON object in response")
	}

	var s docman.Suggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &s); err != nil {
		return docman.Suggestion{}, errors.Wrapf(ErrInvalidSuggestion, "decode response: %v", err)
	}

	s.DirectoryPath = strings.Trim(strings.TrimSpace(strings.ReplaceAll(s.DirectoryPath, `\`, "/")), "/")
	s.Filename = strings.TrimSpace(s.Filename)
	s.Reason = strings.TrimSpace(s.Reason)

	if err := validateSuggestion(&s); err != nil {
		return docman.Suggestion{}, errors.Wrapf(ErrInvalidSuggestion, "%v", err)
	}
	return s, nil
}

func validateSuggestion(s *docman.Suggestion) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Filename,
			validation.Required,
			validation.RuneLength(1, maxFilenameLength),
			noSeparators,
		),
		validation.Field(&s.DirectoryPath, validation.RuneLength(0, maxDirectoryLength)),
		validation.Field(&s.Reason, validation.RuneLength(0, maxReasonLength)),
	)
}
