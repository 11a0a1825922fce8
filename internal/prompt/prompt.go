// Package prompt renders the instructions sent to the suggestion model and
// computes the prompt fingerprint used to invalidate stored suggestions.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/docman-dev/docman/internal/docman"
)

// MaxContentLength is the number of characters of document content included
// in the user prompt.
const MaxContentLength = 4000

// MaxExamples is the number of accepted operations shown as examples.
const MaxExamples = 3

const truncationMarker = "\n... (content truncated)"

const systemPrompt = `You are a document organization assistant. Your task is to analyze documents and suggest how they should be organized in a file system.

You will be provided with:
1. A list of existing directories in the repository
2. Document organization instructions
3. Examples of previously accepted organization decisions
4. The current file path
5. The document's content

Based on this information, suggest an appropriate directory path and filename for the document.

Provide your suggestion in the following JSON format:
{
    "suggested_directory_path": "path/to/directory",
    "suggested_filename": "filename.ext",
    "reason": "Brief explanation for this organization"
}

Guidelines:
1. suggested_directory_path should be a relative path with forward slashes (e.g., "finance/invoices/2024")
2. suggested_filename should include the file extension from the original file
3. reason should be a brief explanation (1-2 sentences) of why this makes sense
4. Base your suggestions on the document's content, file type (e.g., PDF, DOCX), date (if present), and any other relevant metadata you can extract
5. Follow the document organization instructions provided

Return ONLY the JSON object, no additional text or markdown formatting.`

// System returns the static system prompt.
func System() string {
	return systemPrompt
}

// Example is a previously accepted decision shown to the model.
type Example struct {
	OriginalPath string
	Suggestion   docman.Suggestion
}

// Input carries everything rendered into the user prompt.
type Input struct {
	FilePath                 string
	Content                  string
	DirectoryStructure       string
	OrganizationInstructions string
	Examples                 []Example
}

// User renders the per-document prompt.
func User(in Input) string {
	var sections []string

	if in.DirectoryStructure != "" {
		sections = append(sections, "## Existing Directory Structure\n", in.DirectoryStructure)
	}
	if in.OrganizationInstructions != "" {
		sections = append(sections, "\n## Document Organization Instructions\n", in.OrganizationInstructions)
	}
	if examples := FormatExamples(in.Examples); examples != "" {
		sections = append(sections, "\n## Examples of Accepted Organization\n", examples)
	}

	sections = append(sections,
		"\n## Current File\n", "Path: "+in.FilePath,
		"\n## Document Content\n", Truncate(in.Content),
	)
	return strings.Join(sections, "\n")
}

// Truncate keeps the first MaxContentLength characters of content and marks
// the cut.
func Truncate(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxContentLength {
		return content
	}
	return string(runes[:MaxContentLength]) + truncationMarker
}

// FormatExamples renders at most MaxExamples examples, one per line.
func FormatExamples(examples []Example) string {
	if len(examples) > MaxExamples {
		examples = examples[:MaxExamples]
	}
	lines := make([]string, 0, len(examples))
	for _, ex := range examples {
		line := "- " + ex.OriginalPath + " -> " + ex.Suggestion.TargetPath()
		if ex.Suggestion.Reason != "" {
			line += " (" + ex.Suggestion.Reason + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Hash fingerprints the inputs that shape every suggestion: the system
// prompt, the organization instructions, the model and the serialized
// folder definitions. Empty parts are left out.
func Hash(system, instructions, model, folders string) string {
	var b strings.Builder
	b.WriteString(system)
	for _, part := range []string{instructions, model, folders} {
		if part != "" {
			b.WriteString("\n")
			b.WriteString(part)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
