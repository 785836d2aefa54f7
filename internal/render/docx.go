package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	docx "github.com/lukasjarosch/go-docx"

	"github.com/docforge/docforge/internal/exercise"
	"github.com/docforge/docforge/internal/storage"
)

// RenderError is a delegate-library failure during tag substitution. Tags
// carries the placeholder names handed to the delegate, for diagnostics.
type RenderError struct {
	Template string
	Tags     []string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// DocxRenderer substitutes a normalized exercise payload into a named DOCX
// template from the store. The ZIP/XML surgery belongs to the delegate
// library; this adapter only maps payload fields to placeholder tags. It
// must not re-clean the payload: normalization already happened upstream,
// and running it twice is how the answers section once came out corrupted.
type DocxRenderer struct {
	store *storage.TemplateStore
}

func NewDocxRenderer(store *storage.TemplateStore) *DocxRenderer {
	return &DocxRenderer{store: store}
}

// Render returns the rendered document bytes. A missing template surfaces
// as storage.ErrNotFound so the HTTP layer can map it to 404.
func (r *DocxRenderer) Render(templateName string, payload exercise.Request) ([]byte, error) {
	raw, err := r.store.Read(templateName)
	if err != nil {
		return nil, err
	}

	tags := placeholderMap(payload)
	doc, err := docx.OpenBytes(raw)
	if err != nil {
		return nil, &RenderError{Template: templateName, Tags: tagNames(tags), Err: err}
	}
	if err := doc.ReplaceAll(tags); err != nil {
		return nil, &RenderError{Template: templateName, Tags: tagNames(tags), Err: err}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, &RenderError{Template: templateName, Tags: tagNames(tags), Err: err}
	}
	return buf.Bytes(), nil
}

// placeholderMap flattens the payload for the delegate, which substitutes
// scalar tags only: list sections become pre-joined line blocks. Values are
// passed through verbatim.
func placeholderMap(p exercise.Request) docx.PlaceholderMap {
	instructions := make([]string, 0, len(p.Instructions))
	for _, in := range p.Instructions {
		instructions = append(instructions, fmt.Sprintf("At Blank %d: %s", in.BlankNumber, in.Instruction))
	}
	answers := make([]string, 0, len(p.Answers))
	for _, a := range p.Answers {
		answers = append(answers, a.AnswerCode)
	}

	m := docx.PlaceholderMap{
		"topic":               p.Topic,
		"subtopic":            p.Subtopic,
		"difficulty":          p.Difficulty,
		"questionNumber":      fmt.Sprintf("%d", p.QuestionNumber),
		"questionDescription": p.QuestionDescription,
		"codeBlock":           p.CodeBlock,
		"instructions":        strings.Join(instructions, "\n"),
		"answers":             strings.Join(answers, "\n"),
	}
	if p.Metadata != nil {
		m["generatedAt"] = p.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST")
		m["language"] = p.Metadata.Language
	}
	for k, v := range p.Extra {
		if _, taken := m[k]; taken {
			continue
		}
		m[k] = scalarString(v)
	}
	return m
}

func scalarString(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}

func tagNames(m docx.PlaceholderMap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
