package exercise

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Sentinels mark entries whose text cleaned away to nothing. They exist to
// be detected and dropped, never to be rendered.
const (
	sentinelAnswer      = "Answer not provided"
	sentinelInstruction = "Complete this blank"
)

var (
	// A numbering prefix is digits, dot, then whitespace. The whitespace is
	// mandatory so decimal literals like "3.14" are left alone.
	leadingNumberRe = regexp.MustCompile(`^\s*\d+\.\s+`)
	newArrayListRe  = regexp.MustCompile(`\bnew\s+ArrayList<[^>]*>\(\)`)
	genericListRe   = regexp.MustCompile(`\b(?:Array)?List<[^>]+>`)
)

// Languages whose generic-container syntax is left alone in prose.
var staticallyTyped = map[string]bool{
	"java": true, "csharp": true, "kotlin": true, "scala": true,
}

var languageDisplay = map[string]string{
	"python":     "Python",
	"javascript": "JavaScript",
	"java":       "Java",
	"cpp":        "C++",
	"csharp":     "C#",
	"go":         "Go",
	"rust":       "Rust",
	"php":        "PHP",
	"ruby":       "Ruby",
	"swift":      "Swift",
}

const languageNamePattern = `Java|JavaScript|TypeScript|C\+\+|C#|Go|Rust|PHP|Ruby|Swift|Python`

type NormalizeOptions struct {
	Language           string
	Theme              string
	SyntaxHighlighting bool

	// Now overrides the metadata timestamp; zero means time.Now().
	Now time.Time
}

// Process is the single cleaning boundary between validation and the
// renderer adapters: instruction heuristics first, then normalization.
// Nothing downstream may re-run either step.
func Process(req Request, opts NormalizeOptions) Request {
	return Normalize(ApplyInstructionHeuristics(req), opts)
}

// Normalize produces the render-ready payload: defaulted entry numbers,
// "undefined" scrubbed everywhere, answers in canonical "{n}. {code}" form,
// empty entries dropped, metadata attached. The input is deep-copied first
// and never mutated. Normalization happens exactly once, here; the renderer
// adapters must not re-process the result.
func Normalize(req Request, opts NormalizeOptions) Request {
	out := req.Clone()

	if opts.Language != "" && out.QuestionDescription != "" {
		out.QuestionDescription = cleanLanguageReferences(out.QuestionDescription, opts.Language)
	}

	out.Answers = normalizeAnswers(out.Answers)
	out.Instructions = normalizeInstructions(out.Instructions)

	out.Topic = stripUndefined(out.Topic)
	out.Subtopic = stripUndefined(out.Subtopic)
	out.Difficulty = stripUndefined(out.Difficulty)
	out.QuestionDescription = stripUndefined(out.QuestionDescription)
	out.CodeBlock = stripUndefined(out.CodeBlock)

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	lang := opts.Language
	if lang == "" {
		lang = "text"
	}
	theme := opts.Theme
	if theme == "" {
		theme = "github"
	}
	out.Metadata = &Metadata{
		GeneratedAt:        now,
		Language:           lang,
		Theme:              theme,
		SyntaxHighlighting: opts.SyntaxHighlighting,
	}
	return out
}

func normalizeAnswers(answers []Answer) []Answer {
	out := make([]Answer, 0, len(answers))
	for i, a := range answers {
		if a.AnswerNumber < 1 {
			a.AnswerNumber = i + 1
		}
		code := leadingNumberRe.ReplaceAllString(a.AnswerCode, "")
		code = strings.TrimSpace(stripUndefined(code))
		if code == "" {
			code = sentinelAnswer
		}
		if code == sentinelAnswer {
			continue
		}
		a.AnswerCode = fmt.Sprintf("%d. %s", a.AnswerNumber, code)
		out = append(out, a)
	}
	return out
}

func normalizeInstructions(instructions []Instruction) []Instruction {
	out := make([]Instruction, 0, len(instructions))
	for i, in := range instructions {
		if in.BlankNumber < 1 {
			in.BlankNumber = i + 1
		}
		text := strings.TrimSpace(stripUndefined(in.Instruction))
		if text == "" {
			text = sentinelInstruction
		}
		if text == sentinelInstruction {
			continue
		}
		in.Instruction = text
		out = append(out, in)
	}
	return out
}

func stripUndefined(s string) string {
	return strings.ReplaceAll(s, "undefined", "")
}

// cleanLanguageReferences resolves prose of the form "Java program using
// python" to "Python program" and, for dynamically-typed targets, rewrites
// Java generic-container syntax to plain list wording.
func cleanLanguageReferences(text, target string) string {
	display, ok := languageDisplay[strings.ToLower(target)]
	if !ok {
		display = target
	}

	contradiction := regexp.MustCompile(
		`(?i)\b(?:developing\s+a\s+)?(?:` + languageNamePattern + `)\s+(?:program|application)\s+using\s+` +
			regexp.QuoteMeta(display) + `\b`)
	text = contradiction.ReplaceAllString(text, display+" program")

	if !staticallyTyped[strings.ToLower(target)] {
		text = newArrayListRe.ReplaceAllString(text, "[]")
		text = genericListRe.ReplaceAllString(text, "list")
	}
	return text
}
