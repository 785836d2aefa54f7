package exercise

import (
	"encoding/json"
	"time"
)

const (
	FormatDocx = "docx"
	FormatHTML = "html"
)

var Difficulties = []string{"Easy", "Medium", "Hard"}

type Instruction struct {
	BlankNumber int    `json:"blankNumber" validate:"required,min=1"`
	Instruction string `json:"instruction" validate:"required"`
}

type Answer struct {
	AnswerNumber int    `json:"answerNumber" validate:"required,min=1"`
	AnswerCode   string `json:"answerCode" validate:"required"`
}

type Options struct {
	SyntaxHighlighting *bool  `json:"syntaxHighlighting,omitempty"`
	IncludeLineNumbers bool   `json:"includeLineNumbers"`
	Theme              string `json:"theme,omitempty"`
}

// Highlighting reports the effective syntaxHighlighting flag (default true).
func (o Options) Highlighting() bool {
	return o.SyntaxHighlighting == nil || *o.SyntaxHighlighting
}

// Metadata is attached by the normalizer, never supplied by callers.
type Metadata struct {
	GeneratedAt        time.Time `json:"generatedAt"`
	Language           string    `json:"language"`
	Theme              string    `json:"theme"`
	SyntaxHighlighting bool      `json:"syntaxHighlighting"`
}

// Request is a caller-supplied coding exercise. Unknown top-level fields
// survive decoding in Extra so loosely-typed upstream callers (n8n and
// friends) can attach metadata without being rejected.
type Request struct {
	Topic               string        `json:"topic" validate:"required"`
	Subtopic            string        `json:"subtopic" validate:"required"`
	Difficulty          string        `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	QuestionNumber      int           `json:"questionNumber,omitempty" validate:"omitempty,min=1"`
	QuestionDescription string        `json:"questionDescription" validate:"required"`
	Instructions        []Instruction `json:"instructions" validate:"required,min=1,dive"`
	CodeBlock           string        `json:"codeBlock" validate:"required"`
	Answers             []Answer      `json:"answers" validate:"required,min=1,dive"`
	Format              string        `json:"format,omitempty" validate:"omitempty,oneof=docx html"`
	Language            string        `json:"language,omitempty"`
	Options             Options       `json:"options,omitempty"`

	Metadata *Metadata `json:"metadata,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// knownFields are the top-level keys owned by Request; everything else is
// routed into Extra on decode.
var knownFields = map[string]struct{}{
	"topic": {}, "subtopic": {}, "difficulty": {}, "questionNumber": {},
	"questionDescription": {}, "instructions": {}, "codeBlock": {},
	"answers": {}, "format": {}, "language": {}, "options": {}, "metadata": {},
}

type requestAlias Request

func (r *Request) UnmarshalJSON(data []byte) error {
	var alias requestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if _, ok := knownFields[k]; ok {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		alias.Extra = raw
	}
	*r = Request(alias)
	return nil
}

func (r Request) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(requestAlias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Clone deep-copies the request via a JSON round trip, so normalization
// never mutates the caller's value.
func (r Request) Clone() Request {
	buf, err := json.Marshal(r)
	if err != nil {
		return r
	}
	var out Request
	if err := json.Unmarshal(buf, &out); err != nil {
		return r
	}
	return out
}
