package exercise

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single field-level validation failure, addressed by its
// JSON path ("instructions.0.blankNumber").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Decode parses a raw JSON body into a Request. Malformed JSON is reported
// as a single body-level field error; unknown fields are kept, not rejected.
func Decode(data []byte) (Request, []FieldError) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, []FieldError{{Field: "body", Message: "Request body must be valid JSON"}}
	}
	return req, nil
}

// DecodeLoose parses any JSON object into a Request: known fields are
// decoded when their types fit, and a field that does not fit rides along
// as a passthrough tag instead of failing the request. Only a non-object
// body is an error.
func DecodeLoose(data []byte) (Request, []FieldError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Request{}, []FieldError{{Field: "data", Message: "data must be a JSON object"}}
	}
	var req Request
	extra := map[string]json.RawMessage{}
	for k, v := range raw {
		if _, known := knownFields[k]; !known || decodeKnownField(&req, k, v) != nil {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		req.Extra = extra
	}
	return req, nil
}

func decodeKnownField(r *Request, key string, raw json.RawMessage) error {
	switch key {
	case "topic":
		return decodeInto(raw, &r.Topic)
	case "subtopic":
		return decodeInto(raw, &r.Subtopic)
	case "difficulty":
		return decodeInto(raw, &r.Difficulty)
	case "questionNumber":
		return decodeInto(raw, &r.QuestionNumber)
	case "questionDescription":
		return decodeInto(raw, &r.QuestionDescription)
	case "instructions":
		return decodeInto(raw, &r.Instructions)
	case "codeBlock":
		return decodeInto(raw, &r.CodeBlock)
	case "answers":
		return decodeInto(raw, &r.Answers)
	case "format":
		return decodeInto(raw, &r.Format)
	case "language":
		return decodeInto(raw, &r.Language)
	case "options":
		return decodeInto(raw, &r.Options)
	case "metadata":
		return decodeInto(raw, &r.Metadata)
	}
	return nil
}

// decodeInto unmarshals through a temporary so a mid-slice type error never
// leaves a partially filled field behind.
func decodeInto[T any](raw json.RawMessage, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// Validate checks req against the exercise schema and returns field errors,
// or nil when the request is well formed. It never panics on malformed but
// well-typed input.
func Validate(req *Request) []FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
	}
	return out
}

// Defaults fills the optional fields the schema leaves open. defaultFormat
// differs per endpoint ("html" for generate-exercise, "docx" for
// generate-docx).
func (r *Request) Defaults(defaultFormat, defaultLanguage, defaultTheme string) {
	if r.QuestionNumber < 1 {
		r.QuestionNumber = 1
	}
	if r.Format == "" {
		r.Format = defaultFormat
	}
	if r.Language == "" {
		r.Language = defaultLanguage
	}
	if r.Options.Theme == "" {
		r.Options.Theme = defaultTheme
	}
}

// Warnings computes the advisory, non-blocking checks run after primary
// validation succeeds.
func Warnings(req Request) []string {
	var out []string
	if len(req.Instructions) != len(req.Answers) {
		out = append(out, "Number of instructions does not match number of answers")
	}
	nums := make([]int, 0, len(req.Instructions))
	for _, in := range req.Instructions {
		nums = append(nums, in.BlankNumber)
	}
	sort.Ints(nums)
	for i, n := range nums {
		if n != i+1 {
			out = append(out, "Blank numbers should be sequential starting from 1")
			break
		}
	}
	return out
}

// fieldPath rewrites a validator namespace like
// "Request.instructions[0].instruction" into "instructions.0.instruction".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "topic":
		return "Topic is required"
	case "subtopic":
		return "Subtopic is required"
	case "questionDescription":
		return "Question description is required"
	case "codeBlock":
		return "Code block is required"
	case "difficulty":
		if fe.Tag() == "oneof" {
			return "Difficulty must be Easy, Medium, or Hard"
		}
		return "Difficulty is required"
	case "format":
		return `Format must be either "docx" or "html"`
	case "instructions":
		return "At least one instruction is required"
	case "answers":
		return "At least one answer is required"
	case "blankNumber":
		return "blankNumber must be a positive integer"
	case "instruction":
		return "instruction text is required"
	case "answerNumber":
		return "answerNumber must be a positive integer"
	case "answerCode":
		return "answerCode is required"
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}
