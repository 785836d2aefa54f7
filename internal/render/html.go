package render

import (
	"encoding/json"
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/docforge/docforge/internal/exercise"
)

// Highlight-theme stylesheets selectable via options.theme.
var themes = map[string]string{
	"github":         "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/github.min.css",
	"github-dark":    "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/github-dark.min.css",
	"vs2015":         "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/vs2015.min.css",
	"atom-one-dark":  "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/atom-one-dark.min.css",
	"atom-one-light": "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/11.9.0/styles/atom-one-light.min.css",
}

func ThemeURL(theme string) string {
	if u, ok := themes[theme]; ok {
		return u
	}
	return themes["github"]
}

func ThemeNames() []string {
	return []string{"github", "github-dark", "vs2015", "atom-one-dark", "atom-one-light"}
}

// HTMLRenderer delegates mustache-style substitution (variables, sections
// over arrays, inverted sections) to the mustache library. No partials.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer { return &HTMLRenderer{} }

// Render substitutes data into an arbitrary template string.
func (r *HTMLRenderer) Render(templateString string, data interface{}) (string, error) {
	out, err := mustache.Render(templateString, data)
	if err != nil {
		return "", &RenderError{Template: "inline", Err: err}
	}
	return out, nil
}

// RenderExercise renders the built-in coding-exercise page from a
// normalized payload. The payload is used as-is; the inverted
// highlightedCode sections in the template fall back to the plain code
// text, which is all the normalizer emits.
func (r *HTMLRenderer) RenderExercise(payload exercise.Request) (string, error) {
	data, err := toMap(payload)
	if err != nil {
		return "", &RenderError{Template: "coding-exercise", Err: err}
	}
	theme := "github"
	if payload.Metadata != nil && payload.Metadata.Theme != "" {
		theme = payload.Metadata.Theme
	}
	data["themeCSS"] = fmt.Sprintf(`<link rel="stylesheet" href="%s">`, ThemeURL(theme))

	out, err := mustache.Render(exerciseTemplate, data)
	if err != nil {
		return "", &RenderError{Template: "coding-exercise", Err: err}
	}
	return out, nil
}

// toMap lowers the typed payload to the loosely-keyed shape mustache
// resolves tags against, merging passthrough fields back in.
func toMap(payload exercise.Request) (map[string]interface{}, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const exerciseTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Coding Exercise</title>
    {{{themeCSS}}}
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 900px;
            margin: 0 auto;
            padding: 20px;
            line-height: 1.6;
            color: #333;
        }
        .header {
            border-bottom: 2px solid #e1e4e8;
            padding-bottom: 20px;
            margin-bottom: 30px;
        }
        .topic { font-size: 24px; font-weight: bold; margin-bottom: 10px; }
        .subtopic { font-size: 20px; font-weight: bold; margin-bottom: 10px; }
        .difficulty { font-size: 20px; font-weight: bold; margin-bottom: 20px; }
        .question-header { font-size: 22px; font-weight: bold; margin: 30px 0 20px 0; }
        .question-text { margin-bottom: 20px; text-align: justify; white-space: pre-line; }
        .instructions-header { font-weight: bold; margin: 20px 0 10px 0; }
        .instruction { margin: 8px 0; padding-left: 20px; }
        .code-header { font-weight: bold; margin: 30px 0 10px 0; }
        .code-block {
            background: #f6f8fa;
            border: 1px solid #e1e4e8;
            border-radius: 6px;
            padding: 16px;
            margin: 16px 0;
            overflow-x: auto;
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            font-size: 14px;
            line-height: 1.45;
        }
        .answers-header {
            font-size: 20px;
            font-weight: bold;
            margin: 40px 0 20px 0;
            border-top: 1px solid #e1e4e8;
            padding-top: 20px;
        }
        .answer {
            margin: 12px 0;
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
        }
        pre { margin: 0; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="header">
        <div class="topic">Topic: {{topic}}</div>
        <div class="subtopic">Subtopic: {{subtopic}}</div>
        <div class="difficulty">Difficulty level: {{difficulty}}</div>
    </div>

    <div class="question-header">Question {{questionNumber}}:</div>

    <div class="question-text">{{questionDescription}}</div>

    <div class="instructions-header">Complete the code using the instructions:</div>
    {{#instructions}}
    <div class="instruction">At Blank {{blankNumber}}: {{instruction}}</div>
    {{/instructions}}

    <div class="code-header">A few lines in the Sample Script are missing (Enter your code here). You need to complete the code as per the given instructions.</div>

    <div class="code-header">Sample Script:</div>
    <div class="code-block">
        {{#highlightedCode}}
        <pre><code>{{{highlightedCode}}}</code></pre>
        {{/highlightedCode}}
        {{^highlightedCode}}
        <pre><code>{{codeBlock}}</code></pre>
        {{/highlightedCode}}
    </div>

    <div class="answers-header">Answers:</div>
    {{#answers}}
    <div class="answer"><code>{{answerCode}}</code></div>
    {{/answers}}
</body>
</html>`
