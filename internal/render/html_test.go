package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/exercise"
	"github.com/docforge/docforge/internal/render"
)

func samplePayload() exercise.Request {
	req := exercise.Request{
		Topic:               "Python",
		Subtopic:            "Web Scraping",
		Difficulty:          "Easy",
		QuestionDescription: "Fetch and parse a page.",
		Instructions: []exercise.Instruction{
			{BlankNumber: 1, Instruction: "Fetch the url."},
			{BlankNumber: 2, Instruction: "Parse the html."},
		},
		CodeBlock: "page = Blank 1: Enter your code here\nsoup = Blank 2: Enter your code here",
		Answers: []exercise.Answer{
			{AnswerNumber: 1, AnswerCode: "requests.get(url).text"},
			{AnswerNumber: 2, AnswerCode: `BeautifulSoup(page, "html.parser")`},
		},
	}
	return exercise.Process(req, exercise.NormalizeOptions{
		Language:           "python",
		Theme:              "github",
		SyntaxHighlighting: true,
		Now:                time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
}

func TestRenderExercise(t *testing.T) {
	html, err := render.NewHTMLRenderer().RenderExercise(samplePayload())
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(html, `<div class="instruction">`))
	assert.Equal(t, 2, strings.Count(html, `<div class="answer">`))
	assert.Contains(t, html, "Topic: Python")
	assert.Contains(t, html, "At Blank 1: Fetch the url.")
	assert.Contains(t, html, "1. requests.get(url).text")
	// No highlightedCode in the payload, so the plain block is used.
	assert.Contains(t, html, "page = Blank 1: Enter your code here")
	assert.Contains(t, html, "styles/github.min.css")
}

func TestRenderExerciseThemeSelection(t *testing.T) {
	payload := samplePayload()
	payload.Metadata.Theme = "vs2015"
	html, err := render.NewHTMLRenderer().RenderExercise(payload)
	require.NoError(t, err)
	assert.Contains(t, html, "styles/vs2015.min.css")
}

func TestRenderInlineTemplate(t *testing.T) {
	out, err := render.NewHTMLRenderer().Render("Hello {{name}}!", map[string]string{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", out)
}

func TestThemeURLFallsBack(t *testing.T) {
	assert.Equal(t, render.ThemeURL("github"), render.ThemeURL("no-such-theme"))
}
