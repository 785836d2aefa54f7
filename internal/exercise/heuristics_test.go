package exercise_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/exercise"
)

func TestIsGenericInstructions(t *testing.T) {
	generic := []exercise.Instruction{
		{BlankNumber: 1, Instruction: "Complete blank 1"},
		{BlankNumber: 2, Instruction: "Complete blank 2"},
	}
	assert.True(t, exercise.IsGenericInstructions(generic))

	// One specific instruction makes the set specific.
	mixed := []exercise.Instruction{
		{BlankNumber: 1, Instruction: "Complete blank 1"},
		{BlankNumber: 2, Instruction: "Open the file for reading"},
	}
	assert.False(t, exercise.IsGenericInstructions(mixed))

	assert.False(t, exercise.IsGenericInstructions(nil))
}

func TestParseInstructionsFromText(t *testing.T) {
	desc := "Fetch and parse a page.\n" +
		"At Blank 1: Create a GET request for the url.\n" +
		"at blank 2:  Parse the response with BeautifulSoup.  \n" +
		"Not an instruction line."
	parsed := exercise.ParseInstructionsFromText(desc)
	require.Len(t, parsed, 2)
	assert.Equal(t, 1, parsed[0].BlankNumber)
	assert.Equal(t, "Create a GET request for the url.", parsed[0].Instruction)
	assert.Equal(t, 2, parsed[1].BlankNumber)
	assert.Equal(t, "Parse the response with BeautifulSoup.", parsed[1].Instruction)
}

func TestCleanQuestionDescription(t *testing.T) {
	desc := "Intro line.\n" +
		"At Blank 1: first\n" +
		"At Blank 2: second\n" +
		"\n" +
		"\n" +
		"Closing line."
	got := exercise.CleanQuestionDescription(desc)
	assert.Equal(t, "Intro line.\n\nClosing line.", got)
}

func TestApplyInstructionHeuristics(t *testing.T) {
	req := exercise.Request{
		QuestionDescription: "Do the thing.\nAt Blank 1: Open the connection.",
		Instructions: []exercise.Instruction{
			{BlankNumber: 1, Instruction: "Complete blank 1"},
		},
	}
	got := exercise.ApplyInstructionHeuristics(req)
	require.Len(t, got.Instructions, 1)
	assert.Equal(t, "Open the connection.", got.Instructions[0].Instruction)
	assert.Equal(t, "Do the thing.", got.QuestionDescription)
}

func TestHeuristicsKeepSpecificInstructions(t *testing.T) {
	req := exercise.Request{
		QuestionDescription: "At Blank 1: from the prose.",
		Instructions: []exercise.Instruction{
			{BlankNumber: 1, Instruction: "A real instruction"},
		},
	}
	got := exercise.ApplyInstructionHeuristics(req)
	assert.Equal(t, "A real instruction", got.Instructions[0].Instruction)
	assert.Equal(t, req.QuestionDescription, got.QuestionDescription)
}

func TestHeuristicsMissLosesNothing(t *testing.T) {
	req := exercise.Request{
		QuestionDescription: "No embedded lines here.",
		Instructions: []exercise.Instruction{
			{BlankNumber: 1, Instruction: "Complete blank 1"},
		},
	}
	got := exercise.ApplyInstructionHeuristics(req)
	assert.Equal(t, req.Instructions, got.Instructions)
	assert.Equal(t, req.QuestionDescription, got.QuestionDescription)
}
