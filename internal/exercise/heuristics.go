package exercise

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Some upstream callers send placeholder instructions ("Complete blank 1")
// while the real instructions are embedded in the question prose as
// "At Blank N: ..." lines. The helpers below detect that shape, lift the
// embedded instructions out, and scrub the prose so the rendered document
// does not show them twice.

var blankLineRe = regexp.MustCompile(`(?i)^\s*At Blank\s+(\d+)\s*:\s*(.+?)\s*$`)

// IsGenericInstructions reports whether every instruction is exactly the
// placeholder "Complete blank {blankNumber}". A single specific instruction
// makes the whole set specific.
func IsGenericInstructions(instructions []Instruction) bool {
	if len(instructions) == 0 {
		return false
	}
	for _, in := range instructions {
		if strings.TrimSpace(in.Instruction) != fmt.Sprintf("Complete blank %d", in.BlankNumber) {
			return false
		}
	}
	return true
}

// ParseInstructionsFromText scans the description line by line for
// "At Blank N: text" entries. Zero matches yields an empty slice.
func ParseInstructionsFromText(description string) []Instruction {
	var out []Instruction
	for _, line := range strings.Split(description, "\n") {
		m := blankLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		out = append(out, Instruction{BlankNumber: n, Instruction: strings.TrimSpace(m[2])})
	}
	return out
}

// CleanQuestionDescription removes the "At Blank N: ..." lines, collapses
// any resulting run of blank lines down to one, and trims the whole string.
func CleanQuestionDescription(description string) string {
	lines := strings.Split(description, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if blankLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := make([]string, 0, len(kept))
	blank := false
	for _, line := range kept {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ApplyInstructionHeuristics replaces generic placeholder instructions with
// instructions parsed out of the prose, when there are any, and swaps in the
// cleaned prose. When parsing finds nothing both the placeholders and the
// original description are kept, so no data is lost on a miss.
func ApplyInstructionHeuristics(req Request) Request {
	if !IsGenericInstructions(req.Instructions) {
		return req
	}
	parsed := ParseInstructionsFromText(req.QuestionDescription)
	if len(parsed) == 0 {
		return req
	}
	req.Instructions = parsed
	req.QuestionDescription = CleanQuestionDescription(req.QuestionDescription)
	return req
}
