package sexy

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language holding a program tree.
const InputFence = "bminor"

// AssertionType represents the type of assertion code fence in a test case
type AssertionType string

const (
	AssertionTypeAsm         AssertionType = "asm"
	AssertionTypeDiagnostics AssertionType = "diagnostics"
	AssertionTypeSymbols     AssertionType = "symbols"
	AssertionTypeTypes       AssertionType = "types"
)

// Assertion represents a single assertion in a test case
type Assertion struct {
	Type       AssertionType
	Content    string // raw fence content
	ParsedSexy *Node  // set for symbols and types assertions
	Line       int
}

// TestCase is one "Test: ..." section of a markdown document.
type TestCase struct {
	Name       string
	Input      string
	Options    []string // words after the input fence language, e.g. "fail-fast"
	Assertions []Assertion
}

// HasOption reports whether the input fence carried the given option word.
func (tc *TestCase) HasOption(name string) bool {
	for _, o := range tc.Options {
		if o == name {
			return true
		}
	}
	return false
}

// ExtractTestCases parses a Markdown document and extracts all test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)

	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var currentTestCase *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if currentTestCase != nil {
				if err := validateTestCase(currentTestCase); err != nil {
					return ast.WalkStop, err
				}
				testCases = append(testCases, *currentTestCase)
			}
			currentTestCase = &TestCase{Name: strings.TrimPrefix(headingText, "Test: ")}

		case *ast.FencedCodeBlock:
			info := fenceInfo(n, source)
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			if len(info) == 0 {
				// Plain code blocks are prose.
				return ast.WalkContinue, nil
			}
			language := info[0]

			if currentTestCase == nil {
				return ast.WalkStop, errors.Errorf("line %d: %s fence found outside of test case", lineNum, language)
			}

			if language == InputFence {
				if currentTestCase.Input != "" {
					return ast.WalkStop, errors.Errorf("line %d: multiple input fences found in test '%s'", lineNum, currentTestCase.Name)
				}
				currentTestCase.Input = strings.TrimRight(content, "\n")
				currentTestCase.Options = info[1:]
				return ast.WalkContinue, nil
			}

			if !isAssertionFence(language) {
				return ast.WalkStop, errors.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, currentTestCase.Name)
			}

			assertion := Assertion{
				Type:    AssertionType(language),
				Content: strings.TrimRight(content, "\n"),
				Line:    lineNum,
			}
			if assertion.Type == AssertionTypeSymbols || assertion.Type == AssertionTypeTypes {
				parsed, err := Parse(assertion.Content)
				if err != nil {
					return ast.WalkStop, errors.Wrapf(err, "line %d: bad %s assertion in test '%s'", lineNum, language, currentTestCase.Name)
				}
				assertion.ParsedSexy = parsed
			}
			currentTestCase.Assertions = append(currentTestCase.Assertions, assertion)
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, errors.Wrap(err, "error walking markdown AST")
	}

	if currentTestCase != nil {
		if err := validateTestCase(currentTestCase); err != nil {
			return nil, err
		}
		testCases = append(testCases, *currentTestCase)
	}

	return testCases, nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

// fenceInfo splits the info string of a fence ("bminor fail-fast") into words.
func fenceInfo(codeBlock *ast.FencedCodeBlock, source []byte) []string {
	if codeBlock.Info == nil {
		return nil
	}
	return strings.Fields(string(codeBlock.Info.Segment.Value(source)))
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAsm, AssertionTypeDiagnostics, AssertionTypeSymbols, AssertionTypeTypes:
		return true
	}
	return false
}

// validateTestCase ensures a test case has both input and at least one assertion
func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return errors.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return errors.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	return bytes.Count(source[:startPos], []byte("\n"))
}

// MatchLines compares actual output lines against expected lines. An
// expected line of "..." matches any run of zero or more actual lines.
// Leading and trailing whitespace on each line is ignored. It returns a
// description of the first mismatch, or "" when the lines match.
func MatchLines(expected, actual []string) string {
	exp := trimAll(expected)
	act := trimAll(actual)
	if matchFrom(exp, act) {
		return ""
	}
	// Report the first line that cannot be matched in order.
	ai := 0
	for _, e := range exp {
		if e == "..." {
			continue
		}
		found := false
		for ai < len(act) {
			ai++
			if act[ai-1] == e {
				found = true
				break
			}
		}
		if !found {
			return "expected line not found: " + e
		}
	}
	return "output has unexpected extra lines"
}

func matchFrom(exp, act []string) bool {
	if len(exp) == 0 {
		return len(act) == 0
	}
	if exp[0] == "..." {
		for skip := 0; skip <= len(act); skip++ {
			if matchFrom(exp[1:], act[skip:]) {
				return true
			}
		}
		return false
	}
	if len(act) == 0 || act[0] != exp[0] {
		return false
	}
	return matchFrom(exp[1:], act[1:])
}

func trimAll(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
