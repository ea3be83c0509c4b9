package casefile

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases(t *testing.T) {
	markdown := "# Statements\n\n" +
		"Prose and an untagged block are ignored.\n\n" +
		"```\nanything\n```\n\n" +
		"## Test: bare return\n\n" +
		"```jack\nclass A { function void f() { return; } }\n```\n\n" +
		"```vm\nfunction A.f 0\npush constant 0\nreturn\n```\n\n" +
		"## Test: duplicate field\n\n" +
		"```jack\nclass A { field int x, x; }\n```\n\n" +
		"```compile-error\nalready defined\n```\n\n" +
		"```vm-contains\nreturn\n```\n"

	testCases, err := ExtractTestCases([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	be.Equal(t, testCases[0].Name, "bare return")
	be.Equal(t, testCases[0].Input, "class A { function void f() { return; } }")
	be.Equal(t, len(testCases[0].Assertions), 1)
	be.Equal(t, testCases[0].Assertions[0].Type, AssertionVM)
	be.Equal(t, testCases[0].Assertions[0].Lines(), []string{"function A.f 0", "push constant 0", "return"})

	be.Equal(t, testCases[1].Name, "duplicate field")
	be.Equal(t, len(testCases[1].Assertions), 2)
	be.Equal(t, testCases[1].Assertions[0].Type, AssertionCompileError)
	be.Equal(t, testCases[1].Assertions[0].Content, "already defined")
	be.Equal(t, testCases[1].Assertions[1].Type, AssertionVMContains)
}

func TestExtractTestCasesErrors(t *testing.T) {
	tests := map[string]string{
		"fence outside test": "```jack\nclass A { }\n```\n",
		"unknown fence":      "## Test: a\n\n```jack\nclass A { }\n```\n\n```xml\n<a/>\n```\n",
		"no input":           "## Test: a\n\n```vm\nreturn\n```\n",
		"no assertion":       "## Test: a\n\n```jack\nclass A { }\n```\n",
		"two inputs":         "## Test: a\n\n```jack\nclass A { }\n```\n\n```jack\nclass B { }\n```\n",
	}
	for name, markdown := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractTestCases([]byte(markdown))
			be.True(t, err != nil)
		})
	}
}

func TestAssertionLineNumber(t *testing.T) {
	markdown := "## Test: a\n\n```jack\nclass A { }\n```\n\n```vm\n```\n\n```compile-error\nboom\n```\n"
	testCases, err := ExtractTestCases([]byte(markdown))
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].Assertions[1].Line, 11)
}
