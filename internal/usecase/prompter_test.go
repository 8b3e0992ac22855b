package usecase

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOConfirmationPrompter_Confirm(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "yes", input: "yes\n", expected: true},
		{name: "short yes with spaces", input: "  Y \n", expected: true},
		{name: "yes without trailing newline", input: "y", expected: true},
		{name: "no", input: "n\n", expected: false},
		{name: "empty line defaults to no", input: "\n", expected: false},
		{name: "end of input defaults to no", input: "", expected: false},
		{name: "anything else is no", input: "sure\n", expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			prompter := NewIOConfirmationPrompter(strings.NewReader(tc.input), &out)

			confirmed, err := prompter.Confirm("Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, confirmed)
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}

func TestIOConfirmationPrompter_OneAnswerPerQuestion(t *testing.T) {
	prompter := NewIOConfirmationPrompter(strings.NewReader("y\nn\n"), nil)

	first, err := prompter.Confirm("first?")
	require.NoError(t, err)
	second, err := prompter.Confirm("second?")
	require.NoError(t, err)
	third, err := prompter.Confirm("third?")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.False(t, third)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestIOConfirmationPrompter_WriteError(t *testing.T) {
	prompter := NewIOConfirmationPrompter(strings.NewReader("y\n"), failingWriter{})

	confirmed, err := prompter.Confirm("Proceed?")
	assert.Error(t, err)
	assert.False(t, confirmed)
}
