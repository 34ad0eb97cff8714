package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTextByNewlineSkipsBlankAndCommentLines(t *testing.T) {
	t.Parallel()

	text := "OutputFPS = 30\n# a comment\n\n   \nModelName = Test\r\n# another\r\n"
	lines := ParseTextByNewline(text, '#')
	assert.Equal(t, []string{"OutputFPS = 30", "ModelName = Test"}, lines)
}

func TestParseTextByNewlineEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseTextByNewline("", '#'))
}

func TestParseTextToDictionaryParsesKeyValuePairs(t *testing.T) {
	t.Parallel()

	text := "OutputFPS = 60\nModelName = MyModel\n# comment = ignored\nmalformed line"
	dict := ParseTextToDictionary(text, '=', '#')
	assert.Equal(t, "60", dict["OutputFPS"])
	assert.Equal(t, "MyModel", dict["ModelName"])
	_, ok := dict["malformed line"]
	assert.False(t, ok)
}

func TestParseTextToDictionaryEmptyInputReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ParseTextToDictionary("", '=', '#'))
}
