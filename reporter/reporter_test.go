package reporter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tremor-rt/tremor/errs"
)

func TestFormatHygienicBlock(t *testing.T) {
	source := "let a = 1;\nlet b = 2;\nevent.foo + 1;\n"
	err := errs.At(
		errs.BadAccess.New("Trying to access a non existing event key `foo`"),
		"data/script_with_error.tremor", 3, 34,
	)

	out := Format(err, source, false)

	assert.True(t, strings.Contains(out, "Error in data/script_with_error.tremor:3:34"))
	assert.True(t, strings.Contains(out, "event.foo + 1;"))
	assert.True(t, strings.Contains(out, "Trying to access a non existing event key `foo`"))
}

func TestFormatUnspannedError(t *testing.T) {
	out := Format(errs.Internal.New("boom"), "", false)
	assert.True(t, strings.Contains(out, "boom"))
}

func TestParseLocationRoundTrip(t *testing.T) {
	err := errs.At(errs.Type.New("nope"), "foo.tremor", 5, 9)
	out := Format(err, "", false)
	file, line, col, ok := ParseLocation(out)
	assert.True(t, ok)
	assert.Equal(t, "foo.tremor", file)
	assert.Equal(t, 5, line)
	assert.Equal(t, 9, col)
}

func TestCaretLineIndent(t *testing.T) {
	line := caretLine("abc", 2, false)
	assert.Equal(t, " ^", line)
}
