package pdfio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"docstruct/internal/models"
)

func TestTextFromStream(t *testing.T) {
	stream := []byte("BT\n" +
		"/F1 12 Tf\n" +
		"(Hello ) Tj\n" +
		"(world) Tj\n" +
		"0 -14 Td\n" +
		"(second line) Tj\n" +
		"ET\n" +
		"BT\n" +
		"(next block) Tj\n" +
		"ET\n")
	got := textFromStream(stream)
	require.Equal(t, "Hello world\nsecond line\n\nnext block", got)
}

func TestTextFromStreamTJArrayAndQuote(t *testing.T) {
	stream := []byte("[(Frag)-250(mented)] TJ\n" +
		"(continued) '\n")
	got := textFromStream(stream)
	require.Equal(t, "Fragmented\ncontinued", got)
}

func TestDecodePDFString(t *testing.T) {
	require.Equal(t, "a(b)c", decodePDFString([]byte(`a\(b\)c`)))
	require.Equal(t, "line\nbreak", decodePDFString([]byte(`line\nbreak`)))
	require.Equal(t, "back\\slash", decodePDFString([]byte(`back\\slash`)))
	// octal escape: \101 is 'A'
	require.Equal(t, "A", decodePDFString([]byte(`\101`)))
	require.Equal(t, "plain", decodePDFString([]byte("plain")))
}

func TestTidyStreamText(t *testing.T) {
	require.Equal(t, "a b\nc\n\nd", tidyStreamText("a   b\nc\n\n\n\nd"))
	require.Equal(t, "", tidyStreamText("  \n\n  "))
}

func TestFirstLine(t *testing.T) {
	spans := []models.TextSpan{
		{Text: "\n   \n"},
		{Text: "  The Title  \nrest of page"},
	}
	require.Equal(t, "The Title", firstLine(spans))
	require.Equal(t, "", firstLine(nil))
}
