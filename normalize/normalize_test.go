package normalize

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func norm(input string) string {
	return string(Default().Normalize(input))
}

func normStrip(input string) string {
	n := New(Config{StripDiacritics: true, CollapseWhitespace: false})
	return string(n.Normalize(input))
}

func TestASCIIBasicLowercase(t *testing.T) {
	require.Equal(t, "hello", norm("HELLO"))
	require.Equal(t, "hello", norm("HeLlO"))
	require.Equal(t, "123 abc!", norm("123 ABC!"))
}

func TestASCIIPunctuationUnchanged(t *testing.T) {
	require.Equal(t, "foo-bar_baz", norm("foo-bar_baz"))
}

func TestWhitespaceCollapse(t *testing.T) {
	require.Equal(t, "hello world", norm("hello   world"))
	require.Equal(t, "hello world", norm("hello\t\nworld"))
	require.Equal(t, "hello world", norm("hello \r\n world"))
}

func TestLeadingWhitespaceCollapsesNotRemoved(t *testing.T) {
	require.Equal(t, " hello", norm("   hello"))
}

func TestTrailingWhitespaceRemoved(t *testing.T) {
	require.Equal(t, "hello", norm("hello   "))
}

func TestOnlyWhitespace(t *testing.T) {
	require.Equal(t, "", norm("   "))
	require.Equal(t, "", norm("\n\t\r"))
}

func TestUnicodeBasicLowercase(t *testing.T) {
	require.Equal(t, "привет", norm("ПРИВЕТ"))
}

func TestDiacriticsPreservedWhenDisabled(t *testing.T) {
	n := New(Config{StripDiacritics: false, CollapseWhitespace: true})
	require.Equal(t, "café", string(n.Normalize("café")))
	require.Equal(t, "müller", string(n.Normalize("Müller")))
}

func TestBasicDiacriticStrip(t *testing.T) {
	require.Equal(t, "cafe", normStrip("café"))
	require.Equal(t, "muller", normStrip("Müller"))
	require.Equal(t, "sao", normStrip("São"))
}

func TestExtendedLatinStrip(t *testing.T) {
	require.Equal(t, "cesky", normStrip("Český"))
	require.Equal(t, "zołc", normStrip("Żółć"))
}

func TestOutputAlwaysValidUTF8(t *testing.T) {
	inputs := []string{"hello", "café", "İstanbul", "مرحبا", "こんにちは"}
	for _, in := range inputs {
		out := norm(in)
		require.True(t, isValidUTF8(out), "output for %q was not valid UTF-8", in)
	}
}

func TestIdempotentWithoutStrip(t *testing.T) {
	n := New(Config{StripDiacritics: false, CollapseWhitespace: true})
	samples := []string{"hello world", "foo   bar", "ÜBER Café"}
	for _, s := range samples {
		once := string(n.Normalize(s))
		twice := string(n.Normalize(once))
		require.Equal(t, once, twice, "not idempotent for %q", s)
	}
}

func TestIdempotentWithStrip(t *testing.T) {
	n := New(Config{StripDiacritics: true, CollapseWhitespace: true})
	samples := []string{"Müller São", "Český Žlutý kůň"}
	for _, s := range samples {
		once := string(n.Normalize(s))
		twice := string(n.Normalize(once))
		require.Equal(t, once, twice, "not idempotent for %q", s)
	}
}

func TestNoTrailingSpace(t *testing.T) {
	out := norm("hello world   ")
	require.False(t, len(out) > 0 && out[len(out)-1] == ' ')
}

func TestEmptyInput(t *testing.T) {
	require.Equal(t, "", norm(""))
}

func TestSingleChar(t *testing.T) {
	require.Equal(t, "a", norm("A"))
}

func TestEmojiPassthrough(t *testing.T) {
	require.Equal(t, "hello 🌍 world", norm("Hello 🌍 World"))
}

func TestNormalizeIntoReusesBuffer(t *testing.T) {
	n := Default()
	var buf bytes.Buffer
	n.NormalizeInto("HELLO", &buf)
	require.Equal(t, "hello", buf.String())

	n.NormalizeInto("WORLD", &buf)
	require.Equal(t, "world", buf.String())
}

func isValidUTF8(s string) bool {
	for _, r := range s {
		if r == '�' {
			return false
		}
	}
	return true
}
