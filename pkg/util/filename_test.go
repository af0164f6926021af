package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"photo.png":            "photo.png",
		"My Holiday Pic.JPG":   "My_Holiday_Pic.JPG",
		"../../etc/passwd":     "etc_passwd",
		`..\..\windows\a.jpg`:  "windows_a.jpg",
		".hidden.png":          "hidden.png",
		"Café.jpeg":            "Cafe.jpeg",
		"a<b>c|d?.png":         "abcd.png",
		"../":                  "",
		"  spaced   out .png ": "spaced_out_.png",
	}

	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestSanitizeFilenameNoSeparators(t *testing.T) {
	for _, in := range []string{"/abs/path/x.png", "a/../../b.png", "..", "./.png"} {
		out := SanitizeFilename(in)
		assert.NotContains(t, out, "/")
		assert.NotContains(t, out, `\`)
		assert.False(t, strings.HasPrefix(out, "."), "output %q starts with a dot", out)
	}
}

func TestSanitizeFilenameTruncatesKeepingExtension(t *testing.T) {
	out := SanitizeFilename(strings.Repeat("a", 400) + ".jpeg")

	assert.LessOrEqual(t, len(out), maxFilenameLen)
	assert.True(t, strings.HasSuffix(out, ".jpeg"))
}

func TestExt(t *testing.T) {
	assert.Equal(t, "png", Ext("a.PNG"))
	assert.Equal(t, "jpeg", Ext("archive.tar.JPEG"))
	assert.Equal(t, "", Ext("noext"))
	assert.Equal(t, "", Ext("trailing."))
}

func TestRandStr(t *testing.T) {
	a, err := RandStr(16)
	assert.NoError(t, err)
	assert.Len(t, a, 16)

	b := MustRandStr(16)
	assert.NotEqual(t, a, b)
}
