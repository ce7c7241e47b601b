package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKeepsMediaMarkup(t *testing.T) {
	tests := []string{
		`<figure class="image-figure" style="text-align:center"><img src="https://cdn.example.com/a.png" alt="A"/><figcaption>Hello</figcaption></figure>`,
		`<figure class="audio-figure" style="text-align:left"><audio src="a.mp3" controls="" loop="" preload="metadata"></audio></figure>`,
		`<figure class="video-figure" style="text-align:right"><video src="a.mp4" controls="" width="100%" height="auto" poster="p.jpg" preload="none"></video></figure>`,
		`<p style="text-align:justify">text</p>`,
	}

	for _, markup := range tests {
		assert.Equal(t, markup, Sanitize(markup))
	}
}

func TestSanitizeRemovesUnsafe(t *testing.T) {
	markup := `<figure class="evil" style="position:fixed" onclick="x()"><img src="javascript:alert(1)" onerror="x()"/><script>alert(1)</script><figcaption>Cap</figcaption></figure>`

	got := Sanitize(markup)
	assert.NotContains(t, got, "script")
	assert.NotContains(t, got, "javascript")
	assert.NotContains(t, got, "onclick")
	assert.NotContains(t, got, "onerror")
	assert.NotContains(t, got, "evil")
	assert.NotContains(t, got, "position")
	assert.Contains(t, got, "<figcaption>Cap</figcaption>")

	assert.Empty(t, Sanitize(""))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world", StripTags(`<p>Hello <strong>world</strong></p>`))
}

func TestMinify(t *testing.T) {
	got, err := Minify("<p>a</p>\n\n   <p>b</p>\n")
	require.NoError(t, err)
	assert.NotContains(t, got, "\n")
	assert.True(t, strings.Contains(got, "a") && strings.Contains(got, "b"))
}

func TestMinifyKeepsCaptionText(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		minified bool
	}{
		{"plain caption", `<figure class="image-figure"><img src="a.png"/><figcaption>Photo of a cat</figcaption></figure>`, true},
		{"edge spaces", `<figure class="image-figure"><img src="a.png"/><figcaption>  spaced  </figcaption></figure>`, false},
		{"repeated spaces", `<figure class="audio-figure"><audio src="a.mp3"></audio><figcaption>a  b</figcaption></figure>`, false},
		{"newline", "<figure class=\"video-figure\"><video src=\"a.mp4\"></video><figcaption>a\nb</figcaption></figure>", false},
		{"non-breaking space", `<figure class="image-figure"><img src="a.png"/><figcaption>&nbsp;a&nbsp;</figcaption></figure>`, true},
		{"no captions", "<p>a</p>\n<p>b</p>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Minify(tt.markup)
			require.NoError(t, err)
			if tt.minified {
				assert.NotEqual(t, tt.markup, got)
			} else {
				assert.Equal(t, tt.markup, got)
			}
		})
	}
}
