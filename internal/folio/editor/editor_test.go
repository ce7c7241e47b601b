package editor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	markup := `
<h2>Title</h2>
<p style="text-align: center">Hello <strong>bold <em>both</em></strong> <a href="https://example.com" target="_blank">link</a><br>next</p>
<figure class="image-figure" style="text-align:right"><img src="a.png" alt="A"><figcaption>Cover</figcaption></figure>
<ul><li>one</li><li><p>two</p></li></ul>
<pre><code class="language-go">fmt.Println("hi")</code></pre>
<figure><blockquote>not media</blockquote></figure>
<hr>
<video src="a.mp4" controls></video>`

	doc, err := ParseDocument(strings.NewReader(markup))
	require.NoError(t, err)

	types := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		types = append(types, n.Type)
	}
	assert.Equal(t, []string{"heading", "paragraph", "image", "bulletList", "codeBlock", "horizontalRule", "video"}, types)

	heading := doc.Content[0]
	assert.Equal(t, 2, tiptap.GetAttrInt(heading.Attrs, "level"))

	p := doc.Content[1]
	assert.Equal(t, "center", tiptap.GetAttrString(p.Attrs, "textAlign"))
	require.Len(t, p.Content, 7)
	assert.Equal(t, "Hello ", p.Content[0].Text)
	assert.Equal(t, []tiptap.Mark{{Type: "bold"}}, p.Content[1].Marks)
	assert.Equal(t, []tiptap.Mark{{Type: "bold"}, {Type: "italic"}}, p.Content[2].Marks)
	assert.Equal(t, "link", p.Content[4].Marks[0].Type)
	assert.Equal(t, "https://example.com", tiptap.GetAttrString(p.Content[4].Marks[0].Attrs, "href"))
	assert.Equal(t, "hardBreak", p.Content[5].Type)

	image := doc.Content[2]
	assert.Equal(t, "right", image.Attrs["textAlign"])
	assert.Equal(t, "Cover", image.Attrs["caption"])

	list := doc.Content[3]
	require.Len(t, list.Content, 2)
	assert.Equal(t, "paragraph", list.Content[0].Content[0].Type)
	assert.Equal(t, "two", list.Content[1].Content[0].Content[0].Text)

	code := doc.Content[4]
	assert.Equal(t, "go", code.Attrs["language"])
	assert.Equal(t, `fmt.Println("hi")`, code.Content[0].Text)

	assert.Equal(t, true, doc.Content[6].Attrs["controls"])
}

func TestParseDocumentLiftsInlineMedia(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<p>before <img src="a.png"> after</p>`))
	require.NoError(t, err)
	require.Len(t, doc.Content, 2)
	assert.Equal(t, "paragraph", doc.Content[0].Type)
	assert.Equal(t, "image", doc.Content[1].Type)
}

func TestRenderDocumentRoundTrip(t *testing.T) {
	raw := `{"type":"doc","content":[
		{"type":"heading","attrs":{"level":3},"content":[{"type":"text","text":"Intro"}]},
		{"type":"paragraph","attrs":{"textAlign":"right"},"content":[
			{"type":"text","text":"plain "},
			{"type":"text","marks":[{"type":"bold"},{"type":"underline"}],"text":"marked"},
			{"type":"hardBreak"},
			{"type":"text","marks":[{"type":"link","attrs":{"href":"https://example.com"}}],"text":"go"}
		]},
		{"type":"blockquote","content":[{"type":"paragraph","content":[{"type":"text","text":"quoted"}]}]},
		{"type":"orderedList","attrs":{"start":3},"content":[
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"item"}]}]}
		]},
		{"type":"codeBlock","attrs":{"language":"sql"},"content":[{"type":"text","text":"select 1 < 2"}]},
		{"type":"image","attrs":{"src":"a.png","alt":null,"title":null,"textAlign":"center","caption":"Photo"}},
		{"type":"audio","attrs":{"src":"a.mp3","controls":true,"autoplay":false,"loop":true,"preload":"metadata","textAlign":"left","caption":null}},
		{"type":"horizontalRule"}
	]}`
	doc, err := tiptap.ParseJSON(strings.NewReader(raw))
	require.NoError(t, err)

	markup, err := RenderDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, markup, `<h3>Intro</h3>`)
	assert.Contains(t, markup, `<p style="text-align:right">plain <strong><u>marked</u></strong><br/><a href="https://example.com">go</a></p>`)
	assert.Contains(t, markup, `<ol start="3">`)
	assert.Contains(t, markup, `<pre><code class="language-sql">select 1 &lt; 2</code></pre>`)
	assert.Contains(t, markup, `<figure class="image-figure" style="text-align:center"><img src="a.png"/><figcaption>Photo</figcaption></figure>`)

	parsed, err := ParseDocument(strings.NewReader(markup))
	require.NoError(t, err)

	// Числа из JSON приходят как float64, поэтому сравниваем через повторную сериализацию
	want, err := json.Marshal(doc)
	require.NoError(t, err)
	got, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestRenderDocumentSkipsUnknown(t *testing.T) {
	doc := &tiptap.Document{Type: tiptap.DocType, Content: []tiptap.Node{
		{Type: "mermaid"},
		{Type: "paragraph", Content: []tiptap.Node{{Type: "text", Text: "ok"}}},
	}}

	markup, err := RenderDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "<p>ok</p>", markup)

	empty, err := RenderDocument(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
