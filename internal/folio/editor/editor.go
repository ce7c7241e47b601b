// Пакет editor преобразует HTML-разметку документа в JSON-дерево TipTap и обратно.
//
// Основные возможности:
//   - Парсинг HTML-документов из io.Reader в tiptap.Document.
//   - Рендер tiptap.Document в HTML для публичных страниц.
//   - Расширения медиа-нод (image, audio, video) с обёрткой figure, выравниванием и подписью.
//   - Поддержка параграфов, заголовков, списков, цитат, блоков кода и форматирования текста.
package editor

import (
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/aisa-it/folio/internal/folio/editor/edtypes"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	"golang.org/x/net/html"
)

// ParseDocument разбирает HTML-разметку в дерево документа.
func ParseDocument(r io.Reader) (*tiptap.Document, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := tiptap.EmptyDocument()
	body := getBody(rootNode)
	if body == nil {
		return doc, nil
	}
	doc.Content = parseBlocks(body)
	return doc, nil
}

// parseBlocks разбирает дочерние элементы как блочные ноды.
func parseBlocks(root *html.Node) []tiptap.Node {
	res := make([]tiptap.Node, 0)

	for el := root.FirstChild; el != nil; el = el.NextSibling {
		if el.Type == html.TextNode {
			if strings.TrimSpace(el.Data) != "" {
				res = append(res, tiptap.Node{
					Type:    "paragraph",
					Content: []tiptap.Node{{Type: "text", Text: el.Data}},
				})
			}
			continue
		}
		if el.Type != html.ElementNode {
			continue
		}

		switch el.Data {
		case "p":
			p, lifted := parseParagraph(el)
			res = append(res, p)
			res = append(res, lifted...)
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level, _ := strconv.Atoi(el.Data[1:])
			content, lifted := parseInline(el, nil)
			res = append(res, tiptap.Node{
				Type:    "heading",
				Attrs:   map[string]any{"level": level},
				Content: content,
			})
			res = append(res, lifted...)
		case "blockquote":
			res = append(res, tiptap.Node{Type: "blockquote", Content: parseBlocks(el)})
		case "ul", "ol":
			res = append(res, parseList(el))
		case "pre":
			res = append(res, parseCode(el))
		case "hr":
			res = append(res, tiptap.Node{Type: "horizontalRule"})
		case "div", "section", "article":
			res = append(res, parseBlocks(el)...)
		default:
			if ext, attrs, ok := MatchExtension(el); ok {
				res = append(res, tiptap.Node{Type: ext.Name(), Attrs: attrs})
				continue
			}
			slog.Warn("Unknown block element", "tag", el.Data)
		}
	}

	return res
}

func parseParagraph(root *html.Node) (tiptap.Node, []tiptap.Node) {
	p := tiptap.Node{Type: "paragraph"}

	for _, style := range parseStyles(strings.Split(getAttrValue("style", root.Attr), ";")) {
		if style.Key == "text-align" {
			if align := edtypes.ParseTextAlign(style.Val); !align.IsDefault() {
				p.Attrs = map[string]any{"textAlign": string(align)}
			}
		}
	}

	content, lifted := parseInline(root, nil)
	p.Content = content
	return p, lifted
}

// parseInline собирает текстовые ноды с накопленными marks. Медиа-элементы внутри строки
// выносятся отдельными блоками после родителя, так как медиа-ноды блочные.
func parseInline(root *html.Node, marks []tiptap.Mark) ([]tiptap.Node, []tiptap.Node) {
	var content, lifted []tiptap.Node

	for el := root.FirstChild; el != nil; el = el.NextSibling {
		switch el.Type {
		case html.TextNode:
			if el.Data == "" {
				continue
			}
			text := tiptap.Node{Type: "text", Text: el.Data}
			if len(marks) > 0 {
				text.Marks = slices.Clone(marks)
			}
			content = append(content, text)
			continue
		case html.ElementNode:
		default:
			continue
		}

		if el.Data == "br" {
			content = append(content, tiptap.Node{Type: "hardBreak"})
			continue
		}

		if ext, attrs, ok := MatchExtension(el); ok {
			lifted = append(lifted, tiptap.Node{Type: ext.Name(), Attrs: attrs})
			continue
		}

		childMarks := marks
		if mark, ok := elementMark(el); ok {
			childMarks = append(slices.Clone(marks), mark)
		}
		c, l := parseInline(el, childMarks)
		content = append(content, c...)
		lifted = append(lifted, l...)
	}

	return content, lifted
}

func elementMark(el *html.Node) (tiptap.Mark, bool) {
	switch el.Data {
	case "strong", "b":
		return tiptap.Mark{Type: "bold"}, true
	case "em", "i":
		return tiptap.Mark{Type: "italic"}, true
	case "u":
		return tiptap.Mark{Type: "underline"}, true
	case "s", "strike", "del":
		return tiptap.Mark{Type: "strike"}, true
	case "code":
		return tiptap.Mark{Type: "code"}, true
	case "a":
		attrs := map[string]any{"href": getAttrValue("href", el.Attr)}
		if target := getAttrValue("target", el.Attr); target != "" {
			attrs["target"] = target
		}
		return tiptap.Mark{Type: "link", Attrs: attrs}, true
	}
	return tiptap.Mark{}, false
}

func parseList(root *html.Node) tiptap.Node {
	list := tiptap.Node{Type: "bulletList", Content: make([]tiptap.Node, 0)}
	if root.Data == "ol" {
		list.Type = "orderedList"
		if start, err := strconv.Atoi(getAttrValue("start", root.Attr)); err == nil && start != 1 {
			list.Attrs = map[string]any{"start": start}
		}
	}

	for li := root.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := tiptap.Node{Type: "listItem", Content: parseListItem(li)}
		list.Content = append(list.Content, item)
	}
	return list
}

// parseListItem разбирает содержимое li. Текст без обёртки p собирается в параграф.
func parseListItem(li *html.Node) []tiptap.Node {
	hasBlocks := false
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && slices.Contains([]string{"p", "ul", "ol", "blockquote", "pre"}, c.Data) {
			hasBlocks = true
			break
		}
	}
	if hasBlocks {
		return parseBlocks(li)
	}

	content, lifted := parseInline(li, nil)
	res := []tiptap.Node{{Type: "paragraph", Content: content}}
	return append(res, lifted...)
}

func parseCode(root *html.Node) tiptap.Node {
	node := tiptap.Node{Type: "codeBlock"}

	if code := findElementByTagName(root, "code"); code != nil {
		for _, class := range strings.Fields(getAttrValue("class", code.Attr)) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				node.Attrs = map[string]any{"language": lang}
			}
		}
	}

	if text := textContent(root); text != "" {
		node.Content = []tiptap.Node{{Type: "text", Text: text}}
	}
	return node
}

func textContent(root *html.Node) string {
	var sb strings.Builder
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
		return false
	})
	return sb.String()
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func attrExists(key string, attrs []html.Attribute) bool {
	return slices.ContainsFunc(attrs, func(attr html.Attribute) bool {
		return attr.Key == key
	})
}

func parseStyles(rawStyles []string) []html.Attribute {
	res := make([]html.Attribute, 0, len(rawStyles))
	for _, styleRaw := range rawStyles {
		key, val, ok := strings.Cut(styleRaw, ":")
		if !ok {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.TrimSpace(key),
			Val: strings.TrimSpace(val),
		})
	}
	return res
}
