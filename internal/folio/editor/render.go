package editor

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aisa-it/folio/internal/folio/editor/edtypes"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderDocument рендерит дерево документа в HTML. Неизвестные ноды пропускаются.
func RenderDocument(doc *tiptap.Document) (string, error) {
	if doc == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, node := range doc.Content {
		el := renderNode(node)
		if el == nil {
			continue
		}
		if err := html.Render(&sb, el); err != nil {
			return "", fmt.Errorf("render %s node: %w", node.Type, err)
		}
	}
	return sb.String(), nil
}

// RenderNode рендерит одну ноду. Для неизвестного типа возвращает nil.
func RenderNode(node tiptap.Node) *html.Node {
	return renderNode(node)
}

func renderNode(node tiptap.Node) *html.Node {
	if ext := ExtensionByName(node.Type); ext != nil {
		return ext.RenderHTML(node.Attrs)
	}

	switch node.Type {
	case "paragraph":
		p := newElement("p", atom.P)
		if align := edtypes.ParseTextAlign(tiptap.GetAttrString(node.Attrs, "textAlign")); !align.IsDefault() {
			setAttr(p, "style", "text-align:"+string(align))
		}
		appendChildren(p, node.Content)
		return p
	case "heading":
		level := tiptap.GetAttrInt(node.Attrs, "level")
		if level < 1 || level > 6 {
			level = 1
		}
		tag := "h" + strconv.Itoa(level)
		h := newElement(tag, atom.Lookup([]byte(tag)))
		appendChildren(h, node.Content)
		return h
	case "text":
		return renderText(node)
	case "hardBreak":
		return newElement("br", atom.Br)
	case "horizontalRule":
		return newElement("hr", atom.Hr)
	case "blockquote":
		q := newElement("blockquote", atom.Blockquote)
		appendChildren(q, node.Content)
		return q
	case "bulletList":
		ul := newElement("ul", atom.Ul)
		appendChildren(ul, node.Content)
		return ul
	case "orderedList":
		ol := newElement("ol", atom.Ol)
		if start := tiptap.GetAttrInt(node.Attrs, "start"); start > 1 {
			setAttr(ol, "start", strconv.Itoa(start))
		}
		appendChildren(ol, node.Content)
		return ol
	case "listItem":
		li := newElement("li", atom.Li)
		appendChildren(li, node.Content)
		return li
	case "codeBlock":
		pre := newElement("pre", atom.Pre)
		code := newElement("code", atom.Code)
		if lang := tiptap.GetAttrString(node.Attrs, "language"); lang != "" {
			setAttr(code, "class", "language-"+lang)
		}
		var sb strings.Builder
		for _, child := range node.Content {
			sb.WriteString(child.Text)
		}
		code.AppendChild(&html.Node{Type: html.TextNode, Data: sb.String()})
		pre.AppendChild(code)
		return pre
	default:
		slog.Warn("Unknown node type", "type", node.Type)
		return nil
	}
}

func appendChildren(parent *html.Node, content []tiptap.Node) {
	for _, child := range content {
		if el := renderNode(child); el != nil {
			parent.AppendChild(el)
		}
	}
}

// renderText оборачивает текст в элементы marks: первая mark - внешний элемент.
func renderText(node tiptap.Node) *html.Node {
	var root, inner *html.Node

	for _, mark := range node.Marks {
		el := markElement(mark)
		if el == nil {
			slog.Debug("Unknown mark type", "type", mark.Type)
			continue
		}
		if root == nil {
			root = el
		} else {
			inner.AppendChild(el)
		}
		inner = el
	}

	text := &html.Node{Type: html.TextNode, Data: node.Text}
	if root == nil {
		return text
	}
	inner.AppendChild(text)
	return root
}

func markElement(mark tiptap.Mark) *html.Node {
	switch mark.Type {
	case "bold":
		return newElement("strong", atom.Strong)
	case "italic":
		return newElement("em", atom.Em)
	case "underline":
		return newElement("u", atom.U)
	case "strike":
		return newElement("s", atom.S)
	case "code":
		return newElement("code", atom.Code)
	case "link":
		a := newElement("a", atom.A)
		setAttr(a, "href", tiptap.GetAttrString(mark.Attrs, "href"))
		if target := tiptap.GetAttrString(mark.Attrs, "target"); target != "" {
			setAttr(a, "target", target)
			setAttr(a, "rel", "noopener noreferrer nofollow")
		}
		return a
	}
	return nil
}
