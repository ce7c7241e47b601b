package editor

import (
	"strings"

	"github.com/aisa-it/folio/internal/folio/editor/edtypes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeExtension описывает атомарную блочную ноду документа: схему атрибутов, правило разбора HTML и правило рендера.
type NodeExtension interface {
	// Name - тип ноды в JSON-дереве.
	Name() string
	// Tag - leaf-элемент, которым нода представлена в разметке.
	Tag() string
	DefaultAttrs() map[string]any
	// ParseHTML возвращает атрибуты ноды и false, если элемент не относится к этому расширению.
	ParseHTML(el *html.Node) (map[string]any, bool)
	RenderHTML(attrs map[string]any) *html.Node
}

// Extensions - расширения медиа-нод в порядке разбора.
var Extensions = []NodeExtension{
	ImageExtension{},
	AudioExtension{},
	VideoExtension{},
}

// ExtensionByName ищет расширение по типу ноды.
func ExtensionByName(name string) NodeExtension {
	for _, ext := range Extensions {
		if ext.Name() == name {
			return ext
		}
	}
	return nil
}

// MatchExtension пробует разобрать элемент каждым расширением и возвращает первое совпадение.
func MatchExtension(el *html.Node) (NodeExtension, map[string]any, bool) {
	for _, ext := range Extensions {
		if attrs, ok := ext.ParseHTML(el); ok {
			return ext, attrs, true
		}
	}
	return nil, nil, false
}

// figureClass - класс обёртки для медиа-ноды, например "image-figure".
func figureClass(name string) string {
	return name + "-figure"
}

// matchMedia находит leaf-элемент медиа-ноды и обрамляющую figure.
//
// Принимаются две формы: голый leaf-элемент и figure, содержащая leaf. Figure без нужного leaf не совпадает,
// это отличает обычные figure от медийных, когда несколько расширений разбирают одну и ту же разметку.
func matchMedia(el *html.Node, leafTag string) (leaf *html.Node, figure *html.Node, ok bool) {
	if el == nil || el.Type != html.ElementNode {
		return nil, nil, false
	}

	switch el.Data {
	case leafTag:
		if p := el.Parent; p != nil && p.Type == html.ElementNode && p.Data == "figure" {
			figure = p
		}
		return el, figure, true
	case "figure":
		leaf = findElementByTagName(el, leafTag)
		if leaf == nil {
			return nil, nil, false
		}
		return leaf, el, true
	}
	return nil, nil, false
}

// figureAlign возвращает выравнивание из style обёртки. Без обёртки или без стиля - выравнивание по умолчанию.
func figureAlign(figure *html.Node) edtypes.TextAlign {
	if figure == nil {
		return edtypes.DefaultAlign
	}
	for _, style := range parseStyles(strings.Split(getAttrValue("style", figure.Attr), ";")) {
		if style.Key == "text-align" {
			return edtypes.ParseTextAlign(style.Val)
		}
	}
	return edtypes.DefaultAlign
}

// figureCaption возвращает текст figcaption или nil, если подписи нет.
func figureCaption(figure *html.Node) *string {
	if figure == nil {
		return nil
	}
	var caption *html.Node
	for c := figure.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "figcaption" {
			caption = c
			break
		}
	}
	if caption == nil {
		return nil
	}
	text := textContent(caption)
	return &text
}

// renderFigure оборачивает leaf в figure с выравниванием и, если подпись задана, figcaption.
func renderFigure(name string, align edtypes.TextAlign, caption *string, leaf *html.Node) *html.Node {
	figure := &html.Node{
		Type:     html.ElementNode,
		Data:     "figure",
		DataAtom: atom.Figure,
		Attr: []html.Attribute{
			{Key: "class", Val: figureClass(name)},
			{Key: "style", Val: "text-align:" + string(edtypes.ParseTextAlign(string(align)))},
		},
	}
	figure.AppendChild(leaf)

	if caption != nil {
		figcaption := &html.Node{Type: html.ElementNode, Data: "figcaption", DataAtom: atom.Figcaption}
		figcaption.AppendChild(&html.Node{Type: html.TextNode, Data: *caption})
		figure.AppendChild(figcaption)
	}
	return figure
}

func newElement(tag string, a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: a}
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// setBoolAttr выставляет булевый атрибут только для true: значение передаётся наличием атрибута.
func setBoolAttr(n *html.Node, key string, val bool) {
	if val {
		n.Attr = append(n.Attr, html.Attribute{Key: key})
	}
}

func attrPtr(key string, attrs []html.Attribute) *string {
	for _, attr := range attrs {
		if attr.Key == key {
			v := attr.Val
			return &v
		}
	}
	return nil
}

// attrOrDefault возвращает значение присутствующего атрибута, даже пустое. def - только для отсутствующего.
func attrOrDefault(key string, attrs []html.Attribute, def string) string {
	if v := attrPtr(key, attrs); v != nil {
		return *v
	}
	return def
}
