// Пакет tiptap описывает JSON-дерево документа редактора TipTap и инструменты для его чтения.
// Дерево хранится и передаётся как значение: контейнерные ноды имеют content, атомарные ноды несут attrs.
package tiptap

// DocType - тип корневой ноды документа.
const DocType = "doc"

// Document представляет корневой документ TipTap.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Node представляет узел в дереве документа TipTap.
// Используется универсальная структура с map для атрибутов для поддержки различных типов нод.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark представляет форматирование текста (bold, italic, link и т.д.).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// EmptyDocument возвращает пустой документ без содержимого.
func EmptyDocument() *Document {
	return &Document{Type: DocType, Content: make([]Node, 0)}
}

// Walk обходит ноды документа в глубину. Если f возвращает false, потомки ноды не посещаются.
func (d *Document) Walk(f func(n *Node) bool) {
	if d == nil {
		return
	}
	for i := range d.Content {
		walkNode(&d.Content[i], f)
	}
}

func walkNode(n *Node, f func(n *Node) bool) {
	if !f(n) {
		return
	}
	for i := range n.Content {
		walkNode(&n.Content[i], f)
	}
}

// MediaNodes возвращает атомарные медиа-ноды (image, audio, video) в порядке следования в документе.
func (d *Document) MediaNodes() []*Node {
	var res []*Node
	d.Walk(func(n *Node) bool {
		switch n.Type {
		case "image", "audio", "video":
			res = append(res, n)
			return false
		}
		return true
	})
	return res
}
