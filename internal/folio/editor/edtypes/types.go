// Пакет edtypes содержит типизированные атрибуты медиа-нод редактора (изображение, аудио, видео).
//
// Основные возможности:
//   - Значения атрибутов по умолчанию для каждой медиа-ноды.
//   - Преобразование атрибутов в map (формат JSON-дерева документа) и обратно.
//   - Нормализация выравнивания текста.
package edtypes

import (
	"strings"
)

type TextAlign string

const (
	LeftAlign    TextAlign = "left"
	CenterAlign  TextAlign = "center"
	RightAlign   TextAlign = "right"
	JustifyAlign TextAlign = "justify"

	DefaultAlign = LeftAlign
)

// Названия медиа-нод в дереве документа
const (
	ImageNode = "image"
	AudioNode = "audio"
	VideoNode = "video"
)

const (
	DefaultPreload     = "metadata"
	DefaultVideoWidth  = "100%"
	DefaultVideoHeight = "auto"
)

// ParseTextAlign конвертирует строковое значение выравнивания в TextAlign.
// Пустое или неизвестное значение считается выравниванием по умолчанию.
func ParseTextAlign(raw string) TextAlign {
	switch TextAlign(strings.TrimSpace(strings.ToLower(raw))) {
	case CenterAlign:
		return CenterAlign
	case RightAlign:
		return RightAlign
	case JustifyAlign:
		return JustifyAlign
	default:
		return LeftAlign
	}
}

func (a TextAlign) IsDefault() bool {
	return a == "" || a == DefaultAlign
}

type ImageAttrs struct {
	Src       string
	Alt       *string
	Title     *string
	TextAlign TextAlign
	Caption   *string
}

type AudioAttrs struct {
	Src       string
	Controls  bool
	Autoplay  bool
	Loop      bool
	Preload   string
	TextAlign TextAlign
	Caption   *string
}

type VideoAttrs struct {
	Src       string
	Controls  bool
	Autoplay  bool
	Loop      bool
	Width     string
	Height    string
	Poster    *string
	Preload   string
	TextAlign TextAlign
	Caption   *string
}

func DefaultImageAttrs() ImageAttrs {
	return ImageAttrs{TextAlign: DefaultAlign}
}

func DefaultAudioAttrs() AudioAttrs {
	return AudioAttrs{
		Controls:  true,
		Preload:   DefaultPreload,
		TextAlign: DefaultAlign,
	}
}

func DefaultVideoAttrs() VideoAttrs {
	return VideoAttrs{
		Controls:  true,
		Width:     DefaultVideoWidth,
		Height:    DefaultVideoHeight,
		Preload:   DefaultPreload,
		TextAlign: DefaultAlign,
	}
}

func (a ImageAttrs) ToMap() map[string]any {
	return map[string]any{
		"src":       a.Src,
		"alt":       strPtrValue(a.Alt),
		"title":     strPtrValue(a.Title),
		"textAlign": string(ParseTextAlign(string(a.TextAlign))),
		"caption":   strPtrValue(a.Caption),
	}
}

func (a AudioAttrs) ToMap() map[string]any {
	return map[string]any{
		"src":       a.Src,
		"controls":  a.Controls,
		"autoplay":  a.Autoplay,
		"loop":      a.Loop,
		"preload":   a.Preload,
		"textAlign": string(ParseTextAlign(string(a.TextAlign))),
		"caption":   strPtrValue(a.Caption),
	}
}

func (a VideoAttrs) ToMap() map[string]any {
	return map[string]any{
		"src":       a.Src,
		"controls":  a.Controls,
		"autoplay":  a.Autoplay,
		"loop":      a.Loop,
		"width":     a.Width,
		"height":    a.Height,
		"poster":    strPtrValue(a.Poster),
		"preload":   a.Preload,
		"textAlign": string(ParseTextAlign(string(a.TextAlign))),
		"caption":   strPtrValue(a.Caption),
	}
}

// ImageAttrsFromMap собирает атрибуты изображения, подставляя значения по умолчанию для отсутствующих ключей.
func ImageAttrsFromMap(attrs map[string]any) ImageAttrs {
	a := DefaultImageAttrs()
	a.Src = attrString(attrs, "src", "")
	a.Alt = attrStringPtr(attrs, "alt")
	a.Title = attrStringPtr(attrs, "title")
	a.TextAlign = ParseTextAlign(attrString(attrs, "textAlign", ""))
	a.Caption = attrStringPtr(attrs, "caption")
	return a
}

func AudioAttrsFromMap(attrs map[string]any) AudioAttrs {
	a := DefaultAudioAttrs()
	a.Src = attrString(attrs, "src", "")
	a.Controls = attrBool(attrs, "controls", a.Controls)
	a.Autoplay = attrBool(attrs, "autoplay", a.Autoplay)
	a.Loop = attrBool(attrs, "loop", a.Loop)
	a.Preload = attrString(attrs, "preload", a.Preload)
	a.TextAlign = ParseTextAlign(attrString(attrs, "textAlign", ""))
	a.Caption = attrStringPtr(attrs, "caption")
	return a
}

func VideoAttrsFromMap(attrs map[string]any) VideoAttrs {
	a := DefaultVideoAttrs()
	a.Src = attrString(attrs, "src", "")
	a.Controls = attrBool(attrs, "controls", a.Controls)
	a.Autoplay = attrBool(attrs, "autoplay", a.Autoplay)
	a.Loop = attrBool(attrs, "loop", a.Loop)
	a.Width = attrString(attrs, "width", a.Width)
	a.Height = attrString(attrs, "height", a.Height)
	a.Poster = attrStringPtr(attrs, "poster")
	a.Preload = attrString(attrs, "preload", a.Preload)
	a.TextAlign = ParseTextAlign(attrString(attrs, "textAlign", ""))
	a.Caption = attrStringPtr(attrs, "caption")
	return a
}

func strPtrValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func attrString(attrs map[string]any, key string, def string) string {
	if attrs == nil {
		return def
	}
	val, ok := attrs[key].(string)
	if !ok {
		return def
	}
	return val
}

func attrStringPtr(attrs map[string]any, key string) *string {
	if attrs == nil {
		return nil
	}
	val, ok := attrs[key].(string)
	if !ok {
		return nil
	}
	return &val
}

func attrBool(attrs map[string]any, key string, def bool) bool {
	if attrs == nil {
		return def
	}
	val, ok := attrs[key].(bool)
	if !ok {
		return def
	}
	return val
}
