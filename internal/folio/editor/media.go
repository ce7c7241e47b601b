package editor

import (
	"github.com/aisa-it/folio/internal/folio/editor/edtypes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type ImageExtension struct{}

func (ImageExtension) Name() string { return edtypes.ImageNode }
func (ImageExtension) Tag() string  { return "img" }

func (ImageExtension) DefaultAttrs() map[string]any {
	return edtypes.DefaultImageAttrs().ToMap()
}

func (e ImageExtension) ParseHTML(el *html.Node) (map[string]any, bool) {
	leaf, figure, ok := matchMedia(el, e.Tag())
	if !ok {
		return nil, false
	}

	a := edtypes.DefaultImageAttrs()
	a.Src = getAttrValue("src", leaf.Attr)
	a.Alt = attrPtr("alt", leaf.Attr)
	a.Title = attrPtr("title", leaf.Attr)
	a.TextAlign = figureAlign(figure)
	a.Caption = figureCaption(figure)
	return a.ToMap(), true
}

func (e ImageExtension) RenderHTML(attrs map[string]any) *html.Node {
	a := edtypes.ImageAttrsFromMap(attrs)

	img := newElement("img", atom.Img)
	setAttr(img, "src", a.Src)
	if a.Alt != nil {
		setAttr(img, "alt", *a.Alt)
	}
	if a.Title != nil {
		setAttr(img, "title", *a.Title)
	}
	return renderFigure(e.Name(), a.TextAlign, a.Caption, img)
}

type AudioExtension struct{}

func (AudioExtension) Name() string { return edtypes.AudioNode }
func (AudioExtension) Tag() string  { return "audio" }

func (AudioExtension) DefaultAttrs() map[string]any {
	return edtypes.DefaultAudioAttrs().ToMap()
}

func (e AudioExtension) ParseHTML(el *html.Node) (map[string]any, bool) {
	leaf, figure, ok := matchMedia(el, e.Tag())
	if !ok {
		return nil, false
	}

	a := edtypes.DefaultAudioAttrs()
	a.Src = mediaSrc(leaf)
	a.Controls = attrExists("controls", leaf.Attr)
	a.Autoplay = attrExists("autoplay", leaf.Attr)
	a.Loop = attrExists("loop", leaf.Attr)
	a.Preload = attrOrDefault("preload", leaf.Attr, edtypes.DefaultPreload)
	a.TextAlign = figureAlign(figure)
	a.Caption = figureCaption(figure)
	return a.ToMap(), true
}

func (e AudioExtension) RenderHTML(attrs map[string]any) *html.Node {
	a := edtypes.AudioAttrsFromMap(attrs)

	audio := newElement("audio", atom.Audio)
	setAttr(audio, "src", a.Src)
	setBoolAttr(audio, "controls", a.Controls)
	setBoolAttr(audio, "autoplay", a.Autoplay)
	setBoolAttr(audio, "loop", a.Loop)
	setAttr(audio, "preload", a.Preload)
	return renderFigure(e.Name(), a.TextAlign, a.Caption, audio)
}

type VideoExtension struct{}

func (VideoExtension) Name() string { return edtypes.VideoNode }
func (VideoExtension) Tag() string  { return "video" }

func (VideoExtension) DefaultAttrs() map[string]any {
	return edtypes.DefaultVideoAttrs().ToMap()
}

func (e VideoExtension) ParseHTML(el *html.Node) (map[string]any, bool) {
	leaf, figure, ok := matchMedia(el, e.Tag())
	if !ok {
		return nil, false
	}

	a := edtypes.DefaultVideoAttrs()
	a.Src = mediaSrc(leaf)
	a.Controls = attrExists("controls", leaf.Attr)
	a.Autoplay = attrExists("autoplay", leaf.Attr)
	a.Loop = attrExists("loop", leaf.Attr)
	a.Width = attrOrDefault("width", leaf.Attr, edtypes.DefaultVideoWidth)
	a.Height = attrOrDefault("height", leaf.Attr, edtypes.DefaultVideoHeight)
	a.Poster = attrPtr("poster", leaf.Attr)
	a.Preload = attrOrDefault("preload", leaf.Attr, edtypes.DefaultPreload)
	a.TextAlign = figureAlign(figure)
	a.Caption = figureCaption(figure)
	return a.ToMap(), true
}

func (e VideoExtension) RenderHTML(attrs map[string]any) *html.Node {
	a := edtypes.VideoAttrsFromMap(attrs)

	video := newElement("video", atom.Video)
	setAttr(video, "src", a.Src)
	setBoolAttr(video, "controls", a.Controls)
	setBoolAttr(video, "autoplay", a.Autoplay)
	setBoolAttr(video, "loop", a.Loop)
	setAttr(video, "width", a.Width)
	setAttr(video, "height", a.Height)
	if a.Poster != nil {
		setAttr(video, "poster", *a.Poster)
	}
	setAttr(video, "preload", a.Preload)
	return renderFigure(e.Name(), a.TextAlign, a.Caption, video)
}

// mediaSrc берёт src с самого элемента, а если его нет - с первого вложенного <source>.
func mediaSrc(leaf *html.Node) string {
	if src := getAttrValue("src", leaf.Attr); src != "" {
		return src
	}
	if source := findElementByTagName(leaf, "source"); source != nil {
		return getAttrValue("src", source.Attr)
	}
	return ""
}
