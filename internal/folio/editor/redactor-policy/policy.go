// Определяет политику безопасности для HTML, который отдаётся публичным страницам после рендера документа.
// Политика основана на UGCPolicy и дополнена медиа-нодами редактора: обёртками figure, подписями, аудио и видео.
//
// Основные возможности:
//   - Разрешение figure/figcaption, audio/video/source и их атрибутов.
//   - Ограничение допустимых значений атрибутов регулярными выражениями (классы обёрток, выравнивание, размеры, preload).
//   - Сохранение разметки медиа-нод без изменений, чтобы потребители могли разобрать её обратно.
//   - Минификация итогового HTML без изменения текста подписей figcaption.
package policy

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	nethtml "golang.org/x/net/html"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

var minifier *minify.M = minify.New()

func init() {
	figureClassRegexp := regexp.MustCompile(`^(image|audio|video)-figure$`)
	alignStyleRegexp := regexp.MustCompile(`^text-align:(left|center|right|justify)$`)
	languageClassRegexp := regexp.MustCompile(`^language-[\w+#-]+$`)
	preloadRegexp := regexp.MustCompile(`^(none|metadata|auto)$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(\.\d+)?(px|%)?|auto)$`)
	targetRegexp := regexp.MustCompile(`^(_blank|_self)$`)

	UgcPolicy.AllowElements("figure", "figcaption")
	UgcPolicy.AllowAttrs("class").Matching(figureClassRegexp).OnElements("figure")
	UgcPolicy.AllowAttrs("style").Matching(alignStyleRegexp).OnElements("figure", "p")

	UgcPolicy.AllowAttrs("src").OnElements("audio", "video", "source")
	UgcPolicy.AllowAttrs("controls", "autoplay", "loop").OnElements("audio", "video")
	UgcPolicy.AllowAttrs("preload").Matching(preloadRegexp).OnElements("audio", "video")
	UgcPolicy.AllowAttrs("width", "height").Matching(sizeRegexp).OnElements("video")
	UgcPolicy.AllowAttrs("poster").OnElements("video")
	UgcPolicy.AllowAttrs("type").OnElements("source")

	UgcPolicy.AllowAttrs("class").Matching(languageClassRegexp).OnElements("code")
	UgcPolicy.AllowAttrs("target").Matching(targetRegexp).OnElements("a")
	UgcPolicy.AllowAttrs("start").Matching(regexp.MustCompile(`^\d+$`)).OnElements("ol")

	minifier.AddFunc("text/html", html.Minify)
}

// Sanitize пропускает разметку через UgcPolicy.
func Sanitize(markup string) string {
	if markup == "" {
		return ""
	}
	return UgcPolicy.Sanitize(markup)
}

// StripTags оставляет только текст, например для превью в списках.
func StripTags(markup string) string {
	return StripTagsPolicy.Sanitize(markup)
}

// Minify сжимает HTML. Минификатор схлопывает и обрезает пробелы в figcaption, поэтому разметка
// с такими подписями возвращается как есть: подпись должна совпадать с сохранённой посимвольно.
func Minify(markup string) (string, error) {
	if !captionsSurviveMinify(markup) {
		return markup, nil
	}
	return minifier.String("text/html", markup)
}

const htmlSpace = " \t\n\r\f"

func captionsSurviveMinify(markup string) bool {
	z := nethtml.NewTokenizer(strings.NewReader(markup))
	depth := 0
	var caption strings.Builder
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return depth == 0 || collapsedSpace(caption.String())
		case nethtml.StartTagToken:
			if name, _ := z.TagName(); string(name) == "figcaption" {
				if depth == 0 {
					caption.Reset()
				}
				depth++
			}
		case nethtml.EndTagToken:
			if name, _ := z.TagName(); string(name) == "figcaption" && depth > 0 {
				depth--
				if depth == 0 && !collapsedSpace(caption.String()) {
					return false
				}
			}
		case nethtml.TextToken:
			if depth > 0 {
				caption.Write(z.Text())
			}
		}
	}
}

// collapsedSpace сообщает, что в тексте нет пробелов по краям, повторов и пробельных символов кроме ' '.
func collapsedSpace(text string) bool {
	if strings.Trim(text, htmlSpace) != text {
		return false
	}
	prevSpace := false
	for _, r := range text {
		space := strings.ContainsRune(htmlSpace, r)
		if space && (prevSpace || r != ' ') {
			return false
		}
		prevSpace = space
	}
	return true
}
