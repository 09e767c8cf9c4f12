package template

import (
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	blackfriday "gopkg.in/russross/blackfriday.v2"
)

// Template renders user supplied text for API responses.
type Template struct {
	ugc *bluemonday.Policy
}

func NewTemplate() *Template {
	ugc := bluemonday.UGCPolicy()
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	return &Template{ugc: ugc}
}

func (t *Template) MarkdownToHTML(s string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.Safelink |
			blackfriday.NofollowLinks |
			blackfriday.NoreferrerLinks |
			blackfriday.HrefTargetBlank,
	})
	return t.ugc.Sanitize(string(blackfriday.Run([]byte(s), blackfriday.WithRenderer(renderer))))
}

func (t *Template) HumanTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return humanize.Time(ts)
}
