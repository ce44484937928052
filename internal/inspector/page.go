package inspector

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/IliaW/bots-checker/internal/model"
	"github.com/PuerkitoBio/goquery"
)

const (
	NoTitle      = "No title"
	NoRobotsMeta = "No robots meta"
	ParseError   = "Parse error"
)

var parseErrorSignals = model.PageSignals{
	Title:         ParseError,
	RobotsMetaRaw: ParseError,
	HasNoIndex:    false,
}

// Inspect extracts the title and the robots meta directive from an HTML page.
// It never fails: a page that can not be parsed yields the "Parse error" signals.
func Inspect(body []byte) model.PageSignals {
	return InspectReader(bytes.NewReader(body))
}

func InspectReader(r io.Reader) (signals model.PageSignals) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("failed to parse page.", slog.Any("err", r))
			signals = parseErrorSignals
		}
	}()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		slog.Warn("failed to parse page.", slog.String("err", err.Error()))
		return parseErrorSignals
	}

	signals.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if signals.Title == "" {
		signals.Title = NoTitle
	}

	content := robotsMetaContent(doc)
	if content == "" {
		signals.RobotsMetaRaw = NoRobotsMeta
		return signals
	}
	signals.RobotsMetaRaw = content
	signals.HasNoIndex = strings.Contains(strings.ToLower(content), "noindex")

	return signals
}

// robotsMetaContent returns the trimmed content of the first <meta name="robots"> tag.
func robotsMetaContent(doc *goquery.Document) string {
	var content string
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(name), "robots") {
			return true
		}
		value, _ := s.Attr("content")
		content = strings.TrimSpace(value)
		return false
	})

	return content
}
