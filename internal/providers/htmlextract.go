package providers

import (
	"regexp"
	"strconv"
	"strings"

	"stockpulse/internal/logger"
	"stockpulse/internal/models"

	"golang.org/x/net/html"
)

// Page structure markers on MarketWatch profile pages.
const (
	companyNameClass      = "company__name"
	performanceClass      = "element element--table performance"
	performanceValueClass = "content__item value ignore-color"
	tableRowClass         = "table__row"
	tableCellClass        = "table__cell"
	competitorsTableLabel = "Competitors data table"
)

// performancePeriods maps the period labels appearing in the performance
// table to setters on PerformanceData. Rows with any other label are
// ignored.
var performancePeriods = map[string]func(*models.PerformanceData, float64){
	"5 Day":   func(p *models.PerformanceData, v float64) { p.FiveDays = v },
	"1 Month": func(p *models.PerformanceData, v float64) { p.OneMonth = v },
	"3 Month": func(p *models.PerformanceData, v float64) { p.ThreeMonths = v },
	"YTD":     func(p *models.PerformanceData, v float64) { p.YearToDate = v },
	"1 Year":  func(p *models.PerformanceData, v float64) { p.OneYear = v },
}

// marketCapPattern splits a market-cap string into an optional non-digit
// prefix, a digits/commas/dot numeric run, and an optional non-digit
// suffix. The currency symbol is whichever of prefix/suffix is non-empty,
// prefix winning if both are.
var marketCapPattern = regexp.MustCompile(`^([^\d]+)?([\d.,]+)([^\d]+)?`)

// extractCompanyName returns the trimmed text of the company-name heading,
// or "" if the heading is absent.
func extractCompanyName(doc *html.Node) string {
	heading := findElement(doc, "h1", withClass(companyNameClass))
	if heading == nil {
		logger.Get().Errorw("failed to extract company name", "reason", "heading not found")
		return ""
	}
	return nodeText(heading)
}

// extractPerformance reads the performance table into the five fixed
// periods. A missing section or a row the table shape does not explain
// aborts the remaining rows; periods parsed so far (and the 0.0 defaults
// for the rest) stand.
func extractPerformance(doc *html.Node) models.PerformanceData {
	var perf models.PerformanceData

	section := findElement(doc, "div", withClass(performanceClass))
	if section == nil {
		return perf
	}

	for _, row := range findElements(section, "tr", withClass(tableRowClass)) {
		cells := findElements(row, "td", withClass(tableCellClass))
		if len(cells) != 2 {
			continue
		}

		period := nodeText(cells[0])

		valueItem := findElement(cells[1], "li", withClass(performanceValueClass))
		if valueItem == nil {
			logger.Get().Errorw("failed to parse performance data", "reason", "value item not found", "period", period)
			return perf
		}

		value, err := strconv.ParseFloat(strings.Trim(nodeText(valueItem), "%"), 64)
		if err != nil {
			logger.Get().Errorw("failed to parse performance data", "period", period, "error", err)
			return perf
		}

		if set, ok := performancePeriods[period]; ok {
			set(&perf, value)
		}
	}

	return perf
}

// extractCompetitors reads the competitors table. Rows are parsed
// independently: anything but exactly three cells, or a market-cap string
// the pattern cannot explain, skips just that row. The result is never
// nil.
func extractCompetitors(doc *html.Node) []models.Competitor {
	competitors := []models.Competitor{}

	table := findElement(doc, "table", withAttr("aria-label", competitorsTableLabel))
	if table == nil {
		return competitors
	}
	body := findElement(table, "tbody", nil)
	if body == nil {
		logger.Get().Errorw("failed to parse competitors data", "reason", "table body not found")
		return competitors
	}

	for _, row := range findElements(body, "tr", withClass(tableRowClass)) {
		cells := findElements(row, "td", nil)
		if len(cells) != 3 {
			continue
		}

		marketCap, ok := parseMarketCap(nodeText(cells[2]))
		if !ok {
			continue
		}

		competitors = append(competitors, models.Competitor{
			Name:      nodeText(cells[0]),
			MarketCap: marketCap,
		})
	}

	return competitors
}

// parseMarketCap parses strings like "$3.33", "528.15₩", or "1,234.5$"
// into a value and its currency marker. Commas in the numeric run are
// stripped before conversion.
func parseMarketCap(s string) (models.MarketCap, bool) {
	match := marketCapPattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return models.MarketCap{}, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
	if err != nil {
		return models.MarketCap{}, false
	}

	currency := match[1]
	if currency == "" {
		currency = match[3]
	}

	return models.MarketCap{Value: value, Currency: currency}, true
}

// --- HTML tree helpers ---

// nodeMatch reports whether an element node satisfies a selector.
type nodeMatch func(*html.Node) bool

// withClass matches elements whose class attribute equals class exactly.
func withClass(class string) nodeMatch {
	return func(n *html.Node) bool { return attrValue(n, "class") == class }
}

// withAttr matches elements carrying the given attribute value.
func withAttr(key, value string) nodeMatch {
	return func(n *html.Node) bool { return attrValue(n, key) == value }
}

// findElement returns the first element with the given tag satisfying
// match (nil matches any), searching depth-first.
func findElement(n *html.Node, tag string, match nodeMatch) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag && (match == nil || match(n)) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag, match); found != nil {
			return found
		}
	}
	return nil
}

// findElements returns all elements with the given tag satisfying match
// (nil matches any), in document order.
func findElements(n *html.Node, tag string, match nodeMatch) []*html.Node {
	var found []*html.Node
	if n.Type == html.ElementNode && n.Data == tag && (match == nil || match(n)) {
		found = append(found, n)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		found = append(found, findElements(child, tag, match)...)
	}
	return found
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// nodeText concatenates all descendant text of n and trims surrounding
// whitespace.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)
	return strings.TrimSpace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}
}
