// Package detect implements phone-capture form field detection over HTML.
//
// Detection is pure: no network I/O, deterministic output, safe for
// concurrent use. Rules run in a fixed order and the first match wins.
package detect

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sellence/leadfinder/internal/leads"
)

// Attribute substrings treated as phone signals. Longer, more specific
// tokens come first so Detection.Matched reports the best token.
var phoneIndicators = []string{
	"contact_number",
	"contact-phone",
	"phone_number",
	"phone-number",
	"phonenumber",
	"telephone",
	"phone",
	"mobile",
	"cell",
	"tel",
}

// Substrings stripped from attribute values before indicator matching.
// Without this, "tel" fires on telegram handles and hotel booking fields.
var exclusionTerms = []string{
	"telegram",
	"telemetry",
	"telescope",
	"hotel",
	"intel",
}

// Keywords looked for in label text (rule 3).
var labelKeywords = []string{
	"phone number",
	"mobile number",
	"telephone",
	"call us",
	"phone",
}

// Detector implements leads.Detector with the fixed rule set.
type Detector struct{}

// New builds a Detector.
func New() *Detector {
	return &Detector{}
}

// Detect reports whether the HTML contains a phone-capture field. Malformed
// HTML is treated as "no match", never as an error.
func (d *Detector) Detect(html string, pageURL string) (bool, *leads.Detection) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, nil
	}

	if det := detectTelInput(doc, pageURL); det != nil {
		return true, det
	}
	if det := detectAttrKeyword(doc, pageURL); det != nil {
		return true, det
	}
	if det := detectLabelKeyword(doc, pageURL); det != nil {
		return true, det
	}
	return false, nil
}

// Rule 1: any input with type="tel".
func detectTelInput(doc *goquery.Document, pageURL string) *leads.Detection {
	var det *leads.Detection
	doc.Find(`input[type="tel"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		det = &leads.Detection{
			Rule:    leads.RuleTelInput,
			Page:    pageURL,
			Element: describeInput(sel),
			Matched: "type=tel",
		}
		return false
	})
	return det
}

// Rule 2: any input whose name, id, or placeholder contains a phone
// indicator once exclusion terms are removed.
func detectAttrKeyword(doc *goquery.Document, pageURL string) *leads.Detection {
	var det *leads.Detection
	doc.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if typ, _ := sel.Attr("type"); strings.EqualFold(typ, "tel") {
			return true // already covered by rule 1
		}
		for _, attr := range []string{"name", "id", "placeholder"} {
			value, ok := sel.Attr(attr)
			if !ok {
				continue
			}
			if token := matchIndicator(value); token != "" {
				det = &leads.Detection{
					Rule:    leads.RuleAttrKeyword,
					Page:    pageURL,
					Element: describeInput(sel),
					Matched: token,
				}
				return false
			}
		}
		return true
	})
	return det
}

// Rule 3: a label with phone-related text tied to an input, either via a
// for= reference or by containing the input directly.
func detectLabelKeyword(doc *goquery.Document, pageURL string) *leads.Detection {
	var det *leads.Detection
	doc.Find("label").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sanitize(sel.Text())
		token := ""
		for _, kw := range labelKeywords {
			if strings.Contains(text, kw) {
				token = kw
				break
			}
		}
		if token == "" {
			return true
		}

		target := labelTarget(doc, sel)
		if target == nil {
			return true
		}
		det = &leads.Detection{
			Rule:    leads.RuleLabelKeyword,
			Page:    pageURL,
			Element: describeInput(target),
			Matched: token,
		}
		return false
	})
	return det
}

// labelTarget resolves the input a label refers to, or nil if none exists.
func labelTarget(doc *goquery.Document, label *goquery.Selection) *goquery.Selection {
	if forID, ok := label.Attr("for"); ok && forID != "" {
		target := doc.Find(fmt.Sprintf("input[id=%q]", forID))
		if target.Length() > 0 {
			return target.First()
		}
	}
	nested := label.Find("input")
	if nested.Length() > 0 {
		return nested.First()
	}
	return nil
}

// matchIndicator returns the indicator token found in value, or "".
func matchIndicator(value string) string {
	cleaned := sanitize(value)
	for _, term := range exclusionTerms {
		cleaned = strings.ReplaceAll(cleaned, term, "")
	}
	for _, token := range phoneIndicators {
		if strings.Contains(cleaned, token) {
			return token
		}
	}
	return ""
}

func sanitize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func describeInput(sel *goquery.Selection) string {
	parts := []string{"input"}
	for _, attr := range []string{"type", "name", "id", "placeholder"} {
		if value, ok := sel.Attr(attr); ok && value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", attr, value))
		}
	}
	return strings.Join(parts, " ")
}
