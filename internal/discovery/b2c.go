package discovery

import (
	"strings"

	"github.com/sellence/leadfinder/internal/leads"
)

// Keyword filter separating consumer-facing companies from B2B vendors.
// A B2C signal always wins over a B2B signal, and companies with neither
// are kept.

var b2bKeywords = []string{
	"commercial insurance", "commercial lines", "business insurance",
	"workers comp", "workers compensation", "workman comp",
	"liability insurance", "professional liability", "general liability",
	"e&o", "errors and omissions", "d&o", "directors and officers",
	"cyber insurance", "cyber liability",
	"employee benefits", "group insurance", "group health",
	"corporate insurance", "enterprise risk",
	"property & casualty", "p&c", "property and casualty",
	"wholesale insurance", "wholesale broker",
	"reinsurance", "reinsurer",
	"captive insurance", "risk retention",
	"surety bond", "fidelity bond",
	"marine insurance", "cargo insurance",
	"aviation insurance", "aircraft insurance",
	"construction insurance", "builder risk",
	"fleet insurance", "commercial auto",
	"business owner policy", "bop",
	"employer", "workplace",

	"insurance broker", "insurance agency", "insurance agent",
	"mga", "managing general", "program administrator",
	"tpa", "third party administrator", "claims administrator",
	"insurance software", "insurance platform", "insurance saas",
	"policy administration", "claims management",
	"underwriting", "actuarial",
	"insurance consulting", "risk consulting",
	"loss control", "risk management",

	"b2b", "enterprise", "small business", "smb",
	"fortune 500", "mid-market",
	"insurance carrier services", "carrier services",
}

var b2cKeywords = []string{
	"pet insurance", "pet health",
	"life insurance", "term life", "whole life",
	"auto insurance", "car insurance",
	"home insurance", "homeowners", "homeowner",
	"renters insurance", "renter insurance",
	"health insurance", "medical insurance",
	"dental insurance", "vision insurance",
	"travel insurance", "trip insurance",
	"medicare", "medicaid", "medigap",
	"individual", "personal insurance", "personal lines",
	"family insurance", "family plan",
	"quote", "get a quote", "free quote",
	"d2c", "direct to consumer", "direct-to-consumer",
	"insurtech",
	"mobile app", "insurance app",
	"compare insurance", "comparison",
}

// Extra columns that may carry descriptive text worth scanning.
var b2cTextColumns = []string{
	"description", "industry", "specialties", "tagline", "headline",
}

// IsB2B reports whether a company's text fields read like a B2B vendor.
// Consumer signals override vendor signals; unknowns are treated as B2C.
func IsB2B(company leads.Company) bool {
	text := companyText(company)
	for _, keyword := range b2cKeywords {
		if strings.Contains(text, keyword) {
			return false
		}
	}
	for _, keyword := range b2bKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// FilterB2C splits companies into consumer-facing keepers and B2B rejects,
// preserving input order in both slices.
func FilterB2C(companies []leads.Company) (kept, removed []leads.Company) {
	for _, company := range companies {
		if IsB2B(company) {
			removed = append(removed, company)
			continue
		}
		kept = append(kept, company)
	}
	return kept, removed
}

func companyText(company leads.Company) string {
	parts := []string{company.Name, company.Vertical}
	for col, value := range company.Extra {
		for _, want := range b2cTextColumns {
			if strings.EqualFold(strings.TrimSpace(col), want) {
				parts = append(parts, value)
				break
			}
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
