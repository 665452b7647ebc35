package domain

import "strings"

// DocumentType identifies the kind of regulatory document.
type DocumentType string

const (
	DocumentTypeProspectus   DocumentType = "prospectus"
	DocumentTypeAnnualReport DocumentType = "annual_report"
	DocumentTypeSFDRAnnex    DocumentType = "sfdr_annex"
)

// AllowedDocumentTypes lists the document types accepted at registration.
var AllowedDocumentTypes = map[DocumentType]bool{
	DocumentTypeProspectus:   true,
	DocumentTypeAnnualReport: true,
	DocumentTypeSFDRAnnex:    true,
}

// Article is an SFDR classification tier a fund self-declares.
type Article string

const (
	Article6 Article = "6"
	Article8 Article = "8"
	Article9 Article = "9"
)

// AllowedArticles maps the article values a classification may carry.
var AllowedArticles = map[Article]bool{
	Article6: true,
	Article8: true,
	Article9: true,
}

// DNSHCoverage is the coverage level of a Do No Significant Harm disclosure.
type DNSHCoverage string

const (
	DNSHCoverageNone    DNSHCoverage = "none"
	DNSHCoveragePartial DNSHCoverage = "partial"
	DNSHCoverageFull    DNSHCoverage = "full"
)

// dnshCoverageNames maps lowercased model output to coverage levels.
var dnshCoverageNames = map[string]DNSHCoverage{
	"none":    DNSHCoverageNone,
	"partial": DNSHCoveragePartial,
	"full":    DNSHCoverageFull,
}

// DNSHCoverageFromString maps a free-text coverage value to a DNSHCoverage.
// Matching is case-insensitive; anything unrecognized, including the empty
// string, maps to DNSHCoverageNone.
func DNSHCoverageFromString(s string) DNSHCoverage {
	if c, ok := dnshCoverageNames[strings.ToLower(s)]; ok {
		return c
	}
	return DNSHCoverageNone
}

// Field names tracked in SFDRState.MissingFields.
const (
	FieldClaimedArticle = "claimed_article"
	FieldDefinition     = "sustainable_investment_definition"
	FieldDNSH           = "dnsh"
	FieldPAI            = "pai"
)
