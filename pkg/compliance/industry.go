package compliance

import "strings"

// Industry classifies the business domain of a project.
type Industry string

// Industries known to the wizard. Codes without an entry in the mandate table
// carry no mandatory compliance.
const (
	IndustryGeneral       Industry = "general"
	IndustryHealthcare    Industry = "healthcare"
	IndustryFinancial     Industry = "financial"
	IndustryGovernment    Industry = "government"
	IndustryEducation     Industry = "education"
	IndustryManufacturing Industry = "manufacturing"
	IndustryLogistics     Industry = "logistics"
	IndustryMedia         Industry = "media"
	IndustryRealEstate    Industry = "realestate"
	IndustryTravel        Industry = "travel"
	IndustryAutomotive    Industry = "automotive"
	IndustryEnergy        Industry = "energy"
	IndustryTelecom       Industry = "telecom"
	IndustryLegal         Industry = "legal"
	IndustryGaming        Industry = "gaming"
	IndustryAgriculture   Industry = "agriculture"
	IndustryTechnology    Industry = "technology"
	IndustryRetail        Industry = "retail"
	IndustryHospitality   Industry = "hospitality"
	IndustryNonProfit     Industry = "nonprofit"
)

// IndustryInfo is a selectable industry with its mandated frameworks.
type IndustryInfo struct {
	Code      Industry `json:"code" yaml:"code"`
	Name      string   `json:"name" yaml:"name"`
	Mandatory []ID     `json:"mandatory" yaml:"mandatory"`
}

var industries = []IndustryInfo{
	{Code: IndustryHealthcare, Name: "Healthcare", Mandatory: []ID{HIPAA, HITECH, FDA}},
	{Code: IndustryFinancial, Name: "Financial Services", Mandatory: []ID{SOX, PCI, BaselIII, GLBA}},
	{Code: IndustryGovernment, Name: "Government", Mandatory: []ID{FedRAMP, FISMA, NIST}},
	{Code: IndustryEducation, Name: "Education", Mandatory: []ID{FERPA, COPPA}},
	{Code: IndustryManufacturing, Name: "Manufacturing", Mandatory: []ID{ISO27001, ISO9001}},
	{Code: IndustryLogistics, Name: "Logistics & Supply Chain", Mandatory: []ID{ISO28000}},
	{Code: IndustryMedia, Name: "Media & Entertainment", Mandatory: []ID{DRM, Copyright}},
	{Code: IndustryRealEstate, Name: "Real Estate", Mandatory: []ID{FairHousing, MLSCompliance}},
	{Code: IndustryTravel, Name: "Travel & Hospitality", Mandatory: []ID{PCI, GDPR}},
	{Code: IndustryAutomotive, Name: "Automotive", Mandatory: []ID{ISO26262, AUTOSAR}},
	{Code: IndustryEnergy, Name: "Energy & Utilities", Mandatory: []ID{NERCCIP, ISO27001}},
	{Code: IndustryTelecom, Name: "Telecommunications", Mandatory: []ID{CaliforniaPrivacy, FCC}},
	{Code: IndustryLegal, Name: "Legal & Compliance", Mandatory: []ID{AttorneyClientPrivilege, DataRetention}},
	{Code: IndustryGaming, Name: "Gaming", Mandatory: []ID{COPPA, ESRB}},
	{Code: IndustryAgriculture, Name: "Agriculture", Mandatory: []ID{FoodSafety, Traceability}},
	{Code: IndustryTechnology, Name: "Technology"},
	{Code: IndustryRetail, Name: "Retail & E-commerce"},
	{Code: IndustryHospitality, Name: "Hospitality"},
	{Code: IndustryNonProfit, Name: "Non-Profit"},
	{Code: IndustryGeneral, Name: "General"},
}

var mandates = buildMandates(industries)

func buildMandates(list []IndustryInfo) map[Industry][]ID {
	out := make(map[Industry][]ID, len(list))
	for _, ind := range list {
		for _, id := range ind.Mandatory {
			if !IsCanonical(id) {
				panic("compliance: industry " + string(ind.Code) + " mandates unknown framework " + string(id))
			}
		}
		if len(ind.Mandatory) > 0 {
			out[ind.Code] = ind.Mandatory
		}
	}
	return out
}

// DefaultRegionalExemptIndustries are the industries that keep
// regional-privacy frameworks.
var DefaultRegionalExemptIndustries = []Industry{IndustryTravel, IndustryFinancial, IndustryHealthcare}

// Industries returns the selectable industries in display order.
func Industries() []IndustryInfo {
	out := make([]IndustryInfo, len(industries))
	for i, ind := range industries {
		ind.Mandatory = append([]ID(nil), ind.Mandatory...)
		out[i] = ind
	}
	return out
}

// ParseIndustry folds a selector value into an Industry code. Unknown codes
// are returned folded so callers can still display them; they simply mandate
// nothing.
func ParseIndustry(s string) Industry {
	return Industry(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether the industry appears in the selector list.
func (i Industry) Known() bool {
	for _, ind := range industries {
		if ind.Code == i {
			return true
		}
	}
	return false
}
