package compliance

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID is a canonical compliance framework identifier: lowercase and hyphenated.
type ID string

// Tag classifies a framework for policy rules.
type Tag string

const (
	// TagRegionalPrivacy marks frameworks that only apply by default to a
	// limited set of industries. They are suppressed elsewhere.
	TagRegionalPrivacy Tag = "regional-privacy"
)

// Framework describes one entry of the canonical vocabulary.
type Framework struct {
	ID          ID     `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Tags        []Tag  `json:"tags,omitempty" yaml:"tags,omitempty"`
	// Aliases are extra spellings seen from humans and vendors. The ID and Name
	// are always aliases and are not repeated here.
	Aliases []string `json:"-" yaml:"-"`
}

// HasTag reports whether the framework carries tag.
func (f Framework) HasTag(tag Tag) bool { return hasTag(f.Tags, tag) }

func (f Framework) clone() Framework {
	f.Tags = append([]Tag(nil), f.Tags...)
	f.Aliases = append([]string(nil), f.Aliases...)
	return f
}

// Canonical framework identifiers.
const (
	SOX                     ID = "sox"
	HIPAA                   ID = "hipaa"
	HITECH                  ID = "hitech"
	FDA                     ID = "fda"
	PCI                     ID = "pci"
	BaselIII                ID = "basel-iii"
	GLBA                    ID = "glba"
	GDPR                    ID = "gdpr"
	CCPA                    ID = "ccpa"
	ISO27001                ID = "iso27001"
	ISO9001                 ID = "iso9001"
	ISO28000                ID = "iso28000"
	FedRAMP                 ID = "fedramp"
	FISMA                   ID = "fisma"
	NIST                    ID = "nist"
	FERPA                   ID = "ferpa"
	COPPA                   ID = "coppa"
	DRM                     ID = "drm"
	Copyright               ID = "copyright"
	FairHousing             ID = "fair-housing"
	MLSCompliance           ID = "mls-compliance"
	ISO26262                ID = "iso26262"
	AUTOSAR                 ID = "autosar"
	NERCCIP                 ID = "nerc-cip"
	CaliforniaPrivacy       ID = "california-privacy"
	FCC                     ID = "fcc"
	AttorneyClientPrivilege ID = "attorney-client-privilege"
	DataRetention           ID = "data-retention"
	ESRB                    ID = "esrb"
	FoodSafety              ID = "food-safety"
	Traceability            ID = "traceability"
)

// frameworks is the closed vocabulary, in wizard display order.
var frameworks = []Framework{
	{ID: SOX, Name: "SOX (Sarbanes-Oxley)", Description: "Financial reporting and internal controls",
		Aliases: []string{"SOX", "Sarbanes-Oxley", "Sarbanes Oxley", "Sarbanes-Oxley Act"}},
	{ID: HIPAA, Name: "HIPAA", Description: "Healthcare data protection"},
	{ID: HITECH, Name: "HITECH", Description: "Health information technology standards",
		Aliases: []string{"HITECH Act"}},
	{ID: FDA, Name: "FDA", Description: "Food and Drug Administration regulations"},
	{ID: PCI, Name: "PCI DSS", Description: "Payment card industry security",
		Aliases: []string{"PCI", "PCI-DSS", "PCIDSS", "PCI DSS v4"}},
	{ID: BaselIII, Name: "Basel III", Description: "Banking regulatory framework",
		Aliases: []string{"Basel-III", "Basel 3", "BaselIII"}},
	{ID: GLBA, Name: "GLBA", Description: "Gramm-Leach-Bliley Act",
		Aliases: []string{"Gramm-Leach-Bliley Act", "Gramm Leach Bliley"}},
	{ID: GDPR, Name: "GDPR", Description: "EU data protection regulation",
		Tags:    []Tag{TagRegionalPrivacy},
		Aliases: []string{
			"General Data Protection Regulation", "General Data Protection",
			"EU General Data Protection Regulation", "EU GDPR", "GDPR Compliance",
			"GDPR Compliant", "EU GDPR Compliance", "EU Privacy", "EU Privacy Regulation",
			"EU Data Protection",
		}},
	{ID: CCPA, Name: "CCPA", Description: "California consumer privacy act",
		Aliases: []string{"California Consumer Privacy Act"}},
	{ID: ISO27001, Name: "ISO 27001", Description: "Information security management",
		Aliases: []string{"ISO27001", "ISO-27001", "ISO/IEC 27001"}},
	{ID: ISO9001, Name: "ISO 9001", Description: "Quality management systems",
		Aliases: []string{"ISO9001", "ISO-9001"}},
	{ID: ISO28000, Name: "ISO 28000", Description: "Supply chain security management",
		Aliases: []string{"ISO28000", "ISO-28000"}},
	{ID: FedRAMP, Name: "FedRAMP", Description: "Federal cloud security requirements"},
	{ID: FISMA, Name: "FISMA", Description: "Federal information security"},
	{ID: NIST, Name: "NIST", Description: "National Institute of Standards and Technology",
		Aliases: []string{"NIST 800-53", "NIST CSF"}},
	{ID: FERPA, Name: "FERPA", Description: "Family Educational Rights and Privacy Act"},
	{ID: COPPA, Name: "COPPA", Description: "Children's Online Privacy Protection Act"},
	{ID: DRM, Name: "DRM", Description: "Digital Rights Management"},
	{ID: Copyright, Name: "Copyright", Description: "Intellectual property protection"},
	{ID: FairHousing, Name: "Fair Housing", Description: "Real estate anti-discrimination",
		Aliases: []string{"Fair Housing Act"}},
	{ID: MLSCompliance, Name: "MLS Compliance", Description: "Multiple Listing Service rules",
		Aliases: []string{"MLS"}},
	{ID: ISO26262, Name: "ISO 26262", Description: "Automotive functional safety",
		Aliases: []string{"ISO26262", "ISO-26262"}},
	{ID: AUTOSAR, Name: "AUTOSAR", Description: "Automotive software architecture"},
	{ID: NERCCIP, Name: "NERC CIP", Description: "Critical infrastructure protection",
		Aliases: []string{"NERC-CIP", "NERCCIP"}},
	{ID: CaliforniaPrivacy, Name: "California Privacy", Description: "California privacy laws"},
	{ID: FCC, Name: "FCC", Description: "Federal Communications Commission"},
	{ID: AttorneyClientPrivilege, Name: "Attorney-Client Privilege", Description: "Legal confidentiality",
		Aliases: []string{"Attorney Client Privilege"}},
	{ID: DataRetention, Name: "Data Retention", Description: "Legal data retention requirements"},
	{ID: ESRB, Name: "ESRB", Description: "Entertainment Software Rating Board"},
	{ID: FoodSafety, Name: "Food Safety", Description: "Agricultural food safety standards",
		Aliases: []string{"FSMA"}},
	{ID: Traceability, Name: "Traceability", Description: "Supply chain traceability"},
}

// frameworkIndex maps an id to its position in frameworks. exactAliases is
// keyed by the alias as written, foldedAliases by fold(alias).
var frameworkIndex, exactAliases, foldedAliases = mustBuildAliasTables(frameworks)

func mustBuildAliasTables(list []Framework) (map[ID]int, map[string]ID, map[string]ID) {
	index, exact, folded, err := buildAliasTables(list)
	if err != nil {
		panic(err)
	}
	return index, exact, folded
}

func buildAliasTables(list []Framework) (map[ID]int, map[string]ID, map[string]ID, error) {
	index := make(map[ID]int, len(list))
	exact := make(map[string]ID, len(list)*3)
	folded := make(map[string]ID, len(list)*3)

	for i, f := range list {
		if f.ID == "" || ID(fold(string(f.ID))) != f.ID {
			return nil, nil, nil, fmt.Errorf("compliance: framework id %q is not canonical", f.ID)
		}
		if _, dup := index[f.ID]; dup {
			return nil, nil, nil, fmt.Errorf("compliance: duplicate framework id %q", f.ID)
		}
		index[f.ID] = i

		spellings := append([]string{string(f.ID), f.Name}, f.Aliases...)
		for _, alias := range spellings {
			if alias == "" {
				continue
			}
			if prev, ok := folded[fold(alias)]; ok && prev != f.ID {
				return nil, nil, nil, fmt.Errorf("compliance: alias %q maps to both %q and %q", alias, prev, f.ID)
			}
			exact[alias] = f.ID
			folded[fold(alias)] = f.ID
		}
	}
	return index, exact, folded, nil
}

// maxFoldPasses bounds fold. Real input settles after one or two passes.
const maxFoldPasses = 4

// fold is the case-insensitive key used for alias lookups and for the
// passthrough of unrecognized labels. Trimming happens after NFKC because
// compatibility decomposition can expose spaces (U+00B4 becomes a space and a
// combining acute). The result is a fixed point: fold(fold(s)) == fold(s).
func fold(label string) string {
	for range maxFoldPasses {
		next := strings.TrimSpace(strings.ToLower(norm.NFKC.String(label)))
		if next == label {
			break
		}
		label = next
	}
	return label
}

// Frameworks returns the built-in vocabulary in display order.
func Frameworks() []Framework {
	out := make([]Framework, len(frameworks))
	for i, f := range frameworks {
		out[i] = f.clone()
	}
	return out
}

// Lookup returns the built-in vocabulary entry for id.
func Lookup(id ID) (Framework, bool) {
	i, ok := frameworkIndex[id]
	if !ok {
		return Framework{}, false
	}
	return frameworks[i].clone(), true
}

// IsCanonical reports whether id belongs to the fixed vocabulary.
func IsCanonical(id ID) bool {
	_, ok := frameworkIndex[id]
	return ok
}

// Canonicalize maps a single label to its canonical identifier. The boolean is
// false when the label is not in the alias table, in which case the returned
// id is the folded label itself. Blank labels yield "".
func Canonicalize(label string) (ID, bool) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", false
	}
	if id, ok := exactAliases[trimmed]; ok {
		return id, true
	}
	key := fold(trimmed)
	if key == "" {
		return "", false
	}
	if id, ok := foldedAliases[key]; ok {
		return id, true
	}
	return ID(key), false
}
