// Package diagram renders Mermaid architecture diagrams from a wizard
// session's recommendation and resolved compliance frameworks.
package diagram

import (
	"strings"

	"github.com/polisai/archwise/pkg/compliance"
	"github.com/polisai/archwise/pkg/domain"
)

// TypeMermaid is the only markup type produced.
const TypeMermaid = "mermaid"

// Diagram is rendered markup plus a caption.
type Diagram struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// industryServices names the services drawn for a microservices layout. The
// last entry receives queued notifications.
var industryServices = map[string][]node{
	"healthcare": {
		box("PS", "Patient Service"), box("MS", "Medical Service"),
		box("BS", "Billing Service"), box("NS", "Notification Service"),
	},
	"financial": {
		box("AS", "Account Service"), box("TS", "Transaction Service"),
		box("PS", "Payment Service"), box("NS", "Notification Service"),
	},
	"manufacturing": {
		box("PS", "Production Service"), box("QS", "Quality Service"),
		box("IS", "Inventory Service"), box("MS", "Monitoring Service"),
	},
	"logistics": {
		box("TS", "Tracking Service"), box("DS", "Delivery Service"),
		box("IS", "Inventory Service"), box("RS", "Route Service"),
	},
	"media": {
		box("CS", "Content Service"), box("US", "User Service"),
		box("RS", "Recommendation Service"), box("PS", "Playback Service"),
	},
	"gaming": {
		box("GS", "Game Service"), box("US", "User Service"),
		box("MS", "Matchmaking Service"), box("PS", "Payment Service"),
	},
}

var defaultServices = []node{
	box("US", "User Service"), box("PS", "Product Service"),
	box("OS", "Order Service"), box("NS", "Notification Service"),
}

func present(choice string) bool {
	c := strings.TrimSpace(strings.ToLower(choice))
	return c != "" && c != "none"
}

// System draws the high-level layout implied by rec. Industry picks the
// service names used for microservices.
func System(rec *domain.Recommendation, industry string) Diagram {
	if rec == nil {
		rec = &domain.Recommendation{}
	}
	microservices := strings.EqualFold(rec.Architecture, "microservices")

	var services []node
	if microservices {
		services = industryServices[strings.ToLower(industry)]
		if services == nil {
			services = defaultServices
		}
	} else {
		services = []node{box("APP", "Application Server")}
	}

	var data []node
	if present(rec.Database) {
		data = append(data, store("DB", strings.ToUpper(rec.Database)+"<br/>Database"))
	}
	if present(rec.Caching) {
		data = append(data, store("CACHE", strings.ToUpper(rec.Caching)+"<br/>Cache"))
	}
	if present(rec.MessageQueue) {
		data = append(data, box("MQ", strings.ToUpper(rec.MessageQueue)+"<br/>Message Queue"))
	}

	g := newGraph("TB")
	g.subgraph("External", box("U", "Users"), box("E", "External APIs"))
	g.subgraph("API Layer", box("AG", "API Gateway"), box("LB", "Load Balancer"))
	g.subgraph("Application Layer", services...)
	g.subgraph("Data Layer", data...)
	g.subgraph("Monitoring", box("MON", "Monitoring"), box("LOG", "Logging"))

	g.edge("U", "AG")
	g.edge("E", "AG")
	g.edge("AG", "LB")

	// Request-serving services; the last microservice only consumes the queue.
	serving := services
	if microservices && len(services) > 1 {
		serving = services[:len(services)-1]
	}
	for _, s := range serving {
		g.edge("LB", s.id)
	}
	if present(rec.Database) {
		for _, s := range serving {
			g.edge(s.id, "DB")
		}
	}
	if present(rec.Caching) {
		for _, s := range serving[:min(2, len(serving))] {
			g.edge(s.id, "CACHE")
		}
	}
	if present(rec.MessageQueue) {
		producer := serving[len(serving)-1]
		g.edge(producer.id, "MQ")
		if microservices {
			g.edge("MQ", services[len(services)-1].id)
		}
	}
	for _, s := range services {
		g.edge(s.id, "MON")
	}
	g.edge("MON", "LOG")

	declared := declaredIDs(services, data)
	g.classDef("external", "#e1f5fe")
	g.classDef("api", "#f3e5f5")
	g.classDef("app", "#e8f5e8")
	g.classDef("data", "#fff3e0")
	g.classDef("monitor", "#fce4ec")
	g.class("external", nil, "U", "E")
	g.class("api", nil, "AG", "LB")
	g.class("app", declared, nodeIDs(services)...)
	g.class("data", declared, "DB", "CACHE", "MQ")
	g.class("monitor", nil, "MON", "LOG")

	return Diagram{
		Type:  TypeMermaid,
		Title: "System Architecture Overview",
		Description: rec.Architecture + " architecture with " + orNone(rec.Database) + " database, " +
			orNone(rec.Caching) + " caching, and " + orNone(rec.MessageQueue) + " messaging",
		Code: g.String(),
	}
}

// Security draws trust zones and controls, with extra edges for HIPAA, PCI
// and SOX.
func Security(ids []compliance.ID) Diagram {
	set := compliance.NewSet(ids...)

	g := newGraph("TB")
	g.subgraph("External Zone", box("USER", "Users"), box("THREAT", "Threats"))
	g.subgraph("DMZ", box("WAF", "Web Application Firewall"), box("LB", "Load Balancer"))
	g.subgraph("Application Zone",
		box("AUTH", "Authentication Service"), box("API", "API Gateway"), box("APP", "Application Services"))
	g.subgraph("Data Zone",
		box("ENCRYPT", "Encryption Service"), store("DB", "Encrypted Database"), box("AUDIT", "Audit Logger"))
	g.subgraph("Security Controls",
		box("IDS", "Intrusion Detection"), box("SCAN", "Vulnerability Scanner"), box("SIEM", "SIEM"))

	g.labelled("USER", "WAF", "HTTPS")
	g.dotted("THREAT", "WAF", "Blocked")
	g.edge("WAF", "LB")
	g.edge("LB", "AUTH")
	g.edge("AUTH", "API")
	g.edge("API", "APP")
	g.edge("APP", "ENCRYPT")
	g.edge("ENCRYPT", "DB")
	g.edge("APP", "AUDIT")
	g.edge("IDS", "SIEM")
	g.edge("SCAN", "SIEM")
	g.edge("AUDIT", "SIEM")

	if set.Has(compliance.HIPAA) {
		g.labelled("APP", "ENCRYPT", "PHI Protection")
	}
	if set.Has(compliance.PCI) {
		g.labelled("APP", "ENCRYPT", "PCI Compliance")
	}
	if set.Has(compliance.SOX) {
		g.labelled("AUDIT", "DB", "SOX Audit Trail")
	}

	g.classDef("external", "#ffebee")
	g.classDef("dmz", "#fff3e0")
	g.classDef("app", "#e8f5e8")
	g.classDef("data", "#e3f2fd")
	g.classDef("security", "#fce4ec")
	g.class("external", nil, "USER", "THREAT")
	g.class("dmz", nil, "WAF", "LB")
	g.class("app", nil, "AUTH", "API", "APP")
	g.class("data", nil, "ENCRYPT", "DB", "AUDIT")
	g.class("security", nil, "IDS", "SCAN", "SIEM")

	return Diagram{
		Type:        TypeMermaid,
		Title:       "Security Architecture",
		Description: "Security layers and controls with " + describe(set) + " compliance",
		Code:        g.String(),
	}
}

// Compliance draws the data path from collection to audit reporting, with
// framework-specific edges for GDPR, HIPAA, PCI and SOX.
func Compliance(ids []compliance.ID) Diagram {
	set := compliance.NewSet(ids...)

	g := newGraph("TD")
	g.subgraph("Data Collection", box("INPUT", "User Input"), box("API", "API Calls"), box("SYS", "System Events"))
	g.subgraph("Processing & Validation",
		box("VAL", "Data Validation"), box("CLASS", "Data Classification"), box("CONSENT", "Consent Management"))
	g.subgraph("Storage & Protection",
		box("ENCRYPT", "Encryption"), store("DB", "Secure Database"), store("BACKUP", "Encrypted Backups"))
	g.subgraph("Audit & Compliance",
		box("AUDIT", "Audit Logger"), store("TRAIL", "Audit Trail"), box("REPORT", "Compliance Reports"))
	g.subgraph("Access Control",
		box("AUTH", "Authentication"), box("AUTHZ", "Authorization"), box("RBAC", "Role-Based Access"))

	for _, e := range [][2]string{
		{"INPUT", "VAL"}, {"API", "VAL"}, {"SYS", "VAL"},
		{"VAL", "CLASS"}, {"CLASS", "CONSENT"}, {"CONSENT", "ENCRYPT"},
		{"ENCRYPT", "DB"}, {"DB", "BACKUP"},
		{"VAL", "AUDIT"}, {"CLASS", "AUDIT"}, {"ENCRYPT", "AUDIT"},
		{"AUDIT", "TRAIL"}, {"TRAIL", "REPORT"},
		{"VAL", "AUTH"}, {"AUTH", "AUTHZ"}, {"AUTHZ", "RBAC"}, {"RBAC", "DB"},
	} {
		g.edge(e[0], e[1])
	}

	if set.Has(compliance.GDPR) {
		g.labelled("CONSENT", "REPORT", "GDPR Rights")
		g.labelled("CLASS", "ENCRYPT", "Data Minimization")
	}
	if set.Has(compliance.HIPAA) {
		g.labelled("CLASS", "ENCRYPT", "PHI Classification")
		g.labelled("RBAC", "DB", "Minimum Necessary")
	}
	if set.Has(compliance.PCI) {
		g.labelled("CLASS", "ENCRYPT", "Cardholder Data")
		g.labelled("AUDIT", "TRAIL", "PCI Access Logs")
	}
	if set.Has(compliance.SOX) {
		g.labelled("AUDIT", "TRAIL", "SOX Controls")
		g.labelled("RBAC", "DB", "Segregation of Duties")
	}

	g.classDef("collection", "#e1f5fe")
	g.classDef("processing", "#e8f5e8")
	g.classDef("storage", "#fff3e0")
	g.classDef("audit", "#fce4ec")
	g.classDef("access", "#f3e5f5")
	g.class("collection", nil, "INPUT", "API", "SYS")
	g.class("processing", nil, "VAL", "CLASS", "CONSENT")
	g.class("storage", nil, "ENCRYPT", "DB", "BACKUP")
	g.class("audit", nil, "AUDIT", "TRAIL", "REPORT")
	g.class("access", nil, "AUTH", "AUTHZ", "RBAC")

	return Diagram{
		Type:        TypeMermaid,
		Title:       "Compliance Architecture",
		Description: "Compliance data flow for " + describe(set) + " requirements",
		Code:        g.String(),
	}
}

// All renders every diagram for a session. Compliance ids are taken from the
// session configuration, which already holds resolved ids.
func All(rec *domain.Recommendation, cfg domain.ProjectConfig) []Diagram {
	ids := compliance.IDs(cfg.Compliance)
	return []Diagram{
		System(rec, cfg.Industry),
		Security(ids),
		Compliance(ids),
	}
}

func describe(set compliance.Set) string {
	if set.Len() == 0 {
		return "no"
	}
	return compliance.JoinLabels(set.Sorted())
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

func nodeIDs(nodes []node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}

func declaredIDs(groups ...[]node) map[string]bool {
	out := make(map[string]bool)
	for _, g := range groups {
		for _, n := range g {
			out[n.id] = true
		}
	}
	return out
}
