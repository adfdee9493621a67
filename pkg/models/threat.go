package models

// Mitre maps a threat onto ATT&CK tactic and technique identifiers.
type Mitre struct {
	Tactic    string `json:"tactic,omitempty"`
	Technique string `json:"technique,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Threat is a single finding produced by the hunt engine. Threats are
// immutable once produced; the governance engine never rewrites them.
type Threat struct {
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Confidence      string   `json:"confidence"`
	DeviceName      string   `json:"device_name,omitempty"`
	IOCs            []string `json:"indicators_of_compromise,omitempty"`
	Mitre           Mitre    `json:"mitre,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	LogLines        []string `json:"log_lines,omitempty"`
}

// HuntResult is one ordered batch of threats plus the query scope flags
// the hunt engine derived from the analyst's question.
type HuntResult struct {
	HuntID                    string   `json:"hunt_id"`
	TableName                 string   `json:"table_name,omitempty"`
	DeviceName                string   `json:"device_name,omitempty"`
	Threats                   []Threat `json:"threats"`
	AboutIndividualHost       bool     `json:"about_individual_host"`
	AboutIndividualUser       bool     `json:"about_individual_user"`
	AboutNetworkSecurityGroup bool     `json:"about_network_security_group"`
}
