package policy

import (
	"fmt"
	"strings"
)

// QueryAllowlist restricts which telemetry tables and fields the hunt
// pipeline may touch. The table is fixed at construction; validation
// returns an error instead of terminating the process, the caller decides
// what a rejected query means.
type QueryAllowlist struct {
	tables map[string]map[string]struct{}
}

// NewQueryAllowlist builds the default table/field allowlist.
func NewQueryAllowlist() *QueryAllowlist {
	tables := map[string][]string{
		"DeviceProcessEvents":  {"TimeGenerated", "AccountName", "ActionType", "DeviceName", "InitiatingProcessCommandLine", "ProcessCommandLine"},
		"DeviceNetworkEvents":  {"TimeGenerated", "ActionType", "DeviceName", "RemoteIP", "RemotePort"},
		"DeviceLogonEvents":    {"TimeGenerated", "AccountName", "DeviceName", "ActionType", "RemoteIP", "RemoteDeviceName"},
		"DeviceFileEvents":     {"TimeGenerated", "ActionType", "DeviceName", "FileName", "FolderPath", "InitiatingProcessAccountName", "SHA256"},
		"AlertInfo":            {},
		"AlertEvidence":        {},
		"DeviceRegistryEvents": {},
		"AzureNetworkAnalytics_CL": {"TimeGenerated", "FlowType_s", "SrcPublicIPs_s", "DestIP_s", "DestPort_d", "VM_s", "AllowedInFlows_d", "AllowedOutFlows_d", "DeniedInFlows_d", "DeniedOutFlows_d"},
		"AzureActivity":        {"TimeGenerated", "OperationNameValue", "ActivityStatusValue", "ResourceGroup", "Caller", "CallerIpAddress", "Category"},
		"SigninLogs":           {"TimeGenerated", "UserPrincipalName", "OperationName", "Category", "ResultSignature", "ResultDescription", "AppDisplayName", "IPAddress", "LocationDetails"},
	}

	out := make(map[string]map[string]struct{}, len(tables))
	for table, fields := range tables {
		set := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			set[f] = struct{}{}
		}
		out[table] = set
	}
	return &QueryAllowlist{tables: out}
}

// Validate checks a table and a comma-separated field list against the
// allowlist. Tables with an empty field set accept any fields.
func (a *QueryAllowlist) Validate(table, fields string) error {
	allowed, ok := a.tables[table]
	if !ok {
		return fmt.Errorf("table %q is not in the allowed list", table)
	}
	if len(allowed) == 0 {
		return nil
	}

	for _, field := range strings.Split(strings.ReplaceAll(fields, " ", ""), ",") {
		if field == "" {
			continue
		}
		if _, ok := allowed[field]; !ok {
			return fmt.Errorf("field %q is not in the allowed list for table %q", field, table)
		}
	}
	return nil
}
