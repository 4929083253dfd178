package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryFromRow(t *testing.T) {
	entry, ok := entryFromRow(4, map[string]string{
		"Vendor Name": "Siemens",
		"Product":     "SICAM A8000",
		"CVE ID":      "CVE-2026-1234",
		"Risk Level":  "Critical",
		"Source":      "ICS-CERT",
		"Advisory":    "ICSA-26-045-01",
		"Description": "Remote code execution in web interface",
	})
	require.True(t, ok)

	assert.Equal(t, 4, entry.SheetID)
	assert.Equal(t, "Siemens", entry.VendorName)
	assert.Equal(t, "SICAM A8000", entry.ProductName)
	assert.Equal(t, "CVE-2026-1234", entry.CVEID)
	assert.Equal(t, "critical", entry.RiskLevel, "risk level is normalized to lowercase")
	assert.Equal(t, "ICS-CERT", entry.Source)
	assert.Equal(t, "ICSA-26-045-01", entry.AdvisoryRef)
	assert.Equal(t, "Remote code execution in web interface", entry.Description)
}

func TestEntryFromRowHeaderVariants(t *testing.T) {
	// Header matching ignores case and surrounding whitespace, and
	// accepts both short and long column names.
	entry, ok := entryFromRow(1, map[string]string{
		"  VENDOR ":    "ABB",
		"cve":          "CVE-2026-9999",
		"RISK":         "High",
		"advisory ref": "ABB-2026-01",
	})
	require.True(t, ok)

	assert.Equal(t, "ABB", entry.VendorName)
	assert.Equal(t, "CVE-2026-9999", entry.CVEID)
	assert.Equal(t, "high", entry.RiskLevel)
	assert.Equal(t, "ABB-2026-01", entry.AdvisoryRef)
}

func TestEntryFromRowSkipsUnmappedRows(t *testing.T) {
	_, ok := entryFromRow(1, map[string]string{
		"Notes":    "internal remark",
		"Reviewer": "someone",
	})
	assert.False(t, ok, "rows with no recognized columns are skipped")

	_, ok = entryFromRow(1, map[string]string{"Vendor": ""})
	assert.False(t, ok, "empty values do not count as mapped")
}

func TestValidFlag(t *testing.T) {
	assert.True(t, validFlag(""))
	assert.True(t, validFlag("Y"))
	assert.True(t, validFlag("N"))
	assert.False(t, validFlag("y"))
	assert.False(t, validFlag("yes"))
	assert.False(t, validFlag("X"))
}
