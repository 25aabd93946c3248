package models

import (
	"testing"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces become underscores",
			input:    "Msg Refer No",
			expected: "Msg_Refer_No",
		},
		{
			name:     "dots become underscores",
			input:    "Refer.No",
			expected: "Refer_No",
		},
		{
			name:     "surrounding whitespace trimmed first",
			input:    "  Value Date  ",
			expected: "Value_Date",
		},
		{
			name:     "mixed dots and spaces",
			input:    "Tran. Amount",
			expected: "Tran__Amount",
		},
		{
			name:     "already normalized",
			input:    "Refer_No",
			expected: "Refer_No",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeColumnName(tt.input); got != tt.expected {
				t.Errorf("NormalizeColumnName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase uppercased", input: "cr12345", expected: "CR12345"},
		{name: "whitespace trimmed", input: "  John Doe ", expected: "JOHN DOE"},
		{name: "already normalized", input: "CLM-9", expected: "CLM-9"},
		{name: "blank collapses to empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.expected {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseTolerantDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantNil  bool
	}{
		{name: "plain integer", input: "1500", expected: "1500"},
		{name: "decimal fraction", input: "1500.75", expected: "1500.75"},
		{name: "thousands separators stripped", input: "1,50,000.25", expected: "150000.25"},
		{name: "surrounding whitespace", input: " 42.00 ", expected: "42"},
		{name: "negative amount", input: "-99.95", expected: "-99.95"},
		{name: "blank yields nil", input: "", wantNil: true},
		{name: "whitespace only yields nil", input: "   ", wantNil: true},
		{name: "garbage yields nil", input: "N/A", wantNil: true},
		{name: "currency prefix yields nil", input: "INR 500", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTolerantDecimal(tt.input)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseTolerantDecimal(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseTolerantDecimal(%q) = nil, want %s", tt.input, tt.expected)
			}
			if got.String() != tt.expected {
				t.Errorf("ParseTolerantDecimal(%q) = %s, want %s", tt.input, got.String(), tt.expected)
			}
		})
	}
}

func TestStatementTableColumnIndex(t *testing.T) {
	table := &StatementTable{Columns: []string{"Sr_No", "Msg_Refer_No", "Refer_No"}}

	if idx := table.ColumnIndex("Msg_Refer_No"); idx != 1 {
		t.Errorf("ColumnIndex(Msg_Refer_No) = %d, want 1", idx)
	}
	if idx := table.ColumnIndex("Missing"); idx != -1 {
		t.Errorf("ColumnIndex(Missing) = %d, want -1", idx)
	}
}

func TestOutstandingRowHasClaimNo(t *testing.T) {
	tests := []struct {
		name     string
		claimNo  string
		expected bool
	}{
		{name: "populated", claimNo: "CLM-1", expected: true},
		{name: "blank", claimNo: "", expected: false},
		{name: "whitespace only", claimNo: "   ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := OutstandingRow{ClaimNo: tt.claimNo}
			if got := row.HasClaimNo(); got != tt.expected {
				t.Errorf("HasClaimNo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLedgerEntryValues(t *testing.T) {
	entry := LedgerEntry{TransactionID: "T1", Description: "pay ref ABC", Amount: "100.50"}
	values := entry.Values()

	expected := []string{"T1", "pay ref ABC", "100.50"}
	if len(values) != len(expected) {
		t.Fatalf("Values() returned %d fields, want %d", len(values), len(expected))
	}
	for i, v := range expected {
		if values[i] != v {
			t.Errorf("Values()[%d] = %q, want %q", i, values[i], v)
		}
	}
}

func TestClaimRecordValuesOrder(t *testing.T) {
	claim := ClaimRecord{
		IHXRefID:           "IHX1",
		HospitalName:       "City Hospital",
		RohiniID:           "R1",
		PatientName:        "John Doe",
		InPatientNumber:    "IP1",
		ClaimNumber:        "CLM-1",
		InitialClaimNumber: "ICN-1",
		SettledAmount:      "5000",
		TDSAmount:          "500",
		UTRReference:       "UTR123",
		UTRDate:            "2024-01-15",
		ClaimStatus:        "Settled",
		TPAName:            "TPA One",
	}

	expected := []string{
		"IHX1", "City Hospital", "R1", "John Doe", "IP1", "CLM-1", "ICN-1",
		"5000", "500", "UTR123", "2024-01-15", "Settled", "TPA One",
	}
	values := claim.Values()
	if len(values) != len(expected) {
		t.Fatalf("Values() returned %d fields, want %d", len(values), len(expected))
	}
	for i, v := range expected {
		if values[i] != v {
			t.Errorf("Values()[%d] = %q, want %q", i, values[i], v)
		}
	}
}
