package ledger

import "testing"

func TestToEVMAddress(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"0.0.1234", "00000000000000000000000000000000000004d2"},
		{"0.0.0", "0000000000000000000000000000000000000000"},
		{"1.2.3", "0000000100000000000000020000000000000003"},
	}
	for _, tt := range tests {
		got, err := ToEVMAddress(tt.id)
		if err != nil {
			t.Errorf("ToEVMAddress(%q) failed: %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToEVMAddress(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestToEVMAddressRejectsBadIDs(t *testing.T) {
	for _, id := range []string{"", "0.0", "0.0.x", "a.b.c", "0.0.1.2"} {
		if _, err := ToEVMAddress(id); err == nil {
			t.Errorf("ToEVMAddress(%q) should have failed", id)
		}
	}
}

func TestFromEVMAddressRoundTrip(t *testing.T) {
	for _, id := range []string{"0.0.1234", "0.0.98765", "3.7.42"} {
		addr, err := ToEVMAddress(id)
		if err != nil {
			t.Fatalf("ToEVMAddress(%q) failed: %v", id, err)
		}
		back, err := FromEVMAddress(addr)
		if err != nil {
			t.Fatalf("FromEVMAddress(%q) failed: %v", addr, err)
		}
		if back != id {
			t.Errorf("round trip of %q came back as %q", id, back)
		}
	}
}

func TestFromEVMAddressAcceptsPrefix(t *testing.T) {
	got, err := FromEVMAddress("0x00000000000000000000000000000000000004d2")
	if err != nil {
		t.Fatalf("FromEVMAddress failed: %v", err)
	}
	if got != "0.0.1234" {
		t.Errorf("FromEVMAddress = %q, want %q", got, "0.0.1234")
	}
}

func TestFromEVMAddressRejectsBadInput(t *testing.T) {
	for _, addr := range []string{"", "zz", "04d2", "0x1234"} {
		if _, err := FromEVMAddress(addr); err == nil {
			t.Errorf("FromEVMAddress(%q) should have failed", addr)
		}
	}
}

func TestReceiptStatusOK(t *testing.T) {
	if !StatusSuccess.OK() {
		t.Error("StatusSuccess.OK() = false, want true")
	}
	if ReceiptStatus(21).OK() {
		t.Error("ReceiptStatus(21).OK() = true, want false")
	}
}
