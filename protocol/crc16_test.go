package protocol

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0xFFFF},
		{"check string", []byte("123456789"), 0x6F91},
		{"bare header", []byte{5, 0}, 0x8E00},
	}

	for _, tt := range tests {
		if got := CRC16(tt.data); got != tt.want {
			t.Errorf("%s: expected 0x%04X, got 0x%04X", tt.name, tt.want, got)
		}
	}
}

func TestCRC16SingleBitChange(t *testing.T) {
	if CRC16([]byte{0x01, 0x02, 0x03}) == CRC16([]byte{0x01, 0x02, 0x07}) {
		t.Error("A flipped bit should change the CRC")
	}
}
