package wireformat

import (
	"fmt"
	"reflect"
	"testing"
)

func TestDataElementMarshalBinary(t *testing.T) {
	cases := []struct {
		typ   byte
		value []byte
		want  string
	}{
		{typ: Salt, value: []byte("AB"), want: "2041 42"},
		{typ: TxPower, value: []byte{5}, want: "1505"},
		{typ: Action, value: []byte{0x08, 0x00}, want: "260800"},
	}
	for _, tt := range cases {
		b, err := (DataElement{Type: tt.typ, Value: tt.value}).MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary(%d, %x): %v", tt.typ, tt.value, err)
		}
		want := compactHex(tt.want)
		if got := fmt.Sprintf("%x", b); got != want {
			t.Errorf("MarshalBinary(%d, %x): got %s want %s", tt.typ, tt.value, got, want)
		}
		// Testable property: encoded.length == 1 + value.length, and
		// encoded[0] == (value.length<<4)|type.
		if len(b) != 1+len(tt.value) {
			t.Errorf("length invariant violated: got %d want %d", len(b), 1+len(tt.value))
		}
		if b[0] != byte(len(tt.value))<<4|tt.typ {
			t.Errorf("header byte invariant violated: got %#x", b[0])
		}
	}
}

func TestDataElementRejectsOversizeValue(t *testing.T) {
	big := make([]byte, 16)
	if _, err := (DataElement{Type: Salt, Value: big}).MarshalBinary(); err != ErrDataElementTooLong {
		t.Errorf("got %v, want ErrDataElementTooLong", err)
	}
}

func TestDecodeDataElementsRoundTrip(t *testing.T) {
	in := []DataElement{
		{Type: Salt, Value: []byte("AB")},
		{Type: PrivateIdentity, Value: []byte{0x11, 0x12, 0x13}},
		{Type: TxPower, Value: []byte{5}},
		{Type: Action, Value: []byte{0x08, 0x00}},
	}
	encoded, err := EncodeDataElements(in)
	if err != nil {
		t.Fatalf("EncodeDataElements: %v", err)
	}
	decoded, err := DecodeDataElements(encoded)
	if err != nil {
		t.Fatalf("DecodeDataElements: %v", err)
	}
	if !reflect.DeepEqual(decoded, in) {
		t.Errorf("round trip: got %+v want %+v", decoded, in)
	}
}

func TestDecodeDataElementsUnknownTypeOpaque(t *testing.T) {
	// type 9 is not in the fixed field table but must still round-trip
	// byte-identically as an opaque (type, bytes) pair.
	encoded, _ := EncodeDataElements([]DataElement{{Type: 9, Value: []byte{0xDE, 0xAD}}})
	decoded, err := DecodeDataElements(encoded)
	if err != nil {
		t.Fatalf("DecodeDataElements: %v", err)
	}
	reencoded, err := EncodeDataElements(decoded)
	if err != nil {
		t.Fatalf("EncodeDataElements: %v", err)
	}
	if fmt.Sprintf("%x", reencoded) != fmt.Sprintf("%x", encoded) {
		t.Errorf("unknown type did not round-trip byte-identically: got %x want %x", reencoded, encoded)
	}
}

func TestDecodeDataElementsRejectsTruncated(t *testing.T) {
	if _, err := DecodeDataElements([]byte{0x30}); err != ErrTooShort {
		t.Errorf("got %v, want ErrTooShort", err)
	}
}

func compactHex(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			continue
		}
		out = append(out, byte(r))
	}
	return string(out)
}
