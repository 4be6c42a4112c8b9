package wireformat

import (
	"fmt"
	"testing"
)

func TestAdvertisementRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		adv  Advertisement
	}{
		{
			name: "regular with hash and psm",
			adv: Advertisement{
				Version:          V2,
				SocketVersion:    V2,
				HasServiceIDHash: true,
				ServiceIDHash:    ServiceIDHash{0x01, 0x02, 0x03},
				Data:             []byte("hello"),
				Psm:              7,
			},
		},
		{
			name: "fast, no hash, default psm",
			adv: Advertisement{
				Version: V2,
				Data:    []byte{},
				Psm:     KDefaultPsm,
			},
		},
	}
	for _, tt := range cases {
		b, err := tt.adv.MarshalBinary()
		if err != nil {
			t.Fatalf("%s: MarshalBinary: %v", tt.name, err)
		}
		var got Advertisement
		if tt.adv.HasServiceIDHash {
			err = got.UnmarshalBinary(b)
		} else {
			err = got.UnmarshalBinaryFast(b)
		}
		if err != nil {
			t.Fatalf("%s: Unmarshal: %v", tt.name, err)
		}
		if string(got.Data) != string(tt.adv.Data) || got.Psm != tt.adv.Psm || got.ServiceIDHash != tt.adv.ServiceIDHash {
			t.Errorf("%s: round trip mismatch: got %+v want %+v", tt.name, got, tt.adv)
		}
	}
}

func TestAdvertisementRejectsShort(t *testing.T) {
	var a Advertisement
	if err := a.UnmarshalBinary(nil); err != ErrTooShort {
		t.Errorf("got %v, want ErrTooShort", err)
	}
}

func TestHashServiceIDDeterministic(t *testing.T) {
	h1 := HashServiceID("com.acme.app.chat")
	h2 := HashServiceID("com.acme.app.chat")
	if h1 != h2 {
		t.Errorf("HashServiceID not deterministic: %x != %x", h1, h2)
	}
	h3 := HashServiceID("com.acme.app.other")
	if h1 == h3 {
		t.Errorf("HashServiceID collided for distinct inputs (allowed in principle, but not for these fixtures): %x", h1)
	}
}

func TestHashBytesFourBytes(t *testing.T) {
	h := HashBytes([]byte("payload"))
	if got := fmt.Sprintf("%x", h); len(got) != 2*KHashLen {
		t.Errorf("HashBytes: got %d hex chars, want %d", len(got), 2*KHashLen)
	}
}
