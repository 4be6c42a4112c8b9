package wireformat

import "errors"

// DataElement field types (component F's fixed field-type table).
const (
	Salt                = 0
	PrivateIdentity     = 1
	TrustedIdentity     = 2
	PublicIdentity      = 3
	ProvisionedIdentity = 4
	TxPower             = 5
	Action              = 6
)

// ErrDataElementTooLong is returned when a value exceeds the 15-byte base
// encoding; the multi-byte length extension is not implemented here.
var ErrDataElementTooLong = errors.New("wireformat: data element value too long for base encoding")

// DataElement is one length/type/value record from the presence
// advertisement body. Header byte is (length<<4)|type.
type DataElement struct {
	Type  byte
	Value []byte
}

// MarshalBinary encodes the element as a single header byte followed by
// exactly len(Value) bytes.
func (d DataElement) MarshalBinary() ([]byte, error) {
	if len(d.Value) > 15 || d.Type > 15 {
		return nil, ErrDataElementTooLong
	}
	b := make([]byte, 0, 1+len(d.Value))
	b = append(b, byte(len(d.Value))<<4|d.Type&0x0F)
	b = append(b, d.Value...)
	return b, nil
}

// DataElementAppender builds up a byte stream of data elements, in the
// style of the teacher's advPacket builder: append calls mutate in place
// and the running bytes are retrieved with Bytes.
type DataElementAppender struct {
	data []byte
}

// Append encodes (typ, value) and appends it to the stream.
func (p *DataElementAppender) Append(typ byte, value []byte) error {
	b, err := (DataElement{Type: typ, Value: value}).MarshalBinary()
	if err != nil {
		return err
	}
	p.data = append(p.data, b...)
	return nil
}

// AppendRaw appends already-encoded bytes verbatim, e.g. an encrypted
// block that has replaced one or more plaintext data elements.
func (p *DataElementAppender) AppendRaw(b []byte) {
	p.data = append(p.data, b...)
}

// Bytes returns the accumulated stream.
func (p *DataElementAppender) Bytes() []byte { return p.data }

// DecodeDataElements parses a flat byte stream into its constituent data
// elements. Unknown types parse as opaque (type, bytes) and, per the
// round-trip law, re-encode byte-identically.
func DecodeDataElements(b []byte) ([]DataElement, error) {
	var out []DataElement
	for len(b) > 0 {
		length := int(b[0] >> 4)
		typ := b[0] & 0x0F
		if len(b) < 1+length {
			return nil, ErrTooShort
		}
		value := append([]byte(nil), b[1:1+length]...)
		out = append(out, DataElement{Type: typ, Value: value})
		b = b[1+length:]
	}
	return out, nil
}

// EncodeDataElements is the inverse of DecodeDataElements.
func EncodeDataElements(des []DataElement) ([]byte, error) {
	var p DataElementAppender
	for _, de := range des {
		if err := p.Append(de.Type, de.Value); err != nil {
			return nil, err
		}
	}
	return p.Bytes(), nil
}
