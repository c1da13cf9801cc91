package field

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ msgpack.CustomEncoder = (*Value)(nil)
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// EncodeMsgpack implements the msgpack.CustomEncoder interface. A value is
// encoded as the array [type, null, payload].
func (v *Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(3); err != nil {
		return err
	}
	if err := enc.EncodeUint8(uint8(v.typ)); err != nil {
		return err
	}
	if err := enc.EncodeBool(v.null); err != nil {
		return err
	}
	if v.null || !v.Valid() {
		return enc.EncodeNil()
	}
	switch p := v.v.(type) {
	case bool:
		return enc.EncodeBool(p)
	case int64:
		return enc.EncodeInt(p)
	case uint64:
		return enc.EncodeUint(p)
	case float64:
		return enc.EncodeFloat64(p)
	case string:
		return enc.EncodeString(p)
	case decimal.Decimal:
		return enc.EncodeString(p.String())
	case time.Time:
		return enc.EncodeTime(p)
	case uuid.UUID:
		return enc.EncodeBytes(p[:])
	}
	return fmt.Errorf("field: cannot encode %T payload", v.v)
}

// DecodeMsgpack implements the msgpack.CustomDecoder interface.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 3 {
		return fmt.Errorf("field: invalid value encoding with %d elements", n)
	}
	t, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	null, err := dec.DecodeBool()
	if err != nil {
		return err
	}
	typ := Type(t)
	if null || !typ.Valid() {
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		*v = Value{typ: typ, null: null}
		return nil
	}
	var raw any
	switch {
	case typ == TypeBool:
		raw, err = dec.DecodeBool()
	case typ.Integer() && !typ.Unsigned():
		raw, err = dec.DecodeInt64()
	case typ.Unsigned():
		raw, err = dec.DecodeUint64()
	case typ.Float():
		raw, err = dec.DecodeFloat64()
	case typ == TypeString, typ == TypeEnum, typ == TypeDecimal:
		raw, err = dec.DecodeString()
	case typ == TypeTime:
		raw, err = dec.DecodeTime()
	case typ == TypeUUID:
		var b []byte
		if b, err = dec.DecodeBytes(); err == nil {
			raw, err = uuid.FromBytes(b)
		}
	}
	if err != nil {
		return err
	}
	parsed, err := Parse(typ, raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
