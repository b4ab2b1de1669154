package localization

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// fieldVisitor walks the top-level fields of a protobuf message.
// Fields whose wire type has no handler are skipped.
type fieldVisitor struct {
	varint func(num protowire.Number, v uint64)
	bytes  func(num protowire.Number, b []byte) error
}

func (fv fieldVisitor) walk(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case typ == protowire.VarintType && fv.varint != nil:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			fv.varint(num, v)
			data = data[m:]
		case typ == protowire.BytesType && fv.bytes != nil:
			b, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if err := fv.bytes(num, b); err != nil {
				return err
			}
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return nil
}

// eachRecord calls fn with every length-delimited field numbered 1, the
// repeated entry field of all collection files.
func eachRecord(data []byte, fn func(rec []byte) error) error {
	return fieldVisitor{
		bytes: func(num protowire.Number, b []byte) error {
			if num != 1 {
				return nil
			}
			return fn(b)
		},
	}.walk(data)
}

// decodeLocString decodes LocString{ string en = 1; string zh = 2; }.
func decodeLocString(data []byte) (LocString, error) {
	var s LocString
	err := fieldVisitor{
		bytes: func(num protowire.Number, b []byte) error {
			switch num {
			case 1:
				s.En = string(b)
			case 2:
				s.Zh = string(b)
			}
			return nil
		},
	}.walk(data)
	return s, err
}

// decodeLocalization decodes Localization{ uint32 key = 1; LocString localization_data = 2; }.
func decodeLocalization(data []byte) (uint32, LocString, error) {
	var (
		key uint32
		str LocString
	)
	err := fieldVisitor{
		varint: func(num protowire.Number, v uint64) {
			if num == 1 {
				key = uint32(v)
			}
		},
		bytes: func(num protowire.Number, b []byte) error {
			if num != 2 {
				return nil
			}
			var err error
			str, err = decodeLocString(b)
			return err
		},
	}.walk(data)
	return key, str, err
}

// decodeEntry decodes { int32 id = 1; uint32 name_id = 2; optional uint32 description_id = 3; }.
// Absent scalar fields decode as zero, so a record without field 1 is id 0.
func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := fieldVisitor{
		varint: func(num protowire.Number, v uint64) {
			switch num {
			case 1:
				e.ID = int32(v)
			case 2:
				e.NameKey = uint32(v)
			case 3:
				e.DescKey = uint32(v)
				e.HasDesc = true
			}
		},
	}.walk(data)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}
