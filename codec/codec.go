// Package codec implements the deterministic binary persistence
// format spec.md §6 describes: a single self-delimiting file encoding
// the whole catalog, byte-identical for equal catalogs, that omits
// the (derived) uniqueness sets and rebuilds them on load.
package codec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/rijuyuezhu/helidb/db"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// magic tags the format so a load against an unrelated file fails
// fast instead of misreading garbage as a catalog.
const magic uint32 = 0x68656c69 // "heli"
const version uint8 = 1

const (
	kindInt     byte = 0
	kindVarchar byte = 1
)

const (
	valNull    byte = 0
	valInt     byte = 1
	valVarchar byte = 2
)

// Encode serializes the full catalog. Table iteration is sorted by
// name (db.Database.Names already guarantees this) so equal catalogs
// always produce byte-identical output.
func Encode(d *db.Database) ([]byte, error) {
	var buf bytes.Buffer
	w := &buf

	if err := binary.Write(w, binary.BigEndian, magic); err != nil {
		return nil, errs.IOErrorf("encode catalog: %v", err)
	}
	if err := binary.Write(w, binary.BigEndian, version); err != nil {
		return nil, errs.IOErrorf("encode catalog: %v", err)
	}

	names := d.Names()
	if err := writeUint32(w, uint32(len(names))); err != nil {
		return nil, err
	}
	for _, name := range names {
		t, _ := d.Get(name)
		if err := encodeTable(w, name, t); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeTable(w io.Writer, name string, t *table.Table) error {
	if err := writeString(w, name); err != nil {
		return err
	}
	if err := encodeSchema(w, t.Schema); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(t.Capacity())); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(t.RowNum())); err != nil {
		return err
	}
	for id := 0; id < t.Capacity(); id++ {
		row, live := t.Get(id)
		if err := writeBool(w, live); err != nil {
			return err
		}
		if !live {
			continue
		}
		for _, v := range row {
			if err := encodeValue(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeSchema(w io.Writer, sch *schema.Schema) error {
	if err := writeUint32(w, uint32(sch.Len())); err != nil {
		return err
	}
	for _, c := range sch.Columns {
		if err := writeString(w, c.Name); err != nil {
			return err
		}
		if err := writeBool(w, c.Nullable); err != nil {
			return err
		}
		if err := writeBool(w, c.Unique); err != nil {
			return err
		}
		switch c.Type.Kind {
		case schema.IntType:
			if err := writeByte(w, kindInt); err != nil {
				return err
			}
			if err := writeOptionalUint64(w, c.Type.DisplayWidth); err != nil {
				return err
			}
		default:
			if err := writeByte(w, kindVarchar); err != nil {
				return err
			}
			if err := writeUint64(w, c.Type.MaxLength); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeValue(w io.Writer, v schema.Value) error {
	if v.IsNull() {
		return writeByte(w, valNull)
	}
	switch v.Kind() {
	case schema.KindInt:
		if err := writeByte(w, valInt); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, v.IntValue())
	default:
		if err := writeByte(w, valVarchar); err != nil {
			return err
		}
		return writeString(w, v.StrValue())
	}
}

// Decode rebuilds a catalog from bytes produced by Encode. Uniqueness
// sets are never stored; table.New allocates them empty and Decode
// replays every live row's unique cells into them, failing the whole
// load (spec.md §9) if that replay would itself violate uniqueness —
// a corrupted file, not a legitimate catalog.
func Decode(data []byte) (*db.Database, error) {
	r := bytes.NewReader(data)

	var gotMagic uint32
	if err := binary.Read(r, binary.BigEndian, &gotMagic); err != nil {
		return nil, errs.FormatErrorf("decode catalog: %v", err)
	}
	if gotMagic != magic {
		return nil, errs.FormatErrorf("decode catalog: bad magic")
	}
	var gotVersion uint8
	if err := binary.Read(r, binary.BigEndian, &gotVersion); err != nil {
		return nil, errs.FormatErrorf("decode catalog: %v", err)
	}
	if gotVersion != version {
		return nil, errs.FormatErrorf("decode catalog: unsupported version %d", gotVersion)
	}

	tableCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	out := db.New()
	for i := uint32(0); i < tableCount; i++ {
		name, t, err := decodeTable(r)
		if err != nil {
			return nil, err
		}
		out.Put(name, t)
	}
	return out, nil
}

func decodeTable(r *bytes.Reader) (string, *table.Table, error) {
	name, err := readString(r)
	if err != nil {
		return "", nil, err
	}
	sch, err := decodeSchema(r)
	if err != nil {
		return "", nil, err
	}
	capacity, err := readUint64(r)
	if err != nil {
		return "", nil, err
	}
	rowNum, err := readUint64(r)
	if err != nil {
		return "", nil, err
	}

	t := table.New(sch)
	if capacity > 0 {
		t.ReserveIDs(int(capacity))
	}
	liveCount := 0
	for id := uint64(0); id < capacity; id++ {
		live, err := readBool(r)
		if err != nil {
			return "", nil, err
		}
		if !live {
			continue
		}
		row := make(table.Row, sch.Len())
		for i := range row {
			v, err := decodeValue(r)
			if err != nil {
				return "", nil, err
			}
			row[i] = v
		}
		if err := validateDecodedCell(t, int(id), row); err != nil {
			return "", nil, err
		}
		t.CommitAt(int(id), row)
		liveCount++
	}
	if liveCount != int(rowNum) {
		return "", nil, errs.FormatErrorf("decode catalog: table '%s' row_num mismatch (stored %d, found %d live rows)", name, rowNum, liveCount)
	}
	t.SetRowNum(liveCount)
	return name, t, nil
}

// validateDecodedCell replays a decoded row's unique, non-null cells
// into the table's uniqueness sets, failing if doing so would itself
// detect a duplicate — the derived index disagreeing with the stored
// rows indicates a corrupt file, not a legitimate catalog (spec.md
// §9: "a corrupted load where derived uniqueness would be violated
// indicates a codec bug and should fail the load").
func validateDecodedCell(t *table.Table, id int, row table.Row) error {
	for i, v := range row {
		col := t.Schema.Columns[i]
		if !col.Unique || v.IsNull() {
			continue
		}
		if t.UniqueSetContains(i, v) {
			return errs.FormatErrorf("decode catalog: duplicate unique value %q in column '%s'", v.String(), col.Name)
		}
		t.UniqueSetInsert(i, v)
	}
	return nil
}

func decodeSchema(r *bytes.Reader) (*schema.Schema, error) {
	colCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	cols := make([]schema.ColumnInfo, colCount)
	for i := range cols {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		nullable, err := readBool(r)
		if err != nil {
			return nil, err
		}
		unique, err := readBool(r)
		if err != nil {
			return nil, err
		}
		kindByte, err := readByte(r)
		if err != nil {
			return nil, err
		}
		var ct schema.ColumnType
		switch kindByte {
		case kindInt:
			ct.Kind = schema.IntType
			width, err := readOptionalUint64(r)
			if err != nil {
				return nil, err
			}
			ct.DisplayWidth = width
		default:
			ct.Kind = schema.VarcharType
			maxLen, err := readUint64(r)
			if err != nil {
				return nil, err
			}
			ct.MaxLength = maxLen
		}
		cols[i] = schema.ColumnInfo{Name: name, Nullable: nullable, Unique: unique, Type: ct}
	}
	sch, err := schema.NewSchema(cols)
	if err != nil {
		return nil, errs.FormatErrorf("decode catalog: %v", err)
	}
	return sch, nil
}

func decodeValue(r *bytes.Reader) (schema.Value, error) {
	tag, err := readByte(r)
	if err != nil {
		return schema.Value{}, err
	}
	switch tag {
	case valNull:
		return schema.Null(), nil
	case valInt:
		var n int32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return schema.Value{}, errs.FormatErrorf("decode catalog: %v", err)
		}
		return schema.Int(n), nil
	case valVarchar:
		s, err := readString(r)
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Varchar(s), nil
	default:
		return schema.Value{}, errs.FormatErrorf("decode catalog: bad value tag %d", tag)
	}
}

// --- low-level self-delimiting primitives ---

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	if err != nil {
		return errs.IOErrorf("encode catalog: %v", err)
	}
	return nil
}

func writeBool(w io.Writer, b bool) error {
	if b {
		return writeByte(w, 1)
	}
	return writeByte(w, 0)
}

func writeUint32(w io.Writer, n uint32) error {
	if err := binary.Write(w, binary.BigEndian, n); err != nil {
		return errs.IOErrorf("encode catalog: %v", err)
	}
	return nil
}

func writeUint64(w io.Writer, n uint64) error {
	if err := binary.Write(w, binary.BigEndian, n); err != nil {
		return errs.IOErrorf("encode catalog: %v", err)
	}
	return nil
}

func writeOptionalUint64(w io.Writer, n *uint64) error {
	if n == nil {
		return writeBool(w, false)
	}
	if err := writeBool(w, true); err != nil {
		return err
	}
	return writeUint64(w, *n)
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return errs.IOErrorf("encode catalog: %v", err)
	}
	return nil
}

func readByte(r *bytes.Reader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, errs.FormatErrorf("decode catalog: %v", err)
	}
	return b, nil
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := readByte(r)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, errs.FormatErrorf("decode catalog: %v", err)
	}
	return n, nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return 0, errs.FormatErrorf("decode catalog: %v", err)
	}
	return n, nil
}

func readOptionalUint64(r *bytes.Reader) (*uint64, error) {
	present, err := readBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errs.FormatErrorf("decode catalog: %v", err)
	}
	return string(buf), nil
}
