package paimon

import (
	"bytes"

	"github.com/hamba/avro/v2"
	"github.com/hamba/avro/v2/ocf"
)

// readAvro decodes an Avro object container data file into generic rows.
func readAvro(name string, data []byte) (*fileRows, error) {
	dec, err := ocf.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, newCorruptError(name, "invalid avro file", err)
	}

	sch, err := avro.ParseWithCache(string(dec.Metadata()["avro.schema"]), "", &avro.SchemaCache{})
	if err != nil {
		return nil, newCorruptError(name, "invalid avro schema", err)
	}
	record, ok := sch.(*avro.RecordSchema)
	if !ok {
		return nil, newCorruptError(name, "avro data file does not contain records", nil)
	}

	out := &fileRows{}
	for _, f := range record.Fields() {
		out.columns = append(out.columns, f.Name())
	}

	for dec.HasNext() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return nil, newCorruptError(name, "failed to decode avro record", err)
		}
		row := make([]any, len(out.columns))
		for i, col := range out.columns {
			row[i] = m[col]
		}
		out.rows = append(out.rows, row)
	}
	if err := dec.Error(); err != nil {
		return nil, newCorruptError(name, "failed to read avro file", err)
	}
	return out, nil
}

// decodeAvroFile decodes every record of an object container file into T.
func decodeAvroFile[T any](name string, data []byte) ([]T, error) {
	dec, err := ocf.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, newCorruptError(name, "invalid avro file", err)
	}

	var out []T
	for dec.HasNext() {
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, newCorruptError(name, "failed to decode avro record", err)
		}
		out = append(out, v)
	}
	if err := dec.Error(); err != nil {
		return nil, newCorruptError(name, "failed to read avro file", err)
	}
	return out, nil
}
