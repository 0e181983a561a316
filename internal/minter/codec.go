package minter

import (
	"mintgate/internal/record"
)

// EncodeRecord serializes a Record into its stored form.
func EncodeRecord(r Record) []byte {
	w := record.NewWriter(record.KindMinter)
	w.WriteBytes32(r.Config)
	w.WriteBytes32(r.Authority)
	w.WriteU64(r.Quota)
	w.WriteU64(r.Minted)
	return w.Bytes()
}

// DecodeRecord deserializes a stored minter record.
func DecodeRecord(data []byte) (Record, error) {
	rd, err := record.NewReader(record.KindMinter, data)
	if err != nil {
		return Record{}, err
	}
	var r Record
	r.Config = rd.ReadBytes32()
	r.Authority = rd.ReadBytes32()
	r.Quota = rd.ReadU64()
	r.Minted = rd.ReadU64()
	if err := rd.Finish(); err != nil {
		return Record{}, err
	}
	return r, nil
}
