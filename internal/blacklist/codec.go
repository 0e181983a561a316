package blacklist

import (
	"time"

	"mintgate/internal/record"
)

// EncodeEntry serializes an Entry into its stored form. The creation
// timestamp (unix seconds) is part of the canonical record, not just storage
// metadata: administrative tooling reads it from the payload.
func EncodeEntry(e Entry) []byte {
	w := record.NewWriter(record.KindBlacklist)
	w.WriteBytes32(e.Config)
	w.WriteBytes32(e.User)
	w.WriteString(e.Reason)
	w.WriteU64(uint64(e.CreatedAt.Unix()))
	return w.Bytes()
}

// DecodeEntry deserializes a stored blacklist entry.
func DecodeEntry(data []byte) (Entry, error) {
	rd, err := record.NewReader(record.KindBlacklist, data)
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	e.Config = rd.ReadBytes32()
	e.User = rd.ReadBytes32()
	e.Reason = rd.ReadString(MaxReasonLen)
	createdAt := rd.ReadU64()
	if err := rd.Finish(); err != nil {
		return Entry{}, err
	}
	e.CreatedAt = time.Unix(int64(createdAt), 0).UTC()
	return e, nil
}
