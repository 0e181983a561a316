package hook

import (
	"mintgate/internal/record"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// EncodeConfig serializes a hook Config into its stored form. Field order is
// part of the wire contract: owning instrument, issuance program, authority,
// pause flag.
func EncodeConfig(c Config) []byte {
	w := record.NewWriter(record.KindHook)
	w.WriteString(string(c.Asset))
	w.WriteBytes32(c.Program)
	w.WriteBytes32(c.Authority)
	w.WriteBool(c.Paused)
	return w.Bytes()
}

// DecodeConfig deserializes a stored hook config.
func DecodeConfig(data []byte) (Config, error) {
	rd, err := record.NewReader(record.KindHook, data)
	if err != nil {
		return Config{}, err
	}
	var c Config
	asset := rd.ReadString(domain.MaxAssetIDLen)
	c.Program = rd.ReadBytes32()
	c.Authority = rd.ReadBytes32()
	c.Paused = rd.ReadBool()
	if err := rd.Finish(); err != nil {
		return Config{}, err
	}

	parsed, err := domain.ParseAssetID(asset)
	if err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "hook record carries invalid asset id")
	}
	c.Asset = parsed
	return c, nil
}
