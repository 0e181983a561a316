package instrument

import (
	"mintgate/internal/record"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// EncodeConfig serializes a Config into its stored record form. Storage
// metadata (address, timestamps) stays outside the payload. Field order is
// part of the wire contract: master authority, asset, decimals, display
// fields, pause flag, feature flags, then the delegated roles.
func EncodeConfig(c Config) []byte {
	w := record.NewWriter(record.KindConfig)
	w.WriteBytes32(c.MasterAuthority)
	w.WriteString(string(c.Asset))
	w.WriteU8(c.Decimals)
	w.WriteString(c.Name)
	w.WriteString(c.Symbol)
	w.WriteString(c.URI)
	w.WriteBool(c.Paused)
	w.WriteBool(c.EnableSeize)
	w.WriteBool(c.EnableHook)
	w.WriteBool(c.DefaultFrozen)
	w.WriteBytes32(c.Blacklister)
	w.WriteBytes32(c.Pauser)
	w.WriteBytes32(c.Seizer)
	return w.Bytes()
}

// DecodeConfig deserializes a stored record into a Config.
func DecodeConfig(data []byte) (Config, error) {
	r, err := record.NewReader(record.KindConfig, data)
	if err != nil {
		return Config{}, err
	}

	var c Config
	c.MasterAuthority = r.ReadBytes32()
	asset := r.ReadString(domain.MaxAssetIDLen)
	c.Decimals = r.ReadU8()
	c.Name = r.ReadString(MaxNameLen)
	c.Symbol = r.ReadString(MaxSymbolLen)
	c.URI = r.ReadString(MaxURILen)
	c.Paused = r.ReadBool()
	c.EnableSeize = r.ReadBool()
	c.EnableHook = r.ReadBool()
	c.DefaultFrozen = r.ReadBool()
	c.Blacklister = r.ReadBytes32()
	c.Pauser = r.ReadBytes32()
	c.Seizer = r.ReadBytes32()
	if err := r.Finish(); err != nil {
		return Config{}, err
	}

	parsed, err := domain.ParseAssetID(asset)
	if err != nil {
		return Config{}, dErrors.Wrap(err, dErrors.CodeInvalidAccount, "config record carries invalid asset id")
	}
	c.Asset = parsed
	return c, nil
}
