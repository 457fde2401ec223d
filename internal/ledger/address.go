package ledger

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Ledger entity ids ( accounts, contracts, files, topics ) have the
// canonical form "shard.realm.num". Their EVM-style address is the 20-byte
// packing of those three numbers: 4-byte shard, 8-byte realm, 8-byte num,
// big endian, rendered as bare lowercase hex without a 0x prefix.

// ToEVMAddress converts a canonical "shard.realm.num" id to its 40-char hex
// address form.
func ToEVMAddress(id string) (string, error) {
	shard, realm, num, err := splitID(id)
	if err != nil {
		return "", err
	}
	var buf [20]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(shard))
	binary.BigEndian.PutUint64(buf[4:12], realm)
	binary.BigEndian.PutUint64(buf[12:20], num)
	return hex.EncodeToString(buf[:]), nil
}

// FromEVMAddress recovers the canonical id from a hex address by
// reinterpreting its numeric parts. Only addresses in the packed-id form
// round-trip; a true EVM account address has no canonical id.
func FromEVMAddress(addr string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(addr), "0x"))
	if err != nil {
		return "", fmt.Errorf("%q is not a hex address: %w", addr, err)
	}
	if len(raw) != 20 {
		return "", fmt.Errorf("%q is not a 20-byte address", addr)
	}
	shard := binary.BigEndian.Uint32(raw[0:4])
	realm := binary.BigEndian.Uint64(raw[4:12])
	num := binary.BigEndian.Uint64(raw[12:20])
	return fmt.Sprintf("%d.%d.%d", shard, realm, num), nil
}

func splitID(id string) (shard, realm, num uint64, err error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%q is not a shard.realm.num id", id)
	}
	vals := make([]uint64, 3)
	for i, p := range parts {
		v, convErr := strconv.ParseUint(p, 10, 64)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%q is not a shard.realm.num id", id)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
