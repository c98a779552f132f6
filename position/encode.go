package position

import (
	"encoding/binary"
	"fmt"
)

// Serialized layout, big endian:
//
//	seed_len(2) + seed + position(32) + pool(32) + quote_mint(32) +
//	tick_lower(4) + tick_upper(4) + verified(1) + created_at(8)
const positionFixedSize = 32 + 32 + 32 + 4 + 4 + 1 + 8 // 113

// Serialize encodes the position to its fixed-width binary form.
func Serialize(p *Position) ([]byte, error) {
	if len(p.VaultSeed) == 0 || len(p.VaultSeed) > MaxSeedLen {
		return nil, ErrInvalidSeed
	}
	buf := make([]byte, 2+len(p.VaultSeed)+positionFixedSize)
	offset := 0

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(p.VaultSeed)))
	offset += 2
	copy(buf[offset:], p.VaultSeed)
	offset += len(p.VaultSeed)

	copy(buf[offset:offset+32], p.Position[:])
	offset += 32
	copy(buf[offset:offset+32], p.Pool[:])
	offset += 32
	copy(buf[offset:offset+32], p.QuoteMint[:])
	offset += 32
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(p.TickLower))
	offset += 4
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(p.TickUpper))
	offset += 4
	if p.VerifiedQuoteOnly {
		buf[offset] = 1
	}
	offset++
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.CreatedAt)
	return buf, nil
}

// Deserialize decodes a fixed-width binary position record.
func Deserialize(data []byte) (*Position, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidData, len(data))
	}
	seedLen := int(binary.BigEndian.Uint16(data[0:2]))
	if seedLen == 0 || seedLen > MaxSeedLen {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidData, seedLen)
	}
	if len(data) != 2+seedLen+positionFixedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidData, 2+seedLen+positionFixedSize, len(data))
	}
	offset := 2

	p := &Position{VaultSeed: string(data[offset : offset+seedLen])}
	offset += seedLen

	copy(p.Position[:], data[offset:offset+32])
	offset += 32
	copy(p.Pool[:], data[offset:offset+32])
	offset += 32
	copy(p.QuoteMint[:], data[offset:offset+32])
	offset += 32
	p.TickLower = int32(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	p.TickUpper = int32(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	p.VerifiedQuoteOnly = data[offset] == 1
	offset++
	p.CreatedAt = binary.BigEndian.Uint64(data[offset : offset+8])
	return p, nil
}
