package policy

import (
	"encoding/binary"
	"fmt"
)

// Serialized layout, big endian:
//
//	seed_len(2) + seed + authority(32) + fee_share(2) + daily_cap(8) +
//	min_payout(8) + fund_missing(1) + y0(8) + quote_mint(32) +
//	base_mint(32) + pool(32) + creator_payout(32) + created_at(8) +
//	updated_at(8)
const policyFixedSize = 32 + 2 + 8 + 8 + 1 + 8 + 32 + 32 + 32 + 32 + 8 + 8 // 203

// Serialize encodes the policy to its fixed-width binary form.
func Serialize(p *Policy) ([]byte, error) {
	if len(p.VaultSeed) == 0 || len(p.VaultSeed) > MaxSeedLen {
		return nil, ErrInvalidSeed
	}
	buf := make([]byte, 2+len(p.VaultSeed)+policyFixedSize)
	offset := 0

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(p.VaultSeed)))
	offset += 2
	copy(buf[offset:], p.VaultSeed)
	offset += len(p.VaultSeed)

	copy(buf[offset:offset+32], p.Authority[:])
	offset += 32
	binary.BigEndian.PutUint16(buf[offset:offset+2], p.FeeShareBps)
	offset += 2
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.DailyCapLamports)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.MinPayoutLamports)
	offset += 8
	if p.FundMissingOwner {
		buf[offset] = 1
	}
	offset++
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.Y0TotalAllocation)
	offset += 8
	copy(buf[offset:offset+32], p.QuoteMint[:])
	offset += 32
	copy(buf[offset:offset+32], p.BaseMint[:])
	offset += 32
	copy(buf[offset:offset+32], p.Pool[:])
	offset += 32
	copy(buf[offset:offset+32], p.CreatorPayout[:])
	offset += 32
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.CreatedAt)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], p.UpdatedAt)
	return buf, nil
}

// Deserialize decodes a fixed-width binary policy record.
func Deserialize(data []byte) (*Policy, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidData, len(data))
	}
	seedLen := int(binary.BigEndian.Uint16(data[0:2]))
	if seedLen == 0 || seedLen > MaxSeedLen {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidData, seedLen)
	}
	if len(data) != 2+seedLen+policyFixedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidData, 2+seedLen+policyFixedSize, len(data))
	}
	offset := 2

	p := &Policy{VaultSeed: string(data[offset : offset+seedLen])}
	offset += seedLen

	copy(p.Authority[:], data[offset:offset+32])
	offset += 32
	p.FeeShareBps = binary.BigEndian.Uint16(data[offset : offset+2])
	offset += 2
	p.DailyCapLamports = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.MinPayoutLamports = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.FundMissingOwner = data[offset] == 1
	offset++
	p.Y0TotalAllocation = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	copy(p.QuoteMint[:], data[offset:offset+32])
	offset += 32
	copy(p.BaseMint[:], data[offset:offset+32])
	offset += 32
	copy(p.Pool[:], data[offset:offset+32])
	offset += 32
	copy(p.CreatorPayout[:], data[offset:offset+32])
	offset += 32
	p.CreatedAt = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.UpdatedAt = binary.BigEndian.Uint64(data[offset : offset+8])
	return p, nil
}
