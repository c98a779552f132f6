package progress

import (
	"encoding/binary"
	"fmt"
)

// Serialized layout, big endian: seed_len(2) + seed, then seventeen
// uint64 counters in declaration order with the two flag bytes after the
// pagination cursor.
const progressFixedSize = 17*8 + 2 // 138

// Serialize encodes the progress record to its fixed-width binary form.
func Serialize(p *Progress) ([]byte, error) {
	if len(p.VaultSeed) == 0 || len(p.VaultSeed) > MaxSeedLen {
		return nil, ErrInvalidSeed
	}
	buf := make([]byte, 2+len(p.VaultSeed)+progressFixedSize)
	offset := 0

	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(p.VaultSeed)))
	offset += 2
	copy(buf[offset:], p.VaultSeed)
	offset += len(p.VaultSeed)

	for _, v := range []uint64{
		p.LastDistributionTS,
		p.DayEpoch,
		p.DayQuoteClaimed,
		p.CumulativeDistributedToday,
		p.CarryOverLamports,
		p.PaginationCursor,
	} {
		binary.BigEndian.PutUint64(buf[offset:offset+8], v)
		offset += 8
	}
	if p.PageInProgress {
		buf[offset] = 1
	}
	offset++
	if p.DayFinalized {
		buf[offset] = 1
	}
	offset++
	for _, v := range []uint64{
		p.PagesProcessedToday,
		p.LastClaimedQuote,
		p.LastClaimedBase,
		p.DayTotalLocked,
		p.DayStakeholderTotal,
		p.DayLockedSeen,
		p.DayInvestorPoolTarget,
		p.DayInvestorDistributed,
		p.DayCreatorRemainderTarget,
		p.CreatedAt,
		p.UpdatedAt,
	} {
		binary.BigEndian.PutUint64(buf[offset:offset+8], v)
		offset += 8
	}
	return buf, nil
}

// Deserialize decodes a fixed-width binary progress record.
func Deserialize(data []byte) (*Progress, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidData, len(data))
	}
	seedLen := int(binary.BigEndian.Uint16(data[0:2]))
	if seedLen == 0 || seedLen > MaxSeedLen {
		return nil, fmt.Errorf("%w: seed length %d", ErrInvalidData, seedLen)
	}
	if len(data) != 2+seedLen+progressFixedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidData, 2+seedLen+progressFixedSize, len(data))
	}
	offset := 2

	p := &Progress{VaultSeed: string(data[offset : offset+seedLen])}
	offset += seedLen

	read := func() uint64 {
		v := binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
		return v
	}

	p.LastDistributionTS = read()
	p.DayEpoch = read()
	p.DayQuoteClaimed = read()
	p.CumulativeDistributedToday = read()
	p.CarryOverLamports = read()
	p.PaginationCursor = read()
	p.PageInProgress = data[offset] == 1
	offset++
	p.DayFinalized = data[offset] == 1
	offset++
	p.PagesProcessedToday = read()
	p.LastClaimedQuote = read()
	p.LastClaimedBase = read()
	p.DayTotalLocked = read()
	p.DayStakeholderTotal = read()
	p.DayLockedSeen = read()
	p.DayInvestorPoolTarget = read()
	p.DayInvestorDistributed = read()
	p.DayCreatorRemainderTarget = read()
	p.CreatedAt = read()
	p.UpdatedAt = read()
	return p, nil
}
