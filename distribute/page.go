package distribute

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/blake2b"
)

// Stakeholder is one row of a page: where to read the locked balance and
// where to send the payout.
type Stakeholder struct {
	BalanceRef solana.PublicKey
	Payout     solana.PublicKey
}

// Page is one caller-assembled batch of stakeholders. Index is the
// starting stakeholder offset within the day; the day totals are the
// caller's declared snapshot, identical on every page of the day.
type Page struct {
	Index               uint64
	DayStakeholderTotal uint64
	DayLockedTotal      uint64
	Hash                [32]byte
	Stakeholders        []Stakeholder
}

// HashPage computes the BLAKE2b-256 integrity hash binding the page index
// to the ordered stakeholder rows.
func HashPage(index uint64, stakeholders []Stakeholder) [32]byte {
	h, _ := blake2b.New256(nil)
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)
	h.Write(idx[:])
	for _, s := range stakeholders {
		h.Write(s.BalanceRef[:])
		h.Write(s.Payout[:])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Seal stamps the page with its integrity hash.
func (p *Page) Seal() {
	p.Hash = HashPage(p.Index, p.Stakeholders)
}

// Verify reports whether the page contents match its hash.
func (p *Page) Verify() bool {
	return p.Hash == HashPage(p.Index, p.Stakeholders)
}
