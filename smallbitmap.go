package blaze

import "github.com/bits-and-blooms/bitset"

// ═══════════════════════════════════════════════════════════════════════════════
// SMALLBITMAP: a fixed-capacity bitmap over small integer indices
// ═══════════════════════════════════════════════════════════════════════════════
// Query graphs and ranking-rule graphs are small (a handful of words, a few
// hundred edges at most). SmallBitmap tracks membership of node/edge indices
// in that range without paying roaring's varint-encoding overhead, which is
// built for document sets in the millions, not node sets in the dozens.
//
// Two SmallBitmaps only make sense together if they share the same capacity;
// mixing capacities is a programmer error; it panics rather than silently
// truncating.
// ═══════════════════════════════════════════════════════════════════════════════

// SmallBitmap wraps a word-packed bitset.BitSet with a fixed declared capacity.
type SmallBitmap struct {
	capacity uint16
	bits     *bitset.BitSet
}

// NewSmallBitmap returns an empty bitmap that can hold indices in [0, capacity).
func NewSmallBitmap(capacity uint16) SmallBitmap {
	return SmallBitmap{capacity: capacity, bits: bitset.New(uint(capacity))}
}

// SmallBitmapFrom builds a bitmap of the given capacity containing values.
func SmallBitmapFrom(values []uint16, capacity uint16) SmallBitmap {
	b := NewSmallBitmap(capacity)
	for _, v := range values {
		b.Insert(v)
	}
	return b
}

// Capacity returns the declared index range, [0, Capacity()).
func (b SmallBitmap) Capacity() uint16 {
	return b.capacity
}

// Insert adds x to the set.
func (b SmallBitmap) Insert(x uint16) {
	b.bits.Set(uint(x))
}

// Remove drops x from the set.
func (b SmallBitmap) Remove(x uint16) {
	b.bits.Clear(uint(x))
}

// Contains reports whether x is a member.
func (b SmallBitmap) Contains(x uint16) bool {
	return b.bits.Test(uint(x))
}

// IsEmpty reports whether no bits are set.
func (b SmallBitmap) IsEmpty() bool {
	return b.bits.None()
}

// Len returns the number of set bits.
func (b SmallBitmap) Len() int {
	return int(b.bits.Count())
}

// Clone returns an independent copy.
func (b SmallBitmap) Clone() SmallBitmap {
	return SmallBitmap{capacity: b.capacity, bits: b.bits.Clone()}
}

func (b SmallBitmap) checkCompatible(other SmallBitmap) {
	if b.capacity != other.capacity {
		panic("blaze: SmallBitmap capacity mismatch")
	}
}

// Union sets b to the union of b and other. Panics on capacity mismatch.
func (b SmallBitmap) Union(other SmallBitmap) {
	b.checkCompatible(other)
	b.bits.InPlaceUnion(other.bits)
}

// Intersection sets b to the intersection of b and other.
func (b SmallBitmap) Intersection(other SmallBitmap) {
	b.checkCompatible(other)
	b.bits.InPlaceIntersection(other.bits)
}

// Difference removes from b every bit present in other.
func (b SmallBitmap) Difference(other SmallBitmap) {
	b.checkCompatible(other)
	b.bits.InPlaceDifference(other.bits)
}

// Intersects reports whether b and other share any set bit.
func (b SmallBitmap) Intersects(other SmallBitmap) bool {
	b.checkCompatible(other)
	return b.bits.IntersectionCardinality(other.bits) > 0
}

// Iter returns the set bits in ascending order.
func (b SmallBitmap) Iter() []uint16 {
	out := make([]uint16, 0, b.Len())
	for i, ok := b.bits.NextSet(0); ok; i, ok = b.bits.NextSet(i + 1) {
		out = append(out, uint16(i))
	}
	return out
}
