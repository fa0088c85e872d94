package types

import (
	"math/bits"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// TypeRefMask is an approximate set of types. Bits 0..61 index into the
// routine's TypeRefContext, bit 62 and bit 63 are modifier flags.
//
// The zero value is void (uninitialized). Union is the only merge operator.
type TypeRefMask uint64

const (
	// IndicesCount is the number of type indices a mask can address.
	IndicesCount = 62

	// IncludesSubclassesFlag marks that class entries also cover subclasses.
	IncludesSubclassesFlag TypeRefMask = 1 << 62
	// IsHintFlag marks a mask derived from a documentation hint.
	IsHintFlag TypeRefMask = 1 << 63

	// FlagsMask covers both modifier bits.
	FlagsMask = IncludesSubclassesFlag | IsHintFlag
	// TypesMask covers the type index bits.
	TypesMask = ^FlagsMask

	// VoidType is the empty mask.
	VoidType TypeRefMask = 0
	// AnyType is the top of the lattice.
	AnyType TypeRefMask = ^TypeRefMask(0)
)

// MaskOf returns a mask with the given indices set.
func MaskOf(indices ...int) TypeRefMask {
	var m TypeRefMask
	for _, i := range indices {
		m = m.AddType(i)
	}
	return m
}

// IsUninitialized reports whether no bit, flags included, is set.
func (m TypeRefMask) IsUninitialized() bool { return m == 0 }

// IsVoid reports whether no type bit is set. Flags alone do not count.
func (m TypeRefMask) IsVoid() bool { return m&TypesMask == 0 }

// IsAnyType reports whether the mask is the top of the lattice.
func (m TypeRefMask) IsAnyType() bool { return m == AnyType }

// IsSingleType reports whether exactly one type bit is set.
func (m TypeRefMask) IsSingleType() bool {
	return bits.OnesCount64(uint64(m&TypesMask)) == 1
}

// IsHint reports the IsHint flag.
func (m TypeRefMask) IsHint() bool { return m&IsHintFlag != 0 }

// IncludesSubclasses reports the IncludesSubclasses flag.
func (m TypeRefMask) IncludesSubclasses() bool { return m&IncludesSubclassesFlag != 0 }

// TypesCount returns the number of type bits set.
func (m TypeRefMask) TypesCount() int {
	if m.IsAnyType() {
		return IndicesCount
	}
	return bits.OnesCount64(uint64(m & TypesMask))
}

// bit returns the mask of a single index; ok is false outside
// [0, IndicesCount).
func bit(index int) (TypeRefMask, bool) {
	if index >= IndicesCount {
		return VoidType, false
	}
	shift, err := safecast.Conv[uint8](index)
	if err != nil {
		return VoidType, false
	}
	return 1 << shift, true
}

// HasType reports whether index is a member. Out-of-range indices are only
// members of AnyType.
func (m TypeRefMask) HasType(index int) bool {
	b, ok := bit(index)
	if !ok {
		return m.IsAnyType()
	}
	return m&b != 0
}

// AddType returns the mask with index added. An index outside
// [0, IndicesCount) widens the mask to AnyType.
func (m TypeRefMask) AddType(index int) TypeRefMask {
	b, ok := bit(index)
	if !ok {
		return AnyType
	}
	return m | b
}

// SetType sets or clears a single index. Clearing is ignored on AnyType.
func (m TypeRefMask) SetType(index int, present bool) TypeRefMask {
	if present {
		return m.AddType(index)
	}
	b, ok := bit(index)
	if m.IsAnyType() || !ok {
		return m
	}
	return m &^ b
}

// Union merges two masks.
func (m TypeRefMask) Union(other TypeRefMask) TypeRefMask { return m | other }

// Includes reports whether every bit of other is present in m.
func (m TypeRefMask) Includes(other TypeRefMask) bool { return m&other == other }

// WithIsHint returns the mask with the IsHint flag set or cleared.
func (m TypeRefMask) WithIsHint(hint bool) TypeRefMask {
	return m.withFlag(IsHintFlag, hint)
}

// WithIncludesSubclasses returns the mask with the IncludesSubclasses flag
// set or cleared.
func (m TypeRefMask) WithIncludesSubclasses(include bool) TypeRefMask {
	return m.withFlag(IncludesSubclassesFlag, include)
}

// WithoutFlags strips both modifier bits. AnyType stays AnyType.
func (m TypeRefMask) WithoutFlags() TypeRefMask {
	if m.IsAnyType() {
		return m
	}
	return m & TypesMask
}

func (m TypeRefMask) withFlag(flag TypeRefMask, on bool) TypeRefMask {
	if m.IsAnyType() {
		return m
	}
	if on {
		return m | flag
	}
	return m &^ flag
}

// Indices lists the set type indices in ascending order.
func (m TypeRefMask) Indices() []int {
	if m.IsAnyType() {
		return nil
	}
	out := make([]int, 0, m.TypesCount())
	for rest := uint64(m & TypesMask); rest != 0; rest &= rest - 1 {
		out = append(out, bits.TrailingZeros64(rest))
	}
	return out
}

// String renders "mixed", "void" or the comma-joined indices, followed by
// " (hint)" when the IsHint flag is set.
func (m TypeRefMask) String() string {
	if m.IsAnyType() {
		return "mixed"
	}
	var sb strings.Builder
	if m.IsVoid() {
		sb.WriteString("void")
	} else {
		for i, idx := range m.Indices() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(idx))
		}
	}
	if m.IsHint() {
		sb.WriteString(" (hint)")
	}
	return sb.String()
}
