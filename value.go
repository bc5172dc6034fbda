package main

import "fmt"

// Value is a fixed-width signal sample. Known distinguishes a real sample
// from an explicitly undefined one (a register before reset, an expectation
// that has not been primed). Unknown is never coercible to zero: comparisons
// against an unknown value can only be indeterminate, never a pass.
type Value struct {
	Bits  uint64
	Known bool
}

// V builds a known value.
func V(bits uint64) Value {
	return Value{Bits: bits, Known: true}
}

// X builds an explicitly unknown value.
func X() Value {
	return Value{}
}

// Masked truncates the value to width bits. Width 0 yields a known zero
// (a zero-width field carries no information but is still defined).
// Unknown stays unknown regardless of width.
func (v Value) Masked(width uint) Value {
	if !v.Known {
		return v
	}
	if width >= 64 {
		return v
	}
	return Value{Bits: v.Bits & ((1 << width) - 1), Known: true}
}

// Equal reports defined equality. It is false whenever either side is
// unknown; callers that need to distinguish "unknown involved" from a plain
// mismatch use Comparable first.
func (v Value) Equal(o Value) bool {
	return v.Known && o.Known && v.Bits == o.Bits
}

// Comparable reports whether both sides are defined.
func (v Value) Comparable(o Value) bool {
	return v.Known && o.Known
}

func (v Value) String() string {
	if !v.Known {
		return "x"
	}
	return fmt.Sprintf("0x%x", v.Bits)
}

// FieldWidths declares the bit width of every stream field. Widths are
// configuration, not constants: a zero width disables the field (it samples
// as a defined zero).
type FieldWidths struct {
	Data uint `toml:"data"`
	Keep uint `toml:"keep"`
	Strb uint `toml:"strb"`
	ID   uint `toml:"id"`
	Dest uint `toml:"dest"`
	User uint `toml:"user"`
}

// DefaultFieldWidths mirrors a 32-bit stream with byte masks.
func DefaultFieldWidths() FieldWidths {
	return FieldWidths{Data: 32, Keep: 4, Strb: 4, ID: 4, Dest: 4, User: 1}
}

// Validate rejects widths the sampler cannot represent.
func (fw FieldWidths) Validate() error {
	check := func(name string, w uint) error {
		if w > 64 {
			return fmt.Errorf("field %s width must be <= 64, got %d", name, w)
		}
		return nil
	}
	if err := check("data", fw.Data); err != nil {
		return err
	}
	if err := check("keep", fw.Keep); err != nil {
		return err
	}
	if err := check("strb", fw.Strb); err != nil {
		return err
	}
	if err := check("id", fw.ID); err != nil {
		return err
	}
	if err := check("dest", fw.Dest); err != nil {
		return err
	}
	return check("user", fw.User)
}
