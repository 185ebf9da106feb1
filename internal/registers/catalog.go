// internal/registers/catalog.go
package registers

import "fmt"

// Encoding is the wire encoding of a single field inside a register block.
type Encoding uint8

const (
	UInt16BE Encoding = iota + 1
	Float32BE
)

// Width returns the number of bytes the encoding occupies on the wire.
func (e Encoding) Width() uint16 {
	switch e {
	case UInt16BE:
		return 2
	case Float32BE:
		return 4
	default:
		return 0
	}
}

func (e Encoding) String() string {
	switch e {
	case UInt16BE:
		return "uint16be"
	case Float32BE:
		return "float32be"
	default:
		return fmt.Sprintf("encoding(%d)", uint8(e))
	}
}

// FieldSpec is one named quantity inside a block.
// Offset is in bytes, relative to the first register of the block.
type FieldSpec struct {
	Name     string
	Encoding Encoding
	Offset   uint16
}

// RegisterBlock is a contiguous range of holding registers read in one request.
type RegisterBlock struct {
	Start  uint16
	Count  uint16
	Fields []FieldSpec
}

// Size is the number of bytes a complete read of the block returns.
func (b RegisterBlock) Size() int {
	return int(b.Count) * 2
}

// ---- identity ----

// Serial number: 8 registers (16 ASCII bytes, NUL padded) at register 14.
const (
	SerialStart uint16 = 14
	SerialCount uint16 = 8
)

// ---- telemetry blocks (protocol-locked) ----

var BlockState = newLayout(56, 2).
	field("InverterState", UInt16BE).
	skip(1).
	build()

var BlockTemperature = newLayout(98, 2).
	floats("Temperature").
	build()

var BlockAC = newLayout(150, 30).
	floats(
		"ActualCosPhi",       // 150
		"GridFrequency",      // 152
		"CurrentL1",          // 154
		"ActivePowerL1",      // 156
		"VoltageL1",          // 158
		"CurrentL2",          // 160
		"ActivePowerL2",      // 162
		"VoltageL2",          // 164
		"CurrentL3",          // 166
		"ActivePowerL3",      // 168
		"VoltageL3",          // 170
		"TotalActivePower",   // 172
		"TotalReactivePower", // 174
	).
	skip(2).
	floats("TotalApparentPower"). // 178
	build()

var BlockDC = newLayout(258, 30).
	floats("CurrentDC1", "PowerDC1"). // 258
	skip(4).
	floats("VoltageDC1", "CurrentDC2", "PowerDC2"). // 266
	skip(4).
	floats("VoltageDC2", "CurrentDC3", "PowerDC3"). // 276
	skip(4).
	floats("VoltageDC3"). // 286
	build()

var BlockYield = newLayout(320, 8).
	floats("TotalYield", "DailyYield", "YearlyYield", "MonthlyYield").
	build()

var catalog = []RegisterBlock{
	BlockState,
	BlockTemperature,
	BlockAC,
	BlockDC,
	BlockYield,
}

// Catalog returns the telemetry blocks in the order they are read from the device.
func Catalog() []RegisterBlock {
	out := make([]RegisterBlock, len(catalog))
	copy(out, catalog)
	return out
}

// FieldNames returns every quantity name of the catalog in read order.
func FieldNames() []string {
	var names []string
	for _, b := range catalog {
		for _, f := range b.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// ---- layout builder ----

// layout accumulates fields in wire order. Offsets are derived from the
// widths of preceding fields plus explicit skips.
type layout struct {
	block  RegisterBlock
	offset uint16
}

func newLayout(start, count uint16) *layout {
	return &layout{block: RegisterBlock{Start: start, Count: count}}
}

func (l *layout) field(name string, enc Encoding) *layout {
	l.block.Fields = append(l.block.Fields, FieldSpec{
		Name:     name,
		Encoding: enc,
		Offset:   l.offset,
	})
	l.offset += enc.Width()
	return l
}

func (l *layout) floats(names ...string) *layout {
	for _, n := range names {
		l.field(n, Float32BE)
	}
	return l
}

// skip advances past unused registers.
func (l *layout) skip(registers uint16) *layout {
	l.offset += registers * 2
	return l
}

func (l *layout) build() RegisterBlock {
	if int(l.offset) > l.block.Size() {
		panic(fmt.Sprintf("registers: block %d layout needs %d bytes, has %d",
			l.block.Start, l.offset, l.block.Size()))
	}
	return l.block
}
