// Package catalog is the closed enumeration of column datatypes (C1):
// canonical names, lookup by name, and the predicates ("has length",
// "has precision", "is serial", "is string", "is temporal") that drive
// every downstream emitter's column formatting.
package catalog

import (
	"strings"
	"sync"

	"ariga.io/atlas/sql/postgres"
)

// DataType enumerates the column datatypes the model supports. The set
// mirrors the PostgreSQL 13.1 types the original generator targeted,
// trimmed of the exotic ones (box, cidr, json, uuid, ...) it never used.
type DataType int

// None is the out-of-range value -1, meaning "no datatype" — used by the
// *Generated snapshot fields (§4.4) to mean "this entity has never been
// emitted", distinct from BigInt (which is DataType's zero value).
const None DataType = -1

// The closed set of datatypes, in catalogue (declaration) order.
const (
	BigInt DataType = iota
	BigSerial
	Bit
	VarBit
	SmallInt
	Serial
	Boolean
	Double
	Integer
	Real
	Numeric
	ByteArray
	Character
	VarChar
	Text
	Interval
	Date
	Time
	TimeTZ
	Timestamp
	TimestampTZ
)

type entry struct {
	dt         DataType
	name       string
	hasLength  bool
	hasPrec    bool
	isSerial   bool
	isString   bool
	isTemporal bool
	pgType     string
	cppType    string
	javaType   string
}

var (
	once       sync.Once
	byType     map[DataType]entry
	byLowerKey map[string]entry
	ordered    []entry
)

func initCatalog() {
	rows := []entry{
		{BigInt, "BigInt", false, false, false, false, false, postgres.TypeBigInt, "int64_t", "Long"},
		{BigSerial, "BigSerial", false, false, true, false, false, postgres.TypeBigSerial, "int64_t", "Long"},
		{Bit, "Bit", true, false, false, false, false, postgres.TypeBit, "std::string", "String"},
		{VarBit, "VarBit", true, false, false, false, false, postgres.TypeBitVar, "std::string", "String"},
		{SmallInt, "SmallInt", false, false, false, false, false, postgres.TypeSmallInt, "int16_t", "Short"},
		{Serial, "Serial", false, false, true, false, false, postgres.TypeSerial, "int32_t", "Integer"},
		{Boolean, "Boolean", false, false, false, false, false, postgres.TypeBoolean, "bool", "Boolean"},
		{Double, "Double", false, false, false, false, false, postgres.TypeDouble, "double", "Double"},
		{Integer, "Integer", false, false, false, false, false, postgres.TypeInteger, "int32_t", "Integer"},
		{Real, "Real", false, false, false, false, false, postgres.TypeReal, "float", "Float"},
		{Numeric, "Numeric", false, true, false, false, false, postgres.TypeNumeric, "double", "java.math.BigDecimal"},
		{ByteArray, "ByteArray", false, false, false, false, false, postgres.TypeBytea, "std::vector<uint8_t>", "byte[]"},
		{Character, "Character", true, false, false, true, false, postgres.TypeCharacter, "std::string", "String"},
		{VarChar, "VarChar", true, false, false, true, false, postgres.TypeCharVar, "std::string", "String"},
		{Text, "Text", false, false, false, true, false, postgres.TypeText, "std::string", "String"},
		{Interval, "Interval", false, false, false, false, true, postgres.TypeInterval, "std::string", "String"},
		{Date, "Date", false, false, false, false, true, postgres.TypeDate, "std::string", "java.time.LocalDate"},
		{Time, "Time", false, false, false, false, true, postgres.TypeTime, "std::string", "java.time.LocalTime"},
		{TimeTZ, "TimeTZ", false, false, false, false, true, postgres.TypeTimeWTZ, "std::string", "java.time.OffsetTime"},
		{Timestamp, "Timestamp", false, false, false, false, true, postgres.TypeTimestamp, "std::string", "java.time.LocalDateTime"},
		{TimestampTZ, "TimestampTZ", false, false, false, false, true, postgres.TypeTimestampWTZ, "std::string", "java.time.OffsetDateTime"},
	}

	byType = make(map[DataType]entry, len(rows))
	byLowerKey = make(map[string]entry, len(rows))
	ordered = rows
	for _, r := range rows {
		byType[r.dt] = r
		byLowerKey[strings.ToLower(r.name)] = r
	}
}

func ensureInit() {
	once.Do(initCatalog)
}

// FromName resolves a datatype by its canonical name, case-insensitively.
// The second return value is false when the name is not in the catalogue.
func FromName(name string) (DataType, bool) {
	ensureInit()
	e, ok := byLowerKey[strings.ToLower(name)]
	return e.dt, ok
}

// ToName returns the canonical spelling for a datatype, or "" for None.
func ToName(dt DataType) string {
	if dt == None {
		return ""
	}
	ensureInit()
	return byType[dt].name
}

// HasLength reports whether dt takes a length parameter (e.g. VarChar(64)).
func HasLength(dt DataType) bool {
	ensureInit()
	return byType[dt].hasLength
}

// HasPrecision reports whether dt takes a (precision, scale) pair.
func HasPrecision(dt DataType) bool {
	ensureInit()
	return byType[dt].hasPrec
}

// IsSerial reports whether dt is an autoincrementing serial type.
func IsSerial(dt DataType) bool {
	ensureInit()
	return byType[dt].isSerial
}

// IsString reports whether dt is a string-category type.
func IsString(dt DataType) bool {
	ensureInit()
	return byType[dt].isString
}

// IsTemporal reports whether dt is a date/time type.
func IsTemporal(dt DataType) bool {
	ensureInit()
	return byType[dt].isTemporal
}

// PostgresType returns the native PostgreSQL type name for dt, sourced
// from ariga.io/atlas/sql/postgres's own type-name constants.
func PostgresType(dt DataType) string {
	ensureInit()
	return byType[dt].pgType
}

// CPPType returns the native C++ type used to store dt in generated
// object-model code.
func CPPType(dt DataType) string {
	ensureInit()
	return byType[dt].cppType
}

// JavaType returns the native Java type used to store dt in generated
// POJOs.
func JavaType(dt DataType) string {
	ensureInit()
	return byType[dt].javaType
}

// All returns every datatype in catalogue (declaration) order.
func All() []DataType {
	ensureInit()
	out := make([]DataType, len(ordered))
	for i, e := range ordered {
		out[i] = e.dt
	}
	return out
}
