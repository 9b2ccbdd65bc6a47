package primitive

// CategoryEnum is a bit set of scalar conversion families. A mapper may only
// apply the casts of the categories it was configured with.
type CategoryEnum int

type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // widening between numbers, no precision loss
	CategoryUnsafeNumber                          // any other number to number conversion
	CategoryTextNumber                            // number <-> decimal text
	CategoryNumericBool                           // integer <-> bool as 1 and 0
	CategoryTextualBool                           // text <-> bool: yes/no, on/off, true/false
	CategoryDatetime                              // text (RFC3339Nano or a configured layout) <-> time.Time
	CategoryTimestamp                             // integer Unix seconds <-> time.Time
	CategoryDuration                              // text such as 2h45m <-> time.Duration
	CategoryNanoseconds                           // integer nanoseconds <-> time.Duration
	CategorySeconds                               // float seconds <-> time.Duration

	CategoryAll  = (1 << iota) - 1
	CategoryNone = 0

	// CategoryLossless is every category but CategoryUnsafeNumber: no
	// truncating float to integer casts and no narrowing integer casts.
	CategoryLossless = CategoryAll &^ CategoryUnsafeNumber
)

// categoryRules are checked in order; the first matching rule names the
// category of a pair. Safe numbers come first so that unsafe numbers only
// match what widening does not cover.
var categoryRules = []struct {
	category CategoryEnum
	match    func(from, to KindEnum) bool
}{
	{CategorySafeNumber, isWidening},
	{CategoryUnsafeNumber, func(from, to KindEnum) bool { return from.IsNumber() && to.IsNumber() }},
	{CategoryTextNumber, either(KindString, KindEnum.IsNumber)},
	{CategoryNumericBool, either(KindBool, KindEnum.IsInteger)},
	{CategoryTextualBool, either(KindString, is(KindBool))},
	{CategoryDatetime, either(KindString, is(KindTime))},
	{CategoryTimestamp, either(KindTime, KindEnum.IsInteger)},
	{CategoryDuration, either(KindString, is(KindDuration))},
	{CategoryNanoseconds, either(KindDuration, func(k KindEnum) bool { return k.IsInteger() && k != KindUint64 })},
	{CategorySeconds, either(KindDuration, KindEnum.IsFloat)},
}

// either matches pairs converting between kind and any kind accepted by other.
func either(kind KindEnum, other func(KindEnum) bool) func(from, to KindEnum) bool {
	return func(from, to KindEnum) bool {
		return (from == kind && other(to)) || (to == kind && other(from))
	}
}

func is(kind KindEnum) func(KindEnum) bool {
	return func(k KindEnum) bool { return k == kind }
}

// isWidening reports number conversions that keep every value of from.
// int and uint are taken as 64 bits wide on the source side and 32 bits
// wide on the target side.
func isWidening(from, to KindEnum) bool {
	if !from.IsNumber() || !to.IsNumber() {
		return false
	}

	if from == to {
		return true
	}

	switch {
	case from.IsFloat():
		return to.IsFloat() && to.Bits() >= from.Bits()
	case to.IsFloat():
		return from.magnitude() <= to.mantissa()
	case from.IsSigned() && to.IsUnsigned():
		return false
	case from.IsUnsigned() && to.IsSigned():
		return to.minBits() > from.maxBits()
	default:
		return to.minBits() >= from.maxBits()
	}
}

// CategoryOf returns the category that contains pair, or CategoryNone.
// Identity pairs of non-number kinds belong to no category and are always allowed.
func CategoryOf(pair ConversionPair) CategoryEnum {
	if pair.From == 0 || pair.To == 0 {
		return CategoryNone
	}

	for _, rule := range categoryRules {
		if rule.match(pair.From, pair.To) {
			return rule.category
		}
	}

	return CategoryNone
}

// IsAllowed reports whether the allowed categories permit pair.
func IsAllowed(pair ConversionPair, allowed CategoryEnum) bool {
	if pair.From == pair.To {
		return true
	}

	category := CategoryOf(pair)

	return category != CategoryNone && allowed&category != 0
}

func (p ConversionPair) String() string {
	return p.From.String() + "->" + p.To.String()
}
