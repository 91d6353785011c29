package mdl

// Texture render flags, as stored in the flags field of each texture
// record.
const (
	FlagFlatshade uint32 = 1 << iota
	FlagChrome
	FlagFullbright
	FlagNoMips
	FlagAlpha
	FlagAdditive
	FlagMasked
)

var flagNames = []struct {
	bit  uint32
	name string
}{
	{FlagFlatshade, "flatshade"},
	{FlagChrome, "chrome"},
	{FlagFullbright, "fullbright"},
	{FlagNoMips, "nomips"},
	{FlagAlpha, "alpha"},
	{FlagAdditive, "additive"},
	{FlagMasked, "masked"},
}

// FlagNames returns the names of the render flags set in flags, in
// bit order.
func FlagNames(flags uint32) []string {
	var names []string
	for _, f := range flagNames {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}
