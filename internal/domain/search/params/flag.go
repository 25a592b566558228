package params

// Flag is a package status marker usable in is: and not: qualifiers.
type Flag string

// Known flags.
const (
	FlagDeprecated Flag = "deprecated"
	FlagUnstable   Flag = "unstable"
	FlagInsecure   Flag = "insecure"
)

// Flags returns the flag vocabulary.
func Flags() []Flag {
	return []Flag{FlagDeprecated, FlagUnstable, FlagInsecure}
}

// IsValid reports whether f is in the vocabulary.
func (f Flag) IsValid() bool {
	switch f {
	case FlagDeprecated, FlagUnstable, FlagInsecure:
		return true
	}
	return false
}
