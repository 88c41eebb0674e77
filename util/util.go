package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsHexNumber(b byte) bool {
	return IsNumber(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsSpace reports ascii white space. Decaf source is ascii only.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}

	return false
}
