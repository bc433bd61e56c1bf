package fasta

// Placeholder replaces digits and non-word bytes in clean mode.
const Placeholder = 'X'

// Gap is the alignment gap symbol.
const Gap = '-'

// Clean replaces every byte that is not an ASCII letter or '_' with
// Placeholder. Letters keep their case.
func Clean(sequence string) string {
	idx := -1
	for i := 0; i < len(sequence); i++ {
		if !isResidue(sequence[i]) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return sequence
	}
	out := []byte(sequence)
	for i := idx; i < len(out); i++ {
		if !isResidue(out[i]) {
			out[i] = Placeholder
		}
	}
	return string(out)
}

// isResidue reports whether b is a word character other than a digit.
func isResidue(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// appendUpper appends line to dst with ASCII letters uppercased.
func appendUpper(dst []byte, line []byte) []byte {
	for _, b := range line {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		dst = append(dst, b)
	}
	return dst
}
