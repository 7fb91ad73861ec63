package domain

// Reconcile returns a copy of catalog padded with FillerTask entries so that
// every participant receives at least one entry.
//
//   - len == participants: no padding.
//   - len > participants: pad until the length reaches 2*participants. A
//     catalog already at or past 2*participants is left alone, so the final
//     deal may be uneven.
//   - len < participants: pad until the length reaches participants.
//
// A non-positive participant count returns an unpadded copy.
func Reconcile(catalog []string, participants int) []string {
	padded := make([]string, len(catalog), reconciledLen(len(catalog), participants))
	copy(padded, catalog)
	for len(padded) < cap(padded) {
		padded = append(padded, FillerTask)
	}
	return padded
}

// reconciledLen is the target length for a catalog of n labels.
func reconciledLen(n, participants int) int {
	switch {
	case participants <= 0, n == participants:
		return n
	case n > participants:
		return max(n, 2*participants)
	default:
		return participants
	}
}
