package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// NextCode derives the next human-readable identifier for a prefix from the ids
// that already exist: the highest numeric suffix of any `prefix-NNNN` id plus
// one, zero-padded to four digits (wider numbers stay unpadded). Gaps in the
// sequence are never reused.
//
// The result is best-effort; the database unique constraint is the final
// arbiter, and callers retry with a re-fetched id set on a uniqueness conflict.
func NextCode(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		suffix, ok := strings.CutPrefix(id, prefix+"-")
		if !ok || suffix == "" || suffix[0] == '-' || suffix[0] == '+' {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	return fmt.Sprintf("%s-%04d", prefix, max+1)
}
