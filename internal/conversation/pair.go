package conversation

// CanonicalPair orders two user identifiers lexicographically. Every code
// path that looks up or creates a conversation goes through this exact rule;
// the stored procedure expresses the same ordering with LEAST/GREATEST.
func CanonicalPair(a, b string) (lo, hi string) {
	if a <= b {
		return a, b
	}
	return b, a
}
