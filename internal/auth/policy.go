package auth

import "strings"

// Policy is the allow-list configuration for verified identifiers:
// exact user IDs and/or domain suffixes, both case-insensitive. An empty
// policy denies everyone.
type Policy struct {
	Users   []string
	Domains []string
}

// Empty reports whether the policy allows no one.
func (p Policy) Empty() bool {
	return len(p.Users) == 0 && len(p.Domains) == 0
}

// FindVerifiedID returns the first candidate allowed by the policy, in its
// lower-cased canonical form. Candidates are checked in order so that an
// identity provider supplying several aliases for one principal yields a
// deterministic result.
func FindVerifiedID(candidates []string, policy Policy) (string, bool) {
	users := lowerSet(policy.Users)
	domains := lowerSet(policy.Domains)

	for _, candidate := range candidates {
		id := strings.ToLower(candidate)

		if _, ok := users[id]; ok {
			return id, true
		}

		if at := strings.LastIndex(id, "@"); at >= 0 {
			if _, ok := domains[id[at+1:]]; ok {
				return id, true
			}
		}
	}

	return "", false
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))

	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}

	return set
}
