package profile

import "strings"

// FeatureText flattens the profile into the token string used for similarity.
// Department, industry and graduation year come first, then every skill and
// every career interest. Empty values are dropped, the rest are lower-cased
// with inner spaces turned into underscores so multi-word values stay a
// single token.
func (p *Profile) FeatureText() string {
	if p == nil {
		return ""
	}

	values := make([]string, 0, 3+len(p.Skills)+len(p.CareerInterests))
	values = append(values, p.Department, p.Industry, p.GraduationYear)
	values = append(values, p.Skills...)
	values = append(values, p.CareerInterests...)

	tokens := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		tokens = append(tokens, strings.ReplaceAll(strings.ToLower(v), " ", "_"))
	}

	return strings.Join(tokens, " ")
}
