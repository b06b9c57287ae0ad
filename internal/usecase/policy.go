package usecase

import "strings"

// EmailSetPolicy grants admin to an externally configured set of addresses
// (ADMIN_EMAILS). Matching is case-insensitive.
type EmailSetPolicy struct {
	emails map[string]struct{}
}

func NewEmailSetPolicy(emails []string) *EmailSetPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &EmailSetPolicy{emails: set}
}

func (p *EmailSetPolicy) IsAdmin(email string) bool {
	_, ok := p.emails[strings.ToLower(email)]
	return ok
}
