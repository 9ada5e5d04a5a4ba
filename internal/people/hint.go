package people

import (
	"regexp"
	"strings"

	"github.com/brieflab/daybrief/internal/calendar"
)

// genericDomains are consumer email providers. They identify a person's
// mail host, not their organization, so they are useless as search
// anchors and are never turned into a company name.
var genericDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"live.com":       {},
	"msn.com":        {},
	"icloud.com":     {},
	"me.com":         {},
	"aol.com":        {},
	"protonmail.com": {},
	"mail.com":       {},
	"zoho.com":       {},
	"yandex.com":     {},
	"gmial.com":      {},
	"google.com":     {},
}

// IsGenericDomain reports whether the domain belongs to a consumer email
// provider rather than an organization.
func IsGenericDomain(domain string) bool {
	_, ok := genericDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

var (
	honorificRe  = regexp.MustCompile(`(?i)\b(Dr\.?|Mr\.?|Ms\.?|Mrs\.?|Prof\.?)\s+`)
	nameSuffixRe = regexp.MustCompile(`(?i)\s+(Jr\.?|Sr\.?|III|IV|V)\b`)
	capitalRe    = regexp.MustCompile(`\b[A-Z][a-z]+\b`)
)

// maxSubjectKeywords bounds how many subject words become contextual
// keywords for one hint.
const maxSubjectKeywords = 3

// Hint is the ephemeral per-attendee input to person resolution. It is
// rebuilt for every attendee of every event and never cached; only
// resolution results are.
type Hint struct {
	Name              string
	Email             string
	Domain            string
	Company           string
	CoAttendeeDomains []string
	Keywords          []string
}

// NormalizedName returns the name with honorifics and generational
// suffixes stripped.
func (h Hint) NormalizedName() string {
	name := strings.TrimSpace(h.Name)
	name = honorificRe.ReplaceAllString(name, "")
	name = nameSuffixRe.ReplaceAllString(name, "")
	return strings.TrimSpace(strings.TrimRight(name, "."))
}

// SearchName returns the form of the name used in search queries: first
// and last word only, middle names dropped.
func (h Hint) SearchName() string {
	name := h.NormalizedName()
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		return parts[0] + " " + parts[len(parts)-1]
	}
	return name
}

// HasDomain reports whether the hint carries an organizational domain a
// site-restricted search can target.
func (h Hint) HasDomain() bool {
	return h.Domain != "" && !IsGenericDomain(h.Domain)
}

// ConfidenceAnchors returns the terms whose presence in a search result
// raises confidence that it is about this person. Co-attendee domains are
// weak anchors; they often share a deal or engagement with the person.
func (h Hint) ConfidenceAnchors() []string {
	var anchors []string
	if h.HasDomain() {
		anchors = append(anchors, h.Domain)
	}
	if h.Company != "" && !strings.EqualFold(h.Company, h.Domain) {
		anchors = append(anchors, h.Company)
	}
	anchors = append(anchors, h.CoAttendeeDomains...)
	return anchors
}

// CompanyFromDomain derives a human-readable organization name from an
// email domain, e.g. "acme-capital.com" becomes "Acme Capital": the
// registrable label with hyphens and underscores as word breaks, each
// word capitalized. Generic consumer domains yield nothing.
func CompanyFromDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if d == "" || IsGenericDomain(d) {
		return ""
	}
	for _, prefix := range []string{"www.", "mail.", "calendar."} {
		if rest, ok := strings.CutPrefix(d, prefix); ok {
			d = rest
			break
		}
	}
	label, _, _ := strings.Cut(d, ".")
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)

	words := strings.Fields(label)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// BuildHint derives a resolution hint for one attendee from the event it
// appears in. The event contributes contextual signal: the other
// attendees' organizational domains and the capitalized words of the
// subject.
func BuildHint(attendee calendar.Attendee, ev calendar.Event) Hint {
	name := strings.TrimSpace(attendee.DisplayName)
	if name == "" && attendee.Email != "" {
		local, _, _ := strings.Cut(attendee.Email, "@")
		name = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	}

	domain := calendar.DomainOf(attendee.Email)

	hint := Hint{
		Name:    name,
		Email:   strings.ToLower(strings.TrimSpace(attendee.Email)),
		Domain:  domain,
		Company: CompanyFromDomain(domain),
	}

	seen := map[string]struct{}{domain: {}}
	for _, other := range append([]calendar.Attendee{ev.Organizer}, ev.Attendees...) {
		if other.Equal(attendee) {
			continue
		}
		od := other.Domain()
		if od == "" || IsGenericDomain(od) {
			continue
		}
		if _, dup := seen[od]; dup {
			continue
		}
		seen[od] = struct{}{}
		hint.CoAttendeeDomains = append(hint.CoAttendeeDomains, od)
	}

	hint.Keywords = subjectKeywords(ev.Subject)
	return hint
}

// subjectKeywords extracts up to maxSubjectKeywords capitalized words
// from a meeting subject.
func subjectKeywords(subject string) []string {
	words := capitalRe.FindAllString(subject, maxSubjectKeywords)
	if len(words) == 0 {
		return nil
	}
	return words
}
