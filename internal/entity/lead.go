package entity

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadAnswered   LeadStatus = "Answered"
	LeadNoAnswered LeadStatus = "No Answered"
)

func (s LeadStatus) Valid() bool {
	return s == LeadAnswered || s == LeadNoAnswered
}

// Service is one of the offerings the agency sells on its contact forms.
type Service string

const (
	ServiceWebsiteSolutions   Service = "Website Solutions"
	ServiceDigitalMarketing   Service = "Digital Marketing"
	ServiceSocialMedia        Service = "Social Media Marketing"
	ServiceSEO                Service = "Search Engine Optimization"
	ServiceBranding           Service = "Branding"
	ServiceContentCreation    Service = "Content Creation"
	ServicePaidAdvertising    Service = "Paid Advertising"
	ServiceEcommerceSolutions Service = "E-commerce Solutions"
)

var services = []Service{
	ServiceWebsiteSolutions,
	ServiceDigitalMarketing,
	ServiceSocialMedia,
	ServiceSEO,
	ServiceBranding,
	ServiceContentCreation,
	ServicePaidAdvertising,
	ServiceEcommerceSolutions,
}

// Services returns the accepted service names in display order.
func Services() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

func (s Service) Valid() bool {
	for _, v := range services {
		if s == v {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email looks like local-part@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Lead is a prospect captured by the contact forms. Leads are never deleted.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company"`
	Website   string     `json:"website"`
	Mobile    string     `json:"mobile"`
	Service   Service    `json:"service"`
	Email     string     `json:"email"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewLead trims the form fields, validates them and returns a lead in
// status "No Answered".
func NewLead(name, company, website, mobile string, service Service, email string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Company:   strings.TrimSpace(company),
		Website:   strings.TrimSpace(website),
		Mobile:    strings.TrimSpace(mobile),
		Service:   Service(strings.TrimSpace(string(service))),
		Email:     strings.TrimSpace(email),
		Status:    LeadNoAnswered,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Company == "" {
		return errors.New("company is required")
	}
	if l.Website == "" {
		return errors.New("website is required")
	}
	if l.Mobile == "" {
		return errors.New("mobile is required")
	}
	if !l.Service.Valid() {
		return errors.New("service is invalid")
	}
	if !ValidEmail(l.Email) {
		return errors.New("email is invalid")
	}
	if !l.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}
