package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	required := []struct{ field, value string }{
		{"name", input.Name},
		{"company", input.Company},
		{"website", input.Website},
		{"mobile", input.Mobile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, ValidationError{r.field, "is required"})
		}
	}

	service := strings.TrimSpace(input.Service)
	if service == "" {
		errors = append(errors, ValidationError{"service", "is required"})
	} else if !entity.Service(service).Valid() {
		errors = append(errors, ValidationError{"service", "is not an offered service"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if !entity.ValidEmail(strings.TrimSpace(input.Email)) {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	return errors
}

func joinValidationErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func parseLeadStatus(raw string) (entity.LeadStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", newValidationError("status is required")
	}
	s := entity.LeadStatus(raw)
	if !s.Valid() {
		return "", newValidationError(fmt.Sprintf("status must be %q or %q", entity.LeadAnswered, entity.LeadNoAnswered))
	}
	return s, nil
}

func parseMQLStatus(raw string) (entity.MQLStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", newValidationError("status is required")
	}
	s := entity.MQLStatus(raw)
	if !s.Valid() {
		return "", newValidationError(fmt.Sprintf("status must be %q or %q", entity.MQLShowed, entity.MQLNoShowed))
	}
	return s, nil
}

func parseSQLStatus(raw string) (entity.SQLStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return "", newValidationError("status is required")
	}
	s := entity.SQLStatus(raw)
	if !s.Valid() {
		return "", newValidationError(fmt.Sprintf("status must be one of %q, %q, %q", entity.SQLPending, entity.SQLWon, entity.SQLLost))
	}
	return s, nil
}
