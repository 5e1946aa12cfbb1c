package portfolio

import (
	"fmt"
	"strings"

	"folio/internal/config"
	models "folio/internal/domain/models/portfolio"
	portfolioSvc "folio/internal/domain/services/portfolio"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validateCreateRequest validates a create portfolio request
func (s *lifecycleService) validateCreateRequest(req *portfolioSvc.CreatePortfolioRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.By(validateTitle),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Template, validation.By(s.validateTemplate)),
		validation.Field(&req.Sections,
			validation.Length(0, config.MaxSections),
			validation.By(s.validateSections),
		),
	)
}

// validateUpdateRequest validates a partial update; only present fields are checked
func (s *lifecycleService) validateUpdateRequest(req *portfolioSvc.UpdatePortfolioRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.By(validateTitle),
		),
		validation.Field(&req.Template,
			validation.NilOrNotEmpty,
			validation.By(s.validateTemplate),
		),
		validation.Field(&req.Sections, validation.By(s.validateSections)),
	)
	if err != nil {
		return err
	}

	if req.Description.Present && req.Description.Value != nil {
		if err := validation.Validate(*req.Description.Value,
			validation.Length(0, config.MaxDescriptionLength),
		); err != nil {
			return validation.Errors{"description": err}
		}
	}
	return nil
}

// validateInviteRequest validates a collaborator invitation
func (s *lifecycleService) validateInviteRequest(req *portfolioSvc.InviteCollaboratorRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(models.RoleViewer, models.RoleEditor, models.RoleAdmin),
		),
	)
}

// validateTitle checks a title (string or *string) after trimming
func validateTitle(value interface{}) error {
	var title string
	switch v := value.(type) {
	case string:
		title = v
	case *string:
		if v == nil {
			return nil
		}
		title = *v
	default:
		return fmt.Errorf("title must be a string")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len([]rune(title)) > config.MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", config.MaxTitleLength)
	}
	return nil
}

// validateTemplate checks that a template (string or *string) is registered
func (s *lifecycleService) validateTemplate(value interface{}) error {
	var id string
	switch v := value.(type) {
	case string:
		id = v
	case *string:
		if v == nil {
			return nil
		}
		id = *v
	default:
		return fmt.Errorf("template must be a string")
	}

	if id == "" {
		return nil
	}
	if _, err := s.templates.GetTemplate(id); err != nil {
		return err
	}
	return nil
}

// validateSections checks the section list ([]Section or *[]Section)
func (s *lifecycleService) validateSections(value interface{}) error {
	var sections []models.Section
	switch v := value.(type) {
	case []models.Section:
		sections = v
	case *[]models.Section:
		if v == nil {
			return nil
		}
		sections = *v
	default:
		return fmt.Errorf("sections must be a list")
	}

	if len(sections) > config.MaxSections {
		return fmt.Errorf("at most %d sections are allowed", config.MaxSections)
	}

	seen := make(map[string]struct{}, len(sections))
	types := make(map[string]int, len(sections))
	for i, section := range sections {
		if !s.templates.HasSectionType(section.Type) {
			return fmt.Errorf("section %d: unknown type %q", i, section.Type)
		}
		types[section.Type]++
		if types[section.Type] > 1 && !s.templates.IsRepeatable(section.Type) {
			return fmt.Errorf("section %d: type %q may appear only once", i, section.Type)
		}
		if len([]rune(section.Title)) > config.MaxSectionTitleLength {
			return fmt.Errorf("section %d: title must be at most %d characters", i, config.MaxSectionTitleLength)
		}
		if section.ID == "" {
			continue
		}
		if _, dup := seen[section.ID]; dup {
			return fmt.Errorf("section %d: duplicate id %s", i, section.ID)
		}
		seen[section.ID] = struct{}{}
	}
	return nil
}
