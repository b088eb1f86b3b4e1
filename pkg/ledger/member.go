package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mess-ledger/backend/pkg/models"
	"golang.org/x/exp/maps"
)

// Members returns all members, optionally only active or inactive ones.
func (s *Service) Members(ctx context.Context, active *bool) ([]models.Member, error) {
	return s.store.Members(ctx, active)
}

// Member returns a single member.
func (s *Service) Member(ctx context.Context, id uuid.UUID) (models.Member, error) {
	return s.store.Member(ctx, id)
}

// CreateMember creates a member. New members are active unless stated otherwise.
func (s *Service) CreateMember(ctx context.Context, in MemberInput) (models.Member, error) {
	if err := validateMember(s.validate, in); err != nil {
		return models.Member{}, err
	}

	member := models.Member{
		MemberEditable: models.MemberEditable{
			Name:   in.Name,
			Active: true,
		},
	}
	if in.Active != nil {
		member.Active = *in.Active
	}

	if err := s.store.CreateMember(ctx, &member); err != nil {
		return models.Member{}, err
	}

	return member, s.flush(ctx)
}

// UpdateMember updates the named fields ("name", "active") of a member.
//
// A named field must have a value, "active" cannot be set to null.
func (s *Service) UpdateMember(ctx context.Context, id uuid.UUID, in MemberInput, fields []string) (models.Member, error) {
	member, err := s.store.Member(ctx, id)
	if err != nil {
		return models.Member{}, err
	}

	problems := map[string]string{}
	merged := MemberInput{Name: member.Name, Active: &member.Active}
	var columns []string
	for _, field := range fields {
		switch field {
		case "name":
			merged.Name = in.Name
			columns = append(columns, "Name")
		case "active":
			if in.Active == nil {
				problems["active"] = "active must be true or false"
				continue
			}
			merged.Active = in.Active
			columns = append(columns, "Active")
		}
	}

	if err := validateMember(s.validate, merged); err != nil {
		var v ValidationError
		if !errors.As(err, &v) {
			return models.Member{}, err
		}
		maps.Copy(problems, v.Fields)
	}

	if len(problems) > 0 {
		return models.Member{}, ValidationError{Fields: problems}
	}

	member.Name = merged.Name
	member.Active = *merged.Active

	if err := s.store.UpdateMember(ctx, &member, columns); err != nil {
		return models.Member{}, err
	}

	return member, s.flush(ctx)
}

// DeleteMember deletes a member and all of their records.
func (s *Service) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return err
	}

	return s.flush(ctx)
}
