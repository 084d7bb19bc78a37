package services

import (
	"context"
	"strings"

	"lifeadmin/internal/core"
)

// AddSkill adds a not-started skill, creating the category when needed.
func (s *Service) AddSkill(ctx context.Context, category, name string) (core.Skill, error) {
	category = strings.TrimSpace(category)
	sk := core.Skill{Name: strings.TrimSpace(name), Level: core.LevelNotStarted}
	if category == "" {
		return core.Skill{}, invalid("category", core.ErrEmptyName)
	}
	if err := sk.Validate(); err != nil {
		return core.Skill{}, invalid("skill", err)
	}
	sk.ID = s.m.NewID()
	sk.CreatedAtISO = s.nowISO()
	sk.UpdatedAtISO = sk.CreatedAtISO
	_, err := s.update(ctx, "skill.add", func(st *core.Store) error {
		if st.Skills.Categories == nil {
			st.Skills.Categories = map[string]core.SkillCategory{}
		}
		cat, ok := st.Skills.Categories[category]
		if !ok {
			cat = core.SkillCategory{Category: category}
		}
		cat.Items = append(cat.Items, sk)
		st.Skills.Categories[category] = cat
		s.appendWin(st, core.WinSkill, "Added skill: "+sk.Name, 1, map[string]any{"name": sk.Name})
		return nil
	})
	return sk, err
}

func findSkill(cat core.SkillCategory, id string) int {
	for i := range cat.Items {
		if cat.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// SetSkillLevel changes a skill's level. Only a rise logs a skill win, with
// the number of levels gained as its delta.
func (s *Service) SetSkillLevel(ctx context.Context, category, id string, level core.SkillLevel) (core.Skill, error) {
	level = core.SkillLevel(strings.ToLower(string(level)))
	if !level.IsValid() {
		return core.Skill{}, invalid("level", core.ErrInvalidLevel)
	}
	var out core.Skill
	_, err := s.update(ctx, "skill.level", func(st *core.Store) error {
		cat, ok := st.Skills.Categories[category]
		if !ok {
			return notFound("skill category", category)
		}
		i := findSkill(cat, id)
		if i < 0 {
			return notFound("skill", id)
		}
		sk := &cat.Items[i]
		gain := level.Score() - sk.Level.Score()
		sk.Level = level
		sk.UpdatedAtISO = s.nowISO()
		if gain > 0 {
			s.appendWin(st, core.WinSkill, "Improved skill: "+sk.Name+" → "+level.Label(), float64(gain),
				map[string]any{"name": sk.Name, "level": string(level)})
		}
		out = *sk
		st.Skills.Categories[category] = cat
		return nil
	})
	return out, err
}

func (s *Service) DeleteSkill(ctx context.Context, category, id string) error {
	_, err := s.update(ctx, "skill.delete", func(st *core.Store) error {
		cat, ok := st.Skills.Categories[category]
		if !ok {
			return notFound("skill category", category)
		}
		i := findSkill(cat, id)
		if i < 0 {
			return notFound("skill", id)
		}
		cat.Items = append(cat.Items[:i], cat.Items[i+1:]...)
		st.Skills.Categories[category] = cat
		return nil
	})
	return err
}
