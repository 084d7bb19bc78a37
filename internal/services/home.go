package services

import (
	"context"
	"errors"
	"strings"

	"lifeadmin/internal/core"
)

// Room item lists.
const (
	ListEssentials = "essentials"
	ListExtras     = "extras"
)

var ErrInvalidList = errors.New("list must be essentials or extras")

// RoomItemInput is a new furnishing entry.
type RoomItemInput struct {
	Name      string        `json:"name"`
	Planned   bool          `json:"planned"`
	NextToBuy bool          `json:"nextToBuy"`
	Priority  core.Priority `json:"priority"`
	Cost      float64       `json:"cost"`
	Notes     string        `json:"notes"`
}

func (in RoomItemInput) item() core.RoomItem {
	if in.Priority == "" {
		in.Priority = core.PriorityNormal
	}
	return core.RoomItem{
		Name:      strings.TrimSpace(in.Name),
		Planned:   in.Planned,
		NextToBuy: in.NextToBuy,
		Priority:  in.Priority,
		Cost:      in.Cost,
		Notes:     strings.TrimSpace(in.Notes),
	}
}

func (in RoomItemInput) Validate() error { return invalid("roomItem", in.item().Validate()) }

// RoomItemPatch changes selected fields of a room item; nil fields are kept.
type RoomItemPatch struct {
	Name      *string        `json:"name"`
	Planned   *bool          `json:"planned"`
	Owned     *bool          `json:"owned"`
	NextToBuy *bool          `json:"nextToBuy"`
	Cost      *float64       `json:"cost"`
	Notes     *string        `json:"notes"`
	Priority  *core.Priority `json:"priority"`
}

func (p RoomItemPatch) apply(it *core.RoomItem) {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Planned != nil {
		it.Planned = *p.Planned
	}
	if p.Owned != nil {
		it.Owned = *p.Owned
	}
	if p.NextToBuy != nil {
		it.NextToBuy = *p.NextToBuy
	}
	if p.Cost != nil {
		it.Cost = *p.Cost
	}
	if p.Notes != nil {
		it.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
}

// Validate checks the patched fields in isolation.
func (p RoomItemPatch) Validate() error {
	probe := core.RoomItem{Name: "x", Priority: core.PriorityNormal}
	p.apply(&probe)
	return invalid("roomItem", probe.Validate())
}

func roomList(r *core.HomeRoom, list string) (*[]core.RoomItem, error) {
	switch list {
	case ListEssentials:
		return &r.Essentials, nil
	case ListExtras:
		return &r.Extras, nil
	}
	return nil, invalid("list", ErrInvalidList)
}

func (s *Service) AddRoomItem(ctx context.Context, room, list string, in RoomItemInput) (core.RoomItem, error) {
	if err := in.Validate(); err != nil {
		return core.RoomItem{}, err
	}
	if list != ListEssentials && list != ListExtras {
		return core.RoomItem{}, invalid("list", ErrInvalidList)
	}
	it := in.item()
	it.ID = s.m.NewID()
	it.CreatedAtISO = s.nowISO()
	it.UpdatedAtISO = it.CreatedAtISO
	_, err := s.update(ctx, "home.add", func(st *core.Store) error {
		r, ok := st.Home.Rooms[room]
		if !ok {
			return notFound("room", room)
		}
		items, _ := roomList(&r, list)
		*items = append(*items, it)
		st.Home.Rooms[room] = r
		return nil
	})
	return it, err
}

// findRoomItem searches both lists of a room.
func findRoomItem(r *core.HomeRoom, id string) (*[]core.RoomItem, int) {
	for _, items := range []*[]core.RoomItem{&r.Essentials, &r.Extras} {
		for i := range *items {
			if (*items)[i].ID == id {
				return items, i
			}
		}
	}
	return nil, -1
}

// SetRoomItem patches a room item. Becoming owned logs an owned win and
// becoming planned logs a plan win.
func (s *Service) SetRoomItem(ctx context.Context, room, id string, patch RoomItemPatch) (core.RoomItem, error) {
	if err := patch.Validate(); err != nil {
		return core.RoomItem{}, err
	}
	var out core.RoomItem
	_, err := s.update(ctx, "home.set", func(st *core.Store) error {
		r, ok := st.Home.Rooms[room]
		if !ok {
			return notFound("room", room)
		}
		items, i := findRoomItem(&r, id)
		if i < 0 {
			return notFound("room item", id)
		}
		it := &(*items)[i]
		wasPlanned, wasOwned := it.Planned, it.Owned
		patch.apply(it)
		it.UpdatedAtISO = s.nowISO()
		meta := map[string]any{"room": room, "itemId": it.ID}
		if it.Owned && !wasOwned {
			s.appendWin(st, core.WinOwned, "Owned: "+it.Name, 1, meta)
		}
		if it.Planned && !wasPlanned {
			s.appendWin(st, core.WinPlan, "Planned: "+it.Name, 1, meta)
		}
		out = *it
		st.Home.Rooms[room] = r
		return nil
	})
	return out, err
}

func (s *Service) DeleteRoomItem(ctx context.Context, room, id string) error {
	_, err := s.update(ctx, "home.delete", func(st *core.Store) error {
		r, ok := st.Home.Rooms[room]
		if !ok {
			return notFound("room", room)
		}
		items, i := findRoomItem(&r, id)
		if i < 0 {
			return notFound("room item", id)
		}
		*items = append((*items)[:i], (*items)[i+1:]...)
		st.Home.Rooms[room] = r
		return nil
	})
	return err
}

// SetRoomNotes replaces a room's free-text notes.
func (s *Service) SetRoomNotes(ctx context.Context, room, notes string) error {
	_, err := s.update(ctx, "home.notes", func(st *core.Store) error {
		r, ok := st.Home.Rooms[room]
		if !ok {
			return notFound("room", room)
		}
		r.Notes = strings.TrimSpace(notes)
		st.Home.Rooms[room] = r
		return nil
	})
	return err
}
