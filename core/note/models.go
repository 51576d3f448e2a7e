package note

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/somo/core"
)

type (
	// Note is a top-level collection of titled links.
	Note struct {
		ID        string     `json:"id"`
		Title     string     `json:"title"`
		Links     []NoteLink `json:"links"` // ordered
		CreatedAt time.Time  `json:"created_at"` // UTC
		UpdatedAt time.Time  `json:"updated_at"` // UTC
	}

	NoteLink struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
		Icon  string `json:"icon,omitempty"`
	}

	// Resource is a top-level link collection with a user-controlled sort order.
	Resource struct {
		ID          string         `json:"id"`
		Description string         `json:"description"`
		Order       int            `json:"order"` // dense 1..N among siblings
		Links       []ResourceLink `json:"links"`
		CreatedAt   time.Time      `json:"created_at"` // UTC
	}

	ResourceLink struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Icon        string `json:"icon,omitempty"`
	}
)

func (n Note) FindLink(linkID string) int {
	for i, l := range n.Links {
		if l.ID == linkID {
			return i
		}
	}
	return -1
}

func (r Resource) FindLink(linkID string) int {
	for i, l := range r.Links {
		if l.ID == linkID {
			return i
		}
	}
	return -1
}

// Reorder rewrites Order on every resource to a dense 1..N sequence following
// ids; resources missing from ids keep their relative position at the end.
// The input slice is not mutated.
func Reorder(resources []Resource, ids []string) []Resource {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	out := make([]Resource, len(resources))
	copy(out, resources)

	// stable partition: ranked first (in ids order), the rest after
	ranked := make([]Resource, 0, len(out))
	rest := make([]Resource, 0)
	for _, r := range out {
		if _, ok := rank[r.ID]; ok {
			ranked = append(ranked, r)
		} else {
			rest = append(rest, r)
		}
	}
	for i := range ranked {
		for j := i + 1; j < len(ranked); j++ {
			if rank[ranked[j].ID] < rank[ranked[i].ID] {
				ranked[i], ranked[j] = ranked[j], ranked[i]
			}
		}
	}

	out = append(ranked, rest...)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}

// Request payloads

type NewNote struct {
	Title string `json:"title" validate:"required"`
}

func (nn *NewNote) Validate(validate *validator.Validate) error {
	nn.Title = core.CleanString(nn.Title)
	return validate.Struct(nn)
}

func (nn NewNote) Note(now time.Time) Note {
	return Note{ID: uuid.NewString(), Title: nn.Title, Links: []NoteLink{}, CreatedAt: now, UpdatedAt: now}
}

type UpdateNote struct {
	Title string `json:"title" validate:"required"`
}

func (un *UpdateNote) Validate(validate *validator.Validate) error {
	un.Title = core.CleanString(un.Title)
	return validate.Struct(un)
}

func (un UpdateNote) Apply(orig Note, now time.Time) Note {
	orig.Title = un.Title
	orig.UpdatedAt = now
	return orig
}

type NewNoteLink struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,httpurl"`
	Icon  string `json:"icon"`
}

func (nl *NewNoteLink) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

func (nl NewNoteLink) Link() NoteLink {
	return NoteLink{ID: uuid.NewString(), Title: nl.Title, URL: nl.URL, Icon: nl.Icon}
}

type NewResource struct {
	Description string `json:"description" validate:"required"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

// Resource assigns the next dense order position among existing siblings.
func (nr NewResource) Resource(now time.Time, siblings int) Resource {
	return Resource{
		ID:          uuid.NewString(),
		Description: nr.Description,
		Order:       siblings + 1,
		Links:       []ResourceLink{},
		CreatedAt:   now,
	}
}

type UpdateResource struct {
	Description string `json:"description" validate:"required"`
}

func (ur *UpdateResource) Validate(validate *validator.Validate) error {
	ur.Description = core.CleanString(ur.Description)
	return validate.Struct(ur)
}

func (ur UpdateResource) Apply(orig Resource) Resource {
	orig.Description = ur.Description
	return orig
}

type NewResourceLink struct {
	Description string `json:"description" validate:"required"`
	URL         string `json:"url" validate:"required,httpurl"`
	Icon        string `json:"icon"`
}

func (nl *NewResourceLink) Validate(validate *validator.Validate) error {
	nl.Description = core.CleanString(nl.Description)
	return validate.Struct(nl)
}

func (nl NewResourceLink) Link() ResourceLink {
	return ResourceLink{ID: uuid.NewString(), Description: nl.Description, URL: nl.URL, Icon: nl.Icon}
}

type ReorderResources struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (rr ReorderResources) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
