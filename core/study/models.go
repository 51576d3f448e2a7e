package study

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/somo/core"
)

// Activity kinds
const (
	ActivityCheckbox = "checkbox"
	ActivityCounter  = "counter"
	ActivityLink     = "link"
)

// ProgressItem kinds
const (
	ProgressCounter  = "counter"
	ProgressTodoList = "todolist"
)

type (
	// Subject is the root of the study tree; it exclusively owns its papers
	// and, through them, every descendant entity.
	Subject struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Color     string    `json:"color,omitempty"`
		Icon      string    `json:"icon,omitempty"`
		Papers    []Paper   `json:"papers"` // ordered
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	Paper struct {
		ID       string    `json:"id"`
		Name     string    `json:"name"`
		Code     string    `json:"code,omitempty"`
		Chapters []Chapter `json:"chapters"` // ordered
	}

	Chapter struct {
		ID            string         `json:"id"`
		Name          string         `json:"name"`
		Activities    []Activity     `json:"activities"`
		ProgressItems []ProgressItem `json:"progress_items"`
		Links         []ChapterLink  `json:"links"`
	}

	// Activity is a checkbox, counter or link item owned by a chapter.
	Activity struct {
		ID          string `json:"id"`
		Kind        string `json:"kind"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Done        bool   `json:"done,omitempty"`   // checkbox
		Count       int    `json:"count,omitempty"`  // counter
		Target      int    `json:"target,omitempty"` // counter
		URL         string `json:"url,omitempty"`    // link
	}

	ProgressItem struct {
		ID      string      `json:"id"`
		Kind    string      `json:"kind"`
		Title   string      `json:"title"`
		Current int         `json:"current,omitempty"` // counter
		Target  int         `json:"target,omitempty"`  // counter
		Todos   []TodoEntry `json:"todos,omitempty"`   // todolist
	}

	TodoEntry struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Done  bool   `json:"done"`
	}

	// ChapterLink is a resource link owned by a chapter.
	ChapterLink struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URL   string `json:"url"`
		Icon  string `json:"icon,omitempty"`
	}
)

// FindPaper returns the paper's index, or -1.
func (s Subject) FindPaper(paperID string) int {
	for i, p := range s.Papers {
		if p.ID == paperID {
			return i
		}
	}
	return -1
}

func (p Paper) FindChapter(chapterID string) int {
	for i, c := range p.Chapters {
		if c.ID == chapterID {
			return i
		}
	}
	return -1
}

func (c Chapter) FindActivity(activityID string) int {
	for i, a := range c.Activities {
		if a.ID == activityID {
			return i
		}
	}
	return -1
}

func (c Chapter) FindProgressItem(itemID string) int {
	for i, p := range c.ProgressItems {
		if p.ID == itemID {
			return i
		}
	}
	return -1
}

func (c Chapter) FindLink(linkID string) int {
	for i, l := range c.Links {
		if l.ID == linkID {
			return i
		}
	}
	return -1
}

// ActivityText flattens the chapter's activity titles and descriptions into
// prompt material for summarization.
func (c Chapter) ActivityText() string {
	var out string
	for _, a := range c.Activities {
		out += "- " + a.Title
		if a.Description != "" {
			out += ": " + a.Description
		}
		out += "\n"
	}
	return out
}

// Request payloads

type NewSubject struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

func (ns NewSubject) Subject(now time.Time) Subject {
	return Subject{
		ID:        uuid.NewString(),
		Name:      ns.Name,
		Color:     ns.Color,
		Icon:      ns.Icon,
		Papers:    []Paper{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UpdateSubject struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	return validate.Struct(us)
}

// Apply returns the full replacement Subject; empty fields keep their
// original values.
func (us UpdateSubject) Apply(orig Subject, now time.Time) Subject {
	if us.Name != "" {
		orig.Name = us.Name
	}
	if us.Color != "" {
		orig.Color = us.Color
	}
	if us.Icon != "" {
		orig.Icon = us.Icon
	}
	orig.UpdatedAt = now
	return orig
}

type NewPaper struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code"`
}

func (np *NewPaper) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Code = core.CleanString(np.Code)
	return validate.Struct(np)
}

func (np NewPaper) Paper() Paper {
	return Paper{ID: uuid.NewString(), Name: np.Name, Code: np.Code, Chapters: []Chapter{}}
}

type UpdatePaper struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (up *UpdatePaper) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Code = core.CleanString(up.Code)
	return validate.Struct(up)
}

func (up UpdatePaper) Apply(orig Paper) Paper {
	if up.Name != "" {
		orig.Name = up.Name
	}
	if up.Code != "" {
		orig.Code = up.Code
	}
	return orig
}

type NewChapter struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewChapter) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

func (nc NewChapter) Chapter() Chapter {
	return Chapter{
		ID:            uuid.NewString(),
		Name:          nc.Name,
		Activities:    []Activity{},
		ProgressItems: []ProgressItem{},
		Links:         []ChapterLink{},
	}
}

type UpdateChapter struct {
	Name string `json:"name" validate:"required"`
}

func (uc *UpdateChapter) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}

func (uc UpdateChapter) Apply(orig Chapter) Chapter {
	orig.Name = uc.Name
	return orig
}

type NewActivity struct {
	Kind        string `json:"kind" validate:"required,oneof=checkbox counter link"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Target      int    `json:"target" validate:"omitempty,gt=0"`
	URL         string `json:"url" validate:"required_if=Kind link,omitempty,httpurl"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	return validate.Struct(na)
}

func (na NewActivity) Activity() Activity {
	return Activity{
		ID:          uuid.NewString(),
		Kind:        na.Kind,
		Title:       na.Title,
		Description: na.Description,
		Target:      na.Target,
		URL:         na.URL,
	}
}

// UpdateActivity carries the full replacement state, including the
// checkbox/counter progress being toggled.
type UpdateActivity struct {
	Kind        string `json:"kind" validate:"required,oneof=checkbox counter link"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	Count       int    `json:"count" validate:"omitempty,gte=0"`
	Target      int    `json:"target" validate:"omitempty,gt=0"`
	URL         string `json:"url" validate:"required_if=Kind link,omitempty,httpurl"`
}

func (ua *UpdateActivity) Validate(validate *validator.Validate) error {
	ua.Title = core.CleanString(ua.Title)
	return validate.Struct(ua)
}

func (ua UpdateActivity) Activity(id string) Activity {
	return Activity{
		ID:          id,
		Kind:        ua.Kind,
		Title:       ua.Title,
		Description: ua.Description,
		Done:        ua.Done,
		Count:       ua.Count,
		Target:      ua.Target,
		URL:         ua.URL,
	}
}

type NewProgressItem struct {
	Kind   string `json:"kind" validate:"required,oneof=counter todolist"`
	Title  string `json:"title" validate:"required"`
	Target int    `json:"target" validate:"required_if=Kind counter,omitempty,gt=0"`
}

func (np *NewProgressItem) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	return validate.Struct(np)
}

func (np NewProgressItem) ProgressItem() ProgressItem {
	item := ProgressItem{ID: uuid.NewString(), Kind: np.Kind, Title: np.Title, Target: np.Target}
	if np.Kind == ProgressTodoList {
		item.Todos = []TodoEntry{}
	}
	return item
}

type UpdateProgressItem struct {
	Kind    string      `json:"kind" validate:"required,oneof=counter todolist"`
	Title   string      `json:"title" validate:"required"`
	Current int         `json:"current" validate:"omitempty,gte=0"`
	Target  int         `json:"target" validate:"required_if=Kind counter,omitempty,gt=0"`
	Todos   []TodoEntry `json:"todos"`
}

func (up *UpdateProgressItem) Validate(validate *validator.Validate) error {
	up.Title = core.CleanString(up.Title)
	return validate.Struct(up)
}

func (up UpdateProgressItem) ProgressItem(id string) ProgressItem {
	item := ProgressItem{ID: id, Kind: up.Kind, Title: up.Title, Current: up.Current, Target: up.Target, Todos: up.Todos}
	if up.Kind == ProgressTodoList && item.Todos == nil {
		item.Todos = []TodoEntry{}
	}
	return item
}

type NewChapterLink struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url" validate:"required,httpurl"`
	Icon  string `json:"icon"`
}

func (nl *NewChapterLink) Validate(validate *validator.Validate) error {
	nl.Title = core.CleanString(nl.Title)
	return validate.Struct(nl)
}

func (nl NewChapterLink) Link() ChapterLink {
	return ChapterLink{ID: uuid.NewString(), Title: nl.Title, URL: nl.URL, Icon: nl.Icon}
}
