package models

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// AnonymousUser is stored as SubmittedBy when nobody was logged in.
const AnonymousUser = "anonymous"

// Placeholders substituted for empty submission fields.
const (
	PlaceholderRecipeName = "No Title"
	PlaceholderRegion     = "N/A"
)

// MediaKind groups attachments; its value doubles as the storage directory.
type MediaKind string

const (
	MediaImage MediaKind = "images"
	MediaVideo MediaKind = "videos"
	MediaAudio MediaKind = "audios"
)

// MediaKinds lists the kinds in display order.
var MediaKinds = []MediaKind{MediaImage, MediaVideo, MediaAudio}

func ParseMediaKind(s string) (MediaKind, error) {
	switch k := MediaKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MediaImage, MediaVideo, MediaAudio:
		return k, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// Canonical food-type labels.
const (
	FoodBreakfast = "Breakfast"
	FoodLunch     = "Lunch"
	FoodDinner    = "Dinner"
	FoodSnack     = "Snack"
	FoodSweet     = "Sweet"
	FoodPickle    = "Pickle"
	FoodOther     = "Other"
)

var FoodTypes = []string{FoodBreakfast, FoodLunch, FoodDinner, FoodSnack, FoodSweet, FoodPickle, FoodOther}

// Attachment points at stored binary content.
type Attachment struct {
	Kind MediaKind `json:"kind"`
	// Ref is the content-root relative key, "<kind>/<id><ext>".
	Ref          string `json:"ref"`
	ContentType  string `json:"content_type"`
	OriginalName string `json:"original_name,omitempty"`
	Size         int64  `json:"size"`
}

// Attachments keeps the three ordered attachment sequences of a submission.
type Attachments struct {
	Images []Attachment `json:"images"`
	Videos []Attachment `json:"videos"`
	Audios []Attachment `json:"audios"`
}

// Add appends a to the sequence matching a.Kind.
func (a *Attachments) Add(att Attachment) error {
	switch att.Kind {
	case MediaImage:
		a.Images = append(a.Images, att)
	case MediaVideo:
		a.Videos = append(a.Videos, att)
	case MediaAudio:
		a.Audios = append(a.Audios, att)
	default:
		return fmt.Errorf("unknown media kind %q", att.Kind)
	}
	return nil
}

// All returns images, then videos, then audios.
func (a Attachments) All() []Attachment {
	all := make([]Attachment, 0, len(a.Images)+len(a.Videos)+len(a.Audios))
	all = append(all, a.Images...)
	all = append(all, a.Videos...)
	all = append(all, a.Audios...)
	return all
}

// Fields are the free-text parts of a submission.
type Fields struct {
	RecipeName  string `json:"recipe_name"`
	Region      string `json:"region"`
	FoodType    string `json:"food_type"`
	Ingredients string `json:"ingredients"`
	Steps       string `json:"steps"`
}

// WithDefaults returns a copy with surrounding whitespace trimmed and empty
// name, region and food type replaced by placeholders.
func (f Fields) WithDefaults() Fields {
	f.RecipeName = orDefault(f.RecipeName, PlaceholderRecipeName)
	f.Region = orDefault(f.Region, PlaceholderRegion)
	f.FoodType = orDefault(f.FoodType, FoodOther)
	f.Ingredients = strings.TrimSpace(f.Ingredients)
	f.Steps = strings.TrimSpace(f.Steps)
	return f
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Submission is an immutable recipe record.
type Submission struct {
	ID string `json:"id"`
	Fields
	Attachments Attachments `json:"attachments"`
	SubmittedBy string      `json:"submitted_by"`
	CreatedAt   time.Time   `json:"created_at"`
	// Seq is the store-assigned insertion order, used to break CreatedAt ties.
	Seq int64 `json:"seq"`
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (s *Submission) Clone() *Submission {
	c := *s
	c.Attachments = Attachments{
		Images: slices.Clone(s.Attachments.Images),
		Videos: slices.Clone(s.Attachments.Videos),
		Audios: slices.Clone(s.Attachments.Audios),
	}
	return &c
}

// SortNewestFirst orders subs by CreatedAt descending; equal timestamps put
// the later insertion first.
func SortNewestFirst(subs []*Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		}
		return subs[i].Seq > subs[j].Seq
	})
}

// SearchFilter narrows a listing. Empty fields impose no constraint and all
// supplied fields must match.
type SearchFilter struct {
	// Query matches case-insensitively anywhere in name, region, ingredients
	// and steps.
	Query string
	// Region matches case-insensitively as a substring of the region.
	Region string
	// FoodType must equal the canonical label exactly.
	FoodType string
}

func (f SearchFilter) IsEmpty() bool {
	return f.Query == "" && f.Region == "" && f.FoodType == ""
}

func (f SearchFilter) Matches(s *Submission) bool {
	if f.Query != "" {
		haystack := strings.Join([]string{s.RecipeName, s.Region, s.Ingredients, s.Steps}, " ")
		if !containsFold(haystack, f.Query) {
			return false
		}
	}
	if f.Region != "" && !containsFold(s.Region, f.Region) {
		return false
	}
	if f.FoodType != "" && s.FoodType != f.FoodType {
		return false
	}
	return true
}

// Apply returns the matching submissions, preserving order.
func (f SearchFilter) Apply(subs []*Submission) []*Submission {
	out := make([]*Submission, 0, len(subs))
	for _, s := range subs {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
