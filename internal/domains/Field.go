package domains

import (
	"reflect"
	"strings"
)

type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionEventDetails SectionType = "event_details"
	SectionCountdown    SectionType = "countdown"
	SectionGallery      SectionType = "gallery"
	SectionStory        SectionType = "story"
	SectionVenue        SectionType = "venue"
	SectionRsvp         SectionType = "rsvp"
	SectionWishes       SectionType = "wishes"
	SectionGiftRegistry SectionType = "gift_registry"
	SectionContact      SectionType = "contact"
	SectionFooter       SectionType = "footer"
	SectionCustom       SectionType = "custom"
	SectionCouple       SectionType = "couple"
	SectionTimeline     SectionType = "timeline"
	SectionDressCode    SectionType = "dress_code"
	SectionFAQ          SectionType = "faq"
	SectionVideo        SectionType = "video"
	SectionMusic        SectionType = "music"
)

var sectionTypes = map[SectionType]struct{}{
	SectionHero: {}, SectionEventDetails: {}, SectionCountdown: {}, SectionGallery: {},
	SectionStory: {}, SectionVenue: {}, SectionRsvp: {}, SectionWishes: {},
	SectionGiftRegistry: {}, SectionContact: {}, SectionFooter: {}, SectionCustom: {},
	SectionCouple: {}, SectionTimeline: {}, SectionDressCode: {}, SectionFAQ: {},
	SectionVideo: {}, SectionMusic: {},
}

func (t SectionType) Valid() bool {
	_, ok := sectionTypes[t]
	return ok
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldRichText FieldType = "richtext"
	FieldImage    FieldType = "image"
	FieldGallery  FieldType = "gallery"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldDateTime FieldType = "datetime"
	FieldURL      FieldType = "url"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldColor    FieldType = "color"
	FieldSelect   FieldType = "select"
	FieldToggle   FieldType = "toggle"
	FieldRepeater FieldType = "repeater"
	FieldLocation FieldType = "location"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldTextarea, FieldRichText, FieldImage, FieldGallery, FieldDate, FieldTime,
		FieldDateTime, FieldURL, FieldEmail, FieldPhone, FieldNumber, FieldColor, FieldSelect,
		FieldToggle, FieldRepeater, FieldLocation:
		return true
	}
	return false
}

type FieldValidation struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

type FieldOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FieldDefinition describes one editable value of a section. Repeater fields
// carry the shape of each item in Fields.
type FieldDefinition struct {
	Key          string            `json:"key" yaml:"key"`
	Label        string            `json:"label" yaml:"label"`
	Type         FieldType         `json:"type" yaml:"type"`
	Placeholder  string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText     string            `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Validation   *FieldValidation  `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options      []FieldOption     `json:"options,omitempty" yaml:"options,omitempty"`
	Fields       []FieldDefinition `json:"fields,omitempty" yaml:"fields,omitempty"`
	DefaultValue any               `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

func (f FieldDefinition) Required() bool {
	return f.Validation != nil && f.Validation.Required
}

// IsEmptyValue reports whether v counts as "not filled in" for a required
// field: nil, an empty or blank string, or an empty list or object.
func IsEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

type MissingField struct {
	SectionID   string `json:"sectionId"`
	SectionName string `json:"sectionName"`
	FieldKey    string `json:"fieldKey"`
	FieldLabel  string `json:"fieldLabel"`
}

// SectionTypes lists the closed set of section types in declaration order.
func SectionTypes() []SectionType {
	return []SectionType{
		SectionHero, SectionEventDetails, SectionCountdown, SectionGallery, SectionStory,
		SectionVenue, SectionRsvp, SectionWishes, SectionGiftRegistry, SectionContact,
		SectionFooter, SectionCustom, SectionCouple, SectionTimeline, SectionDressCode,
		SectionFAQ, SectionVideo, SectionMusic,
	}
}
