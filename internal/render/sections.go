package render

import (
	"math"
	"time"

	"eventsite/internal/domains"
)

// builder turns section values into the view model of one section template.
type builder func(v values, in SectionInput, now time.Time) any

// builders is the closed dispatch table: one entry per domains.SectionType.
var builders = map[domains.SectionType]builder{
	domains.SectionHero:         buildHero,
	domains.SectionEventDetails: buildEventDetails,
	domains.SectionCountdown:    buildCountdown,
	domains.SectionGallery:      buildGallery,
	domains.SectionStory:        buildStory,
	domains.SectionVenue:        buildVenue,
	domains.SectionRsvp:         buildRsvp,
	domains.SectionWishes:       buildWishes,
	domains.SectionGiftRegistry: buildGiftRegistry,
	domains.SectionContact:      buildContact,
	domains.SectionFooter:       buildFooter,
	domains.SectionCustom:       buildCustom,
	domains.SectionCouple:       buildCouple,
	domains.SectionTimeline:     buildTimeline,
	domains.SectionDressCode:    buildDressCode,
	domains.SectionFAQ:          buildFAQ,
	domains.SectionVideo:        buildVideo,
	domains.SectionMusic:        buildMusic,
}

type heroView struct {
	Title, Subtitle, Image, Date string
	Names                        []string
}

func buildHero(v values, _ SectionInput, _ time.Time) any {
	view := heroView{
		Title:    v.str("title", "You're Invited"),
		Subtitle: v.str("subtitle", ""),
		Image:    v.str("backgroundImage", ""),
		Date:     formatDate(v, "eventDate"),
	}
	if bride, groom := v.str("brideName", ""), v.str("groomName", ""); bride != "" || groom != "" {
		view.Names = nonEmpty(bride, groom)
	} else if name := v.str("celebrantName", ""); name != "" {
		view.Names = []string{name}
	}
	return view
}

type detailsView struct {
	Title, Date, Time, Venue, Address, Description string
}

func buildEventDetails(v values, _ SectionInput, _ time.Time) any {
	return detailsView{
		Title:       v.str("title", "Event Details"),
		Date:        formatDate(v, "eventDate"),
		Time:        v.str("eventTime", ""),
		Venue:       v.str("venueName", ""),
		Address:     v.str("venueAddress", ""),
		Description: v.str("description", ""),
	}
}

type countdownView struct {
	Title, Target, Done string
	Days, Hours        int
	Passed, Unknown    bool
}

func buildCountdown(v values, _ SectionInput, now time.Time) any {
	view := countdownView{
		Title: v.str("title", "Counting Down"),
		Done:  v.str("completedMessage", "The day is here!"),
	}
	target, ok := v.time("eventDate")
	if !ok {
		view.Unknown = true
		return view
	}
	view.Target = target.Format(time.RFC3339)
	left := target.Sub(now)
	if left <= 0 {
		view.Passed = true
		return view
	}
	hours := int(math.Floor(left.Hours()))
	view.Days = hours / 24
	view.Hours = hours % 24
	return view
}

type galleryView struct {
	Title   string
	Images  []string
	Columns int
}

func buildGallery(v values, in SectionInput, _ time.Time) any {
	cols := 3
	switch in.Device {
	case DeviceMobile:
		cols = 1
	case DeviceTablet:
		cols = 2
	}
	return galleryView{Title: v.str("title", "Gallery"), Images: v.strings("images"), Columns: cols}
}

type textView struct {
	Title, Content, Image string
}

func buildStory(v values, _ SectionInput, _ time.Time) any {
	return textView{Title: v.str("title", "Our Story"), Content: v.str("content", ""), Image: v.str("image", "")}
}

type venueView struct {
	Title, Name, Address, MapURL, Directions string
}

func buildVenue(v values, _ SectionInput, _ time.Time) any {
	return venueView{
		Title:      v.str("title", "Venue"),
		Name:       v.str("venueName", ""),
		Address:    v.str("venueAddress", ""),
		MapURL:     v.str("mapUrl", ""),
		Directions: v.str("directions", ""),
	}
}

type rsvpView struct {
	Title, Description, Deadline, Button string
	Closed                               bool
}

func buildRsvp(v values, in SectionInput, now time.Time) any {
	view := rsvpView{
		Title:       v.str("title", "RSVP"),
		Description: v.str("description", "Please let us know if you can make it."),
		Button:      v.str("buttonText", "Send RSVP"),
	}
	if s := in.Settings; s != nil {
		view.Closed = !s.EnableRsvp || (s.RsvpDeadline != nil && now.After(*s.RsvpDeadline))
		if s.RsvpDeadline != nil {
			view.Deadline = s.RsvpDeadline.Format("January 2, 2006")
		}
	}
	return view
}

type wishesView struct {
	Title, Description string
	Wishes             []domains.Wish
	Closed             bool
}

func buildWishes(v values, in SectionInput, _ time.Time) any {
	view := wishesView{
		Title:       v.str("title", "Wishes"),
		Description: v.str("description", "Leave a message for us."),
		Wishes:      in.Wishes,
	}
	if in.Settings != nil {
		view.Closed = !in.Settings.EnableWishes
	}
	return view
}

type listView struct {
	Title, Description string
	Items              []map[string]string
}

func buildGiftRegistry(v values, _ SectionInput, _ time.Time) any {
	return listView{Title: v.str("title", "Gift Registry"), Description: v.str("description", ""), Items: v.items("items")}
}

type contactView struct {
	Title, Name, Email, Phone string
}

func buildContact(v values, _ SectionInput, _ time.Time) any {
	return contactView{
		Title: v.str("title", "Contact"),
		Name:  v.str("contactName", ""),
		Email: v.str("email", ""),
		Phone: v.str("phone", ""),
	}
}

type footerView struct {
	Message, Hashtag string
}

func buildFooter(v values, _ SectionInput, _ time.Time) any {
	return footerView{Message: v.str("message", "Thank you!"), Hashtag: v.str("hashtag", "")}
}

func buildCustom(v values, _ SectionInput, _ time.Time) any {
	return textView{Title: v.str("title", ""), Content: v.str("content", ""), Image: v.str("image", "")}
}

type coupleView struct {
	Title      string
	BrideName  string
	BrideBio   string
	BridePhoto string
	GroomName  string
	GroomBio   string
	GroomPhoto string
}

func buildCouple(v values, _ SectionInput, _ time.Time) any {
	return coupleView{
		Title:      v.str("title", "The Couple"),
		BrideName:  v.str("brideName", ""),
		BrideBio:   v.str("brideBio", ""),
		BridePhoto: v.str("bridePhoto", ""),
		GroomName:  v.str("groomName", ""),
		GroomBio:   v.str("groomBio", ""),
		GroomPhoto: v.str("groomPhoto", ""),
	}
}

func buildTimeline(v values, _ SectionInput, _ time.Time) any {
	return listView{Title: v.str("title", "Schedule"), Description: v.str("description", ""), Items: v.items("items")}
}

type dressCodeView struct {
	Title, Code, Description string
	Colors                   []string
}

func buildDressCode(v values, _ SectionInput, _ time.Time) any {
	return dressCodeView{
		Title:       v.str("title", "Dress Code"),
		Code:        v.str("dressCode", ""),
		Description: v.str("description", ""),
		Colors:      v.strings("colors"),
	}
}

func buildFAQ(v values, _ SectionInput, _ time.Time) any {
	return listView{Title: v.str("title", "Questions"), Description: v.str("description", ""), Items: v.items("items")}
}

type mediaView struct {
	Title, URL, Caption string
	Autoplay            bool
}

func buildVideo(v values, _ SectionInput, _ time.Time) any {
	return mediaView{Title: v.str("title", ""), URL: v.str("videoUrl", ""), Caption: v.str("caption", "")}
}

func buildMusic(v values, _ SectionInput, _ time.Time) any {
	return mediaView{Title: v.str("title", ""), URL: v.str("musicUrl", ""), Autoplay: v.boolean("autoplay", false)}
}

type genericRow struct {
	Label, Value string
}

type genericView struct {
	Title string
	Rows  []genericRow
}

// buildGeneric lists label/value pairs from the field definitions; it backs
// any type missing from builders.
func buildGeneric(v values, in SectionInput, _ time.Time) any {
	view := genericView{Title: in.Name}
	for _, f := range in.Fields {
		val := v.str(f.Key, "")
		if val == "" {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Key
		}
		view.Rows = append(view.Rows, genericRow{Label: label, Value: val})
	}
	return view
}

func formatDate(v values, key string) string {
	t, ok := v.time(key)
	if !ok {
		return v.str(key, "")
	}
	return t.Format("Monday, January 2, 2006")
}

func nonEmpty(ss ...string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
