package render

// Synonyms maps a canonical field key to the other keys older templates use
// for the same value. The canonical key is always tried first.
type Synonyms map[string][]string

var DefaultSynonyms = Synonyms{
	"celebrantName":   {"name", "birthdayPersonName"},
	"brideName":       {"bride", "partnerOneName"},
	"groomName":       {"groom", "partnerTwoName"},
	"title":           {"heading", "headline"},
	"subtitle":        {"tagline", "subheading"},
	"backgroundImage": {"image", "coverImage", "heroImage"},
	"eventDate":       {"date", "weddingDate", "birthdayDate"},
	"eventTime":       {"time", "startTime"},
	"venueName":       {"venue", "locationName"},
	"venueAddress":    {"address", "location"},
	"mapUrl":          {"mapsUrl", "googleMapsUrl"},
	"images":          {"photos", "gallery"},
	"content":         {"story", "text", "body"},
	"items":           {"events", "questions", "gifts"},
	"email":           {"contactEmail"},
	"phone":           {"contactPhone"},
	"message":         {"closingMessage", "footerText"},
	"videoUrl":        {"url", "youtubeUrl"},
	"musicUrl":        {"audioUrl", "songUrl"},
}

func (s Synonyms) keys(key string) []string {
	return append([]string{key}, s[key]...)
}
