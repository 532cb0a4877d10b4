package venues

import (
	"strings"

	"github.com/suddernpy/resq/internal/models"
)

// The campus venue table is static, read-only data compiled into the
// binary. Codes are the short names the submission form and the Telegram
// bridge use; aliases cover the longer faculty names seen in older posts.
var campusVenues = []models.Venue{
	{Code: "S16", Name: "Science (S16)", Latitude: 1.2966, Longitude: 103.7803, Aliases: []string{"Science"}},
	{Code: "Utown", Name: "University Town", Latitude: 1.3036, Longitude: 103.7735, Aliases: []string{"University Town", "UTown"}},
	{Code: "Com1", Name: "Computing (COM1)", Latitude: 1.2949, Longitude: 103.7739, Aliases: []string{"Computing", "COM1"}},
	{Code: "Engineering", Name: "Faculty of Engineering", Latitude: 1.2995, Longitude: 103.7710, Aliases: []string{"Engin"}},
	{Code: "Arts", Name: "Faculty of Arts and Social Sciences", Latitude: 1.2945, Longitude: 103.7717, Aliases: []string{"FASS"}},
	{Code: "Business", Name: "NUS Business School", Latitude: 1.2925, Longitude: 103.7745, Aliases: []string{"Biz"}},
	{Code: "Law", Name: "Faculty of Law", Latitude: 1.3188, Longitude: 103.8174},
	{Code: "Medicine", Name: "Yong Loo Lin School of Medicine", Latitude: 1.2953, Longitude: 103.7815, Aliases: []string{"Med"}},
	{Code: "SDE", Name: "School of Design and Environment", Latitude: 1.2977, Longitude: 103.7705, Aliases: []string{"Design and Environment"}},
	{Code: "YIH", Name: "Yusof Ishak House", Latitude: 1.2987, Longitude: 103.7745, Aliases: []string{"Yusof Ishak House"}},
}

// Directory is an immutable lookup table from location code to venue.
// Resolution is case-insensitive over both codes and aliases. A missing
// code is a recoverable miss, not an error.
type Directory struct {
	byKey  map[string]*models.Venue
	venues []models.Venue
}

// NewDirectory builds a directory over the static campus venue table.
func NewDirectory() *Directory {
	return NewDirectoryFrom(campusVenues)
}

// NewDirectoryFrom builds a directory over an explicit venue table.
func NewDirectoryFrom(venues []models.Venue) *Directory {
	d := &Directory{
		byKey:  make(map[string]*models.Venue, len(venues)*2),
		venues: venues,
	}
	for i := range d.venues {
		v := &d.venues[i]
		d.byKey[strings.ToLower(v.Code)] = v
		for _, alias := range v.Aliases {
			d.byKey[strings.ToLower(alias)] = v
		}
	}
	return d
}

// Resolve looks up a location code or alias. ok is false when the code is
// unknown; callers degrade the listing to list-view-only in that case.
func (d *Directory) Resolve(code string) (models.Venue, bool) {
	v, ok := d.byKey[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return models.Venue{}, false
	}
	return *v, true
}

// All returns every venue in table order.
func (d *Directory) All() []models.Venue {
	out := make([]models.Venue, len(d.venues))
	copy(out, d.venues)
	return out
}
