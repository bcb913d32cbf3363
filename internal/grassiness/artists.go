package grassiness

import (
	"strings"
)

// Weight of each tier's artists.
const (
	WeightFounding  = 3
	WeightCanonical = 2
	WeightModern    = 1
)

// TagWeight applies to community tag evidence, stored under keys with the
// "tag:" prefix.
const (
	TagWeight = WeightModern
	TagPrefix = "tag:"
)

type artist struct {
	id      string
	weight  int
	aliases []string
}

var artists = []artist{
	{"bill-monroe", WeightFounding, []string{"monroe", "bill monroe and his bluegrass boys", "bill monroe and the bluegrass boys"}},
	{"flatt-scruggs", WeightFounding, []string{"flatt and scruggs", "lester flatt and earl scruggs", "flatt scruggs", "foggy mountain boys", "flatt and scruggs and the foggy mountain boys"}},
	{"stanley-brothers", WeightFounding, []string{"stanley brothers", "stanley brothers and the clinch mountain boys"}},

	{"del-mccoury", WeightCanonical, []string{"del mccoury", "del mccoury band"}},
	{"ralph-stanley", WeightCanonical, []string{"ralph stanley", "ralph stanley and the clinch mountain boys", "dr ralph stanley"}},
	{"jim-and-jesse", WeightCanonical, []string{"jim and jesse", "jim and jesse and the virginia boys"}},
	{"osborne-brothers", WeightCanonical, []string{"osborne brothers"}},
	{"reno-and-smiley", WeightCanonical, []string{"reno and smiley", "don reno and red smiley"}},
	{"country-gentlemen", WeightCanonical, []string{"country gentlemen"}},
	{"seldom-scene", WeightCanonical, []string{"seldom scene"}},
	{"jimmy-martin", WeightCanonical, []string{"jimmy martin", "jimmy martin and the sunny mountain boys"}},
	{"mac-wiseman", WeightCanonical, []string{"mac wiseman"}},
	{"doyle-lawson", WeightCanonical, []string{"doyle lawson", "doyle lawson and quicksilver"}},
	{"jd-crowe", WeightCanonical, []string{"jd crowe", "j d crowe", "jd crowe and the new south"}},

	{"alison-krauss", WeightModern, []string{"alison krauss", "alison krauss and union station"}},
	{"tony-rice", WeightModern, []string{"tony rice", "tony rice unit"}},
	{"ricky-skaggs", WeightModern, []string{"ricky skaggs", "ricky skaggs and kentucky thunder"}},
	{"hot-rize", WeightModern, []string{"hot rize"}},
	{"iiird-tyme-out", WeightModern, []string{"iiird tyme out", "third tyme out"}},
	{"lonesome-river-band", WeightModern, []string{"lonesome river band"}},
	{"blue-highway", WeightModern, []string{"blue highway"}},
	{"rhonda-vincent", WeightModern, []string{"rhonda vincent", "rhonda vincent and the rage"}},
	{"nickel-creek", WeightModern, []string{"nickel creek"}},
	{"punch-brothers", WeightModern, []string{"punch brothers"}},
	{"infamous-stringdusters", WeightModern, []string{"infamous stringdusters"}},
	{"billy-strings", WeightModern, []string{"billy strings"}},
	{"molly-tuttle", WeightModern, []string{"molly tuttle", "molly tuttle and golden highway"}},
	{"sierra-hull", WeightModern, []string{"sierra hull"}},
}

var (
	weightByID = map[string]int{}
	idByAlias  = map[string]string{}
)

func init() {
	for _, a := range artists {
		weightByID[a.id] = a.weight
		idByAlias[foldName(strings.ReplaceAll(a.id, "-", " "))] = a.id
		for _, alias := range a.aliases {
			idByAlias[foldName(alias)] = a.id
		}
	}
}

// ArtistID maps a display name or alias onto the artist table's id. Unknown
// artists get their folded name back with ok false.
func ArtistID(name string) (string, bool) {
	if strings.HasPrefix(name, TagPrefix) {
		return name, false
	}
	folded := foldName(name)
	if id, ok := idByAlias[folded]; ok {
		return id, true
	}
	if _, ok := weightByID[name]; ok {
		return name, true
	}
	return strings.ReplaceAll(folded, " ", "-"), false
}

// Weight is the tier weight for an evidence key: artists by tier, tags at
// TagWeight, anything else 0.
func Weight(key string) int {
	if strings.HasPrefix(key, TagPrefix) {
		return TagWeight
	}
	id, ok := ArtistID(key)
	if !ok {
		return 0
	}
	return weightByID[id]
}

func foldName(name string) string {
	s := strings.ReplaceAll(strings.ToLower(stripAccents(name)), "&", " and ")
	s = removePunct(s)
	s = strings.TrimPrefix(s, "the ")
	s = strings.ReplaceAll(s, " and the ", " and ")
	return s
}
