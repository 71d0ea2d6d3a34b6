package extract

// Closed vocabularies used by the block parser and the listing heuristic.
// Values are compared lowercased.
var (
	Colors = []string{
		"черен", "бял", "сив", "червен", "син", "зелен", "жълт", "кафяв",
		"оранжев", "златен", "лилав", "розов", "бежов", "бордо", "сребърен",
	}

	FuelTypes = []string{"дизелов", "бензинов", "хибриден", "електрически"}

	GearboxTypes = []string{"автоматична", "ръчна"}

	// Cities is checked in order, so longer names come before their prefixes.
	Cities = []string{
		"софия-град", "софия-област", "стара загора", "велико търново",
		"софия", "пловдив", "варна", "бургас", "плевен", "благоевград",
		"видин", "враца", "габрово", "добрич", "кърджали", "кюстендил",
		"ловеч", "монтана", "пазарджик", "перник", "разград", "русе",
		"силистра", "сливен", "смолян", "търговище", "хасково", "шумен",
		"ямбол",
	}

	// ListingIndicators are the words that make a block of text look like an ad.
	ListingIndicators = []string{
		"лв", "км", "обл",
		"mercedes", "bmw", "audi", "volkswagen", "toyota",
		"diesel", "дизел", "benzin", "бензин",
	}
)

// Unit markers found inside short parameter tokens.
const (
	RegionMarker      = "обл."
	distanceUnit      = "км"
	distanceUnitLatin = "km"
	powerUnit         = "к.с."
	displacementUnit  = "куб"
	doorsUnit         = "врати"
	seatsUnit         = "места"
)

var unitMarkers = []string{distanceUnit, distanceUnitLatin, powerUnit, displacementUnit, doorsUnit, seatsUnit}
