package extract

import "github.com/siherrmann/eventer/model"

// Locations is the gazetteer used for location detection.
var Locations = []string{
	// states
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh", "Goa", "Gujarat",
	"Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh",
	"Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland", "Odisha", "Orissa", "Punjab",
	"Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand",
	"West Bengal",
	// union territories
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli", "Daman and Diu",
	"Jammu and Kashmir", "Ladakh", "Lakshadweep", "Puducherry", "Delhi",
	// cities
	"Mumbai", "Kolkata", "Chennai", "Bangalore", "Bengaluru", "Hyderabad", "Pune", "Ahmedabad",
	"Jaipur", "Surat", "Lucknow", "Kanpur", "Nagpur", "Indore", "Bhopal", "Patna",
	"Visakhapatnam", "Vadodara", "Ghaziabad", "Ludhiana", "Agra", "Nashik", "Faridabad",
	"Meerut", "Rajkot", "Varanasi", "Guwahati", "Bhubaneswar", "Wayanad",
	// seas
	"Bay of Bengal", "Arabian Sea", "Indian Ocean",
}

// KeywordFamilies maps each disaster family to the words that indicate it.
var KeywordFamilies = map[model.EventType][]string{
	model.EventFlood:      {"flood", "flooding", "inundation", "deluge"},
	model.EventCyclone:    {"cyclone", "hurricane", "typhoon", "storm"},
	model.EventEarthquake: {"earthquake", "tremor", "quake", "seismic"},
	model.EventLandslide:  {"landslide", "mudslide", "slope failure"},
	model.EventDrought:    {"drought", "water crisis", "dry spell"},
}

// DisasterKeywords are generic words counted as event keywords.
var DisasterKeywords = []string{
	"flood", "drought", "cyclone", "earthquake", "landslide", "tsunami", "disaster",
	"emergency", "evacuation", "relief", "storm", "monsoon",
}

// Content validation weights.
var (
	highValueKeywords   = []string{"flood", "cyclone", "earthquake", "landslide", "tsunami", "drought"}
	mediumValueKeywords = []string{"disaster", "emergency", "evacuation", "relief", "casualties", "deaths"}
	lowValueKeywords    = []string{"india", "alert", "warning", "affected"}
	errorPhrases        = []string{"page not found", "blocked", "banned", "not available", "access denied", "404", "403", "error"}
)

// Candidate relevance scoring.
var (
	relevanceKeywords = []string{
		"disaster", "india", "alert", "warning", "emergency", "relief",
		"flood", "cyclone", "earthquake", "deaths", "affected", "evacuated",
	}
	PreferredDomains = []string{
		"ndma.gov.in", "imd.gov.in", "thehindu.com", "indianexpress.com", "timesofindia.com",
		"ndtv.com", "hindustantimes.com", "deccanherald.com", "tribuneindia.com", "thequint.com",
		"scroll.in", "bbc.com", "reuters.com", "apnews.com",
	}
	ExcludedDomains = []string{
		"tiktok.com", "twitter.com", "facebook.com", "instagram.com",
		"youtube.com", "reddit.com", "quora.com", "pinterest.com",
	}
)
