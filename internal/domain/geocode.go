package domain

// NewLookupEntry converts a geocoding result into a lookup table row.
// A result that was not found yields an unresolved entry.
func NewLookupEntry(location string, result GeocodingResult) LookupEntry {
	if !result.Found {
		return UnresolvedEntry(location)
	}
	name := result.DisplayName
	if name == "" {
		name = location
	}
	return LookupEntry{
		Location:    location,
		Latitude:    formatCoordinate(result.Lat),
		Longitude:   formatCoordinate(result.Lon),
		DisplayName: name,
	}
}

// UnresolvedEntry records a location that was looked up without success.
// Coordinates and display name are left blank so the row can be filled in by hand.
func UnresolvedEntry(location string) LookupEntry {
	return LookupEntry{Location: location}
}
