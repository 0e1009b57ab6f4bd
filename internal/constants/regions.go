package constants

// Region codes offered on the region dropdown. The tournament runs one
// ladder per region, so both players and teams carry exactly one code.
type Region string

const (
	RegionNA    Region = "NA"
	RegionLATAM Region = "LATAM"
	RegionEU    Region = "EU"
	RegionMENA  Region = "MENA"
	RegionSEA   Region = "SEA"
)

// AllRegions lists the selectable regions in dropdown order.
var AllRegions = []Region{RegionNA, RegionLATAM, RegionEU, RegionMENA, RegionSEA}

func (r Region) String() string { return string(r) }

// IsValid reports whether r is one of the selectable regions.
func (r Region) IsValid() bool {
	for _, known := range AllRegions {
		if r == known {
			return true
		}
	}
	return false
}

// regionEquivalents holds region pairs treated as interchangeable for the
// captain-region check during team registration. EU and MENA share a ladder.
var regionEquivalents = map[Region]Region{
	RegionEU:   RegionMENA,
	RegionMENA: RegionEU,
}

// RegionsMatch reports whether a captain with playerRegion may register a
// team in teamRegion without an explicit mismatch confirmation.
func RegionsMatch(playerRegion, teamRegion Region) bool {
	if playerRegion == teamRegion {
		return true
	}
	return regionEquivalents[playerRegion] == teamRegion
}
