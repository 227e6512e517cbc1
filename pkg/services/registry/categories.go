package registry

import "github.com/de-tools/maritime-atlas/pkg/models/domain"

const (
	EventTypes     = "event_types"
	EventCauses    = "event_causes"
	EventRegions   = "event_regions"
	SarStatistics  = "sar_statistics"
	VesselFlags    = "vessel_flags"
	VesselTypes    = "vessel_types"
	CoastalTraffic = "coastal_traffic"
	PatrolActivity = "patrol_activity"
)

// Source tables counted unfiltered for the report header.
var RecordTables = []string{
	"sar_reports",
	"eez_vessels",
	"fishing_vessels",
	"coastal_traffic",
	"patrol_sorties",
}

// ListingLimit caps the rows printed per listing in an exported report.
const ListingLimit = 500

// Incidents fall back to their creation date when no event date was recorded.
var incidentDate = domain.Coalesce("event_date", "created_at")

func fixedCategories() []domain.CategorySpec {
	return []domain.CategorySpec{
		{
			Name:    EventTypes,
			Title:   "Events by type",
			Table:   "sar_reports",
			Date:    incidentDate,
			Shape:   domain.ShapeCount,
			GroupBy: "event_type_id",
			Lookup:  "event_types",
		},
		{
			Name:    EventCauses,
			Title:   "Events by cause",
			Table:   "sar_reports",
			Date:    incidentDate,
			Shape:   domain.ShapeCount,
			GroupBy: "event_cause_id",
			Lookup:  "event_causes",
		},
		{
			Name:    EventRegions,
			Title:   "Events by region",
			Table:   "sar_reports",
			Date:    incidentDate,
			Shape:   domain.ShapeCount,
			GroupBy: "region_id",
			Lookup:  "regions",
		},
		{
			Name:  SarStatistics,
			Title: "SAR statistics",
			Table: "sar_reports",
			Date:  incidentDate,
			Shape: domain.ShapeTotals,
			Sums: []domain.Measure{
				{Name: "pob", Column: "pob"},
				{Name: "survivors", Column: "survivors"},
				{Name: "injured", Column: "injured"},
				{Name: "dead", Column: "dead"},
				{Name: "missing", Column: "missing"},
				{Name: "medevac", Column: "medevac"},
			},
		},
		{
			Name:    VesselFlags,
			Title:   "Fishing vessels by flag",
			Table:   "fishing_vessels",
			Date:    domain.Column("time_of_fix"),
			Shape:   domain.ShapeCount,
			GroupBy: "flag",
		},
		{
			Name:      VesselTypes,
			Title:     "EEZ vessels by ship type",
			Table:     "eez_vessels",
			Date:      domain.Column("time_of_fix"),
			Shape:     domain.ShapeCount,
			GroupBy:   "ship_type",
			Secondary: "flag",
		},
		{
			Name:     CoastalTraffic,
			Title:    "Coastal traffic by origin",
			Table:    "coastal_traffic",
			Date:     domain.Column("traffic_date"),
			Shape:    domain.ShapeSum,
			GroupBy:  "origin",
			Distinct: &domain.Measure{Name: "vessels", Column: "vessel_name"},
			Sums: []domain.Measure{
				{Name: "crew", Column: "crew"},
				{Name: "passengers", Column: "passengers"},
			},
		},
		{
			Name:     PatrolActivity,
			Title:    "Patrol activity by boat",
			Table:    "patrol_sorties",
			Date:     domain.Column("sortie_date"),
			Shape:    domain.ShapeSum,
			GroupBy:  "patrol_boat",
			Distinct: &domain.Measure{Name: "sorties", Column: "id"},
			Sums: []domain.Measure{
				{Name: "persons_assisted", Column: "persons_assisted"},
			},
		},
	}
}

func fixedListings() []domain.ListingSpec {
	return []domain.ListingSpec{
		{
			Name:  "sar_reports",
			Title: "SAR reports",
			Table: "sar_reports",
			Date:  incidentDate,
			Columns: []domain.ListingColumn{
				{Name: "Report", Column: "id"},
				{Name: "Date", Column: "event_date"},
				{Name: "Type", Column: "event_type_id", Lookup: "event_types"},
				{Name: "Cause", Column: "event_cause_id", Lookup: "event_causes"},
				{Name: "Region", Column: "region_id", Lookup: "regions"},
				{Name: "POB", Column: "pob"},
				{Name: "Survivors", Column: "survivors"},
				{Name: "Dead", Column: "dead"},
				{Name: "Missing", Column: "missing"},
			},
			Limit: ListingLimit,
		},
		{
			Name:  "patrol_sorties",
			Title: "Patrol sorties",
			Table: "patrol_sorties",
			Date:  domain.Column("sortie_date"),
			Columns: []domain.ListingColumn{
				{Name: "Date", Column: "sortie_date"},
				{Name: "Patrol boat", Column: "patrol_boat"},
				{Name: "Persons assisted", Column: "persons_assisted"},
			},
			Limit: ListingLimit,
		},
	}
}
