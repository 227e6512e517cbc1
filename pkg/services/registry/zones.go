package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

const maxZones = 9

// ZoneDefinition describes one candidate zone category.
type ZoneDefinition struct {
	Name       string
	Table      string
	DateColumn string
	Label      string
}

func (z ZoneDefinition) spec() domain.CategorySpec {
	return domain.CategorySpec{
		Name:    z.Name,
		Title:   z.Label,
		Table:   z.Table,
		Date:    domain.Column(z.DateColumn),
		Shape:   domain.ShapeTally,
		Dynamic: true,
	}
}

// DefaultZones returns zone_1 to zone_9, each backed by a table of the same name.
func DefaultZones() []ZoneDefinition {
	zones := make([]ZoneDefinition, 0, maxZones)
	for i := 1; i <= maxZones; i++ {
		zones = append(zones, ZoneDefinition{
			Name:       "zone_" + strconv.Itoa(i),
			Table:      "zone_" + strconv.Itoa(i),
			DateColumn: "time_of_fix",
			Label:      "Zone " + strconv.Itoa(i),
		})
	}
	return zones
}

// LoadZones reads zone definitions from an INI file, one section per zone:
//
//	[zone_1]
//	table = zone_1
//	date_column = time_of_fix
//	label = North shelf
//
// Missing keys default to the section name, time_of_fix and "Zone N".
func LoadZones(path string) ([]ZoneDefinition, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load zones file: %w", err)
	}

	var zones []ZoneDefinition
	for _, section := range cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}

		name := section.Name()
		zone := ZoneDefinition{
			Name:       name,
			Table:      section.Key("table").MustString(name),
			DateColumn: section.Key("date_column").MustString("time_of_fix"),
			Label:      section.Key("label").MustString(defaultLabel(name)),
		}
		if err := zone.spec().Validate(); err != nil {
			return nil, fmt.Errorf("zone %s: %w", name, err)
		}
		zones = append(zones, zone)
	}

	if len(zones) > maxZones {
		return nil, fmt.Errorf("at most %d zones can be configured, got %d", maxZones, len(zones))
	}
	return zones, nil
}

func defaultLabel(name string) string {
	if n, ok := strings.CutPrefix(name, "zone_"); ok {
		return "Zone " + n
	}
	return name
}
