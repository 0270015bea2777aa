package ranges

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTable reads a curated range-alias table from a JSON file of the shape
// {"<category-id>": ["alias", ...], ...}. Pass the result to NewClassifier.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read range table %s: %w", path, err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse range table %s: %w", path, err)
	}
	return table, nil
}

// DefaultTable is the built-in curation used when no external table is
// configured. Category ids match the seeded catalog.
func DefaultTable() Table {
	return Table{
		"99eced10-38a5-4db7-8982-efde5d58d230": {"square", "floor", "number_of_storeys_of_the_house"},
		"5d571c38-809d-42a6-abd9-23059319a9f3": {"year_of_issue", "power"},
		"3dc809f6-9b99-4fbb-a346-7adb59465b6c": {"square", "floor", "number_of_storeys_of_the_house", "year_built"},
		"96bd69ad-d26e-41cd-a82d-a3a5270eef5b": {"year_of_issue", "engine_capacity", "weight", "carrying_capacity", "power"},
		"7ad07e41-f865-4056-9f7c-c21fe0b09a59": {"year_of_issue", "engine_capacity"},
		"17c9c8f8-e0c2-411c-83bb-846a73b7513f": {"year_built", "square", "floor", "floors_in_the_building"},
		"d4fb6083-3112-4c8d-a372-1d323f4d19f3": {"year_of_issue", "mileage", "engine_capacity"},
		"e724cf13-6cc0-49e2-b8df-de2872bfc6c4": {"year_of_issue", "mileage", "volume", "power"},
		"1528d74d-3222-47c0-93a7-523f1a08b89e": {"house_area", "number_of_storeys", "land_area"},
		"4d7766a1-7b8e-45fe-865f-f5113dba85be": {"house_area", "land_area", "number_of_storeys", "year_built"},
		"5dc44df8-36e8-43db-9334-2c78294e6beb": {"length", "power"},
		"c96434fc-d694-41ca-9ff1-45ce3e2c3f0b": {"square", "year_built", "floor", "number_of_storeys_of_the_house"},
		"506447eb-fcb6-4352-bf52-347ea4fb8f1a": {"square"},
		"5f87e0e7-0118-4e1a-97d2-e8989cea284c": {"year_of_issue", "mileage", "carrying_capacity", "full_mass"},
		"c520f00b-e7ad-4a3f-8b19-66139496dae1": {"square", "distance_to_city"},
		"2ef8bb1c-e994-4cf0-bbac-e5c58175502e": {"year_of_issue", "mileage", "enginesize", "power", "owners_by_tcp"},
		"77b0ee7f-b47b-4aa3-b4b9-3b3168bde37d": {"year_of_issue", "mileage", "engine_capacity", "number_of_seats"},
		"9b9ddbc5-432c-433f-aa55-57aa9902b44d": {"year_of_issue", "mileage", "engine_capacity", "body_volume"},
		"95c6bf0b-6749-4437-b852-a753a899c705": {"year_of_issue", "weight", "power"},
	}
}
