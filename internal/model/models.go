package model

// Request echoes the queried address and its classified version.
type Request struct {
	IP   string `json:"ip"`
	Type string `json:"type"`
}

type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Location holds the city record fields and the joined region metadata.
// Pointer and omitempty fields are left out of the encoded form when absent.
type Location struct {
	ContinentCode  string   `json:"continent_code,omitempty"`
	CountryCode    string   `json:"country_code,omitempty"`
	PostalCode     string   `json:"postal_code,omitempty"`
	CityName       string   `json:"city_name,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	RegionName     string   `json:"region_name,omitempty"`
	RegionCode     string   `json:"region_code,omitempty"`
	RegionTimeZone string   `json:"region_time_zone,omitempty"`
}

type Organization struct {
	ISP string `json:"isp,omitempty"`
}

type Result struct {
	Location     *Location     `json:"location,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

// Envelope is the request/status/result structure produced per resolution.
type Envelope struct {
	Request Request `json:"request"`
	Status  Status  `json:"status"`
	Result  Result  `json:"result"`
}

// GeoRecord is a city database record for a single address. Coordinates
// are nil when the record carries no location.
type GeoRecord struct {
	ContinentCode string
	CountryCode   string
	PostalCode    string
	City          string
	Latitude      *float64
	Longitude     *float64
}

// Region is an organization-specific grouping keyed by country code.
type Region struct {
	CountryCode string `db:"country_code" json:"country_code" mapstructure:"country_code"`
	Name        string `db:"name" json:"name" mapstructure:"name"`
	RegionCode  string `db:"region_code" json:"region_code" mapstructure:"region_code"`
	TimeZone    string `db:"time_zone" json:"time_zone" mapstructure:"time_zone"`
}

type Error struct {
	Message string `json:"message"`
}
