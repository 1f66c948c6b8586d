// Package geodb reads city and ISP records from MaxMind DB files.
package geodb

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/oschwald/maxminddb-golang"

	"regionalgeo/internal/model"
)

// ErrMissing is returned when a database file does not exist. Callers treat it
// as a configuration fault rather than a lookup outcome.
var ErrMissing = errors.New("geo database missing")

// Handle is an open database. Lookups return a nil record and no error when
// the address is not present.
type Handle interface {
	City(ip net.IP) (*model.GeoRecord, error)
	ISP(ip net.IP) (string, error)
	Close() error
}

// Opener hands out database handles by path.
type Opener interface {
	Open(path string) (Handle, error)
}

type cityRecord struct {
	Continent struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"continent"`
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Postal struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"postal"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// ispRecord covers both GeoIP2-ISP and GeoLite2-ASN layouts.
type ispRecord struct {
	ISP          string `maxminddb:"isp"`
	Organization string `maxminddb:"organization"`
	ASOrg        string `maxminddb:"autonomous_system_organization"`
}

type DB struct {
	path   string
	reader *maxminddb.Reader
}

// Exists checks that path is present on disk.
func Exists(path string) error {
	_, err := stat(path)
	return err
}

func stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("checking geo database %s: %w", path, err)
	}
	return info, nil
}

func Open(path string) (*DB, error) {
	if err := Exists(path); err != nil {
		return nil, err
	}

	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geo database %s: %w", path, err)
	}

	return &DB{path: path, reader: reader}, nil
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) City(ip net.IP) (*model.GeoRecord, error) {
	var record cityRecord
	_, ok, err := db.reader.LookupNetwork(ip, &record)
	if err != nil {
		return nil, fmt.Errorf("decoding city record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	return &model.GeoRecord{
		ContinentCode: record.Continent.Code,
		CountryCode:   record.Country.ISOCode,
		PostalCode:    record.Postal.Code,
		City:          record.City.Names["en"],
		Latitude:      record.Location.Latitude,
		Longitude:     record.Location.Longitude,
	}, nil
}

func (db *DB) ISP(ip net.IP) (string, error) {
	var record ispRecord
	_, ok, err := db.reader.LookupNetwork(ip, &record)
	if err != nil {
		return "", fmt.Errorf("decoding isp record: %w", err)
	}
	if !ok {
		return "", nil
	}

	switch {
	case record.ISP != "":
		return record.ISP, nil
	case record.Organization != "":
		return record.Organization, nil
	default:
		return record.ASOrg, nil
	}
}

func (db *DB) Close() error {
	return db.reader.Close()
}
