// Package resolver turns an address into a result envelope by joining the
// city database, the region mapping and the ISP database.
package resolver

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"regionalgeo/internal/address"
	"regionalgeo/internal/geodb"
	"regionalgeo/internal/model"
	"regionalgeo/internal/status"
)

const (
	DefaultCityPath = "/usr/share/GeoIP/GeoIP2-City.mmdb"
	DefaultISPPath  = "/usr/share/GeoIP/GeoIP2-ISP.mmdb"
)

type RegionResolver interface {
	ByCountryCode(ctx context.Context, code string) (*model.Region, error)
}

// Paths locates the two databases. Empty fields fall back to their own default.
type Paths struct {
	City string
	ISP  string
}

func (p Paths) withDefaults() Paths {
	if p.City == "" {
		p.City = DefaultCityPath
	}
	if p.ISP == "" {
		p.ISP = DefaultISPPath
	}
	return p
}

// Outcome is the product of one resolution. Persist is nil unless the
// resolution succeeded and may be written to the cache.
type Outcome struct {
	Live    *model.Envelope
	Persist *model.Envelope
}

func (o *Outcome) Cacheable() bool {
	return o.Persist != nil
}

type Pipeline struct {
	opener  geodb.Opener
	regions RegionResolver
	paths   Paths
	logger  *zap.Logger
}

func New(opener geodb.Opener, regions RegionResolver, paths Paths, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		opener:  opener,
		regions: regions,
		paths:   paths.withDefaults(),
		logger:  logger,
	}
}

func (p *Pipeline) Paths() Paths {
	return p.paths
}

// Resolve runs a single resolution. The returned error is reserved for
// configuration and infrastructure faults; every business outcome is carried
// in the envelope status.
func (p *Pipeline) Resolve(ctx context.Context, ip string) (*Outcome, error) {
	request := model.Request{
		IP:   ip,
		Type: string(address.VersionOf(ip)),
	}
	isV4 := request.Type == string(address.IPv4)

	var (
		tracker status.Tracker
		result  model.Result
		loc     model.Location
	)

	city, err := p.opener.Open(p.paths.City)
	if err != nil {
		return nil, fmt.Errorf("loading city database: %w", err)
	}
	defer city.Close()

	parsed := net.ParseIP(ip)

	var record *model.GeoRecord
	if isV4 {
		if address.IsPrivate(ip) {
			tracker.Set(status.IPAddressReserved)
		}
		if parsed != nil {
			record, err = lookupCity(city, parsed)
			if err != nil {
				p.logger.Warn("city lookup failed",
					zap.String("ip", ip),
					zap.Error(err))
				tracker.Fault(err)
			}
		}
	}

	var countryCode string
	if record != nil {
		extractLocation(record, &loc)
		countryCode = loc.CountryCode
	}

	if countryCode != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		region, err := p.regions.ByCountryCode(ctx, countryCode)
		if err != nil {
			return nil, fmt.Errorf("resolving region for %s: %w", countryCode, err)
		}
		if region != nil {
			loc.RegionName = region.Name
			loc.RegionCode = region.RegionCode
			loc.RegionTimeZone = region.TimeZone
		}
	}

	if loc != (model.Location{}) {
		result.Location = &loc
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	isp, err := p.opener.Open(p.paths.ISP)
	if err != nil {
		return nil, fmt.Errorf("loading isp database: %w", err)
	}
	defer isp.Close()

	if isV4 && parsed != nil {
		name, err := isp.ISP(parsed)
		if err != nil {
			p.logger.Warn("isp lookup failed",
				zap.String("ip", ip),
				zap.Error(err))
			tracker.Fault(err)
		}
		if name != "" {
			result.Organization = &model.Organization{ISP: name}
		}
	}

	live := &model.Envelope{
		Request: request,
		Status:  tracker.Status(status.SuccessCached),
		Result:  result,
	}

	if tracker.Failed() {
		p.logger.Debug("resolution not cacheable",
			zap.String("ip", ip),
			zap.String("status", string(tracker.Code())))
		return &Outcome{Live: live}, nil
	}

	return &Outcome{
		Live:    live,
		Persist: withStatus(live, status.Success),
	}, nil
}

// lookupCity reads the city record for ip, converting any panic raised while
// decoding the record into an error.
func lookupCity(city geodb.Handle, ip net.IP) (record *model.GeoRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record, err = nil, fmt.Errorf("%v", r)
		}
	}()
	return city.City(ip)
}

// extractLocation copies the record fields into loc. Coordinates missing
// from the record stay nil.
func extractLocation(record *model.GeoRecord, loc *model.Location) {
	loc.ContinentCode = record.ContinentCode
	loc.CountryCode = record.CountryCode
	loc.PostalCode = record.PostalCode
	loc.CityName = record.City
	if record.Latitude != nil {
		lat := *record.Latitude
		loc.Latitude = &lat
	}
	if record.Longitude != nil {
		lon := *record.Longitude
		loc.Longitude = &lon
	}
}

// withStatus returns a deep copy of env carrying status c.
func withStatus(env *model.Envelope, c status.Code) *model.Envelope {
	out := &model.Envelope{
		Request: env.Request,
		Status:  c.Status(),
	}
	if env.Result.Location != nil {
		loc := *env.Result.Location
		if loc.Latitude != nil {
			lat := *loc.Latitude
			loc.Latitude = &lat
		}
		if loc.Longitude != nil {
			lon := *loc.Longitude
			loc.Longitude = &lon
		}
		out.Result.Location = &loc
	}
	if env.Result.Organization != nil {
		org := *env.Result.Organization
		out.Result.Organization = &org
	}
	return out
}
