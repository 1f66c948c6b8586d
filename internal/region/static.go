package region

import (
	"context"

	"regionalgeo/internal/model"
)

// Static resolves regions from a fixed list, typically taken from config.
type Static struct {
	regions map[string]model.Region
}

func NewStatic(regions []model.Region) *Static {
	s := &Static{regions: make(map[string]model.Region, len(regions))}
	for _, region := range regions {
		region.CountryCode = normalize(region.CountryCode)
		s.regions[region.CountryCode] = region
	}
	return s
}

func (s *Static) ByCountryCode(_ context.Context, code string) (*model.Region, error) {
	region, ok := s.regions[normalize(code)]
	if !ok {
		return nil, nil
	}
	return &region, nil
}
