package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionalgeo/internal/model"
)

func TestEncode_Shape(t *testing.T) {
	lat, lon := 37.386, -122.0838
	env := &model.Envelope{
		Request: model.Request{IP: "8.8.8.8", Type: "IPv4"},
		Status:  model.Status{Code: "SUCCESS", Message: "Success"},
		Result: model.Result{
			Location: &model.Location{
				ContinentCode: "NA",
				CountryCode:   "US",
				CityName:      "Mountain View",
				Latitude:      &lat,
				Longitude:     &lon,
			},
			Organization: &model.Organization{ISP: "Google"},
		},
	}

	data, err := Encode(env)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"request": {"ip": "8.8.8.8", "type": "IPv4"},
		"status": {"code": "SUCCESS", "message": "Success"},
		"result": {
			"location": {
				"continent_code": "NA",
				"country_code": "US",
				"city_name": "Mountain View",
				"latitude": 37.386,
				"longitude": -122.0838
			},
			"organization": {"isp": "Google"}
		}
	}`, string(data))
}

func TestEncode_OmitsAbsentFields(t *testing.T) {
	env := &model.Envelope{
		Request: model.Request{IP: "10.1.2.3", Type: "IPv4"},
		Status:  model.Status{Code: "IP_ADDRESS_RESERVED", Message: "reserved"},
	}

	data, err := Encode(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"request": {"ip": "10.1.2.3", "type": "IPv4"},
		"status": {"code": "IP_ADDRESS_RESERVED", "message": "reserved"},
		"result": {}
	}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestEncode_ZeroCoordinatesKept(t *testing.T) {
	zero := 0.0
	env := &model.Envelope{
		Result: model.Result{Location: &model.Location{Latitude: &zero, Longitude: &zero}},
	}

	data, err := Encode(env)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"latitude":0`)
	assert.Contains(t, string(data), `"longitude":0`)
}

func TestDecode(t *testing.T) {
	env, err := Decode([]byte(`{"request":{"ip":"8.8.8.8","type":"IPv4"},"status":{"code":"SUCCESS","message":"Success"},"result":{"organization":{"isp":"Google"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", env.Status.Code)
	assert.Nil(t, env.Result.Location)
	require.NotNil(t, env.Result.Organization)
	assert.Equal(t, "Google", env.Result.Organization.ISP)

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}
