// Package status holds the fixed catalog of resolution outcomes and the
// first-assignment-wins tracker used while a resolution is in progress.
package status

import (
	"strings"

	"regionalgeo/internal/model"
)

type Code string

const (
	Success                    Code = "SUCCESS"
	SuccessCached              Code = "SUCCESS_CACHED"
	IPAddressInvalid           Code = "IP_ADDRESS_INVALID"
	IPAddressReserved          Code = "IP_ADDRESS_RESERVED"
	IPAddressNotFound          Code = "IP_ADDRESS_NOT_FOUND"
	DomainRegistrationRequired Code = "DOMAIN_REGISTRATION_REQUIRED"
	GeoIPException             Code = "GEOIP_EXCEPTION"
	GeoIPMissing               Code = "GEOIP_MISSING"
)

const faultPlaceholder = "ERROR"

var codes = []Code{
	Success,
	SuccessCached,
	IPAddressInvalid,
	IPAddressReserved,
	IPAddressNotFound,
	DomainRegistrationRequired,
	GeoIPException,
	GeoIPMissing,
}

var messages = map[Code]string{
	Success:                    "Success",
	SuccessCached:              "Successfully found and cached response",
	IPAddressInvalid:           "You have not supplied a valid IPv4 or IPv6 address",
	IPAddressReserved:          "You have supplied an IP address which belongs to a reserved or private range",
	IPAddressNotFound:          "The supplied IP address is not in the database",
	DomainRegistrationRequired: "The domain of your site is not registered.",
	GeoIPException:             "GEOIP_EXCEPTION [" + faultPlaceholder + "]",
	GeoIPMissing:               "GeoIP module does not exist",
}

// Codes returns every known code in catalog order.
func Codes() []Code {
	out := make([]Code, len(codes))
	copy(out, codes)
	return out
}

// Parse looks up a code by its string form.
func Parse(s string) (Code, bool) {
	c := Code(strings.ToUpper(s))
	_, ok := messages[c]
	return c, ok
}

// Message returns the catalog message for c. GEOIP_EXCEPTION is returned with
// its placeholder intact; use Exception to fill it in.
func Message(c Code) string {
	return messages[c]
}

// Catalog returns a copy of the full code to message table.
func Catalog() map[Code]string {
	out := make(map[Code]string, len(messages))
	for k, v := range messages {
		out[k] = v
	}
	return out
}

// Exception renders the GEOIP_EXCEPTION message around a fault description.
func Exception(description string) string {
	return strings.Replace(messages[GeoIPException], faultPlaceholder, description, 1)
}

// Status renders c as the envelope status block.
func (c Code) Status() model.Status {
	return model.Status{Code: string(c), Message: Message(c)}
}

func (c Code) Cacheable() bool {
	return c == Success || c == SuccessCached
}

// Tracker records the first disqualifying outcome of a resolution. Later
// calls to Set or Fault are ignored once a code has been assigned.
type Tracker struct {
	code    Code
	message string
}

func (t *Tracker) Set(c Code) {
	if t.code != "" {
		return
	}
	t.code = c
	t.message = Message(c)
}

func (t *Tracker) Fault(err error) {
	if t.code != "" {
		return
	}
	t.code = GeoIPException
	t.message = Exception(err.Error())
}

// Failed reports whether a disqualifying outcome was recorded.
func (t *Tracker) Failed() bool {
	return t.code != ""
}

func (t *Tracker) Code() Code {
	return t.code
}

// Status returns the recorded failure, or fallback when nothing failed.
func (t *Tracker) Status(fallback Code) model.Status {
	if t.code == "" {
		return fallback.Status()
	}
	return model.Status{Code: string(t.code), Message: t.message}
}
