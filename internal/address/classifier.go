package address

import (
	"encoding/binary"
	"net"
	"strings"
)

type Version string

const (
	IPv4 Version = "IPv4"
	IPv6 Version = "IPv6"
)

// Range is an inclusive block of IPv4 addresses in host byte order.
type Range struct {
	Start uint32
	End   uint32
}

func (r Range) Contains(v uint32) bool {
	return v >= r.Start && v <= r.End
}

// PrivateRanges are the reserved blocks that are never geolocated.
var PrivateRanges = []Range{
	{Start: 0x0A000000, End: 0x0AFFFFFF}, // 10.0.0.0 - 10.255.255.255
	{Start: 0xAC100000, End: 0xAC1FFFFF}, // 172.16.0.0 - 172.31.255.255
	{Start: 0xC0A80000, End: 0xC0A8FFFF}, // 192.168.0.0 - 192.168.255.255
	{Start: 0xA9FE0000, End: 0xA9FEFFFF}, // 169.254.0.0 - 169.254.255.255
	{Start: 0x7F000000, End: 0x7FFFFFFF}, // 127.0.0.0 - 127.255.255.255
}

// VersionOf classifies the literal by its text alone. Anything containing a
// colon is IPv6, everything else (including garbage) is IPv4.
func VersionOf(ip string) Version {
	if strings.Contains(ip, ":") {
		return IPv6
	}
	return IPv4
}

// ToUint32 converts a dotted-quad IPv4 literal to an integer.
func ToUint32(ip string) (uint32, bool) {
	parsed := net.ParseIP(ip)
	if parsed == nil || strings.Contains(ip, ":") {
		return 0, false
	}
	v4 := parsed.To4()
	if v4 == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(v4), true
}

// IsPrivate reports whether an IPv4 literal falls in one of PrivateRanges.
// Literals that do not convert are treated as public.
func IsPrivate(ip string) bool {
	v, ok := ToUint32(ip)
	if !ok {
		return false
	}
	for _, r := range PrivateRanges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}
