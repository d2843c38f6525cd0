package spec

import "net"

const (
	// OSTypeUnknown means no OS marker was present on the token
	OSTypeUnknown OSType = "unknown"
	// OSTypeMac is set by the +mac marker
	OSTypeMac OSType = "mac"
	// OSTypeWindows is set by the +win marker
	OSTypeWindows OSType = "windows"
	// OSTypeBoth is set when both +mac and +win markers are present
	OSTypeBoth OSType = "both"
)

// OSType is the OS family declared for hosts on an interface's network
type OSType string

// Descriptor is the parsed representation of one interface spec token
type Descriptor struct {
	// Name is the interface identifier (e.g. en0)
	Name string
	// Network is the declared network. nil means "any"
	Network *net.IPNet
	// Trusted is true iff the token used the :: separator
	Trusted bool
	// OSType is derived from +mac / +win markers
	OSType OSType
	// InRateKbps and OutRateKbps are the declared bandwidth budget.
	// nil means no rate limiting and no shaping for that direction.
	InRateKbps  *uint32
	OutRateKbps *uint32
	// Index is assigned by the Registry at registration time
	Index int
}

// HasNetwork returns true if the descriptor declares a bounded network
// (anything other than "any")
func (d *Descriptor) HasNetwork() bool {
	return d.Network != nil
}

// NetworkString returns the declared network in CIDR notation, or "any"
func (d *Descriptor) NetworkString() string {
	if d.Network == nil {
		return "any"
	}
	return d.Network.String()
}

// HasRate returns true if the descriptor carries a bandwidth budget
func (d *Descriptor) HasRate() bool {
	return d.InRateKbps != nil && d.OutRateKbps != nil
}

// MatchesMac returns true if hosts on this interface are declared mac-type
func (d *Descriptor) MatchesMac() bool {
	return d.OSType == OSTypeMac || d.OSType == OSTypeBoth
}

// MatchesWindows returns true if hosts on this interface are declared windows-type
func (d *Descriptor) MatchesWindows() bool {
	return d.OSType == OSTypeWindows || d.OSType == OSTypeBoth
}
