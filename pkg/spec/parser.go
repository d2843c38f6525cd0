package spec

import (
	"net"
	"strconv"
	"strings"
)

const (
	markerMac = "mac"
	markerWin = "win"

	networkAny = "any"
)

// Parse parses a single interface spec token into a Descriptor.
// Token grammar: name[{in,out}][+mac][+win][:[:]network]
//   - name is everything before the first '+' or ':'
//   - an optional {in,out} bandwidth suffix (Kbit/s values) is attached to the name
//   - +mac / +win declare the OS family of hosts on the network
//   - a double colon separator marks the network as trusted
//   - the network is CIDR notation, empty defaults to "any"
//
// Parse is a pure function of the token. It returns MalformedSpecError for
// grammar violations and MalformedRateError for a bad bandwidth suffix.
func Parse(token string) (*Descriptor, error) {
	d := &Descriptor{OSType: OSTypeUnknown, Index: -1}

	namePart := token
	rest := ""
	if i := strings.IndexAny(token, "+:"); i >= 0 {
		namePart = token[:i]
		rest = token[i:]
	}

	name, err := parseRateSuffix(token, namePart, d)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &MalformedSpecError{Token: token, Reason: "empty interface name"}
	}
	d.Name = name

	rest, err = parseMarkers(token, rest, d)
	if err != nil {
		return nil, err
	}

	network := ""
	switch {
	case rest == "":
	case strings.HasPrefix(rest, "::"):
		d.Trusted = true
		network = rest[2:]
	case strings.HasPrefix(rest, ":"):
		network = rest[1:]
	default:
		return nil, &MalformedSpecError{Token: token, Reason: "unexpected trailing characters: " + rest}
	}

	if network != "" && network != networkAny {
		_, ipNet, err := net.ParseCIDR(network)
		if err != nil {
			return nil, &MalformedSpecError{Token: token, Reason: "network is not CIDR notation: " + network}
		}
		d.Network = ipNet
	}

	return d, nil
}

// parseRateSuffix extracts the optional {in,out} suffix from the name portion,
// returning the bare interface name.
func parseRateSuffix(token, namePart string, d *Descriptor) (string, error) {
	open := strings.Index(namePart, "{")
	if open < 0 {
		if strings.Contains(namePart, "}") {
			return "", &MalformedRateError{Token: token, Reason: "unbalanced braces"}
		}
		return namePart, nil
	}

	if !strings.HasSuffix(namePart, "}") {
		return "", &MalformedRateError{Token: token, Reason: "unbalanced braces"}
	}

	fields := strings.Split(namePart[open+1:len(namePart)-1], ",")
	if len(fields) != 2 {
		return "", &MalformedRateError{Token: token, Reason: "expected exactly two rates {in,out}"}
	}

	rates := make([]uint32, 2)
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return "", &MalformedRateError{Token: token, Reason: "rate is not numeric: " + f}
		}
		if v == 0 {
			return "", &MalformedRateError{Token: token, Reason: "rate must be positive"}
		}
		rates[i] = uint32(v)
	}
	d.InRateKbps = &rates[0]
	d.OutRateKbps = &rates[1]

	return namePart[:open], nil
}

// parseMarkers consumes leading +marker segments, returning the remainder
// (":" / "::" separator and network, or empty).
func parseMarkers(token, rest string, d *Descriptor) (string, error) {
	for strings.HasPrefix(rest, "+") {
		marker := rest[1:]
		end := strings.IndexAny(marker, "+:")
		if end >= 0 {
			rest = marker[end:]
			marker = marker[:end]
		} else {
			rest = ""
		}

		switch marker {
		case markerMac:
			if d.OSType == OSTypeWindows || d.OSType == OSTypeBoth {
				d.OSType = OSTypeBoth
			} else {
				d.OSType = OSTypeMac
			}
		case markerWin:
			if d.OSType == OSTypeMac || d.OSType == OSTypeBoth {
				d.OSType = OSTypeBoth
			} else {
				d.OSType = OSTypeWindows
			}
		default:
			return "", &MalformedSpecError{Token: token, Reason: "unrecognized OS marker: +" + marker}
		}
	}
	return rest, nil
}
