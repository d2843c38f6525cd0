package cmdline

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trustwall/trustwall/pkg/fw"
	"github.com/trustwall/trustwall/pkg/rules/types"
)

func formatPipeID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parsePipeShow extracts the configured bandwidth and delay of pipe id from
// the engine's "pipe show" output. The header line looks like:
//
//	00100: 504.000 Kbit/s    0 ms burst 0
//
// with "unlimited" in place of the rate when no bandwidth is configured.
// Only the header line is inspected; per-flow statistics that follow are
// ignored.
func parsePipeShow(id uint32, out []byte) (*types.PipeConfig, error) {
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasSuffix(fields[0], ":") {
			continue
		}
		lineID, err := strconv.ParseUint(strings.TrimSuffix(fields[0], ":"), 10, 32)
		if err != nil || uint32(lineID) != id {
			continue
		}
		return parsePipeHeader(id, fields[1:])
	}
	return nil, fw.ErrPipeNotFound
}

func parsePipeHeader(id uint32, fields []string) (*types.PipeConfig, error) {
	cfg := &types.PipeConfig{ID: id}

	idx := 0
	if fields[idx] == "unlimited" {
		idx++
	} else {
		if len(fields) < 2 {
			return nil, errors.Errorf("short pipe header: %v", fields)
		}
		kbps, err := parseRate(fields[idx], fields[idx+1])
		if err != nil {
			return nil, err
		}
		cfg.BandwidthKbps = kbps
		idx += 2
	}

	if len(fields) >= idx+2 && fields[idx+1] == "ms" {
		delay, err := strconv.ParseUint(fields[idx], 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad pipe delay %q", fields[idx])
		}
		cfg.DelayMs = uint32(delay)
	}
	return cfg, nil
}

// parseRate converts a "<value> <unit>/s" pair into Kbit/s
func parseRate(value, unit string) (uint32, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "bad pipe bandwidth %q", value)
	}
	switch strings.TrimSuffix(unit, "/s") {
	case "bit":
		v /= 1000
	case "Kbit":
	case "Mbit":
		v *= 1000
	default:
		return 0, errors.Errorf("unknown bandwidth unit %q", unit)
	}
	return uint32(v), nil
}
