package rules

import (
	"github.com/pkg/errors"

	"github.com/trustwall/trustwall/pkg/rules/types"
)

const (
	// SetBaseline holds loopback, routing divert, connection rate limiting
	// and malformed packet rejection
	SetBaseline types.SetID = 0
	// SetRouting holds router-mode pair forwarding rules
	SetRouting types.SetID = 1
	// SetState holds the dynamic state check and stale connection handling
	SetState types.SetID = 2
	// SetMacServices holds per-interface mac service rules
	SetMacServices types.SetID = 3
	// SetWinServices holds per-interface windows service rules
	SetWinServices types.SetID = 4
	// SetTrustedNets holds trusted ICMP and broadcast containment rules
	SetTrustedNets types.SetID = 5
	// SetBootstrap holds DHCP/ICMP rules needed before an address is leased
	SetBootstrap types.SetID = 6
	// SetAntiSpoof holds inbound reverse path and spoof-signature rules
	SetAntiSpoof types.SetID = 7
	// SetShaping holds pipe and queue classification rules
	SetShaping types.SetID = 10
	// SetOutbound holds the default outbound allowances
	SetOutbound types.SetID = 11
	// SetOpenPorts holds operator-opened inbound ports
	SetOpenPorts types.SetID = 20
	// SetDefaultDeny holds the catch-all
	SetDefaultDeny types.SetID = 30
)

// Purpose names a numbering band within a rule set
type Purpose string

const (
	PurposeBaseline             Purpose = "baseline"
	PurposeRouting              Purpose = "routing"
	PurposeState                Purpose = "state-tracking"
	PurposeMacServices          Purpose = "mac-services"
	PurposeWinServices          Purpose = "windows-services"
	PurposeTrustedNets          Purpose = "trusted-networks"
	PurposeBroadcastContainment Purpose = "broadcast-containment"
	PurposeBootstrap            Purpose = "dhcp-icmp-bootstrap"
	PurposeAntiSpoofFixed       Purpose = "anti-spoof-fixed"
	PurposeAntiSpoofPerIfc      Purpose = "anti-spoof-per-interface"
	PurposeShapingExempt        Purpose = "shaping-exempt"
	PurposeShapingPerIfc        Purpose = "shaping-per-interface"
	PurposeOutbound             Purpose = "outbound-allow"
	PurposeOpenPorts            Purpose = "open-ports"
	PurposeDefaultDeny          Purpose = "default-deny"
)

// MaxInterfaces is the maximum number of registered descriptors the
// numbering bands are sized for
const MaxInterfaces = 64

// maxRuleNumber is the engine's highest usable rule number
const maxRuleNumber = 65535

// Band reserves a numeric range of rule numbers for one purpose. Bands with
// a non-zero Stride hold one slot of Stride numbers per interface index;
// bands with Stride 0 hold a fixed sequence of rules.
type Band struct {
	Set     types.SetID
	Purpose Purpose
	Base    uint32
	Stride  uint32
	Width   uint32
}

// SlotStart returns the first rule number of the band slot reserved for the
// provided interface index. For fixed bands it returns Base.
func (b Band) SlotStart(index int) uint32 {
	return b.Base + b.Stride*uint32(index)
}

// End returns the first rule number past the band
func (b Band) End() uint32 {
	return b.Base + b.Width
}

// numberingTable is the single ordered table of rule number bands. Rule
// ordering determines security semantics, so every numeric placement in the
// compiler goes through this table; ValidateNumbering enforces the layout
// structurally instead of by convention.
var numberingTable = []Band{
	{Set: SetBaseline, Purpose: PurposeBaseline, Base: 100, Width: 900},
	{Set: SetRouting, Purpose: PurposeRouting, Base: 1000, Width: 100},
	{Set: SetState, Purpose: PurposeState, Base: 1100, Width: 100},
	{Set: SetMacServices, Purpose: PurposeMacServices, Base: 2000, Stride: 20, Width: 2000},
	{Set: SetWinServices, Purpose: PurposeWinServices, Base: 4000, Stride: 20, Width: 2000},
	{Set: SetTrustedNets, Purpose: PurposeTrustedNets, Base: 6000, Stride: 20, Width: 1800},
	{Set: SetTrustedNets, Purpose: PurposeBroadcastContainment, Base: 7800, Width: 200},
	{Set: SetBootstrap, Purpose: PurposeBootstrap, Base: 8000, Stride: 2, Width: 200},
	{Set: SetAntiSpoof, Purpose: PurposeAntiSpoofFixed, Base: 8200, Width: 100},
	{Set: SetAntiSpoof, Purpose: PurposeAntiSpoofPerIfc, Base: 8300, Stride: 10, Width: 1700},
	{Set: SetShaping, Purpose: PurposeShapingExempt, Base: 10000, Width: 100},
	{Set: SetShaping, Purpose: PurposeShapingPerIfc, Base: 10100, Stride: 40, Width: 9900},
	{Set: SetOutbound, Purpose: PurposeOutbound, Base: 20000, Width: 1000},
	{Set: SetOpenPorts, Purpose: PurposeOpenPorts, Base: 21000, Stride: 20, Width: 9000},
	{Set: SetDefaultDeny, Purpose: PurposeDefaultDeny, Base: 30000, Width: 1000},
}

// Skip-to landing points. A skipto target addresses the first rule numbered
// at or past the target, so the targets stay valid when the landing set is
// disabled or empty.
const (
	// SkipToShaping lands at the start of the shaping set
	SkipToShaping uint32 = 10000
	// SkipToOutbound lands at the start of the default outbound set,
	// past all shaping classification
	SkipToOutbound uint32 = 20000
)

// BandFor returns the Band reserved for the provided purpose
func BandFor(purpose Purpose) Band {
	for _, b := range numberingTable {
		if b.Purpose == purpose {
			return b
		}
	}
	// table is fixed at build time, a miss is a programming error
	panic("rules: no numbering band for purpose " + string(purpose))
}

// Bands returns the numbering table in evaluation order
func Bands() []Band {
	out := make([]Band, len(numberingTable))
	copy(out, numberingTable)
	return out
}

// ValidateNumbering checks the numbering table layout: bands strictly
// ordered and non-overlapping, per-interface bands sized for MaxInterfaces,
// skipto targets on band starts, and everything below the engine limit.
func ValidateNumbering() error {
	var prevEnd uint32
	for _, b := range numberingTable {
		if b.Base < prevEnd {
			return errors.Errorf("band %q base %d overlaps previous band ending at %d",
				b.Purpose, b.Base, prevEnd)
		}
		if b.Stride > 0 && b.Stride*MaxInterfaces > b.Width {
			return errors.Errorf("band %q cannot hold %d interfaces (stride %d, width %d)",
				b.Purpose, MaxInterfaces, b.Stride, b.Width)
		}
		prevEnd = b.End()
	}
	if prevEnd > maxRuleNumber {
		return errors.Errorf("numbering table exceeds maximum rule number %d", maxRuleNumber)
	}
	if BandFor(PurposeShapingExempt).Base != SkipToShaping {
		return errors.New("SkipToShaping target does not land on the shaping band")
	}
	if BandFor(PurposeOutbound).Base != SkipToOutbound {
		return errors.New("SkipToOutbound target does not land on the outbound band")
	}
	return nil
}
