package types

import "strconv"

const (
	// ActionTypeAllow accepts the packet
	ActionTypeAllow ActionType = "allow"
	// ActionTypeDeny drops the packet silently
	ActionTypeDeny ActionType = "deny"
	// ActionTypeCheckState matches the packet against the dynamic rule set
	ActionTypeCheckState ActionType = "check-state"
	// ActionTypeReject drops the packet and sends a protocol-specific response
	ActionTypeReject ActionType = "reject"
	// ActionTypeSkipTo continues evaluation at the first rule numbered >= target
	ActionTypeSkipTo ActionType = "skipto"
	// ActionTypeDivert hands the packet to a userland socket (address translation daemon)
	ActionTypeDivert ActionType = "divert"
	// ActionTypePipe pushes the packet through a bandwidth pipe
	ActionTypePipe ActionType = "pipe"
	// ActionTypeQueue pushes the packet through a weighted fair queue
	ActionTypeQueue ActionType = "queue"

	// RejectKindReset answers TCP connection attempts with RST
	RejectKindReset RejectKind = "reset"
	// RejectKindUnreachPort answers with ICMP port unreachable
	RejectKindUnreachPort RejectKind = "unreach port"
	// RejectKindUnreachHost answers with ICMP host unreachable
	RejectKindUnreachHost RejectKind = "unreach host"
)

// ActionType is the type of rule action
type ActionType string

// RejectKind is the protocol-specific response kind of a reject action
type RejectKind string

// Action is an interface which represents a rule action
type Action interface {
	// Type returns the action type
	Type() ActionType
	// Equals compares this Action with other, returns true if they are equal or false otherwise
	Equals(other Action) bool

	// Driver Specific related Interfaces
	CmdLineGenerator
}

// ControlAction is a plain accept/drop/check-state action
type ControlAction struct {
	actionType ActionType
}

// NewControlAction creates a new ControlAction of the provided type
func NewControlAction(actionType ActionType) *ControlAction {
	return &ControlAction{actionType: actionType}
}

// NewAllowAction creates an allow action
func NewAllowAction() *ControlAction {
	return NewControlAction(ActionTypeAllow)
}

// NewDenyAction creates a deny action
func NewDenyAction() *ControlAction {
	return NewControlAction(ActionTypeDeny)
}

// NewCheckStateAction creates a check-state action
func NewCheckStateAction() *ControlAction {
	return NewControlAction(ActionTypeCheckState)
}

// Type implements Action interface
func (a *ControlAction) Type() ActionType {
	return a.actionType
}

// Equals implements Action interface
func (a *ControlAction) Equals(other Action) bool {
	o, ok := other.(*ControlAction)
	if !ok {
		return false
	}
	return a.actionType == o.actionType
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *ControlAction) GenCmdLineArgs() []string {
	return []string{string(a.actionType)}
}

// RejectAction drops the packet and answers with a protocol-specific response
type RejectAction struct {
	kind RejectKind
}

// NewRejectAction creates a new RejectAction with the provided response kind
func NewRejectAction(kind RejectKind) *RejectAction {
	return &RejectAction{kind: kind}
}

// Kind returns the response kind of the reject action
func (a *RejectAction) Kind() RejectKind {
	return a.kind
}

// Type implements Action interface
func (a *RejectAction) Type() ActionType {
	return ActionTypeReject
}

// Equals implements Action interface
func (a *RejectAction) Equals(other Action) bool {
	o, ok := other.(*RejectAction)
	if !ok {
		return false
	}
	return a.kind == o.kind
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *RejectAction) GenCmdLineArgs() []string {
	switch a.kind {
	case RejectKindReset:
		return []string{"reset"}
	case RejectKindUnreachPort:
		return []string{"unreach", "port"}
	case RejectKindUnreachHost:
		return []string{"unreach", "host"}
	}
	return []string{string(a.kind)}
}

// SkipToAction continues rule evaluation at the first rule numbered >= Target
type SkipToAction struct {
	target uint32
}

// NewSkipToAction creates a new SkipToAction with the provided target rule number
func NewSkipToAction(target uint32) *SkipToAction {
	return &SkipToAction{target: target}
}

// Target returns the target rule number
func (a *SkipToAction) Target() uint32 {
	return a.target
}

// Type implements Action interface
func (a *SkipToAction) Type() ActionType {
	return ActionTypeSkipTo
}

// Equals implements Action interface
func (a *SkipToAction) Equals(other Action) bool {
	o, ok := other.(*SkipToAction)
	if !ok {
		return false
	}
	return a.target == o.target
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *SkipToAction) GenCmdLineArgs() []string {
	return []string{"skipto", strconv.FormatUint(uint64(a.target), 10)}
}

// DivertAction hands matching packets to the userland socket bound to Port
type DivertAction struct {
	port uint16
}

// NewDivertAction creates a new DivertAction for the provided divert port
func NewDivertAction(port uint16) *DivertAction {
	return &DivertAction{port: port}
}

// Type implements Action interface
func (a *DivertAction) Type() ActionType {
	return ActionTypeDivert
}

// Equals implements Action interface
func (a *DivertAction) Equals(other Action) bool {
	o, ok := other.(*DivertAction)
	if !ok {
		return false
	}
	return a.port == o.port
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *DivertAction) GenCmdLineArgs() []string {
	return []string{"divert", strconv.FormatUint(uint64(a.port), 10)}
}

// PipeAction pushes matching packets through the bandwidth pipe identified by ID
type PipeAction struct {
	id uint32
}

// NewPipeAction creates a new PipeAction for the provided pipe ID
func NewPipeAction(id uint32) *PipeAction {
	return &PipeAction{id: id}
}

// ID returns the pipe identifier
func (a *PipeAction) ID() uint32 {
	return a.id
}

// Type implements Action interface
func (a *PipeAction) Type() ActionType {
	return ActionTypePipe
}

// Equals implements Action interface
func (a *PipeAction) Equals(other Action) bool {
	o, ok := other.(*PipeAction)
	if !ok {
		return false
	}
	return a.id == o.id
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *PipeAction) GenCmdLineArgs() []string {
	return []string{"pipe", strconv.FormatUint(uint64(a.id), 10)}
}

// QueueAction pushes matching packets through the weighted queue identified by ID
type QueueAction struct {
	id uint32
}

// NewQueueAction creates a new QueueAction for the provided queue ID
func NewQueueAction(id uint32) *QueueAction {
	return &QueueAction{id: id}
}

// ID returns the queue identifier
func (a *QueueAction) ID() uint32 {
	return a.id
}

// Type implements Action interface
func (a *QueueAction) Type() ActionType {
	return ActionTypeQueue
}

// Equals implements Action interface
func (a *QueueAction) Equals(other Action) bool {
	o, ok := other.(*QueueAction)
	if !ok {
		return false
	}
	return a.id == o.id
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (a *QueueAction) GenCmdLineArgs() []string {
	return []string{"queue", strconv.FormatUint(uint64(a.id), 10)}
}
