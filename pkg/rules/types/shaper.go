package types

import "strconv"

// PipeConfig is the configuration of one bandwidth pipe: a byte rate cap
// and/or a fixed propagation delay applied to one direction of traffic.
type PipeConfig struct {
	ID uint32
	// BandwidthKbps caps the pipe's bandwidth in Kbit/s. 0 means unlimited
	BandwidthKbps uint32
	// DelayMs adds a fixed delay in milliseconds. 0 means none
	DelayMs uint32
}

// Equals compares this PipeConfig with other, returns true if they are equal or false otherwise
func (p *PipeConfig) Equals(other *PipeConfig) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return *p == *other
}

// GenCmdLineArgs implements CmdLineGenerator interface, it renders the pipe
// configuration command:
//
//	pipe <id> config [bw <n>Kbit/s] [delay <n>ms]
func (p *PipeConfig) GenCmdLineArgs() []string {
	args := []string{"pipe", strconv.FormatUint(uint64(p.ID), 10), "config"}
	if p.BandwidthKbps > 0 {
		args = append(args, "bw", strconv.FormatUint(uint64(p.BandwidthKbps), 10)+"Kbit/s")
	}
	if p.DelayMs > 0 {
		args = append(args, "delay", strconv.FormatUint(uint64(p.DelayMs), 10)+"ms")
	}
	return args
}

// QueueConfig is the configuration of one weighted fair queue nested inside
// a pipe. Queues sharing a pipe divide its bandwidth by weight ratio.
type QueueConfig struct {
	ID     uint32
	PipeID uint32
	Weight uint32
}

// Equals compares this QueueConfig with other, returns true if they are equal or false otherwise
func (q *QueueConfig) Equals(other *QueueConfig) bool {
	if q == other {
		return true
	}
	if q == nil || other == nil {
		return false
	}
	return *q == *other
}

// GenCmdLineArgs implements CmdLineGenerator interface, it renders the queue
// configuration command:
//
//	queue <id> config pipe <pipe> weight <w>
func (q *QueueConfig) GenCmdLineArgs() []string {
	return []string{
		"queue", strconv.FormatUint(uint64(q.ID), 10),
		"config",
		"pipe", strconv.FormatUint(uint64(q.PipeID), 10),
		"weight", strconv.FormatUint(uint64(q.Weight), 10),
	}
}
