package executor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/dataflow/channel"
	"github.com/kbukum/dataflow/errors"
	"github.com/kbukum/dataflow/record"
)

// Topology is the single output shape of a task. It is one of Direct,
// Partitioned or Broadcast and is decided once, before the pipeline runs.
type Topology interface {
	Kind() channel.Kind
	// Output returns the channel that receives every routed record.
	Output() channel.Channel
}

// Direct routes records unchanged to Primary. Every channel in Channels,
// Primary included, is committed after a successful run.
type Direct struct {
	Primary  channel.DirectChannel
	Channels []channel.DirectChannel
}

// Partitioned routes (index, key, value) records to a sorted exchange,
// building keys of KeyType.
type Partitioned struct {
	KeyType record.DataType
	Channel channel.SortedChannel
}

// Broadcast routes (index, value) records to an unordered exchange.
type Broadcast struct {
	Channel channel.UnorderedChannel
}

func (Direct) Kind() channel.Kind      { return channel.KindDirect }
func (Partitioned) Kind() channel.Kind { return channel.KindSorted }
func (Broadcast) Kind() channel.Kind   { return channel.KindUnordered }

func (t Direct) Output() channel.Channel      { return t.Primary }
func (t Partitioned) Output() channel.Channel { return t.Channel }
func (t Broadcast) Output() channel.Channel   { return t.Channel }

// Name returns a log-friendly topology name.
func Name(t Topology) string {
	switch t.(type) {
	case Direct:
		return "direct"
	case Partitioned:
		return "partitioned"
	case Broadcast:
		return "broadcast"
	default:
		return "unknown"
	}
}

// Classify decides the task topology from the attached channels.
//
// All channels must be of one kind; an empty set, a channel implementing
// no kind or several kinds, or a mix of kinds is a topology mismatch. When several channels of the same
// kind are attached, output names the one that receives records; an empty
// output selects the first by name. keyType is required for a sorted
// exchange.
func Classify(channels []channel.Channel, output string, keyType record.DataType) (Topology, error) {
	if len(channels) == 0 {
		return nil, errors.TopologyMismatch("no destination channels attached")
	}

	byKind := map[channel.Kind][]channel.Channel{}
	for _, c := range channels {
		k := channel.KindOf(c)
		if k == 0 {
			return nil, errors.TopologyMismatch(fmt.Sprintf("channel %q has no single recognized topology (%T)", c.Name(), c))
		}
		byKind[k] = append(byKind[k], c)
	}
	if len(byKind) > 1 {
		kinds := make([]string, 0, len(byKind))
		for k, cs := range byKind {
			kinds = append(kinds, fmt.Sprintf("%s=%d", k, len(cs)))
		}
		slices.Sort(kinds)
		return nil, errors.TopologyMismatch("channels span more than one topology").
			WithDetail("kinds", strings.Join(kinds, ","))
	}

	var (
		kind  channel.Kind
		group []channel.Channel
	)
	for k, cs := range byKind {
		kind, group = k, cs
	}
	slices.SortFunc(group, func(a, b channel.Channel) int { return strings.Compare(a.Name(), b.Name()) })

	primary := group[0]
	if output != "" {
		idx := slices.IndexFunc(group, func(c channel.Channel) bool { return c.Name() == output })
		if idx < 0 {
			return nil, errors.TopologyMismatch(fmt.Sprintf("output channel %q is not attached as a %s channel", output, kind))
		}
		primary = group[idx]
	}

	switch kind {
	case channel.KindDirect:
		direct := Direct{Primary: primary.(channel.DirectChannel)}
		for _, c := range group {
			direct.Channels = append(direct.Channels, c.(channel.DirectChannel))
		}
		return direct, nil
	case channel.KindSorted:
		if keyType == record.TypeUnknown {
			return nil, errors.TopologyMismatch(fmt.Sprintf("sorted channel %q requires a declared key type", primary.Name()))
		}
		return Partitioned{KeyType: keyType, Channel: primary.(channel.SortedChannel)}, nil
	default:
		return Broadcast{Channel: primary.(channel.UnorderedChannel)}, nil
	}
}
